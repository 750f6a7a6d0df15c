// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package snmp

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	ErrNotConnected     = errors.New("snmp: not connected")
	ErrAlreadyConnected = errors.New("snmp: already connected")
	ErrNoTarget         = errors.New("snmp: no target configured")
	ErrTimeout          = errors.New("snmp: operation timed out")
	ErrInvalidOID       = errors.New("snmp: invalid OID")
	ErrInvalidVersion   = errors.New("snmp: invalid SNMP version")
	ErrClientClosed     = errors.New("snmp: client closed")
)

// SNMPError is returned when the agent answers with a non-zero error-status.
type SNMPError struct {
	Status     ErrorStatus
	Index      int
	RequestOID OID
}

// Error implements the error interface.
func (e *SNMPError) Error() string {
	if e.RequestOID != nil {
		return fmt.Sprintf("snmp: %s at index %d (OID: %s)", e.Status, e.Index, e.RequestOID)
	}
	return fmt.Sprintf("snmp: %s at index %d", e.Status, e.Index)
}

// NewSNMPError creates a new SNMP error.
func NewSNMPError(status ErrorStatus, index int, oid OID) *SNMPError {
	return &SNMPError{
		Status:     status,
		Index:      index,
		RequestOID: oid,
	}
}

// IsTimeout returns true if the error is a timeout error.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// ParseError represents a packet parsing error.
type ParseError struct {
	Message string
	Offset  int
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("snmp: parse error at offset %d: %s", e.Offset, e.Message)
	}
	return fmt.Sprintf("snmp: parse error: %s", e.Message)
}

// NewParseError creates a new parse error.
func NewParseError(message string, offset int) *ParseError {
	return &ParseError{
		Message: message,
		Offset:  offset,
	}
}
