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
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BERType is an ASN.1 BER tag as used on the SNMP wire.
type BERType byte

const (
	TypeInteger          BERType = 0x02
	TypeOctetString      BERType = 0x04
	TypeNull             BERType = 0x05
	TypeObjectIdentifier BERType = 0x06
	TypeSequence         BERType = 0x30

	// Application types. Agents may echo these back in a response.
	TypeIPAddress  BERType = 0x40
	TypeCounter32  BERType = 0x41
	TypeGauge32    BERType = 0x42
	TypeTimeTicks  BERType = 0x43
	TypeOpaque     BERType = 0x44
	TypeCounter64  BERType = 0x46
	TypeUInteger32 BERType = 0x47

	// Context-specific PDU tags
	TypeGetRequest  BERType = 0xA0
	TypeGetResponse BERType = 0xA2
	TypeSetRequest  BERType = 0xA3

	// SNMPv2c exceptions
	TypeNoSuchObject   BERType = 0x80
	TypeNoSuchInstance BERType = 0x81
	TypeEndOfMibView   BERType = 0x82
)

// String returns the string representation of the BER type.
func (t BERType) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeOctetString:
		return "OCTET STRING"
	case TypeNull:
		return "NULL"
	case TypeObjectIdentifier:
		return "OBJECT IDENTIFIER"
	case TypeSequence:
		return "SEQUENCE"
	case TypeIPAddress:
		return "IpAddress"
	case TypeCounter32:
		return "Counter32"
	case TypeGauge32:
		return "Gauge32"
	case TypeTimeTicks:
		return "TimeTicks"
	case TypeOpaque:
		return "Opaque"
	case TypeCounter64:
		return "Counter64"
	case TypeUInteger32:
		return "UInteger32"
	case TypeGetRequest:
		return "GetRequest-PDU"
	case TypeGetResponse:
		return "GetResponse-PDU"
	case TypeSetRequest:
		return "SetRequest-PDU"
	case TypeNoSuchObject:
		return "noSuchObject"
	case TypeNoSuchInstance:
		return "noSuchInstance"
	case TypeEndOfMibView:
		return "endOfMibView"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", byte(t))
	}
}

// PDUType represents SNMP PDU types.
type PDUType byte

const (
	PDUGetRequest  PDUType = 0xA0
	PDUGetResponse PDUType = 0xA2
	PDUSetRequest  PDUType = 0xA3
)

// String returns the string representation of the PDU type.
func (p PDUType) String() string {
	return BERType(p).String()
}

// ErrorStatus represents SNMP error status codes.
type ErrorStatus int

const (
	NoError             ErrorStatus = 0
	TooBig              ErrorStatus = 1
	NoSuchName          ErrorStatus = 2
	BadValue            ErrorStatus = 3
	ReadOnly            ErrorStatus = 4
	GenErr              ErrorStatus = 5
	NoAccess            ErrorStatus = 6
	WrongType           ErrorStatus = 7
	WrongLength         ErrorStatus = 8
	WrongEncoding       ErrorStatus = 9
	WrongValue          ErrorStatus = 10
	NoCreation          ErrorStatus = 11
	InconsistentValue   ErrorStatus = 12
	ResourceUnavailable ErrorStatus = 13
	CommitFailed        ErrorStatus = 14
	UndoFailed          ErrorStatus = 15
	AuthorizationError  ErrorStatus = 16
	NotWritable         ErrorStatus = 17
	InconsistentName    ErrorStatus = 18
)

var errorStatusNames = [...]string{
	"noError", "tooBig", "noSuchName", "badValue", "readOnly", "genErr",
	"noAccess", "wrongType", "wrongLength", "wrongEncoding", "wrongValue",
	"noCreation", "inconsistentValue", "resourceUnavailable", "commitFailed",
	"undoFailed", "authorizationError", "notWritable", "inconsistentName",
}

// String returns the string representation of the error status.
func (e ErrorStatus) String() string {
	if e >= 0 && int(e) < len(errorStatusNames) {
		return errorStatusNames[e]
	}
	return fmt.Sprintf("unknown(%d)", int(e))
}

// OID represents an SNMP Object Identifier.
type OID []int

// String returns the dotted-decimal string representation.
func (o OID) String() string {
	if len(o) == 0 {
		return ""
	}
	parts := make([]string, len(o))
	for i, n := range o {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// ParseOID parses a dotted-decimal OID string. A leading dot is allowed.
// The first arc must be 0, 1 or 2 and at least two arcs are required,
// otherwise the OID cannot be BER encoded.
func ParseOID(s string) (OID, error) {
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return nil, ErrInvalidOID
	}

	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: %q needs at least two arcs", ErrInvalidOID, s)
	}

	oid := make(OID, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: component %q: %v", ErrInvalidOID, p, err)
		}
		oid[i] = int(n)
	}

	if oid[0] > 2 {
		return nil, fmt.Errorf("%w: first arc %d out of range", ErrInvalidOID, oid[0])
	}
	if oid[0] < 2 && oid[1] >= 40 {
		return nil, fmt.Errorf("%w: second arc %d out of range", ErrInvalidOID, oid[1])
	}

	return oid, nil
}

// MustParseOID parses an OID string and panics on error.
func MustParseOID(s string) OID {
	oid, err := ParseOID(s)
	if err != nil {
		panic(err)
	}
	return oid
}

// Equal checks if two OIDs are equal.
func (o OID) Equal(other OID) bool {
	if len(o) != len(other) {
		return false
	}
	for i, n := range o {
		if n != other[i] {
			return false
		}
	}
	return true
}

// Variable represents an SNMP variable binding.
type Variable struct {
	OID   OID
	Type  BERType
	Value interface{}
}

// NewInteger returns an INTEGER varbind for oid.
func NewInteger(oid OID, value int32) Variable {
	return Variable{OID: oid, Type: TypeInteger, Value: int(value)}
}

// String returns a string representation of the variable.
func (v *Variable) String() string {
	return fmt.Sprintf("%s = %s: %v", v.OID, v.Type, v.Value)
}

// AsInt returns the value as an integer.
func (v *Variable) AsInt() (int64, bool) {
	switch val := v.Value.(type) {
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case uint32:
		return int64(val), true
	default:
		return 0, false
	}
}

// ConnectionState represents the state of a client connection.
type ConnectionState int

const (
	// StateDisconnected indicates the client is not connected.
	StateDisconnected ConnectionState = iota
	// StateConnecting indicates the client is attempting to connect.
	StateConnecting
	// StateConnected indicates the client is connected and ready.
	StateConnected
	// StateDisconnecting indicates the client is gracefully disconnecting.
	StateDisconnecting
)

// String returns the string representation of the connection state.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return "Unknown"
	}
}

// Default values.
const (
	DefaultTimeout   = 6 * time.Second
	DefaultRetries   = 0
	DefaultPort      = 161
	DefaultCommunity = "public"
)
