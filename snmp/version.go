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

// Package snmp provides a minimal community-based SNMP client: BER
// encoding, v1/v2c message framing and a UDP client that issues SET
// requests.
package snmp

// Version is the current version of the library.
const Version = "1.1.0"

// SNMPVersion is the value carried in the message version field.
type SNMPVersion int

const (
	// Version1 is SNMP v1.
	Version1 SNMPVersion = 0
	// Version2c is SNMP v2c.
	Version2c SNMPVersion = 1
)

// String returns the string representation of the SNMP version.
func (v SNMPVersion) String() string {
	switch v {
	case Version1:
		return "SNMPv1"
	case Version2c:
		return "SNMPv2c"
	default:
		return "Unknown"
	}
}
