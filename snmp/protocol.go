package snmp

import (
	"bytes"
	"fmt"
	"io"
	"net"
)

// BER encoding/decoding functions for SNMP packets.

// maxPacketSize bounds any decoded length; SNMP travels in a single UDP datagram.
const maxPacketSize = 65535

// encodeLength encodes a BER length.
func encodeLength(length int) []byte {
	if length < 128 {
		return []byte{byte(length)}
	}

	// Long form
	buf := make([]byte, 0, 5)
	temp := length
	for temp > 0 {
		buf = append([]byte{byte(temp & 0xff)}, buf...)
		temp >>= 8
	}
	return append([]byte{byte(0x80 | len(buf))}, buf...)
}

// decodeLength decodes a BER length from a reader.
func decodeLength(r io.Reader) (int, error) {
	b := make([]byte, 1)
	if _, err := io.ReadFull(r, b); err != nil {
		return 0, err
	}

	if b[0] < 128 {
		return int(b[0]), nil
	}

	numBytes := int(b[0] & 0x7f)
	if numBytes == 0 || numBytes > 4 {
		return 0, NewParseError("unsupported length form", -1)
	}

	lenBytes := make([]byte, numBytes)
	if _, err := io.ReadFull(r, lenBytes); err != nil {
		return 0, err
	}

	length := 0
	for _, lb := range lenBytes {
		length = (length << 8) | int(lb)
	}
	if length > maxPacketSize {
		return 0, NewParseError(fmt.Sprintf("length %d exceeds datagram size", length), -1)
	}

	return length, nil
}

// encodeInteger encodes a signed integer in minimal two's complement form.
func encodeInteger(value int64) []byte {
	var buf []byte
	for {
		buf = append([]byte{byte(value & 0xff)}, buf...)
		value >>= 8
		// Stop once the remaining bits are pure sign extension of the top byte.
		if (value == 0 && buf[0]&0x80 == 0) || (value == -1 && buf[0]&0x80 != 0) {
			return buf
		}
	}
}

// decodeInteger decodes a BER integer.
func decodeInteger(data []byte) (int64, error) {
	if len(data) == 0 || len(data) > 8 {
		return 0, NewParseError(fmt.Sprintf("invalid integer length %d", len(data)), -1)
	}

	var value int64
	if data[0]&0x80 != 0 {
		value = -1
	}
	for _, b := range data {
		value = (value << 8) | int64(b)
	}
	return value, nil
}

// decodeUnsignedInteger decodes a BER unsigned integer.
func decodeUnsignedInteger(data []byte) uint64 {
	var value uint64
	for _, b := range data {
		value = (value << 8) | uint64(b)
	}
	return value
}

// encodeOID encodes an OID using BER. The first two arcs share one subidentifier.
func encodeOID(oid OID) ([]byte, error) {
	if len(oid) < 2 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOID, oid.String())
	}

	buf := encodeOIDComponent(oid[0]*40 + oid[1])
	for _, arc := range oid[2:] {
		buf = append(buf, encodeOIDComponent(arc)...)
	}
	return buf, nil
}

// encodeOIDComponent encodes a single subidentifier in base-128.
func encodeOIDComponent(value int) []byte {
	buf := []byte{byte(value & 0x7f)}
	value >>= 7
	for value > 0 {
		buf = append([]byte{byte(value&0x7f) | 0x80}, buf...)
		value >>= 7
	}
	return buf
}

// maxSubidentifierBytes is enough for a 32-bit arc, plus the 80 added to the
// first subidentifier under arc 2.
const maxSubidentifierBytes = 5

// decodeOID decodes a BER OID.
func decodeOID(data []byte) (OID, error) {
	if len(data) == 0 {
		return nil, NewParseError("empty OID", -1)
	}

	var arcs []int
	current, width := 0, 0
	for i, b := range data {
		current = (current << 7) | int(b&0x7f)
		width++
		if b&0x80 == 0 {
			arcs = append(arcs, current)
			current, width = 0, 0
		} else if i == len(data)-1 {
			return nil, NewParseError("truncated OID subidentifier", i)
		} else if width == maxSubidentifierBytes {
			return nil, NewParseError("OID subidentifier too long", i)
		}
	}

	first := arcs[0]
	var oid OID
	switch {
	case first < 40:
		oid = OID{0, first}
	case first < 80:
		oid = OID{1, first - 40}
	default:
		oid = OID{2, first - 80}
	}
	return append(oid, arcs[1:]...), nil
}

// encodeTLV encodes a Type-Length-Value structure.
func encodeTLV(berType BERType, value []byte) []byte {
	length := encodeLength(len(value))
	result := make([]byte, 1+len(length)+len(value))
	result[0] = byte(berType)
	copy(result[1:], length)
	copy(result[1+len(length):], value)
	return result
}

// decodeTLV decodes a Type-Length-Value structure.
func decodeTLV(r io.Reader) (BERType, []byte, error) {
	typeByte := make([]byte, 1)
	if _, err := io.ReadFull(r, typeByte); err != nil {
		return 0, nil, err
	}
	berType := BERType(typeByte[0])

	length, err := decodeLength(r)
	if err != nil {
		return 0, nil, err
	}

	value := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, value); err != nil {
			return 0, nil, err
		}
	}

	return berType, value, nil
}

// expectTLV decodes a TLV and checks its tag.
func expectTLV(r io.Reader, want BERType) ([]byte, error) {
	got, data, err := decodeTLV(r)
	if err != nil {
		return nil, err
	}
	if got != want {
		return nil, NewParseError(fmt.Sprintf("expected %s, got %s", want, got), -1)
	}
	return data, nil
}

// encodeVariable encodes a Variable to a varbind SEQUENCE.
func encodeVariable(v *Variable) ([]byte, error) {
	var buf bytes.Buffer

	oidBytes, err := encodeOID(v.OID)
	if err != nil {
		return nil, err
	}
	buf.Write(encodeTLV(TypeObjectIdentifier, oidBytes))

	switch v.Type {
	case TypeNull:
		buf.Write(encodeTLV(TypeNull, nil))

	case TypeInteger:
		val, ok := v.AsInt()
		if !ok {
			return nil, fmt.Errorf("invalid integer value: %v", v.Value)
		}
		buf.Write(encodeTLV(TypeInteger, encodeInteger(val)))

	case TypeOctetString:
		var data []byte
		switch val := v.Value.(type) {
		case []byte:
			data = val
		case string:
			data = []byte(val)
		default:
			return nil, fmt.Errorf("invalid octet string value: %v", v.Value)
		}
		buf.Write(encodeTLV(TypeOctetString, data))

	default:
		return nil, fmt.Errorf("unsupported type: %s", v.Type)
	}

	return encodeTLV(TypeSequence, buf.Bytes()), nil
}

// decodeValue converts a raw varbind value into its Go representation.
func decodeValue(valType BERType, valData []byte) (interface{}, error) {
	switch valType {
	case TypeNull, TypeNoSuchObject, TypeNoSuchInstance, TypeEndOfMibView:
		return nil, nil

	case TypeInteger:
		n, err := decodeInteger(valData)
		if err != nil {
			return nil, err
		}
		return int(n), nil

	case TypeObjectIdentifier:
		return decodeOID(valData)

	case TypeIPAddress:
		if len(valData) == 4 {
			return net.IP(valData), nil
		}
		return valData, nil

	case TypeCounter32, TypeGauge32, TypeTimeTicks, TypeUInteger32:
		return uint32(decodeUnsignedInteger(valData)), nil

	case TypeCounter64:
		return decodeUnsignedInteger(valData), nil

	default:
		return valData, nil
	}
}

// decodeVariables decodes a varbind list.
func decodeVariables(data []byte) ([]Variable, error) {
	seqData, err := expectTLV(bytes.NewReader(data), TypeSequence)
	if err != nil {
		return nil, err
	}

	var variables []Variable
	seqReader := bytes.NewReader(seqData)

	for seqReader.Len() > 0 {
		vbData, err := expectTLV(seqReader, TypeSequence)
		if err != nil {
			return nil, err
		}
		vbReader := bytes.NewReader(vbData)

		oidData, err := expectTLV(vbReader, TypeObjectIdentifier)
		if err != nil {
			return nil, err
		}
		oid, err := decodeOID(oidData)
		if err != nil {
			return nil, err
		}

		valType, valData, err := decodeTLV(vbReader)
		if err != nil {
			return nil, err
		}
		value, err := decodeValue(valType, valData)
		if err != nil {
			return nil, err
		}

		variables = append(variables, Variable{OID: oid, Type: valType, Value: value})
	}

	return variables, nil
}

// encodeVariableBindings encodes a list of variables to a varbind list.
func encodeVariableBindings(variables []Variable) ([]byte, error) {
	var buf bytes.Buffer

	for i := range variables {
		vbBytes, err := encodeVariable(&variables[i])
		if err != nil {
			return nil, err
		}
		buf.Write(vbBytes)
	}

	return encodeTLV(TypeSequence, buf.Bytes()), nil
}
