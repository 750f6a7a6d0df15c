package snmp

import (
	"bytes"
	"fmt"
	"io"
)

// PDU represents an SNMP Protocol Data Unit.
type PDU struct {
	Type        PDUType
	RequestID   int32
	ErrorStatus ErrorStatus
	ErrorIndex  int
	Variables   []Variable
}

// Encode encodes the PDU to bytes.
func (p *PDU) Encode() ([]byte, error) {
	var buf bytes.Buffer

	buf.Write(encodeTLV(TypeInteger, encodeInteger(int64(p.RequestID))))
	buf.Write(encodeTLV(TypeInteger, encodeInteger(int64(p.ErrorStatus))))
	buf.Write(encodeTLV(TypeInteger, encodeInteger(int64(p.ErrorIndex))))

	varbinds, err := encodeVariableBindings(p.Variables)
	if err != nil {
		return nil, err
	}
	buf.Write(varbinds)

	return encodeTLV(BERType(p.Type), buf.Bytes()), nil
}

func decodePDU(r io.Reader) (*PDU, error) {
	pduType, pduData, err := decodeTLV(r)
	if err != nil {
		return nil, err
	}

	pdu := &PDU{Type: PDUType(pduType)}
	pduReader := bytes.NewReader(pduData)

	// request-id, error-status, error-index
	var fields [3]int64
	for i := range fields {
		data, err := expectTLV(pduReader, TypeInteger)
		if err != nil {
			return nil, err
		}
		if fields[i], err = decodeInteger(data); err != nil {
			return nil, err
		}
	}
	pdu.RequestID = int32(fields[0])
	pdu.ErrorStatus = ErrorStatus(fields[1])
	pdu.ErrorIndex = int(fields[2])

	remaining := make([]byte, pduReader.Len())
	if _, err := io.ReadFull(pduReader, remaining); err != nil {
		return nil, err
	}
	pdu.Variables, err = decodeVariables(remaining)
	if err != nil {
		return nil, err
	}

	return pdu, nil
}

// Message represents a complete community-based (v1/v2c) SNMP message.
type Message struct {
	Version   SNMPVersion
	Community string
	PDU       *PDU
}

// Encode encodes the SNMP message to bytes.
func (m *Message) Encode() ([]byte, error) {
	if m.Version != Version1 && m.Version != Version2c {
		return nil, fmt.Errorf("%w: %s", ErrInvalidVersion, m.Version)
	}

	var buf bytes.Buffer
	buf.Write(encodeTLV(TypeInteger, encodeInteger(int64(m.Version))))
	buf.Write(encodeTLV(TypeOctetString, []byte(m.Community)))

	pduBytes, err := m.PDU.Encode()
	if err != nil {
		return nil, err
	}
	buf.Write(pduBytes)

	return encodeTLV(TypeSequence, buf.Bytes()), nil
}

// DecodeMessage decodes an SNMP message from bytes.
func DecodeMessage(data []byte) (*Message, error) {
	seqData, err := expectTLV(bytes.NewReader(data), TypeSequence)
	if err != nil {
		return nil, err
	}

	seqReader := bytes.NewReader(seqData)
	msg := &Message{}

	versionData, err := expectTLV(seqReader, TypeInteger)
	if err != nil {
		return nil, err
	}
	version, err := decodeInteger(versionData)
	if err != nil {
		return nil, err
	}
	msg.Version = SNMPVersion(version)

	communityData, err := expectTLV(seqReader, TypeOctetString)
	if err != nil {
		return nil, err
	}
	msg.Community = string(communityData)

	msg.PDU, err = decodePDU(seqReader)
	if err != nil {
		return nil, err
	}

	return msg, nil
}

// NewSetRequest creates a new SET request PDU.
func NewSetRequest(requestID int32, variables ...Variable) *PDU {
	return &PDU{
		Type:      PDUSetRequest,
		RequestID: requestID,
		Variables: variables,
	}
}

// NewGetResponse builds the response an agent sends back for req.
func NewGetResponse(req *PDU, status ErrorStatus, index int) *PDU {
	return &PDU{
		Type:        PDUGetResponse,
		RequestID:   req.RequestID,
		ErrorStatus: status,
		ErrorIndex:  index,
		Variables:   req.Variables,
	}
}
