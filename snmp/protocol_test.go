package snmp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeInteger(t *testing.T) {
	cases := []struct {
		in   int64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x00, 0x80}},
		{256, []byte{0x01, 0x00}},
		{-1, []byte{0xff}},
		{-128, []byte{0x80}},
		{-129, []byte{0xff, 0x7f}},
		{2147483647, []byte{0x7f, 0xff, 0xff, 0xff}},
		{-2147483648, []byte{0x80, 0x00, 0x00, 0x00}},
	}

	for _, tc := range cases {
		got := encodeInteger(tc.in)
		assert.Equal(t, tc.want, got, "encodeInteger(%d)", tc.in)

		back, err := decodeInteger(got)
		require.NoError(t, err)
		assert.Equal(t, tc.in, back)
	}
}

func TestDecodeIntegerRejectsBadLength(t *testing.T) {
	_, err := decodeInteger(nil)
	assert.Error(t, err)

	_, err = decodeInteger(make([]byte, 9))
	assert.Error(t, err)
}

func TestEncodeOID(t *testing.T) {
	got, err := encodeOID(MustParseOID("1.3.6.1.2.1.1.5.0"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2b, 0x06, 0x01, 0x02, 0x01, 0x01, 0x05, 0x00}, got)

	// Multi-byte subidentifier: 311 = 0x82 0x37
	got, err = encodeOID(MustParseOID("1.3.6.1.4.1.311"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2b, 0x06, 0x01, 0x04, 0x01, 0x82, 0x37}, got)

	oid, err := decodeOID(got)
	require.NoError(t, err)
	assert.Equal(t, "1.3.6.1.4.1.311", oid.String())

	// Largest arc: 2^32-1 takes five bytes.
	got, err = encodeOID(MustParseOID("1.3.6.1.4.1.4294967295.0"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2b, 0x06, 0x01, 0x04, 0x01, 0x8f, 0xff, 0xff, 0xff, 0x7f, 0x00}, got)

	oid, err = decodeOID(got)
	require.NoError(t, err)
	assert.Equal(t, "1.3.6.1.4.1.4294967295.0", oid.String())
}

func TestDecodeOIDSubidentifierTooLong(t *testing.T) {
	_, err := decodeOID([]byte{0x2b, 0x81, 0x80, 0x80, 0x80, 0x80, 0x00})
	assert.Error(t, err)
}

func TestDecodeOIDJointArcAboveTwo(t *testing.T) {
	oid := OID{2, 999, 3}
	data, err := encodeOID(oid)
	require.NoError(t, err)

	back, err := decodeOID(data)
	require.NoError(t, err)
	assert.True(t, back.Equal(oid), "got %s", back)
}

func TestDecodeOIDTruncated(t *testing.T) {
	_, err := decodeOID([]byte{0x2b, 0x82})
	assert.Error(t, err)
}

func TestEncodeLengthLongForm(t *testing.T) {
	assert.Equal(t, []byte{0x7f}, encodeLength(127))
	assert.Equal(t, []byte{0x81, 0x80}, encodeLength(128))
	assert.Equal(t, []byte{0x82, 0x01, 0x00}, encodeLength(256))

	n, err := decodeLength(bytes.NewReader([]byte{0x82, 0x01, 0x00}))
	require.NoError(t, err)
	assert.Equal(t, 256, n)
}

func TestDecodeLengthTooLarge(t *testing.T) {
	_, err := decodeLength(bytes.NewReader([]byte{0x83, 0xff, 0xff, 0xff}))
	assert.Error(t, err)
}

func TestSetMessageWireFormat(t *testing.T) {
	msg := &Message{
		Version:   Version2c,
		Community: "public",
		PDU:       NewSetRequest(1, NewInteger(MustParseOID("1.3.6.1.2.1.1.5.0"), 1)),
	}

	data, err := msg.Encode()
	require.NoError(t, err)

	want := []byte{
		0x30, 0x27, // message SEQUENCE
		0x02, 0x01, 0x01, // version 2c
		0x04, 0x06, 'p', 'u', 'b', 'l', 'i', 'c', // community
		0xa3, 0x1a, // SetRequest-PDU
		0x02, 0x01, 0x01, // request-id
		0x02, 0x01, 0x00, // error-status
		0x02, 0x01, 0x00, // error-index
		0x30, 0x0f, // varbind list
		0x30, 0x0d, // varbind
		0x06, 0x08, 0x2b, 0x06, 0x01, 0x02, 0x01, 0x01, 0x05, 0x00,
		0x02, 0x01, 0x01,
	}
	assert.Equal(t, want, data)
}

func TestDecodeMessageResponse(t *testing.T) {
	req := NewSetRequest(42, NewInteger(MustParseOID("1.3.6.1.4.1.9.2.1.55.0"), -5))
	resp := &Message{
		Version:   Version2c,
		Community: "private",
		PDU:       NewGetResponse(req, NotWritable, 1),
	}
	data, err := resp.Encode()
	require.NoError(t, err)

	msg, err := DecodeMessage(data)
	require.NoError(t, err)
	assert.Equal(t, Version2c, msg.Version)
	assert.Equal(t, "private", msg.Community)
	assert.Equal(t, PDUGetResponse, msg.PDU.Type)
	assert.Equal(t, int32(42), msg.PDU.RequestID)
	assert.Equal(t, NotWritable, msg.PDU.ErrorStatus)
	assert.Equal(t, 1, msg.PDU.ErrorIndex)
	require.Len(t, msg.PDU.Variables, 1)
	assert.Equal(t, TypeInteger, msg.PDU.Variables[0].Type)
	assert.Equal(t, -5, msg.PDU.Variables[0].Value)
}

func TestDecodeMessageGarbage(t *testing.T) {
	_, err := DecodeMessage([]byte{0x04, 0x00})
	assert.Error(t, err)

	_, err = DecodeMessage([]byte{0x30, 0x05, 0x02, 0x01})
	assert.Error(t, err)
}

func TestMessageEncodeRejectsV3(t *testing.T) {
	msg := &Message{Version: SNMPVersion(3), PDU: NewSetRequest(1)}
	_, err := msg.Encode()
	assert.ErrorIs(t, err, ErrInvalidVersion)
}
