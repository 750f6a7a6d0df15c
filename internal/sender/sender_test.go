package sender

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maks-it/smnp/internal/action"
	"github.com/maks-it/smnp/snmp"
	"github.com/maks-it/smnp/snmp/snmptest"
)

func agentTarget(a *snmptest.Agent) Target {
	return Target{Address: net.ParseIP(a.Host()).To4(), Port: a.Port()}
}

func TestSNMPSendSuccess(t *testing.T) {
	agent, err := snmptest.NewAgent(snmptest.RequireCommunity("private"))
	require.NoError(t, err)
	defer agent.Close()

	s := NewSNMP(WithTimeout(time.Second))
	req := action.Request{Host: "switch01", Community: "private", OID: "1.3.6.1.2.1.1.5.0", Value: -3}

	require.NoError(t, s.Send(context.Background(), req, agentTarget(agent)))

	received := agent.Received()
	require.Len(t, received, 1)
	msg := received[0]
	assert.Equal(t, snmp.Version2c, msg.Version)
	assert.Equal(t, "private", msg.Community)
	assert.Equal(t, snmp.PDUSetRequest, msg.PDU.Type)
	require.Len(t, msg.PDU.Variables, 1)
	assert.Equal(t, "1.3.6.1.2.1.1.5.0", msg.PDU.Variables[0].OID.String())
	assert.Equal(t, snmp.TypeInteger, msg.PDU.Variables[0].Type)
	assert.Equal(t, -3, msg.PDU.Variables[0].Value)

	assert.Equal(t, int64(1), s.Metrics().SetRequests.Value())
}

func TestSNMPSendCommunityMismatchTimesOut(t *testing.T) {
	agent, err := snmptest.NewAgent(snmptest.RequireCommunity("private"))
	require.NoError(t, err)
	defer agent.Close()

	s := NewSNMP(WithTimeout(50 * time.Millisecond))
	req := action.Request{Host: "switch01", Community: "public", OID: "1.3.6.1.2.1.1.5.0", Value: 1}

	err = s.Send(context.Background(), req, agentTarget(agent))
	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, "switch01", sendErr.Host)
	assert.ErrorIs(t, err, snmp.ErrTimeout)
	assert.Len(t, agent.Received(), 1, "no retry")
}

func TestSNMPSendAgentError(t *testing.T) {
	agent, err := snmptest.NewAgent(snmptest.Fail(snmp.NotWritable))
	require.NoError(t, err)
	defer agent.Close()

	s := NewSNMP(WithTimeout(time.Second))
	req := action.Request{Host: "switch01", Community: "private", OID: "1.3.6.1.2.1.1.1.0", Value: 1}

	err = s.Send(context.Background(), req, agentTarget(agent))
	var snmpErr *snmp.SNMPError
	require.ErrorAs(t, err, &snmpErr)
	assert.Equal(t, snmp.NotWritable, snmpErr.Status)
	assert.Contains(t, err.Error(), "error sending SNMP request to switch01")
}

func TestSNMPSendMalformedOID(t *testing.T) {
	s := NewSNMP()
	req := action.Request{Host: "switch01", Community: "private", OID: "not.an.oid", Value: 1}

	err := s.Send(context.Background(), req, Target{Address: net.IPv4(127, 0, 0, 1).To4(), Port: 1})
	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.ErrorIs(t, err, snmp.ErrInvalidOID)
	assert.Equal(t, int64(0), s.Metrics().ConnectionAttempts.Value())
}

func TestTargetString(t *testing.T) {
	target := Target{Address: net.IPv4(192, 0, 2, 10), Port: 161}
	assert.Equal(t, "192.0.2.10:161", target.String())
}
