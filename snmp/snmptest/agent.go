// Package snmptest provides an in-process SNMP agent for tests.
package snmptest

import (
	"net"
	"strconv"
	"sync"

	"github.com/maks-it/smnp/snmp"
)

// Handler decides how the agent answers msg. Returning nil drops the
// request, which the client observes as a timeout.
type Handler func(msg *snmp.Message) *snmp.PDU

// Accept answers every request with noError.
func Accept(msg *snmp.Message) *snmp.PDU {
	return snmp.NewGetResponse(msg.PDU, snmp.NoError, 0)
}

// Drop never answers.
func Drop(*snmp.Message) *snmp.PDU {
	return nil
}

// RequireCommunity answers noError when the community matches and drops the
// request otherwise, the way v2c agents treat bad credentials.
func RequireCommunity(community string) Handler {
	return func(msg *snmp.Message) *snmp.PDU {
		if msg.Community != community {
			return nil
		}
		return Accept(msg)
	}
}

// Fail answers every request with the given error-status on the first varbind.
func Fail(status snmp.ErrorStatus) Handler {
	return func(msg *snmp.Message) *snmp.PDU {
		return snmp.NewGetResponse(msg.PDU, status, 1)
	}
}

// Agent is a UDP SNMP agent listening on the loopback interface.
type Agent struct {
	conn    *net.UDPConn
	handler Handler
	wg      sync.WaitGroup

	mu       sync.Mutex
	received []*snmp.Message
}

// NewAgent starts an agent on 127.0.0.1 with an ephemeral port.
func NewAgent(handler Handler) (*Agent, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		return nil, err
	}

	a := &Agent{conn: conn, handler: handler}
	a.wg.Add(1)
	go a.serve()
	return a, nil
}

func (a *Agent) serve() {
	defer a.wg.Done()

	buf := make([]byte, 65535)
	for {
		n, from, err := a.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}

		msg, err := snmp.DecodeMessage(buf[:n])
		if err != nil {
			continue
		}

		a.mu.Lock()
		a.received = append(a.received, msg)
		a.mu.Unlock()

		resp := a.handler(msg)
		if resp == nil {
			continue
		}
		out := &snmp.Message{Version: msg.Version, Community: msg.Community, PDU: resp}
		data, err := out.Encode()
		if err != nil {
			continue
		}
		a.conn.WriteToUDP(data, from)
	}
}

// Host returns the agent IP address.
func (a *Agent) Host() string {
	return a.conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// Port returns the agent UDP port.
func (a *Agent) Port() int {
	return a.conn.LocalAddr().(*net.UDPAddr).Port
}

// Addr returns host:port.
func (a *Agent) Addr() string {
	return net.JoinHostPort(a.Host(), strconv.Itoa(a.Port()))
}

// Received returns the messages decoded so far.
func (a *Agent) Received() []*snmp.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*snmp.Message, len(a.received))
	copy(out, a.received)
	return out
}

// Close stops the agent.
func (a *Agent) Close() error {
	err := a.conn.Close()
	a.wg.Wait()
	return err
}
