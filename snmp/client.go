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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Client is an SNMP client bound to a single agent over UDP.
type Client struct {
	opts    *ClientOptions
	conn    net.Conn
	state   atomic.Int32
	wg      sync.WaitGroup
	done    chan struct{}
	metrics *Metrics
	logger  *slog.Logger

	// Request ID management
	requestID     int32
	requestIDLock sync.Mutex

	// Pending requests
	pending     map[int32]chan response
	pendingLock sync.Mutex
}

type response struct {
	pdu *PDU
	err error
}

// NewClient creates a new SNMP client.
func NewClient(opts ...Option) *Client {
	options := NewClientOptions()
	for _, opt := range opts {
		opt(options)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := options.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	return &Client{
		opts:      options,
		done:      make(chan struct{}),
		metrics:   metrics,
		logger:    logger,
		pending:   make(map[int32]chan response),
		requestID: rand.Int31(),
	}
}

// Connect sets up the UDP socket to the agent. No packet is exchanged.
func (c *Client) Connect(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateDisconnected), int32(StateConnecting)) {
		return ErrAlreadyConnected
	}

	if c.opts.Target == "" {
		c.state.Store(int32(StateDisconnected))
		return ErrNoTarget
	}

	c.metrics.ConnectionAttempts.Add(1)

	addr := net.JoinHostPort(c.opts.Target, strconv.Itoa(c.opts.Port))

	dialer := net.Dialer{Timeout: c.opts.Timeout}
	conn, err := dialer.DialContext(ctx, "udp", addr)
	if err != nil {
		c.state.Store(int32(StateDisconnected))
		return fmt.Errorf("snmp: connection failed: %w", err)
	}

	c.conn = conn
	c.done = make(chan struct{})
	c.state.Store(int32(StateConnected))
	c.metrics.ActiveConnections.Add(1)

	c.wg.Add(1)
	go c.readLoop(conn, c.done)

	c.logger.Debug("connected to SNMP agent",
		"target", addr,
		"version", c.opts.Version)

	return nil
}

// Disconnect closes the socket and fails any request still waiting.
func (c *Client) Disconnect(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateConnected), int32(StateDisconnecting)) {
		return ErrNotConnected
	}

	close(c.done)
	// Closing the socket unblocks the pending Read in readLoop.
	err := c.conn.Close()
	c.wg.Wait()

	c.failPending(ErrClientClosed)
	c.metrics.ActiveConnections.Add(-1)
	c.state.Store(int32(StateDisconnected))

	c.logger.Debug("disconnected from SNMP agent")
	return err
}

func (c *Client) readLoop(conn net.Conn, done chan struct{}) {
	defer c.wg.Done()

	buf := make([]byte, maxPacketSize)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			select {
			case <-done:
				return
			default:
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			c.handleConnectionLost(err)
			return
		}

		msg, err := DecodeMessage(buf[:n])
		if err != nil {
			c.logger.Warn("failed to decode response", "error", err)
			c.metrics.Errors.Add(1)
			continue
		}
		if msg.PDU.Type != PDUGetResponse {
			c.logger.Warn("ignoring unexpected PDU", "type", msg.PDU.Type)
			continue
		}

		c.metrics.ResponsesReceived.Add(1)

		c.pendingLock.Lock()
		ch, ok := c.pending[msg.PDU.RequestID]
		c.pendingLock.Unlock()

		if ok {
			select {
			case ch <- response{pdu: msg.PDU}:
			default:
			}
		}
	}
}

// handleConnectionLost runs on the read goroutine when the socket fails,
// e.g. after an ICMP port unreachable on a connected UDP socket.
func (c *Client) handleConnectionLost(err error) {
	if !c.state.CompareAndSwap(int32(StateConnected), int32(StateDisconnected)) {
		return
	}

	c.metrics.ActiveConnections.Add(-1)
	close(c.done)
	c.conn.Close()

	c.logger.Debug("connection lost", "error", err)
	c.failPending(fmt.Errorf("snmp: connection lost: %w", err))
}

func (c *Client) failPending(err error) {
	c.pendingLock.Lock()
	defer c.pendingLock.Unlock()

	for id, ch := range c.pending {
		select {
		case ch <- response{err: err}:
		default:
		}
		delete(c.pending, id)
	}
}

func (c *Client) nextRequestID() int32 {
	c.requestIDLock.Lock()
	defer c.requestIDLock.Unlock()

	c.requestID++
	if c.requestID <= 0 {
		c.requestID = 1
	}
	return c.requestID
}

func (c *Client) sendRequest(ctx context.Context, pdu *PDU) (*PDU, error) {
	if c.State() != StateConnected {
		return nil, ErrNotConnected
	}

	respCh := make(chan response, 1)
	c.pendingLock.Lock()
	c.pending[pdu.RequestID] = respCh
	c.pendingLock.Unlock()

	defer func() {
		c.pendingLock.Lock()
		delete(c.pending, pdu.RequestID)
		c.pendingLock.Unlock()
	}()

	msg := &Message{
		Version:   c.opts.Version,
		Community: c.opts.Community,
		PDU:       pdu,
	}

	data, err := msg.Encode()
	if err != nil {
		return nil, fmt.Errorf("snmp: failed to encode message: %w", err)
	}

	var lastErr error
	for retry := 0; retry <= c.opts.Retries; retry++ {
		if retry > 0 {
			c.metrics.Retries.Add(1)
			c.logger.Debug("retrying request", "retry", retry, "request_id", pdu.RequestID)
		}

		start := time.Now()

		c.conn.SetWriteDeadline(start.Add(c.opts.Timeout))
		if _, err := c.conn.Write(data); err != nil {
			lastErr = fmt.Errorf("snmp: write failed: %w", err)
			continue
		}

		c.metrics.RequestsSent.Add(1)
		c.metrics.VarbindsSent.Add(int64(len(pdu.Variables)))

		timer := time.NewTimer(c.opts.Timeout)
		select {
		case resp := <-respCh:
			timer.Stop()
			if resp.err != nil {
				return nil, resp.err
			}
			c.metrics.RequestLatency.ObserveDuration(time.Since(start))

			if resp.pdu.ErrorStatus != NoError {
				c.metrics.AgentErrors.Add(1)
				var oid OID
				if resp.pdu.ErrorIndex > 0 && resp.pdu.ErrorIndex <= len(pdu.Variables) {
					oid = pdu.Variables[resp.pdu.ErrorIndex-1].OID
				}
				return resp.pdu, NewSNMPError(resp.pdu.ErrorStatus, resp.pdu.ErrorIndex, oid)
			}
			return resp.pdu, nil

		case <-timer.C:
			lastErr = ErrTimeout
			c.metrics.Timeouts.Add(1)

		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// Set performs an SNMP SET request and returns the varbinds the agent echoed.
func (c *Client) Set(ctx context.Context, variables ...Variable) ([]Variable, error) {
	c.metrics.SetRequests.Add(1)

	pdu := NewSetRequest(c.nextRequestID(), variables...)
	resp, err := c.sendRequest(ctx, pdu)
	if err != nil {
		c.metrics.Errors.Add(1)
		return nil, err
	}

	return resp.Variables, nil
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// IsConnected returns true if connected.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Metrics returns the client metrics.
func (c *Client) Metrics() *Metrics {
	return c.metrics
}
