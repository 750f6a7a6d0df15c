// Package sender issues the SNMP v2c SET for a resolved action.
package sender

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/maks-it/smnp/internal/action"
	"github.com/maks-it/smnp/snmp"
)

// DefaultTimeout is the fixed request timeout for a SET.
const DefaultTimeout = 6000 * time.Millisecond

// Target is the resolved endpoint of one action.
type Target struct {
	Address net.IP
	Port    int
}

// String returns address:port.
func (t Target) String() string {
	return net.JoinHostPort(t.Address.String(), strconv.Itoa(t.Port))
}

// Sender delivers one action to its resolved target.
type Sender interface {
	Send(ctx context.Context, req action.Request, target Target) error
}

// SendError wraps any failure from the protocol layer.
type SendError struct {
	Host string
	Err  error
}

// Error implements the error interface.
func (e *SendError) Error() string {
	return fmt.Sprintf("error sending SNMP request to %s: %v", e.Host, e.Err)
}

// Unwrap returns the underlying cause.
func (e *SendError) Unwrap() error {
	return e.Err
}

var _ Sender = (*SNMP)(nil)

// SNMP sends each action as a single v2c SET with an INTEGER varbind.
type SNMP struct {
	timeout time.Duration
	metrics *snmp.Metrics
	logger  *slog.Logger
}

// Option configures an SNMP sender.
type Option func(*SNMP)

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *SNMP) {
		s.timeout = d
	}
}

// WithMetrics aggregates every client's counters into m.
func WithMetrics(m *snmp.Metrics) Option {
	return func(s *SNMP) {
		s.metrics = m
	}
}

// WithLogger sets the logger handed to each client.
func WithLogger(logger *slog.Logger) Option {
	return func(s *SNMP) {
		s.logger = logger
	}
}

// NewSNMP creates an SNMP sender.
func NewSNMP(opts ...Option) *SNMP {
	s := &SNMP{
		timeout: DefaultTimeout,
		metrics: snmp.NewMetrics(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metrics returns the counters shared by all clients this sender created.
func (s *SNMP) Metrics() *snmp.Metrics {
	return s.metrics
}

// Send implements Sender. It never retries.
func (s *SNMP) Send(ctx context.Context, req action.Request, target Target) error {
	oid, err := snmp.ParseOID(req.OID)
	if err != nil {
		return &SendError{Host: req.Host, Err: err}
	}

	client := snmp.NewClient(
		snmp.WithTarget(target.Address.String()),
		snmp.WithPort(target.Port),
		snmp.WithVersion(snmp.Version2c),
		snmp.WithCommunity(req.Community),
		snmp.WithTimeout(s.timeout),
		snmp.WithRetries(0),
		snmp.WithMetrics(s.metrics),
		snmp.WithLogger(s.logger),
	)

	if err := client.Connect(ctx); err != nil {
		return &SendError{Host: req.Host, Err: err}
	}
	defer client.Disconnect(context.Background())

	if _, err := client.Set(ctx, snmp.NewInteger(oid, req.Value)); err != nil {
		return &SendError{Host: req.Host, Err: err}
	}
	return nil
}
