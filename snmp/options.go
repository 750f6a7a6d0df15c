package snmp

import (
	"log/slog"
	"time"
)

// ClientOptions contains configuration options for the SNMP client.
type ClientOptions struct {
	// Target is the SNMP agent host or IP address.
	Target string
	// Port is the SNMP agent port (default 161).
	Port int
	// Version is the SNMP version to use.
	Version SNMPVersion
	// Community is the community string.
	Community string
	// Timeout bounds a single request/response exchange.
	Timeout time.Duration
	// Retries is the number of resends after a timeout. Zero sends once.
	Retries int

	// Metrics receives counters for this client. Several clients may share one.
	Metrics *Metrics

	// Logger
	Logger *slog.Logger
}

// NewClientOptions creates ClientOptions with default values.
func NewClientOptions() *ClientOptions {
	return &ClientOptions{
		Port:      DefaultPort,
		Version:   Version2c,
		Community: DefaultCommunity,
		Timeout:   DefaultTimeout,
		Retries:   DefaultRetries,
	}
}

// Option is a functional option for configuring the client.
type Option func(*ClientOptions)

// WithTarget sets the target address.
func WithTarget(target string) Option {
	return func(o *ClientOptions) {
		o.Target = target
	}
}

// WithPort sets the target port.
func WithPort(port int) Option {
	return func(o *ClientOptions) {
		o.Port = port
	}
}

// WithVersion sets the SNMP version.
func WithVersion(version SNMPVersion) Option {
	return func(o *ClientOptions) {
		o.Version = version
	}
}

// WithCommunity sets the community string.
func WithCommunity(community string) Option {
	return func(o *ClientOptions) {
		o.Community = community
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *ClientOptions) {
		o.Timeout = d
	}
}

// WithRetries sets the number of retries.
func WithRetries(n int) Option {
	return func(o *ClientOptions) {
		o.Retries = n
	}
}

// WithMetrics makes the client record into m instead of a private instance.
func WithMetrics(m *Metrics) Option {
	return func(o *ClientOptions) {
		o.Metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *ClientOptions) {
		o.Logger = logger
	}
}
