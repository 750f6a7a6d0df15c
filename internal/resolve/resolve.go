// Package resolve maps action hostnames to IPv4 addresses.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// DefaultTimeout bounds a single lookup.
const DefaultTimeout = 5 * time.Second

// ErrNoIPv4Address is returned when a host resolves only to non-IPv4 addresses.
var ErrNoIPv4Address = errors.New("no IPv4 address found")

// LookupFunc returns every address known for host.
type LookupFunc func(ctx context.Context, host string) ([]net.IPAddr, error)

// ResolutionError reports a host that could not be turned into an IPv4 address.
type ResolutionError struct {
	Host string
	Err  error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("could not resolve host %s: %v", e.Host, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Resolver resolves hostnames through a LookupFunc. Results are not cached.
type Resolver struct {
	lookup  LookupFunc
	timeout time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLookup replaces the system resolver.
func WithLookup(fn LookupFunc) Option {
	return func(r *Resolver) {
		r.lookup = fn
	}
}

// WithTimeout bounds each lookup. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// New returns a Resolver backed by net.DefaultResolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		lookup:  net.DefaultResolver.LookupIPAddr,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the first IPv4 address among the addresses found for host.
// IPv4 literals resolve to themselves. IPv6 literals, IPv4-mapped ones
// included, have no IPv4 address.
func (r *Resolver) Resolve(ctx context.Context, host string) (net.IP, error) {
	if strings.Contains(host, ":") && net.ParseIP(host) != nil {
		return nil, &ResolutionError{Host: host, Err: ErrNoIPv4Address}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	addrs, err := r.lookup(ctx, host)
	if err != nil {
		return nil, &ResolutionError{Host: host, Err: err}
	}

	if ip := FirstIPv4(addrs); ip != nil {
		return ip, nil
	}
	return nil, &ResolutionError{Host: host, Err: ErrNoIPv4Address}
}

// FirstIPv4 returns the first address of the IPv4 family in its 4-byte form,
// or nil. The resolver returns A records in 16-byte mapped form, so To4 is
// the family test here.
func FirstIPv4(addrs []net.IPAddr) net.IP {
	for _, addr := range addrs {
		if ip4 := addr.IP.To4(); ip4 != nil {
			return ip4
		}
	}
	return nil
}
