// Package dispatch runs action lines through parse, resolve and send, one
// line at a time, and folds the per-line outcomes into a run status.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/maks-it/smnp/internal/action"
	"github.com/maks-it/smnp/internal/sender"
	"github.com/maks-it/smnp/snmp"
)

// Resolver turns a hostname into an IPv4 address.
type Resolver interface {
	Resolve(ctx context.Context, host string) (net.IP, error)
}

// Observer is called with every outcome as soon as its line is done.
type Observer func(Outcome)

// Dispatcher drives action lines through a Resolver and a Sender.
type Dispatcher struct {
	resolver Resolver
	sender   sender.Sender
	policy   Policy
	strict   bool
	port     int
	logger   *slog.Logger
	observer Observer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPolicy sets how failures combine into the run status.
func WithPolicy(p Policy) Option {
	return func(d *Dispatcher) {
		d.policy = p
	}
}

// WithStrict rejects lines with fields after the value.
func WithStrict(strict bool) Option {
	return func(d *Dispatcher) {
		d.strict = strict
	}
}

// WithPort sets the agent port used for every target.
func WithPort(port int) Option {
	return func(d *Dispatcher) {
		d.port = port
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithObserver registers a callback for per-line outcomes.
func WithObserver(fn Observer) Option {
	return func(d *Dispatcher) {
		d.observer = fn
	}
}

// New creates a Dispatcher.
func New(resolver Resolver, s sender.Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		resolver: resolver,
		sender:   s,
		policy:   PolicyLastFailure,
		port:     snmp.DefaultPort,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run dispatches lines in order. Blank lines are skipped and produce no
// outcome; every other line produces exactly one, whatever happened to the
// lines before it.
func (d *Dispatcher) Run(ctx context.Context, lines []string) RunResult {
	var result RunResult

	if len(lines) == 0 {
		d.logger.Info("actions file is empty")
		result.Empty = true
		return result
	}

	for i, line := range lines {
		if action.IsBlank(line) {
			continue
		}

		o := d.dispatch(ctx, i+1, line)
		result.Outcomes = append(result.Outcomes, o)
		result.Status = d.policy.Combine(result.Status, o.Kind)

		if d.observer != nil {
			d.observer(o)
		}
	}

	d.logger.Debug("dispatch finished",
		"actions", len(result.Outcomes),
		"failed", result.Failed(),
		"status", result.Status,
		"policy", d.policy)

	return result
}

// dispatch walks one line through Start -> Parsed -> Resolved -> Sent -> Done.
func (d *Dispatcher) dispatch(ctx context.Context, n int, line string) Outcome {
	start := time.Now()
	o := Outcome{Line: n, Text: line, Reached: StageStart}
	done := func(kind Kind, err error) Outcome {
		o.Kind = kind
		o.Err = err
		o.Duration = time.Since(start)
		return o
	}

	req, err := action.ParseLine(n, line, d.strict)
	if err != nil {
		d.logger.Debug("action rejected", "line", n, "error", err)
		return done(ParseFailure, err)
	}
	o.Request = req
	o.Reached = StageParsed

	ip, err := d.resolver.Resolve(ctx, req.Host)
	if err != nil {
		d.logger.Debug("host not resolved", "line", n, "host", req.Host, "error", err)
		return done(ResolutionFailure, err)
	}
	o.Target = sender.Target{Address: ip, Port: d.port}
	o.Reached = StageResolved

	d.logger.Debug("sending SET",
		"line", n,
		"host", req.Host,
		"target", o.Target,
		"oid", req.OID,
		"value", req.Value)

	// The attempt counts as sent whether or not the agent acknowledged it.
	err = d.send(ctx, req, o.Target)
	o.Reached = StageSent
	if err != nil {
		return done(SendFailure, err)
	}
	return done(Success, nil)
}

// send calls the Sender and turns a panic into a send failure for this line.
func (d *Dispatcher) send(ctx context.Context, req action.Request, target sender.Target) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &sender.SendError{Host: req.Host, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return d.sender.Send(ctx, req, target)
}
