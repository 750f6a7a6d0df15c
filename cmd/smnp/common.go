package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/maks-it/smnp/internal/action"
	"github.com/maks-it/smnp/internal/config"
	"github.com/maks-it/smnp/internal/dispatch"
	"github.com/maks-it/smnp/internal/logging"
	"github.com/maks-it/smnp/internal/resolve"
	"github.com/maks-it/smnp/internal/sender"
	"github.com/maks-it/smnp/snmp"
)

// exitError carries a process exit code out of a command. A nil err means
// the reports were already printed.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// environment is everything one run needs, wired from the configuration.
type environment struct {
	cfg      *config.Config
	fs       afero.Fs
	out      io.Writer
	runID    string
	logger   *slog.Logger
	resolver dispatch.Resolver
	sender   sender.Sender
	// metrics is nil when the sender does not expose SNMP counters.
	metrics *snmp.Metrics
}

// newEnvironment builds the production resolver, sender and logger.
func newEnvironment(cfg *config.Config, fs afero.Fs, out io.Writer) *environment {
	runID := logging.NewRunID()
	logger := logging.WithRun(logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat), runID)

	snd := sender.NewSNMP(
		sender.WithTimeout(cfg.Timeout),
		sender.WithLogger(logger),
	)

	return &environment{
		cfg:      cfg,
		fs:       fs,
		out:      out,
		runID:    runID,
		logger:   logger,
		resolver: resolve.New(resolve.WithTimeout(cfg.ResolveTimeout)),
		sender:   snd,
		metrics:  snd.Metrics(),
	}
}

// actionsPath returns the configured action file, or actions.txt next to
// the executable.
func actionsPath(cfg *config.Config) (string, error) {
	if cfg.ActionsPath != "" {
		return cfg.ActionsPath, nil
	}
	return action.DefaultPath()
}

// readActions resolves the action file path and reads its lines.
func readActions(env *environment) (string, []string, error) {
	path, err := actionsPath(env.cfg)
	if err != nil {
		return "", nil, err
	}
	lines, err := action.ReadLines(env.fs, path)
	if err != nil {
		return path, nil, err
	}
	env.logger.Debug("action file read", "path", path, "lines", len(lines))
	return path, lines, nil
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
