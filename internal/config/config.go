// Package config holds the typed run configuration and loads it from viper.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/maks-it/smnp/internal/dispatch"
	"github.com/maks-it/smnp/internal/logging"
	"github.com/maks-it/smnp/internal/resolve"
	"github.com/maks-it/smnp/internal/sender"
	"github.com/maks-it/smnp/snmp"
)

// Configuration keys. Flags, env vars (SMNP_ prefix, dashes as
// underscores) and config file entries share these names.
const (
	KeyActions        = "actions"
	KeyTimeout        = "timeout"
	KeyResolveTimeout = "resolve-timeout"
	KeyPort           = "port"
	KeyPrecedence     = "precedence"
	KeyStrict         = "strict"
	KeyOutput         = "output"
	KeyLogLevel       = "log-level"
	KeyLogFormat      = "log-format"
	KeyVerbose        = "verbose"
	KeyNoColor        = "no-color"
)

// Output selects how per-action reports are printed.
type Output string

const (
	OutputText Output = "text"
	OutputJSON Output = "json"
)

// Config is the resolved configuration for one invocation.
type Config struct {
	// ActionsPath is the action file. Empty means actions.txt next to
	// the executable.
	ActionsPath    string
	Timeout        time.Duration
	ResolveTimeout time.Duration
	Port           int
	Policy         dispatch.Policy
	Strict         bool
	Output         Output
	LogLevel       slog.Level
	LogFormat      logging.Format
	Verbose        bool
	NoColor        bool
}

// Default returns the configuration that reproduces the fixed behavior.
func Default() *Config {
	return &Config{
		Timeout:        sender.DefaultTimeout,
		ResolveTimeout: resolve.DefaultTimeout,
		Port:           snmp.DefaultPort,
		Policy:         dispatch.PolicyLastFailure,
		Output:         OutputText,
		LogLevel:       slog.LevelWarn,
		LogFormat:      logging.FormatText,
	}
}

// SetDefaults registers Default's values on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyActions, d.ActionsPath)
	v.SetDefault(KeyTimeout, d.Timeout)
	v.SetDefault(KeyResolveTimeout, d.ResolveTimeout)
	v.SetDefault(KeyPort, d.Port)
	v.SetDefault(KeyPrecedence, d.Policy.String())
	v.SetDefault(KeyStrict, d.Strict)
	v.SetDefault(KeyOutput, string(d.Output))
	v.SetDefault(KeyLogLevel, d.LogLevel.String())
	v.SetDefault(KeyLogFormat, string(d.LogFormat))
	v.SetDefault(KeyVerbose, d.Verbose)
	v.SetDefault(KeyNoColor, d.NoColor)
}

// Load reads every key from v, parses enumerations and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	policy, err := dispatch.ParsePolicy(strings.ToLower(v.GetString(KeyPrecedence)))
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(v.GetString(KeyLogFormat))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ActionsPath:    v.GetString(KeyActions),
		Timeout:        v.GetDuration(KeyTimeout),
		ResolveTimeout: v.GetDuration(KeyResolveTimeout),
		Port:           v.GetInt(KeyPort),
		Policy:         policy,
		Strict:         v.GetBool(KeyStrict),
		Output:         Output(strings.ToLower(v.GetString(KeyOutput))),
		LogFormat:      format,
		Verbose:        v.GetBool(KeyVerbose),
		NoColor:        v.GetBool(KeyNoColor),
	}

	// --verbose is shorthand for debug logging.
	if cfg.Verbose {
		cfg.LogLevel = slog.LevelDebug
	} else if cfg.LogLevel, err = logging.ParseLevel(v.GetString(KeyLogLevel)); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations. It does not mutate cfg.
func Validate(cfg *Config) error {
	if cfg.Timeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyTimeout, cfg.Timeout)
	}
	if cfg.ResolveTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyResolveTimeout, cfg.ResolveTimeout)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("%s must be in 1..65535, got %d", KeyPort, cfg.Port)
	}
	switch cfg.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("unknown %s %q (use text or json)", KeyOutput, cfg.Output)
	}
	return nil
}
