package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/maks-it/smnp/internal/config"
	"github.com/maks-it/smnp/internal/exitcode"
)

var (
	cfgFile   string
	configErr error
)

var rootCmd = &cobra.Command{
	Use:   "smnp",
	Short: "Apply SNMP SET actions from a file",
	Long: `smnp reads an action file and sends one SNMP v2c SET per line.

Each non-blank line has the form:

  <host> <community> <oid> <integer-value>

The host is resolved to its first IPv4 address and the INTEGER value is
written to the OID on port 161 with a 6 second timeout and no retries.
Lines are processed in order and a failing line never stops the run.

Exit codes:
  0  every action succeeded, or the file had no actions
  1  the action file could not be read, or a line was malformed
  2  a host could not be resolved
  3  an SNMP request failed

With the default precedence the last failing line decides the exit code.
Use --precedence=severity to report the most severe failure instead.

Examples:
  # Run actions.txt from the executable's directory
  smnp

  # Run another file and print JSON reports
  smnp --actions /etc/smnp/actions.txt -o json

  # Check a file without sending anything
  smnp validate --actions ./actions.txt`,
	Args:          cobra.NoArgs,
	RunE:          runRoot,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	d := config.Default()
	flags := rootCmd.PersistentFlags()

	flags.StringVarP(&cfgFile, "config", "", "", "config file (default is $HOME/.smnp.yaml)")
	flags.StringP(config.KeyActions, "f", "", "action file (default is actions.txt next to the executable)")
	flags.Duration(config.KeyTimeout, d.Timeout, "SNMP request timeout")
	flags.Duration(config.KeyResolveTimeout, d.ResolveTimeout, "host resolution timeout")
	flags.IntP(config.KeyPort, "p", d.Port, "SNMP agent port")
	flags.String(config.KeyPrecedence, d.Policy.String(), "exit code precedence: last, severity")
	flags.Bool(config.KeyStrict, d.Strict, "reject lines with fields after the value")

	flags.StringP(config.KeyOutput, "o", string(d.Output), "report format: text, json")
	flags.String(config.KeyLogLevel, d.LogLevel.String(), "log level: debug, info, warn, error")
	flags.String(config.KeyLogFormat, string(d.LogFormat), "log format: text, json")
	flags.BoolP(config.KeyVerbose, "v", d.Verbose, "verbose output")
	flags.Bool(config.KeyNoColor, d.NoColor, "disable colored output")

	config.SetDefaults(viper.GetViper())
	for _, key := range []string{
		config.KeyActions,
		config.KeyTimeout,
		config.KeyResolveTimeout,
		config.KeyPort,
		config.KeyPrecedence,
		config.KeyStrict,
		config.KeyOutput,
		config.KeyLogLevel,
		config.KeyLogFormat,
		config.KeyVerbose,
		config.KeyNoColor,
	} {
		viper.BindPFlag(key, flags.Lookup(key))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(filepath.Join(home, ".config"))
		}
		viper.SetConfigName(".smnp")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SMNP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			configErr = fmt.Errorf("read config: %w", err)
		}
		return
	}
	if viper.GetBool(config.KeyVerbose) {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig returns the typed configuration for the current invocation.
func loadConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, &exitError{code: exitcode.FileReadError, err: configErr}
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, &exitError{code: exitcode.FileReadError, err: err}
	}
	return cfg, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	env := newEnvironment(cfg, afero.NewOsFs(), cmd.OutOrStdout())
	if code := runActions(ctx, env); code != exitcode.Success {
		return &exitError{code: code}
	}
	return nil
}
