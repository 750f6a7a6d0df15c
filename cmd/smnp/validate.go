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

package main

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/maks-it/smnp/internal/action"
	"github.com/maks-it/smnp/internal/exitcode"
	"github.com/maks-it/smnp/internal/logging"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the action file without sending anything",
	Long: `Parse every line of the action file and report the malformed ones.

No host is resolved and no SNMP request is sent. The command exits 1 when
the file cannot be read or any line is malformed, and 0 otherwise.

Examples:
  # Check the default actions.txt
  smnp validate

  # Also reject lines with extra fields
  smnp validate --actions ./actions.txt --strict`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	env := &environment{
		cfg:    cfg,
		fs:     afero.NewOsFs(),
		out:    cmd.OutOrStdout(),
		runID:  logging.NewRunID(),
		logger: logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat),
	}
	if code := validateActions(env); code != exitcode.Success {
		return &exitError{code: code}
	}
	return nil
}

// validateActions parses the action file and prints one line per malformed
// action. It returns the process exit code.
func validateActions(env *environment) int {
	formatter := NewFormatter(env.cfg.Output, env.out, env.runID, env.cfg.NoColor)

	path, lines, err := readActions(env)
	if err != nil {
		formatter.FileError(path, err)
		return exitcode.FileReadError
	}
	if len(lines) == 0 {
		formatter.Empty(path)
		return exitcode.Success
	}

	actions, invalid := 0, 0
	for i, line := range lines {
		if action.IsBlank(line) {
			continue
		}
		actions++
		if _, err := action.ParseLine(i+1, line, env.cfg.Strict); err != nil {
			invalid++
			formatter.FormatInvalid(i+1, line, err)
		}
	}

	code := exitcode.Success
	if invalid > 0 {
		code = exitcode.ParseError
	}
	formatter.FormatValidation(path, actions, invalid, code)
	return code
}
