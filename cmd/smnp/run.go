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
	"context"

	"github.com/maks-it/smnp/internal/dispatch"
	"github.com/maks-it/smnp/internal/exitcode"
)

// runActions reads the action file, dispatches every line and prints a
// report per action plus a summary. It returns the process exit code.
func runActions(ctx context.Context, env *environment) int {
	formatter := NewFormatter(env.cfg.Output, env.out, env.runID, env.cfg.NoColor)

	path, lines, err := readActions(env)
	if err != nil {
		env.logger.Error("reading action file failed", "path", path, "error", err)
		formatter.FileError(path, err)
		return exitcode.FileReadError
	}

	d := dispatch.New(env.resolver, env.sender,
		dispatch.WithPolicy(env.cfg.Policy),
		dispatch.WithStrict(env.cfg.Strict),
		dispatch.WithPort(env.cfg.Port),
		dispatch.WithLogger(env.logger),
		dispatch.WithObserver(formatter.FormatOutcome),
	)

	result := d.Run(ctx, lines)
	if result.Empty {
		formatter.Empty(path)
		return result.ExitCode()
	}

	formatter.FormatSummary(result, env.metrics)

	env.logger.Info("run finished",
		"path", path,
		"actions", len(result.Outcomes),
		"failed", result.Failed(),
		"exit_code", result.ExitCode())

	return result.ExitCode()
}
