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
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/maks-it/smnp/internal/config"
	"github.com/maks-it/smnp/internal/dispatch"
	"github.com/maks-it/smnp/internal/exitcode"
	"github.com/maks-it/smnp/snmp"
)

// OutcomeOutput is the JSON report for one action line.
type OutcomeOutput struct {
	RunID      string  `json:"run_id"`
	Type       string  `json:"type"`
	Line       int     `json:"line"`
	Host       string  `json:"host"`
	Target     string  `json:"target,omitempty"`
	OID        string  `json:"oid,omitempty"`
	Value      *int32  `json:"value,omitempty"`
	Status     string  `json:"status"`
	Stage      string  `json:"stage"`
	Message    string  `json:"message"`
	Error      string  `json:"error,omitempty"`
	DurationMs float64 `json:"duration_ms"`
}

// SummaryOutput is the JSON report closing a run.
type SummaryOutput struct {
	RunID            string        `json:"run_id"`
	Type             string        `json:"type"`
	Path             string        `json:"path,omitempty"`
	Empty            bool          `json:"empty,omitempty"`
	Actions          int           `json:"actions"`
	Succeeded        int           `json:"succeeded"`
	ParseErrors      int           `json:"parse_errors"`
	ResolutionErrors int           `json:"resolution_errors"`
	SendErrors       int           `json:"send_errors"`
	Status           string        `json:"status"`
	ExitCode         int           `json:"exit_code"`
	Requests         *RequestStats `json:"requests,omitempty"`
}

// RequestStats is the SNMP traffic part of a summary.
type RequestStats struct {
	Sent        int64   `json:"sent"`
	Responses   int64   `json:"responses"`
	Timeouts    int64   `json:"timeouts"`
	AgentErrors int64   `json:"agent_errors"`
	LatencyMin  int64   `json:"latency_min_ms"`
	LatencyAvg  float64 `json:"latency_avg_ms"`
	LatencyMax  int64   `json:"latency_max_ms"`
}

// ErrorOutput is the JSON report for a run that could not start.
type ErrorOutput struct {
	RunID    string `json:"run_id"`
	Type     string `json:"type"`
	Path     string `json:"path,omitempty"`
	Message  string `json:"message"`
	ExitCode int    `json:"exit_code"`
}

// InvalidOutput is the JSON report for a malformed line found by validate.
type InvalidOutput struct {
	RunID string `json:"run_id"`
	Type  string `json:"type"`
	Line  int    `json:"line"`
	Text  string `json:"text"`
	Error string `json:"error"`
}

// ValidationOutput is the JSON report closing validate.
type ValidationOutput struct {
	RunID    string `json:"run_id"`
	Type     string `json:"type"`
	Path     string `json:"path"`
	Actions  int    `json:"actions"`
	Invalid  int    `json:"invalid"`
	ExitCode int    `json:"exit_code"`
}

// Formatter prints per-action reports and the run summary.
type Formatter struct {
	format  config.Output
	writer  io.Writer
	runID   string
	noColor bool
}

// NewFormatter creates a new formatter.
func NewFormatter(format config.Output, w io.Writer, runID string, noColor bool) *Formatter {
	return &Formatter{
		format:  format,
		writer:  w,
		runID:   runID,
		noColor: noColor,
	}
}

// FormatOutcome prints the report for one action line.
func (f *Formatter) FormatOutcome(o dispatch.Outcome) {
	if f.format == config.OutputJSON {
		f.writeJSON(f.outcomeOutput(o))
		return
	}

	status := f.colorize("OK  ", ColorGreen)
	if o.Kind != dispatch.Success {
		status = f.colorize("FAIL", ColorRed)
	}
	fmt.Fprintf(f.writer, "%s %s %s\n",
		status,
		f.colorize(fmt.Sprintf("line %d:", o.Line), ColorGray),
		o.Message())
}

func (f *Formatter) outcomeOutput(o dispatch.Outcome) OutcomeOutput {
	out := OutcomeOutput{
		RunID:      f.runID,
		Type:       "action",
		Line:       o.Line,
		Host:       o.Host(),
		Status:     o.Kind.String(),
		Stage:      o.Reached.String(),
		Message:    o.Message(),
		DurationMs: float64(o.Duration.Microseconds()) / 1000,
	}
	if o.Reached >= dispatch.StageParsed {
		value := o.Request.Value
		out.OID = o.Request.OID
		out.Value = &value
	}
	if o.Reached >= dispatch.StageResolved {
		out.Target = o.Target.String()
	}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return out
}

// FormatSummary prints the totals of a run. metrics may be nil.
func (f *Formatter) FormatSummary(result dispatch.RunResult, metrics *snmp.Metrics) {
	summary := SummaryOutput{
		RunID:            f.runID,
		Type:             "summary",
		Actions:          len(result.Outcomes),
		Succeeded:        result.Count(dispatch.Success),
		ParseErrors:      result.Count(dispatch.ParseFailure),
		ResolutionErrors: result.Count(dispatch.ResolutionFailure),
		SendErrors:       result.Count(dispatch.SendFailure),
		Status:           result.Status.String(),
		ExitCode:         result.ExitCode(),
	}
	if metrics != nil {
		s := metrics.Snapshot()
		summary.Requests = &RequestStats{
			Sent:        s.RequestsSent,
			Responses:   s.ResponsesReceived,
			Timeouts:    s.Timeouts,
			AgentErrors: s.AgentErrors,
			LatencyMin:  s.RequestLatency.Min,
			LatencyAvg:  s.RequestLatency.Avg,
			LatencyMax:  s.RequestLatency.Max,
		}
	}

	if f.format == config.OutputJSON {
		f.writeJSON(summary)
		return
	}

	f.printSection("Summary")
	f.printKeyValue("Actions", fmt.Sprintf("%d", summary.Actions))
	f.printKeyValue("Succeeded", fmt.Sprintf("%d", summary.Succeeded))
	f.printKeyValue("Parse errors", fmt.Sprintf("%d", summary.ParseErrors))
	f.printKeyValue("Resolve errors", fmt.Sprintf("%d", summary.ResolutionErrors))
	f.printKeyValue("SNMP errors", fmt.Sprintf("%d", summary.SendErrors))
	if r := summary.Requests; r != nil && r.Sent > 0 {
		f.printKeyValue("Requests", fmt.Sprintf("%d sent, %d answered, %d timed out", r.Sent, r.Responses, r.Timeouts))
		if r.Responses > 0 {
			f.printKeyValue("Latency", fmt.Sprintf("min %dms, avg %.2fms, max %dms", r.LatencyMin, r.LatencyAvg, r.LatencyMax))
		}
	}
	f.printKeyValue("Exit code", fmt.Sprintf("%d", summary.ExitCode))
}

// FormatInvalid reports a line that does not parse.
func (f *Formatter) FormatInvalid(line int, text string, err error) {
	if f.format == config.OutputJSON {
		f.writeJSON(InvalidOutput{
			RunID: f.runID,
			Type:  "invalid",
			Line:  line,
			Text:  text,
			Error: err.Error(),
		})
		return
	}
	fmt.Fprintf(f.writer, "%s %v\n", f.colorize("FAIL", ColorRed), err)
}

// FormatValidation prints the tally of a validate run.
func (f *Formatter) FormatValidation(path string, actions, invalid, code int) {
	if f.format == config.OutputJSON {
		f.writeJSON(ValidationOutput{
			RunID:    f.runID,
			Type:     "validation",
			Path:     path,
			Actions:  actions,
			Invalid:  invalid,
			ExitCode: code,
		})
		return
	}
	fmt.Fprintf(f.writer, "%s: %d actions, %d invalid\n", path, actions, invalid)
}

// Empty reports an action file without any lines.
func (f *Formatter) Empty(path string) {
	if f.format == config.OutputJSON {
		f.writeJSON(SummaryOutput{
			RunID:    f.runID,
			Type:     "summary",
			Path:     path,
			Empty:    true,
			Status:   dispatch.Success.String(),
			ExitCode: exitcode.Success,
		})
		return
	}
	fmt.Fprintln(f.writer, "Actions file is empty.")
}

// FileError reports an action file that could not be read.
func (f *Formatter) FileError(path string, err error) {
	if f.format == config.OutputJSON {
		f.writeJSON(ErrorOutput{
			RunID:    f.runID,
			Type:     "error",
			Path:     path,
			Message:  err.Error(),
			ExitCode: exitcode.FileReadError,
		})
		return
	}
	fmt.Fprintf(f.writer, "%s %v\n", f.colorize("Error reading actions file:", ColorRed), err)
}

func (f *Formatter) writeJSON(v any) {
	data, _ := json.Marshal(v)
	fmt.Fprintln(f.writer, string(data))
}

// Color codes for terminal output.
const (
	ColorReset = "\033[0m"
	ColorRed   = "\033[31m"
	ColorGreen = "\033[32m"
	ColorCyan  = "\033[36m"
	ColorGray  = "\033[90m"
	ColorBold  = "\033[1m"
)

// colorize wraps text with color codes.
func (f *Formatter) colorize(text, color string) string {
	if f.noColor {
		return text
	}
	return color + text + ColorReset
}

func (f *Formatter) printKeyValue(key, value string) {
	fmt.Fprintf(f.writer, "  %-20s %s\n", f.colorize(key+":", ColorCyan), value)
}

func (f *Formatter) printSection(title string) {
	fmt.Fprintf(f.writer, "\n%s\n", f.colorize(title, ColorBold))
	fmt.Fprintln(f.writer, strings.Repeat("-", len(title)))
}
