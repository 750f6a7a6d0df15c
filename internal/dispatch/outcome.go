package dispatch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/maks-it/smnp/internal/action"
	"github.com/maks-it/smnp/internal/exitcode"
	"github.com/maks-it/smnp/internal/sender"
)

// Kind classifies the result of one action line.
type Kind int

const (
	Success Kind = iota
	ParseFailure
	ResolutionFailure
	SendFailure
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case ParseFailure:
		return "parse_error"
	case ResolutionFailure:
		return "resolution_error"
	case SendFailure:
		return "send_error"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ExitCode maps a kind to its process exit code.
func ExitCode(k Kind) int {
	switch k {
	case ParseFailure:
		return exitcode.ParseError
	case ResolutionFailure:
		return exitcode.ResolveHostError
	case SendFailure:
		return exitcode.SNMPRequestError
	default:
		return exitcode.Success
	}
}

// Stage is how far an action line got before it finished.
type Stage int

const (
	StageStart Stage = iota
	StageParsed
	StageResolved
	StageSent
	StageDone
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageParsed:
		return "parsed"
	case StageResolved:
		return "resolved"
	case StageSent:
		return "sent"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Outcome is the result of dispatching one non-blank action line.
type Outcome struct {
	Line     int
	Text     string
	Request  action.Request
	Target   sender.Target
	Kind     Kind
	Err      error
	Reached  Stage // last stage completed before Done
	Duration time.Duration
}

// Host returns the host the line addressed, or its first field when the
// line did not parse.
func (o Outcome) Host() string {
	if o.Request.Host != "" {
		return o.Request.Host
	}
	if fields := strings.Fields(o.Text); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// Message is the human-readable status line for the outcome.
func (o Outcome) Message() string {
	switch o.Kind {
	case Success:
		return fmt.Sprintf("SNMP request sent successfully to %s.", o.Request.Host)
	case ParseFailure:
		if errors.Is(o.Err, action.ErrInvalidValue) {
			return fmt.Sprintf("Invalid integer value in action: %s", o.Text)
		}
		return fmt.Sprintf("Invalid action format: %s", o.Text)
	default:
		return o.Err.Error()
	}
}

// RunResult summarizes a whole run. Status is the combined kind that maps to
// the process exit code.
type RunResult struct {
	Outcomes []Outcome
	Status   Kind
	// Empty is set when the action source held no lines at all.
	Empty bool
}

// ExitCode returns the process exit code for the run.
func (r RunResult) ExitCode() int {
	return ExitCode(r.Status)
}

// Count returns how many outcomes have kind k.
func (r RunResult) Count(k Kind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == k {
			n++
		}
	}
	return n
}

// Failed returns the number of outcomes that did not succeed.
func (r RunResult) Failed() int {
	return len(r.Outcomes) - r.Count(Success)
}
