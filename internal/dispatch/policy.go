package dispatch

import "fmt"

// Policy decides how a failing line's kind combines into the run status.
// Successes never change the status under either policy.
type Policy int

const (
	// PolicyLastFailure reports the kind of the last failing line.
	PolicyLastFailure Policy = iota
	// PolicySeverity reports the most severe kind seen, ordered by exit code.
	PolicySeverity
)

// String returns the configuration name of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyLastFailure:
		return "last"
	case PolicySeverity:
		return "severity"
	default:
		return "unknown"
	}
}

// ParsePolicy parses a policy name as accepted by String.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "last":
		return PolicyLastFailure, nil
	case "severity":
		return PolicySeverity, nil
	default:
		return 0, fmt.Errorf("unknown precedence %q (use last or severity)", s)
	}
}

// Combine folds the kind of one more outcome into status.
func (p Policy) Combine(status, next Kind) Kind {
	if next == Success {
		return status
	}
	if p == PolicySeverity && ExitCode(next) < ExitCode(status) {
		return status
	}
	return next
}
