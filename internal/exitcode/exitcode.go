// Package exitcode defines the process exit codes smnp reports to the
// scheduler or orchestrator that runs it.
package exitcode

// Exit codes. FileReadError and ParseError share a value.
const (
	Success          = 0 // every action succeeded, or there were none
	FileReadError    = 1 // action file missing or unreadable
	ParseError       = 1 // an action line is malformed
	ResolveHostError = 2 // a host did not resolve to an IPv4 address
	SNMPRequestError = 3 // the SET request failed
)
