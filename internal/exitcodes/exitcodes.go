// Package exitcodes defines the process exit codes of agent-library.
package exitcodes

const (
	// Success also covers a user cancelling at a prompt.
	Success = 0
	// Failure is any fatal error: manifest unavailable, invalid selection,
	// unwritable target.
	Failure = 1
	// Drift is reported by verify when installed files differ from the record.
	Drift = 2
)
