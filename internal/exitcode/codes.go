// Package exitcode defines named exit codes for the gfmt CLI.
//
// Each code maps a specific termination condition to a numeric value
// recognized by shell scripts and lab automation. A participant-initiated
// abort is a normal termination and exits with Success.
package exitcode

// Exit code constants for the session lifecycle.
const (
	Success       = 0   // Schedule exhausted, or participant aborted with escape
	Error         = 1   // Invalid args, device failure, unexpected error
	ConfigError   = 2   // Configuration missing, malformed or invalid
	EmptySchedule = 3   // No stimuli resolved for the selected variant
	Persistence   = 4   // Output location cannot be created or written
	Interrupted   = 130 // SIGINT/SIGTERM received by the operator console
)

// Name returns the human-readable name for the given exit code.
// Unknown codes return "unknown".
func Name(code int) string {
	switch code {
	case Success:
		return "Success"
	case Error:
		return "Error"
	case ConfigError:
		return "ConfigError"
	case EmptySchedule:
		return "EmptySchedule"
	case Persistence:
		return "Persistence"
	case Interrupted:
		return "Interrupted"
	default:
		return "unknown"
	}
}
