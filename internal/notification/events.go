package notification

import "fmt"

// Session events an experimenter can be notified about.
const (
	EventFinished    = "finished"
	EventAborted     = "aborted"
	EventInterrupted = "interrupted"
	EventFailed      = "failed"
)

// Summary carries what a notification reports about a session.
type Summary struct {
	SubjectID string
	Variant   string
	SessionID string
	Completed int
	Total     int
	ExitCode  int
}

// FormatEvent creates a notification message for the given event.
func FormatEvent(event string, s Summary) string {
	who := fmt.Sprintf("gfmt %s/%s [%s]", s.SubjectID, s.Variant, s.SessionID)
	switch event {
	case EventFinished:
		return fmt.Sprintf("✅ %s finished %d/%d trials (exit %d)", who, s.Completed, s.Total, s.ExitCode)
	case EventAborted:
		return fmt.Sprintf("⚠️ %s aborted by participant after %d/%d trials (exit %d)", who, s.Completed, s.Total, s.ExitCode)
	case EventInterrupted:
		return fmt.Sprintf("⏸️ %s interrupted after %d/%d trials (exit %d)", who, s.Completed, s.Total, s.ExitCode)
	case EventFailed:
		return fmt.Sprintf("❌ %s failed after %d/%d trials (exit %d)", who, s.Completed, s.Total, s.ExitCode)
	default:
		return fmt.Sprintf("ℹ️ %s event: %s (exit %d)", who, event, s.ExitCode)
	}
}
