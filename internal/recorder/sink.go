package recorder

import (
	"strconv"
	"strings"
	"time"
)

// Record is one persisted trial.
type Record struct {
	SessionID    string
	SubjectID    string
	Variant      string
	Trial        int
	Stimulus     string
	Category     string
	PressedKeys  []string
	Response     string
	Correct      bool
	ReactionTime time.Duration
	RecordedAt   time.Time
}

// Sink receives records in trial order. Append must make the record
// durable before returning.
type Sink interface {
	Append(rec Record) error
	Close() error
}

// Columns is the header row of the results stream.
var Columns = []string{
	"session_id",
	"subject_id",
	"variant",
	"trial",
	"stimulus",
	"category",
	"pressed_keys",
	"response",
	"correct",
	"rt_ms",
	"recorded_at",
}

func (r Record) row() []string {
	return []string{
		r.SessionID,
		r.SubjectID,
		r.Variant,
		strconv.Itoa(r.Trial),
		r.Stimulus,
		r.Category,
		strings.Join(r.PressedKeys, " "),
		r.Response,
		strconv.FormatBool(r.Correct),
		strconv.FormatInt(r.ReactionTime.Milliseconds(), 10),
		r.RecordedAt.UTC().Format(time.RFC3339Nano),
	}
}
