package recorder

import (
	"errors"
	"fmt"
)

// ErrAbortedTrial is returned when an aborted trial is passed to
// RecordTrial; aborted trials end the session and are never persisted.
var ErrAbortedTrial = errors.New("aborted trial cannot be recorded")

// PersistenceError reports that the output location could not be created
// or written. It is always fatal for the session.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
