package session

import (
	"context"
	"errors"

	"github.com/CodexForgeBR/gfmt/internal/config"
	"github.com/CodexForgeBR/gfmt/internal/exitcode"
	"github.com/CodexForgeBR/gfmt/internal/recorder"
	"github.com/CodexForgeBR/gfmt/internal/trial"
)

// ExitCodeFor classifies err into the process exit code.
func ExitCodeFor(err error) int {
	var cfgErr *config.Error
	var persistErr *recorder.PersistenceError

	switch {
	case err == nil:
		return exitcode.Success
	case errors.As(err, &cfgErr):
		return exitcode.ConfigError
	case errors.Is(err, trial.ErrEmptySchedule):
		return exitcode.EmptySchedule
	case errors.As(err, &persistErr):
		return exitcode.Persistence
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return exitcode.Interrupted
	default:
		return exitcode.Error
	}
}
