// Package trial builds the randomized trial schedule for a session.
package trial

import (
	"errors"
	"math/rand"

	"github.com/CodexForgeBR/gfmt/internal/stimulus"
)

// ErrEmptySchedule is returned when the catalog holds no stimuli and the
// session therefore has nothing to run.
var ErrEmptySchedule = errors.New("empty schedule: no stimuli resolved for the selected variant")

// Trial pairs one stimulus with its 1-based position in the schedule.
type Trial struct {
	Stimulus stimulus.Stimulus
	Ordinal  int
}

// Schedule is an ordered, one-pass sequence of trials. The order is fixed
// when the schedule is built and is never reshuffled.
type Schedule struct {
	trials []Trial
	cursor int
}

// Build creates one trial per catalog stimulus, in a uniformly random order
// drawn from rng.
func Build(catalog *stimulus.Catalog, rng *rand.Rand) (*Schedule, error) {
	n := catalog.Len()
	if n == 0 {
		return nil, ErrEmptySchedule
	}

	order := make([]stimulus.Stimulus, n)
	for i := range order {
		order[i] = catalog.At(i)
	}
	// Fisher-Yates: every permutation is equally likely.
	rng.Shuffle(n, func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	trials := make([]Trial, n)
	for i, s := range order {
		trials[i] = Trial{Stimulus: s, Ordinal: i + 1}
	}
	return &Schedule{trials: trials}, nil
}

// Next returns the next trial and advances the cursor. The second result
// is false once the schedule is exhausted.
func (s *Schedule) Next() (Trial, bool) {
	if s.cursor >= len(s.trials) {
		return Trial{}, false
	}
	t := s.trials[s.cursor]
	s.cursor++
	return t, true
}

// Len returns the total number of trials.
func (s *Schedule) Len() int { return len(s.trials) }

// Remaining returns how many trials have not been handed out yet.
func (s *Schedule) Remaining() int { return len(s.trials) - s.cursor }

// Trials returns a copy of the full schedule in presentation order.
func (s *Schedule) Trials() []Trial {
	return append([]Trial(nil), s.trials...)
}
