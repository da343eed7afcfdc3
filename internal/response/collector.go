// Package response waits for the participant's answer to a trial.
//
// A trial moves through Presenting → AwaitingResponse and ends in either
// Resolved (a configured response key was pressed) or Aborted (the abort
// key was pressed). There is no timeout; the wait only ends on one of those
// two conditions, an input failure, or an operator interrupt via ctx.
package response

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/CodexForgeBR/gfmt/internal/config"
	"github.com/CodexForgeBR/gfmt/internal/device"
	"github.com/CodexForgeBR/gfmt/internal/timing"
)

// State is the collector's position in the per-trial state machine.
type State int

const (
	Presenting State = iota
	AwaitingResponse
	Resolved
	Aborted
)

func (s State) String() string {
	switch s {
	case Presenting:
		return "presenting"
	case AwaitingResponse:
		return "awaiting_response"
	case Resolved:
		return "resolved"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event is the outcome of one trial.
type Event struct {
	TrialOrdinal int
	// PressedKeys is the sorted key snapshot that ended the wait.
	PressedKeys []string
	// ResponseLabel joins the labels of every pressed response key, ordered
	// by key identifier. Empty when the trial was aborted.
	ResponseLabel     string
	TerminatedByAbort bool
	// ReactionTime runs from entering AwaitingResponse to the deciding poll.
	ReactionTime time.Duration
	Polls        int
}

// Collector polls an Input until a trial resolves or aborts.
type Collector struct {
	input        device.Input
	keys         map[string]string
	pollInterval time.Duration
	clock        timing.Clock
	state        State
}

// NewCollector returns a collector for the configured response keys.
// pollInterval is the pause between polls; zero polls continuously.
func NewCollector(in device.Input, responseKeys map[string]string, pollInterval time.Duration) *Collector {
	keys := make(map[string]string, len(responseKeys))
	for k, v := range responseKeys {
		keys[k] = v
	}
	return &Collector{input: in, keys: keys, pollInterval: pollInterval, state: Presenting}
}

// WithClock replaces the reaction-time clock.
func (c *Collector) WithClock(clock timing.Clock) *Collector {
	c.clock = clock
	return c
}

// State returns the state reached by the most recent trial.
func (c *Collector) State() State { return c.state }

// Collect waits for the response to trial ordinal. It must be called after
// the stimulus and prompt are visible. Keys an Input queued before the call
// are discarded, so only presses made while the trial is on screen count.
// A non-nil error means neither a response nor an abort was observed.
func (c *Collector) Collect(ctx context.Context, ordinal int) (Event, error) {
	c.state = Presenting
	if f, ok := c.input.(device.Flusher); ok {
		if err := f.Flush(); err != nil {
			return Event{}, fmt.Errorf("flush input: %w", err)
		}
	}

	c.state = AwaitingResponse
	sw := timing.Start(c.clock)
	polls := 0

	for {
		if err := ctx.Err(); err != nil {
			return Event{}, err
		}

		pressed, err := c.input.PollPressedKeys()
		if err != nil {
			return Event{}, fmt.Errorf("poll input: %w", err)
		}
		polls++

		// Abort takes priority over a simultaneous response key.
		if contains(pressed, config.AbortKey) {
			c.state = Aborted
			return Event{
				TrialOrdinal:      ordinal,
				PressedKeys:       sortedCopy(pressed),
				TerminatedByAbort: true,
				ReactionTime:      sw.Elapsed(),
				Polls:             polls,
			}, nil
		}

		if label, ok := ResolveLabel(pressed, c.keys); ok {
			c.state = Resolved
			return Event{
				TrialOrdinal:  ordinal,
				PressedKeys:   sortedCopy(pressed),
				ResponseLabel: label,
				ReactionTime:  sw.Elapsed(),
				Polls:         polls,
			}, nil
		}

		if err := timing.Pause(ctx, c.pollInterval); err != nil {
			return Event{}, err
		}
	}
}

// ResolveLabel maps a key snapshot to a response label. Keys without a
// label are ignored. When several response keys are pressed together their
// labels are joined with config.LabelSeparator in key order. ok is false
// when no response key is pressed.
func ResolveLabel(pressed []string, responseKeys map[string]string) (label string, ok bool) {
	var matched []string
	for _, k := range pressed {
		if _, known := responseKeys[k]; known && !contains(matched, k) {
			matched = append(matched, k)
		}
	}
	if len(matched) == 0 {
		return "", false
	}

	sort.Strings(matched)
	labels := make([]string, len(matched))
	for i, k := range matched {
		labels[i] = responseKeys[k]
	}
	return strings.Join(labels, config.LabelSeparator), true
}

func contains(keys []string, k string) bool {
	for _, candidate := range keys {
		if candidate == k {
			return true
		}
	}
	return false
}

func sortedCopy(keys []string) []string {
	out := append([]string(nil), keys...)
	sort.Strings(out)
	return out
}
