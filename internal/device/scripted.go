package device

import (
	"context"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/CodexForgeBR/gfmt/internal/logging"
)

// Frame is one presented display buffer.
type Frame struct {
	Image string
	Text  map[Position]string
}

// RecordingDisplay keeps every presented frame in memory. It backs
// simulated sessions and tests.
type RecordingDisplay struct {
	Frames []Frame
	Closed bool

	pending Frame
}

// NewRecordingDisplay returns an empty RecordingDisplay.
func NewRecordingDisplay() *RecordingDisplay {
	return &RecordingDisplay{pending: Frame{Text: make(map[Position]string)}}
}

func (d *RecordingDisplay) ShowImage(path string) error {
	d.pending.Image = path
	return nil
}

func (d *RecordingDisplay) ShowText(text string, pos Position) error {
	d.pending.Text[pos] = text
	return nil
}

func (d *RecordingDisplay) Present() error {
	d.Frames = append(d.Frames, d.pending)
	if d.pending.Image != "" {
		logging.Debug("display: " + filepath.Base(d.pending.Image))
	}
	d.pending = Frame{Text: make(map[Position]string)}
	return nil
}

func (d *RecordingDisplay) Close() error {
	d.Closed = true
	return nil
}

// Images returns the image of every frame that showed one, in order.
func (d *RecordingDisplay) Images() []string {
	var out []string
	for _, f := range d.Frames {
		if f.Image != "" {
			out = append(out, f.Image)
		}
	}
	return out
}

// ScriptedInput replays a fixed sequence of key snapshots, one per poll.
// Once the script is exhausted every poll reports no keys.
type ScriptedInput struct {
	// AnyKey is returned by WaitForAnyKey.
	AnyKey string
	Polls  int
	Closed bool

	script [][]string
}

// NewScriptedInput returns an input that answers polls with snapshots.
func NewScriptedInput(snapshots ...[]string) *ScriptedInput {
	return &ScriptedInput{AnyKey: KeySpace, script: snapshots}
}

func (in *ScriptedInput) PollPressedKeys() ([]string, error) {
	in.Polls++
	if len(in.script) == 0 {
		return nil, nil
	}
	next := in.script[0]
	in.script = in.script[1:]
	return next, nil
}

func (in *ScriptedInput) WaitForAnyKey(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return in.AnyKey, nil
}

func (in *ScriptedInput) Close() error {
	in.Closed = true
	return nil
}

// RandomResponder simulates a participant: after a random number of empty
// polls it presses one of the response keys chosen at random. It is used
// to pilot a stimulus set end to end without a person at the keyboard.
type RandomResponder struct {
	keys    []string
	rng     *rand.Rand
	waiting int
}

// NewRandomResponder returns a responder choosing among keys.
func NewRandomResponder(keys []string, rng *rand.Rand) *RandomResponder {
	r := &RandomResponder{keys: append([]string(nil), keys...), rng: rng}
	r.waiting = r.think()
	return r
}

func (r *RandomResponder) think() int { return 1 + r.rng.Intn(20) }

func (r *RandomResponder) PollPressedKeys() ([]string, error) {
	if r.waiting > 0 {
		r.waiting--
		return nil, nil
	}
	r.waiting = r.think()
	key := r.keys[r.rng.Intn(len(r.keys))]
	logging.Debug("simulated key: " + strings.ToUpper(key))
	return []string{key}, nil
}

func (r *RandomResponder) WaitForAnyKey(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return KeySpace, nil
}

func (r *RandomResponder) Close() error { return nil }
