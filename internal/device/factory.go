package device

import (
	"io"
	"math/rand"
	"os"
)

// Factory acquires the devices for one session. It is called only after
// setup has succeeded, so a failed setup never touches the screen.
type Factory func() (Devices, error)

// TerminalFactory opens a raw-mode input on in and a display on out.
func TerminalFactory(in *os.File, out io.Writer) Factory {
	return func() (Devices, error) {
		input, err := NewTerminalInput(in)
		if err != nil {
			return Devices{}, err
		}
		return Devices{Display: NewTerminalDisplay(out), Input: input}, nil
	}
}

// SimulatedFactory pairs a RecordingDisplay with a RandomResponder that
// presses one of keys on every trial.
func SimulatedFactory(keys []string, rng *rand.Rand) Factory {
	return func() (Devices, error) {
		return Devices{Display: NewRecordingDisplay(), Input: NewRandomResponder(keys, rng)}, nil
	}
}
