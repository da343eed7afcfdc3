// Package device defines the display and input collaborators the session
// engine drives, together with a terminal implementation for operator use
// and scripted implementations for pilots and tests.
package device

import "context"

// Key identifiers reported by input devices. Printable characters are
// reported as themselves in lower case ("f", "j", "1").
const (
	KeyEscape    = "escape"
	KeySpace     = "space"
	KeyReturn    = "return"
	KeyTab       = "tab"
	KeyBackspace = "backspace"
	KeyUp        = "up"
	KeyDown      = "down"
	KeyLeft      = "left"
	KeyRight     = "right"
)

// Position places text on the display.
type Position int

const (
	Center Position = iota
	Top
	Bottom
)

func (p Position) String() string {
	switch p {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	default:
		return "center"
	}
}

// Display draws into a back buffer; Present makes the buffer visible and
// starts a fresh one.
type Display interface {
	ShowImage(path string) error
	ShowText(text string, pos Position) error
	Present() error
	Close() error
}

// Input reports keyboard state.
type Input interface {
	// PollPressedKeys returns the keys pressed at this instant without
	// blocking. An empty result means nothing is pressed.
	PollPressedKeys() ([]string, error)
	// WaitForAnyKey blocks until a key is pressed or ctx is done.
	WaitForAnyKey(ctx context.Context) (string, error)
	Close() error
}

// Flusher is implemented by inputs that queue key presses between polls.
// Flush discards presses queued so far so the next poll only reports keys
// pressed after it. A pending abort key survives the flush.
type Flusher interface {
	Flush() error
}

// Devices bundles the display and input for one session.
type Devices struct {
	Display Display
	Input   Input
}

// Close releases both devices and returns the first error.
func (d Devices) Close() error {
	var first error
	if d.Input != nil {
		if err := d.Input.Close(); err != nil {
			first = err
		}
	}
	if d.Display != nil {
		if err := d.Display.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
