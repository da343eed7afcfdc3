package device

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// TerminalInput reads keys from a terminal in raw mode.
//
// Terminals report key presses, not key state, so PollPressedKeys returns
// the keys pressed since the previous poll. A background reader converts
// the blocking reads into that snapshot; it exits when the reader returns
// an error or EOF.
type TerminalInput struct {
	fd      int
	restore *term.State
	keys    chan string
	errs    chan error
	// abort carries an escape seen by Flush into the next poll.
	abort bool
}

// NewTerminalInput puts f into raw mode and starts reading keys from it.
// Ctrl-C is reported as escape because raw mode suppresses SIGINT.
func NewTerminalInput(f *os.File) (*TerminalInput, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("input %s is not a terminal", f.Name())
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enable raw mode: %w", err)
	}

	in := newReaderInput(f)
	in.fd = fd
	in.restore = state
	return in, nil
}

// newReaderInput starts the key reader on r without touching terminal modes.
func newReaderInput(r io.Reader) *TerminalInput {
	in := &TerminalInput{
		fd:   -1,
		keys: make(chan string, 64),
		errs: make(chan error, 1),
	}
	go in.read(r)
	return in
}

func (in *TerminalInput) read(r io.Reader) {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, k := range DecodeKeys(buf[:n]) {
			select {
			case in.keys <- k:
			default:
				// Drop keys nobody is polling for rather than block the reader.
			}
		}
		if err != nil {
			in.errs <- err
			close(in.keys)
			return
		}
	}
}

// PollPressedKeys returns the distinct keys pressed since the last poll.
// It must not be called concurrently with Flush.
func (in *TerminalInput) PollPressedKeys() ([]string, error) {
	var pressed []string
	seen := make(map[string]bool)
	if in.abort {
		in.abort = false
		seen[KeyEscape] = true
		pressed = append(pressed, KeyEscape)
	}
	for {
		select {
		case k, ok := <-in.keys:
			if !ok {
				if len(pressed) > 0 {
					return pressed, nil
				}
				return nil, in.readErr()
			}
			if !seen[k] {
				seen[k] = true
				pressed = append(pressed, k)
			}
		default:
			return pressed, nil
		}
	}
}

// Flush drops the keys queued since the last poll. Escape is kept so that an
// abort pressed between trials still ends the next one.
func (in *TerminalInput) Flush() error {
	for {
		select {
		case k, ok := <-in.keys:
			if !ok {
				return in.readErr()
			}
			if k == KeyEscape {
				in.abort = true
			}
		default:
			return nil
		}
	}
}

// WaitForAnyKey discards keys pressed earlier and blocks for the next one.
func (in *TerminalInput) WaitForAnyKey(ctx context.Context) (string, error) {
	if _, err := in.PollPressedKeys(); err != nil {
		return "", err
	}
	select {
	case k, ok := <-in.keys:
		if !ok {
			return "", in.readErr()
		}
		return k, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close restores the terminal mode.
func (in *TerminalInput) Close() error {
	if in.restore == nil {
		return nil
	}
	err := term.Restore(in.fd, in.restore)
	in.restore = nil
	return err
}

func (in *TerminalInput) readErr() error {
	select {
	case err := <-in.errs:
		in.errs <- err
		if err == io.EOF {
			return fmt.Errorf("input closed: %w", err)
		}
		return fmt.Errorf("read input: %w", err)
	default:
		return fmt.Errorf("input closed")
	}
}

// DecodeKeys converts raw terminal bytes into key identifiers.
func DecodeKeys(b []byte) []string {
	var keys []string
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case c == 0x1b:
			if i+2 < len(b) && (b[i+1] == '[' || b[i+1] == 'O') {
				if k := arrowKey(b[i+2]); k != "" {
					keys = append(keys, k)
					i += 2
					continue
				}
			}
			keys = append(keys, KeyEscape)
		case c == 0x03:
			keys = append(keys, KeyEscape)
		case c == '\r' || c == '\n':
			keys = append(keys, KeyReturn)
		case c == '\t':
			keys = append(keys, KeyTab)
		case c == ' ':
			keys = append(keys, KeySpace)
		case c == 0x7f || c == 0x08:
			keys = append(keys, KeyBackspace)
		case c >= 'A' && c <= 'Z':
			keys = append(keys, string(c+'a'-'A'))
		case c > ' ' && c < 0x7f:
			keys = append(keys, string(c))
		}
	}
	return keys
}

func arrowKey(c byte) string {
	switch c {
	case 'A':
		return KeyUp
	case 'B':
		return KeyDown
	case 'C':
		return KeyRight
	case 'D':
		return KeyLeft
	}
	return ""
}
