package device

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"letters lower-cased", "fJ", []string{"f", "j"}},
		{"lone escape", "\x1b", []string{KeyEscape}},
		{"ctrl-c", "\x03", []string{KeyEscape}},
		{"arrow csi", "\x1b[A\x1b[D", []string{KeyUp, KeyLeft}},
		{"arrow ss3", "\x1bOB", []string{KeyDown}},
		{"escape then letter", "\x1bf", []string{KeyEscape, "f"}},
		{"whitespace", " \r\n\t", []string{KeySpace, KeyReturn, KeyReturn, KeyTab}},
		{"backspace", "\x7f", []string{KeyBackspace}},
		{"digits and punctuation", "1/", []string{"1", "/"}},
		{"control bytes ignored", "\x01\x02", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeKeys([]byte(tt.in)))
		})
	}
}

// waitForKeys polls in until it reports at least one key.
func waitForKeys(t *testing.T, in *TerminalInput) []string {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		keys, err := in.PollPressedKeys()
		require.NoError(t, err)
		if len(keys) > 0 {
			return keys
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("no keys within timeout")
	return nil
}

func TestReaderInput_PollDedupesSincePreviousPoll(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	in := newReaderInput(r)

	keys, err := in.PollPressedKeys()
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = w.Write([]byte("ffj"))
	require.NoError(t, err)
	// Give the reader time to queue the whole burst.
	time.Sleep(20 * time.Millisecond)
	keys = waitForKeys(t, in)
	// All bytes arrive in one read, so one poll sees the whole burst.
	assert.Equal(t, []string{"f", "j"}, keys)

	keys, err = in.PollPressedKeys()
	require.NoError(t, err)
	assert.Empty(t, keys)
	require.NoError(t, in.Close())
}

// waitForQueued blocks until the reader has queued n keys.
func waitForQueued(t *testing.T, in *TerminalInput, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(in.keys) >= n }, time.Second, time.Millisecond)
}

func TestReaderInput_FlushDropsKeysPressedBetweenTrials(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	in := newReaderInput(r)

	_, err := w.Write([]byte("f"))
	require.NoError(t, err)
	assert.Equal(t, []string{"f"}, waitForKeys(t, in))

	// Pressed during the pause, before the next trial is on screen.
	_, err = w.Write([]byte("j"))
	require.NoError(t, err)
	waitForQueued(t, in, 1)

	require.NoError(t, in.Flush())
	keys, err := in.PollPressedKeys()
	require.NoError(t, err)
	assert.Empty(t, keys, "key from the pause must not answer the next trial")

	_, err = w.Write([]byte("f"))
	require.NoError(t, err)
	assert.Equal(t, []string{"f"}, waitForKeys(t, in))
}

func TestReaderInput_FlushKeepsEscape(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	in := newReaderInput(r)

	_, err := w.Write([]byte("j\x1bf"))
	require.NoError(t, err)
	waitForQueued(t, in, 3)

	require.NoError(t, in.Flush())
	keys, err := in.PollPressedKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{KeyEscape}, keys)

	keys, err = in.PollPressedKeys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestReaderInput_FlushAfterEOF(t *testing.T) {
	in := newReaderInput(bytes.NewReader(nil))

	require.Eventually(t, func() bool { return in.Flush() != nil }, time.Second, time.Millisecond)
	assert.True(t, errors.Is(in.Flush(), io.EOF))
}

func TestReaderInput_WaitForAnyKey(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	in := newReaderInput(r)

	go func() {
		time.Sleep(10 * time.Millisecond)
		_, _ = w.Write([]byte(" "))
	}()

	k, err := in.WaitForAnyKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, KeySpace, k)
}

func TestReaderInput_WaitForAnyKeyCancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	in := newReaderInput(r)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := in.WaitForAnyKey(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestReaderInput_EOF(t *testing.T) {
	in := newReaderInput(bytes.NewReader(nil))

	deadline := time.Now().Add(time.Second)
	for {
		_, err := in.PollPressedKeys()
		if err != nil {
			assert.True(t, errors.Is(err, io.EOF))
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("expected EOF error")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTerminalDisplay_PresentWritesFrame(t *testing.T) {
	var buf bytes.Buffer
	d := NewTerminalDisplay(&buf)

	require.NoError(t, d.ShowImage("/stimuli/short/same/001.jpg"))
	require.NoError(t, d.ShowText("F = same      J = different", Bottom))
	require.NoError(t, d.Present())

	out := buf.String()
	assert.Contains(t, out, clearScreen)
	assert.Contains(t, out, "001.jpg")
	assert.Contains(t, out, "F = same")

	buf.Reset()
	require.NoError(t, d.Present())
	assert.NotContains(t, buf.String(), "001.jpg", "buffer is cleared after present")

	buf.Reset()
	require.NoError(t, d.Close())
	assert.Contains(t, buf.String(), showCursor)
}

func TestRecordingDisplay(t *testing.T) {
	d := NewRecordingDisplay()
	require.NoError(t, d.ShowText("welcome", Center))
	require.NoError(t, d.Present())
	require.NoError(t, d.ShowImage("a.jpg"))
	require.NoError(t, d.ShowText("prompt", Bottom))
	require.NoError(t, d.Present())

	require.Len(t, d.Frames, 2)
	assert.Equal(t, "welcome", d.Frames[0].Text[Center])
	assert.Equal(t, "prompt", d.Frames[1].Text[Bottom])
	assert.Equal(t, []string{"a.jpg"}, d.Images())
}

func TestScriptedInput(t *testing.T) {
	in := NewScriptedInput([]string{"x"}, nil, []string{"f"})

	for _, want := range [][]string{{"x"}, nil, {"f"}, nil} {
		got, err := in.PollPressedKeys()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 4, in.Polls)

	k, err := in.WaitForAnyKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, KeySpace, k)
}

func TestRandomResponder_PressesOnlyResponseKeys(t *testing.T) {
	r := NewRandomResponder([]string{"f", "j"}, rand.New(rand.NewSource(1)))

	presses := 0
	for i := 0; i < 500; i++ {
		keys, err := r.PollPressedKeys()
		require.NoError(t, err)
		if len(keys) == 0 {
			continue
		}
		presses++
		require.Len(t, keys, 1)
		assert.Contains(t, []string{"f", "j"}, keys[0])
	}
	assert.Greater(t, presses, 10)
}

func TestDevicesClose(t *testing.T) {
	d := NewRecordingDisplay()
	in := NewScriptedInput()
	require.NoError(t, Devices{Display: d, Input: in}.Close())
	assert.True(t, d.Closed)
	assert.True(t, in.Closed)
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "center", Center.String())
	assert.Equal(t, "top", Top.String())
	assert.Equal(t, "bottom", Bottom.String())
}

func TestSimulatedFactory(t *testing.T) {
	devices, err := SimulatedFactory([]string{"f", "j"}, rand.New(rand.NewSource(3)))()
	require.NoError(t, err)
	assert.IsType(t, &RecordingDisplay{}, devices.Display)
	assert.IsType(t, &RandomResponder{}, devices.Input)
	require.NoError(t, devices.Close())
}

func TestTerminalFactory_RejectsNonTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer f.Close()

	_, err = TerminalFactory(f, io.Discard)()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a terminal")
}

func TestTerminalDisplay_FrameUsesCarriageReturns(t *testing.T) {
	var buf bytes.Buffer
	d := NewTerminalDisplay(&buf)
	require.NoError(t, d.ShowText("top line", Top))
	require.NoError(t, d.Present())

	out := buf.String()
	assert.Contains(t, out, "\r\n")
	assert.NotContains(t, strings.ReplaceAll(out, "\r\n", ""), "\n")
}
