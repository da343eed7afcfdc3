// Package logging provides colored, leveled log output for the gfmt CLI.
//
// Output goes to stderr by default so it never interleaves with the
// participant-facing frames the terminal display draws on stdout. Debug
// output is suppressed unless verbose mode is enabled via SetVerbose(true).
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

var (
	// verbose controls whether Debug() produces output.
	verbose bool

	out io.Writer = os.Stderr
)

// Color printers for each log level.
var (
	infoPrefix    = color.New(color.FgBlue).SprintFunc()
	successPrefix = color.New(color.FgGreen).SprintFunc()
	warnPrefix    = color.New(color.FgYellow).SprintFunc()
	errorPrefix   = color.New(color.FgRed).SprintFunc()
	phasePrefix   = color.New(color.FgCyan).SprintFunc()
	trialPrefix   = color.New(color.FgMagenta).SprintFunc()
	debugPrefix   = color.New(color.FgBlue).SprintFunc()
)

// SetVerbose enables or disables Debug output.
func SetVerbose(v bool) {
	verbose = v
}

// SetOutput redirects all log output to w and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	prev := out
	out = w
	return prev
}

// Info prints an informational message in blue.
func Info(msg string) {
	fmt.Fprintln(out, infoPrefix("[INFO]")+" "+msg)
}

// Success prints a success message in green.
func Success(msg string) {
	fmt.Fprintln(out, successPrefix("[SUCCESS]")+" "+msg)
}

// Warn prints a warning message in yellow.
func Warn(msg string) {
	fmt.Fprintln(out, warnPrefix("[WARN]")+" "+msg)
}

// Error prints an error message in red.
func Error(msg string) {
	fmt.Fprintln(out, errorPrefix("[ERROR]")+" "+msg)
}

// Phase prints a lifecycle header in cyan, surrounded by separator lines.
func Phase(msg string) {
	sep := phasePrefix("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out, phasePrefix("[PHASE]")+" "+msg)
	fmt.Fprintln(out, sep)
}

// Trial prints a one-line trial summary in magenta.
func Trial(ordinal, total int, msg string) {
	fmt.Fprintf(out, "%s %s\n", trialPrefix(fmt.Sprintf("[TRIAL %d/%d]", ordinal, total)), msg)
}

// Debug prints a debug message in blue, only when verbose mode is enabled.
func Debug(msg string) {
	if !verbose {
		return
	}
	fmt.Fprintln(out, debugPrefix("[DEBUG]")+" "+msg)
}

// FormatDuration converts a duration to a compact human-readable string.
// Sub-second durations are shown in milliseconds.
//
// Examples:
//
//	FormatDuration(350*time.Millisecond) => "350ms"
//	FormatDuration(45*time.Second)       => "45s"
//	FormatDuration(90*time.Second)       => "1m 30s"
//	FormatDuration(3661*time.Second)     => "1h 1m 1s"
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	seconds := int(d.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
