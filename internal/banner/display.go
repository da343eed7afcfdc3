// Package banner prints the colored operator banners shown around a
// session: startup, completion, abort, interruption, failure and the
// catalog check summary.
package banner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/CodexForgeBR/gfmt/internal/logging"
	"github.com/CodexForgeBR/gfmt/internal/stimulus"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold).SprintFunc()
	successColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	errorColor   = color.New(color.FgRed, color.Bold).SprintFunc()
	warnColor    = color.New(color.FgYellow, color.Bold).SprintFunc()
)

const rule = "═══════════════════════════════════════════════════"

var out io.Writer = os.Stderr

// SetOutput redirects banner output and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	prev := out
	out = w
	return prev
}

// Startup describes a session about to run.
type Startup struct {
	SessionID string
	SubjectID string
	Variant   string
	Trials    int
	Seed      int64
	Results   string
	Simulated bool
}

// PrintStartupBanner displays the session header before the welcome screen.
//
// Example output:
//
//	═══════════════════════════════════════════════════
//	  gfmt - Glasgow Face Matching Test
//	═══════════════════════════════════════════════════
//	  Session:    0b5c3c9e-6f5e-4c43-9a3e-1b7c2c1d4e8a
//	  Subject:    P001
//	  Variant:    short
//	  Trials:     40
//	  Seed:       1717171717
//	  Results:    out/P001/results_short.csv
//	═══════════════════════════════════════════════════
func PrintStartupBanner(s Startup) {
	sep := headerColor(rule)
	fmt.Fprintln(out, sep)
	title := "  gfmt - Glasgow Face Matching Test"
	if s.Simulated {
		title += " (simulated participant)"
	}
	fmt.Fprintln(out, headerColor(title))
	fmt.Fprintln(out, sep)
	fmt.Fprintf(out, "  Session:    %s\n", s.SessionID)
	fmt.Fprintf(out, "  Subject:    %s\n", s.SubjectID)
	fmt.Fprintf(out, "  Variant:    %s\n", s.Variant)
	fmt.Fprintf(out, "  Trials:     %d\n", s.Trials)
	fmt.Fprintf(out, "  Seed:       %d\n", s.Seed)
	fmt.Fprintf(out, "  Results:    %s\n", s.Results)
	fmt.Fprintln(out, sep)
}

// PrintCompletionBanner displays the summary of a session that ran every
// trial.
func PrintCompletionBanner(trials int, elapsed time.Duration, results string) {
	sep := successColor(rule)
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out, successColor("  ✓ Session finished"))
	fmt.Fprintf(out, "  Trials:     %d\n", trials)
	fmt.Fprintf(out, "  Duration:   %s\n", logging.FormatDuration(elapsed))
	fmt.Fprintf(out, "  Results:    %s\n", results)
	fmt.Fprintln(out, sep)
}

// PrintAbortedBanner displays when the participant pressed the abort key.
func PrintAbortedBanner(completed, total, abortedAt int) {
	sep := warnColor(rule)
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out, warnColor("  ⚠ Session aborted by participant"))
	fmt.Fprintf(out, "  Recorded:   %d/%d trials\n", completed, total)
	if abortedAt > 0 {
		fmt.Fprintf(out, "  Aborted at: trial %d\n", abortedAt)
	}
	fmt.Fprintln(out, sep)
}

// PrintInterruptedBanner displays when the operator stopped the session.
func PrintInterruptedBanner(completed, total int, results string) {
	sep := warnColor(rule)
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out, warnColor("  ⚠ Session interrupted"))
	fmt.Fprintf(out, "  Recorded:   %d/%d trials\n", completed, total)
	if completed == 0 {
		fmt.Fprintln(out, "  Results:    none, the variant can be rerun as is")
	} else {
		fmt.Fprintf(out, "  Results:    %s\n", results)
		fmt.Fprintln(out, "  Rerun with --force to start the variant over")
	}
	fmt.Fprintln(out, sep)
}

// PrintFailureBanner displays a fatal error.
func PrintFailureBanner(reason string) {
	sep := errorColor(rule)
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out, errorColor("  ✗ Session failed"))
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out, "  Reason:")
	fmt.Fprintf(out, "  %s\n", reason)
	fmt.Fprintln(out, sep)
}

// PrintCheckBanner displays the stimulus counts a variant would present.
//
// Example output:
//
//	──────────────────────────────────────────────────
//	  Variant:      short
//	  same          20
//	  different     20
//	  Total:        40
//	  Fingerprint:  3a7bd3e2360a3d...
//	──────────────────────────────────────────────────
func PrintCheckBanner(variant string, counts []stimulus.CategoryCount, fingerprint string) {
	sep := strings.Repeat("─", 50)
	total := 0
	fmt.Fprintln(out, sep)
	fmt.Fprintf(out, "  %-14s%s\n", "Variant:", variant)
	for _, c := range counts {
		fmt.Fprintf(out, "  %-14s%d\n", c.Category, c.Count)
		total += c.Count
	}
	fmt.Fprintf(out, "  %-14s%d\n", "Total:", total)
	if fingerprint != "" {
		fmt.Fprintf(out, "  %-14s%s\n", "Fingerprint:", fingerprint)
	}
	fmt.Fprintln(out, sep)
}
