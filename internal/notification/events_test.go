package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatEvent(t *testing.T) {
	s := Summary{SubjectID: "P001", Variant: "short", SessionID: "abc", Completed: 3, Total: 6, ExitCode: 0}

	tests := []struct {
		event    string
		expected string
	}{
		{EventFinished, "✅ gfmt P001/short [abc] finished 3/6 trials (exit 0)"},
		{EventAborted, "⚠️ gfmt P001/short [abc] aborted by participant after 3/6 trials (exit 0)"},
		{EventInterrupted, "⏸️ gfmt P001/short [abc] interrupted after 3/6 trials (exit 0)"},
		{EventFailed, "❌ gfmt P001/short [abc] failed after 3/6 trials (exit 0)"},
		{"custom", "ℹ️ gfmt P001/short [abc] event: custom (exit 0)"},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatEvent(tt.event, s))
		})
	}
}
