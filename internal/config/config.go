// Package config defines the gfmt session configuration and its loader.
//
// Configuration is assembled from multiple sources with a strict precedence
// chain: built-in defaults < config file < GFMT_* environment variables <
// CLI flag overrides. The merged result is validated once and treated as
// immutable for the rest of the session.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// AbortKey is the reserved key that ends a session from any trial.
const AbortKey = "escape"

// LabelSeparator joins the labels of simultaneously pressed response keys.
const LabelSeparator = "+"

// DefaultWelcomeText is shown before the first trial.
const DefaultWelcomeText = `In this task you will see pairs of face photographs.

For each pair, decide whether the two photographs show the SAME person
or two DIFFERENT people, and press the matching key.

There is no time limit. Press any key to begin.`

// Duration wraps time.Duration so every config source can express it as a
// Go duration string ("500ms", "1s").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText renders the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds every configuration field for a gfmt session.
type Config struct {
	// Output and stimulus locations.
	OutPath string `json:"out_path" yaml:"out_path" toml:"out_path" env:"GFMT_OUT_PATH"`
	StimDir string `json:"stim_dir" yaml:"stim_dir" toml:"stim_dir" env:"GFMT_STIM_DIR"`

	// StimTypes lists the stimulus categories in presentation-catalog order.
	StimTypes []string `json:"stim_type" yaml:"stim_type" toml:"stim_type" env:"GFMT_STIM_TYPE" envSeparator:","`

	// ResponseKeys maps exactly two key identifiers to response labels.
	ResponseKeys map[string]string `json:"response_keys" yaml:"response_keys" toml:"response_keys" env:"GFMT_RESPONSE_KEYS"`

	// Timing.
	InterTrialInterval Duration `json:"inter_trial_interval" yaml:"inter_trial_interval" toml:"inter_trial_interval" env:"GFMT_ITI"`
	PollInterval       Duration `json:"poll_interval" yaml:"poll_interval" toml:"poll_interval" env:"GFMT_POLL_INTERVAL"`

	// Participant-facing text. An empty prompt is derived from ResponseKeys.
	PromptText  string `json:"prompt_text" yaml:"prompt_text" toml:"prompt_text" env:"GFMT_PROMPT_TEXT"`
	WelcomeText string `json:"welcome_text" yaml:"welcome_text" toml:"welcome_text" env:"GFMT_WELCOME_TEXT"`

	// Persistence.
	RecordSQLite bool `json:"record_sqlite" yaml:"record_sqlite" toml:"record_sqlite" env:"GFMT_RECORD_SQLITE"`

	// Seed fixes the trial order. Zero draws a fresh seed per session.
	Seed int64 `json:"seed" yaml:"seed" toml:"seed" env:"GFMT_SEED"`

	// Experimenter notification settings.
	NotifyWebhook string `json:"notify_webhook" yaml:"notify_webhook" toml:"notify_webhook" env:"GFMT_NOTIFY_WEBHOOK"`
	NotifyChannel string `json:"notify_channel" yaml:"notify_channel" toml:"notify_channel" env:"GFMT_NOTIFY_CHANNEL"`
	NotifyChatID  string `json:"notify_chat_id" yaml:"notify_chat_id" toml:"notify_chat_id" env:"GFMT_NOTIFY_CHAT_ID"`

	// Source is the file the configuration was read from, if any.
	Source string `json:"-" yaml:"-" toml:"-"`
}

// NewDefaultConfig returns a Config populated with all built-in default values.
func NewDefaultConfig() *Config {
	return &Config{
		InterTrialInterval: Duration{500 * time.Millisecond},
		PollInterval:       Duration{2 * time.Millisecond},
		WelcomeText:        DefaultWelcomeText,
		NotifyWebhook:      "http://127.0.0.1:18789/webhook",
		NotifyChannel:      "telegram",
	}
}

// ResponseKeyIDs returns the configured response keys in sorted order.
func (c *Config) ResponseKeyIDs() []string {
	keys := make([]string, 0, len(c.ResponseKeys))
	for k := range c.ResponseKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Prompt returns the response prompt shown under every stimulus.
func (c *Config) Prompt() string {
	if c.PromptText != "" {
		return c.PromptText
	}
	parts := make([]string, 0, len(c.ResponseKeys))
	for _, k := range c.ResponseKeyIDs() {
		parts = append(parts, fmt.Sprintf("%s = %s", strings.ToUpper(k), c.ResponseKeys[k]))
	}
	return strings.Join(parts, "      ")
}
