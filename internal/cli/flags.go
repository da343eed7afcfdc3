// Package cli provides flag binding and validation for the gfmt CLI.
package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/gfmt/internal/participant"
)

// Options holds every value set from the command line. Configuration
// fields are applied on top of the file and environment through
// BuildOverrides; the rest only exist for the current invocation.
type Options struct {
	ConfigFile  string
	Participant participant.Info

	Force    bool
	Simulate bool
	Verbose  bool

	// Configuration overrides.
	OutPath       string
	StimDir       string
	ITI           string
	Seed          int64
	RecordSQLite  bool
	NotifyWebhook string
	NotifyChannel string
	NotifyChatID  string
}

// BindRunFlags registers the flags of the run command.
func BindRunFlags(cmd *cobra.Command, opts *Options) {
	flags := cmd.Flags()

	// Participant
	flags.StringVar(&opts.Participant.SubjectID, "subject-id", "", "Participant identifier (required)")
	flags.StringVar(&opts.Participant.Age, "age", "", "Participant age")
	flags.StringVar(&opts.Participant.Gender, "gender", "", "Participant gender: male, female or other (required)")
	flags.StringVar(&opts.Participant.Variant, "variant", "", "Task variant: long or short (required)")
	flags.BoolVar(&opts.Participant.Debug, "debug", false, "Mark the session as a debug run and log every trial")

	// Session
	flags.BoolVar(&opts.Force, "force", false, "Overwrite existing results for this participant and variant")
	flags.BoolVar(&opts.Simulate, "simulate", false, "Run without a terminal, answering every trial at random")

	bindConfigFlags(cmd, opts)

	// Notifications
	flags.StringVar(&opts.NotifyWebhook, "notify-webhook", "", "OpenClaw webhook URL")
	flags.StringVar(&opts.NotifyChannel, "notify-channel", "", "Notification channel")
	flags.StringVar(&opts.NotifyChatID, "notify-chat-id", "", "Recipient chat ID")
}

// BindCheckFlags registers the flags of the check command.
func BindCheckFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVar(&opts.Participant.Variant, "variant", "", "Task variant: long or short (required)")
	bindConfigFlags(cmd, opts)
}

func bindConfigFlags(cmd *cobra.Command, opts *Options) {
	flags := cmd.Flags()
	flags.StringVar(&opts.ConfigFile, "config", "", "Path to config file (.json, .yaml, .yml, .toml)")
	flags.StringVar(&opts.OutPath, "out-path", "", "Results directory")
	flags.StringVar(&opts.StimDir, "stim-dir", "", "Stimulus root directory")
	flags.StringVar(&opts.ITI, "iti", "", "Inter-trial interval (e.g. 500ms)")
	flags.Int64Var(&opts.Seed, "seed", 0, "Shuffle seed; 0 draws a fresh one")
	flags.BoolVar(&opts.RecordSQLite, "record-sqlite", false, "Also record trials to results.db")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")
}

// ValidateRunFlags checks the run command's flags after parsing.
func ValidateRunFlags(cmd *cobra.Command, opts *Options) error {
	if err := validateConfigFile(opts); err != nil {
		return err
	}

	for _, name := range []string{"subject-id", "gender", "variant"} {
		if !cmd.Flags().Changed(name) {
			return fmt.Errorf("--%s is required", name)
		}
	}

	if err := opts.Participant.Validate(); err != nil {
		return err
	}
	return nil
}

// ValidateCheckFlags checks the check command's flags after parsing.
func ValidateCheckFlags(cmd *cobra.Command, opts *Options) error {
	if err := validateConfigFile(opts); err != nil {
		return err
	}
	if !cmd.Flags().Changed("variant") {
		return fmt.Errorf("--variant is required")
	}
	return participant.ValidateVariant(opts.Participant.Variant)
}

func validateConfigFile(opts *Options) error {
	// --config must exist if provided
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return fmt.Errorf("--config: %w", err)
		}
	}
	return nil
}

// BuildOverrides returns the configuration overrides for flags explicitly
// set on cmd, keyed like config.ApplyMapToConfig expects. Flags left at
// their defaults never override file or environment values.
func BuildOverrides(cmd *cobra.Command, opts *Options) map[string]string {
	overrides := make(map[string]string)
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	stringFlags := map[string]struct {
		key string
		val string
	}{
		"out-path":       {"OUT_PATH", opts.OutPath},
		"stim-dir":       {"STIM_DIR", opts.StimDir},
		"iti":            {"ITI", opts.ITI},
		"notify-webhook": {"NOTIFY_WEBHOOK", opts.NotifyWebhook},
		"notify-channel": {"NOTIFY_CHANNEL", opts.NotifyChannel},
		"notify-chat-id": {"NOTIFY_CHAT_ID", opts.NotifyChatID},
	}
	for flag, mapping := range stringFlags {
		if changed(flag) {
			overrides[mapping.key] = mapping.val
		}
	}

	if changed("seed") {
		overrides["SEED"] = strconv.FormatInt(opts.Seed, 10)
	}
	if changed("record-sqlite") {
		overrides["RECORD_SQLITE"] = strconv.FormatBool(opts.RecordSQLite)
	}

	return overrides
}
