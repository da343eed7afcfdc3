package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestHelpTemplate_ContainsKeyFlags(t *testing.T) {
	requiredFlags := []string{
		"--subject-id",
		"--age",
		"--gender",
		"--variant",
		"--debug",
		"--force",
		"--simulate",
		"--config",
		"--out-path",
		"--stim-dir",
		"--iti",
		"--seed",
		"--record-sqlite",
		"--verbose",
		"--notify-webhook",
		"--notify-channel",
		"--notify-chat-id",
	}

	for _, flag := range requiredFlags {
		assert.Contains(t, helpTemplate, flag, "help should document %s", flag)
	}
}

func TestHelpTemplate_DocumentsExitCodes(t *testing.T) {
	for _, name := range []string{"Success", "Error", "ConfigError", "EmptySchedule", "Persistence", "Interrupted", "130"} {
		assert.Contains(t, helpTemplate, name)
	}
}

func TestHelpTemplate_DocumentsCommands(t *testing.T) {
	for _, name := range []string{"gfmt run", "gfmt check", "gfmt version"} {
		assert.Contains(t, helpTemplate, name)
	}
}

func TestSetCustomHelp(t *testing.T) {
	cmd := &cobra.Command{Use: "gfmt"}
	SetCustomHelp(cmd)
	assert.Equal(t, helpTemplate, cmd.HelpTemplate())
}
