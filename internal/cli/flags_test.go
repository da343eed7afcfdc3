package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodexForgeBR/gfmt/internal/participant"
)

func runCmd(t *testing.T, args ...string) (*cobra.Command, *Options) {
	t.Helper()
	opts := &Options{}
	cmd := &cobra.Command{Use: "run"}
	BindRunFlags(cmd, opts)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, opts
}

func checkCmd(t *testing.T, args ...string) (*cobra.Command, *Options) {
	t.Helper()
	opts := &Options{}
	cmd := &cobra.Command{Use: "check"}
	BindCheckFlags(cmd, opts)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, opts
}

func TestBindRunFlags_DefaultValues(t *testing.T) {
	_, opts := runCmd(t)

	assert.Empty(t, opts.ConfigFile)
	assert.Equal(t, participant.Info{}, opts.Participant)
	assert.False(t, opts.Force)
	assert.False(t, opts.Simulate)
	assert.False(t, opts.Verbose)
	assert.Zero(t, opts.Seed)
}

func TestBindRunFlags_Participant(t *testing.T) {
	_, opts := runCmd(t,
		"--subject-id", "P001", "--age", "31", "--gender", "female", "--variant", "short", "--debug",
	)

	assert.Equal(t, participant.Info{
		SubjectID: "P001",
		Age:       "31",
		Gender:    participant.Female,
		Variant:   participant.VariantShort,
		Debug:     true,
	}, opts.Participant)
}

func TestBindRunFlags_SessionToggles(t *testing.T) {
	_, opts := runCmd(t, "--force", "--simulate", "-v", "--seed", "42", "--record-sqlite")

	assert.True(t, opts.Force)
	assert.True(t, opts.Simulate)
	assert.True(t, opts.Verbose)
	assert.Equal(t, int64(42), opts.Seed)
	assert.True(t, opts.RecordSQLite)
}

func TestValidateRunFlags(t *testing.T) {
	valid := []string{"--subject-id", "P001", "--gender", "male", "--variant", "long"}

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "valid", args: valid},
		{name: "missing subject", args: []string{"--gender", "male", "--variant", "long"}, wantErr: "--subject-id is required"},
		{name: "missing gender", args: []string{"--subject-id", "P1", "--variant", "long"}, wantErr: "--gender is required"},
		{name: "missing variant", args: []string{"--subject-id", "P1", "--gender", "male"}, wantErr: "--variant is required"},
		{name: "bad gender", args: []string{"--subject-id", "P1", "--gender", "robot", "--variant", "long"}, wantErr: "gender"},
		{name: "bad variant", args: []string{"--subject-id", "P1", "--gender", "male", "--variant", "medium"}, wantErr: "variant"},
		{name: "path in subject", args: []string{"--subject-id", "../P1", "--gender", "male", "--variant", "long"}, wantErr: "subject"},
		{name: "missing config file", args: append([]string{"--config", "/does/not/exist.yaml"}, valid...), wantErr: "--config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, opts := runCmd(t, tt.args...)
			err := ValidateRunFlags(cmd, opts)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateRunFlags_ExistingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gfmt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("out_path: out\n"), 0o644))

	cmd, opts := runCmd(t, "--config", path, "--subject-id", "P001", "--gender", "other", "--variant", "short")
	assert.NoError(t, ValidateRunFlags(cmd, opts))
}

func TestValidateCheckFlags(t *testing.T) {
	cmd, opts := checkCmd(t, "--variant", "short")
	assert.NoError(t, ValidateCheckFlags(cmd, opts))

	cmd, opts = checkCmd(t)
	assert.EqualError(t, ValidateCheckFlags(cmd, opts), "--variant is required")

	cmd, opts = checkCmd(t, "--variant", "tiny")
	assert.Error(t, ValidateCheckFlags(cmd, opts))
}

func TestBuildOverrides_OnlyChangedFlags(t *testing.T) {
	cmd, opts := runCmd(t)
	assert.Empty(t, BuildOverrides(cmd, opts))

	cmd, opts = runCmd(t,
		"--out-path", "/data/out",
		"--stim-dir", "/data/stim",
		"--iti", "1s",
		"--seed", "0",
		"--record-sqlite=false",
		"--notify-chat-id", "99",
	)
	assert.Equal(t, map[string]string{
		"OUT_PATH":       "/data/out",
		"STIM_DIR":       "/data/stim",
		"ITI":            "1s",
		"SEED":           "0",
		"RECORD_SQLITE":  "false",
		"NOTIFY_CHAT_ID": "99",
	}, BuildOverrides(cmd, opts))
}

func TestBuildOverrides_CheckCommand(t *testing.T) {
	cmd, opts := checkCmd(t, "--variant", "long", "--stim-dir", "/s")
	assert.Equal(t, map[string]string{"STIM_DIR": "/s"}, BuildOverrides(cmd, opts))
}
