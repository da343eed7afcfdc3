// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CodexForgeBR/gfmt/internal/config"
)

// Category describes one stimulus category fixture.
type Category struct {
	Name  string
	Files int
}

// WriteStimuli creates root/variant/<category>/NNN.jpg files with distinct
// contents and returns the paths written, in creation order.
func WriteStimuli(t *testing.T, root, variant string, categories ...Category) []string {
	t.Helper()

	var paths []string
	for _, c := range categories {
		dir := filepath.Join(root, variant, c.Name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		for i := 1; i <= c.Files; i++ {
			p := filepath.Join(dir, fmt.Sprintf("%03d.jpg", i))
			content := fmt.Sprintf("%s/%s/%d", variant, c.Name, i)
			require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
			paths = append(paths, p)
		}
	}
	return paths
}

// Config returns a valid session configuration rooted in fresh temp dirs
// with categories same/different and keys {f: same, j: different}.
func Config(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.OutPath = filepath.Join(t.TempDir(), "out")
	cfg.StimDir = filepath.Join(t.TempDir(), "stimuli")
	cfg.StimTypes = []string{"same", "different"}
	cfg.ResponseKeys = map[string]string{"f": "same", "j": "different"}
	cfg.InterTrialInterval = config.Duration{}
	cfg.PollInterval = config.Duration{}
	require.NoError(t, config.Validate(cfg))
	return cfg
}
