package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// wellKnownPaths lists the config files checked when no --config flag is
// given, in priority order, relative to the working directory.
var wellKnownPaths = []string{
	"gfmt.json",
	"gfmt.yaml",
	"gfmt.yml",
	"gfmt.toml",
	"config/gfmt.json",
	"config/gfmt.yaml",
	"config/gfmt.yml",
	"config/gfmt.toml",
}

// Discover locates the config file. An explicit path must exist. Without
// one, the first existing well-known path is returned; if none exists the
// result is "" and configuration comes from the environment and flags only.
func Discover(explicit string) (string, error) {
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", fmt.Errorf("resolving config path: %w", err)
		}
		if _, err := os.Stat(abs); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return abs, nil
	}

	for _, rel := range wellKnownPaths {
		abs, err := filepath.Abs(rel)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			return abs, nil
		}
	}
	return "", nil
}
