package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Error reports a configuration that is missing, malformed or invalid.
// It is always fatal and is raised before any display is opened.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	if e.Source == "" {
		return "config: " + e.Err.Error()
	}
	return fmt.Sprintf("config %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// LoadFile decodes the config file at path into cfg. The format is chosen
// by extension: .json, .yaml/.yml or .toml. Unknown fields are rejected so
// that a misspelled key never silently falls back to a default.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("parse json: %w", err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("parse yaml: %w", err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return fmt.Errorf("parse toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return fmt.Errorf("parse toml: unknown keys: %s", strings.Join(keys, ", "))
		}
	default:
		return fmt.Errorf("unsupported config format %q (want .json, .yaml, .yml or .toml)", filepath.Ext(path))
	}

	cfg.Source = path
	return nil
}

// ApplyEnv overlays GFMT_* environment variables onto cfg. Variables that
// are not set leave the current value untouched.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadWithPrecedence assembles a Config by merging sources in order of
// increasing priority:
//
//  1. Built-in defaults
//  2. Config file (path, or the first discovered well-known file)
//  3. GFMT_* environment variables
//  4. CLI overrides (cliOverrides map)
//
// The merged configuration is normalized and validated. Every failure is
// returned as *Error.
func LoadWithPrecedence(path string, cliOverrides map[string]string) (*Config, error) {
	cfg := NewDefaultConfig()

	resolved, err := Discover(path)
	if err != nil {
		return nil, &Error{Source: path, Err: err}
	}
	if resolved != "" {
		if err := LoadFile(resolved, cfg); err != nil {
			return nil, &Error{Source: resolved, Err: err}
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, &Error{Source: "environment", Err: err}
	}

	if len(cliOverrides) > 0 {
		if err := ApplyMapToConfig(cfg, cliOverrides); err != nil {
			return nil, &Error{Source: "flags", Err: err}
		}
	}

	normalize(cfg)
	if err := Validate(cfg); err != nil {
		return nil, &Error{Source: cfg.Source, Err: err}
	}
	return cfg, nil
}

// ApplyMapToConfig sets fields on cfg from CLI override pairs. Keys use the
// environment variable names without the GFMT_ prefix (e.g. "OUT_PATH").
// Unknown keys are silently ignored; unparsable values are errors.
func ApplyMapToConfig(cfg *Config, m map[string]string) error {
	// Deterministic order keeps the first reported error stable.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := m[key]
		switch key {
		case "OUT_PATH":
			cfg.OutPath = value
		case "STIM_DIR":
			cfg.StimDir = value
		case "ITI":
			if err := cfg.InterTrialInterval.UnmarshalText([]byte(value)); err != nil {
				return fmt.Errorf("ITI: %w", err)
			}
		case "SEED":
			v, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("SEED: %w", err)
			}
			cfg.Seed = v
		case "RECORD_SQLITE":
			cfg.RecordSQLite = parseBool(value)
		case "NOTIFY_WEBHOOK":
			cfg.NotifyWebhook = value
		case "NOTIFY_CHANNEL":
			cfg.NotifyChannel = value
		case "NOTIFY_CHAT_ID":
			cfg.NotifyChatID = value
		}
	}
	return nil
}

// Validate checks the invariants every session relies on.
func Validate(cfg *Config) error {
	var missing []string
	if cfg.OutPath == "" {
		missing = append(missing, "out_path")
	}
	if cfg.StimDir == "" {
		missing = append(missing, "stim_dir")
	}
	if len(cfg.StimTypes) == 0 {
		missing = append(missing, "stim_type")
	}
	if len(cfg.ResponseKeys) == 0 {
		missing = append(missing, "response_keys")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	seen := make(map[string]bool, len(cfg.StimTypes))
	for _, st := range cfg.StimTypes {
		if st == "" || strings.ContainsAny(st, `/\`) || st == "." || st == ".." {
			return fmt.Errorf("stim_type %q is not a plain directory name", st)
		}
		if seen[st] {
			return fmt.Errorf("stim_type %q listed twice", st)
		}
		seen[st] = true
	}

	if len(cfg.ResponseKeys) != 2 {
		return fmt.Errorf("response_keys must have exactly 2 entries, got %d", len(cfg.ResponseKeys))
	}
	labels := make(map[string]string, 2)
	for key, label := range cfg.ResponseKeys {
		if key == "" {
			return errors.New("response_keys contains an empty key")
		}
		if key == AbortKey {
			return fmt.Errorf("response key %q is reserved for aborting the session", AbortKey)
		}
		if label == "" {
			return fmt.Errorf("response key %q has an empty label", key)
		}
		if strings.Contains(label, LabelSeparator) {
			return fmt.Errorf("response label %q must not contain %q", label, LabelSeparator)
		}
		if other, dup := labels[label]; dup {
			return fmt.Errorf("response keys %q and %q share label %q", other, key, label)
		}
		labels[label] = key
	}

	if cfg.InterTrialInterval.Duration < 0 {
		return fmt.Errorf("inter_trial_interval must not be negative")
	}
	if cfg.PollInterval.Duration < 0 {
		return fmt.Errorf("poll_interval must not be negative")
	}
	return nil
}

// normalize lower-cases key identifiers and trims labels so that "F" in a
// config file matches the "f" reported by input devices.
func normalize(cfg *Config) {
	if len(cfg.ResponseKeys) > 0 {
		keys := make(map[string]string, len(cfg.ResponseKeys))
		for k, v := range cfg.ResponseKeys {
			keys[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
		}
		cfg.ResponseKeys = keys
	}
	for i, st := range cfg.StimTypes {
		cfg.StimTypes[i] = strings.TrimSpace(st)
	}
}

// parseBool interprets common boolean representations.
// "true", "1", "yes" (case-insensitive) return true; everything else returns false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
