package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/CodexForgeBR/gfmt/internal/participant"
)

// SchemaVersion is bumped whenever the metadata or result layout changes.
const SchemaVersion = 1

// Status constants
const (
	StatusInProgress  = "IN_PROGRESS"
	StatusFinished    = "FINISHED"
	StatusAborted     = "ABORTED"
	StatusInterrupted = "INTERRUPTED"
	StatusFailed      = "FAILED"
)

// SessionMeta describes one session. It is written next to the results
// stream when the session opens and rewritten after every recorded trial,
// so a crash leaves an accurate count of the trials on disk.
type SessionMeta struct {
	SchemaVersion      int              `json:"schema_version"`
	SessionID          string           `json:"session_id"`
	Tool               string           `json:"tool"`
	Version            string           `json:"version"`
	Participant        participant.Info `json:"participant"`
	Config             ConfigSnapshot   `json:"config"`
	Seed               int64            `json:"seed"`
	CatalogFingerprint string           `json:"catalog_fingerprint"`
	TrialCount         int              `json:"trial_count"`
	ResultsFile        string           `json:"results_file"`
	StartedAt          string           `json:"started_at"`
	LastUpdated        string           `json:"last_updated"`
	Status             string           `json:"status"`
	CompletedTrials    int              `json:"completed_trials"`
	AbortedAtTrial     int              `json:"aborted_at_trial,omitempty"`
}

// ConfigSnapshot is the part of the configuration needed to interpret the
// results later.
type ConfigSnapshot struct {
	Source       string            `json:"source,omitempty"`
	StimDir      string            `json:"stim_dir"`
	StimTypes    []string          `json:"stim_type"`
	ResponseKeys map[string]string `json:"response_keys"`
	ITIMillis    int64             `json:"inter_trial_interval_ms"`
}

// SaveMeta writes meta as indented JSON to path, atomically via a temp
// file and rename.
func SaveMeta(meta *SessionMeta, path string) error {
	data, err := json.MarshalIndent(meta, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal session meta: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create meta dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session meta temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename session meta file: %w", err)
	}
	return nil
}

// LoadMeta reads and parses the session metadata at path.
func LoadMeta(path string) (*SessionMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session meta: %w", err)
	}

	var meta SessionMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("unmarshal session meta: %w", err)
	}
	return &meta, nil
}
