// Package recorder persists one record per completed trial. Every record
// is durable before the next trial starts, so an interrupted session
// leaves a valid prefix of its results on disk.
package recorder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CodexForgeBR/gfmt/internal/config"
	"github.com/CodexForgeBR/gfmt/internal/response"
	"github.com/CodexForgeBR/gfmt/internal/timing"
	"github.com/CodexForgeBR/gfmt/internal/trial"
)

// ResultsFileName returns the results stream name for a variant.
func ResultsFileName(variant string) string {
	return "results_" + variant + ".csv"
}

// MetaFileName returns the metadata sidecar name for a variant.
func MetaFileName(variant string) string {
	return "results_" + variant + ".meta.json"
}

// LogFileName returns the session log name for a variant.
func LogFileName(variant string) string {
	return "results_" + variant + ".log"
}

// Options tune how a recorder opens its output.
type Options struct {
	// Force truncates an existing results stream instead of refusing it.
	Force bool
	// Clock stamps records; defaults to time.Now.
	Clock timing.Clock
}

// Recorder fans every completed trial out to its sinks and keeps the
// metadata sidecar current.
type Recorder struct {
	dir      string
	metaPath string
	meta     SessionMeta
	csv      *CSVSink
	db       *SQLiteSink
	sinks    []Sink
	now      timing.Clock
	closed   bool
}

// Open prepares out_path/<subject_id>/ and opens the sinks for the
// session described by meta.
func Open(cfg *config.Config, meta SessionMeta, opts Options) (*Recorder, error) {
	subject := meta.Participant.SubjectID
	variant := meta.Participant.Variant
	if subject == "" || variant == "" {
		return nil, errors.New("session meta is missing subject id or variant")
	}

	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	dir := filepath.Join(cfg.OutPath, subject)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &PersistenceError{Op: "create dir", Path: dir, Err: err}
	}

	csvPath := filepath.Join(dir, ResultsFileName(variant))
	csvSink, err := OpenCSV(csvPath, opts.Force)
	if err != nil {
		return nil, err
	}

	r := &Recorder{
		dir:      dir,
		metaPath: filepath.Join(dir, MetaFileName(variant)),
		meta:     meta,
		csv:      csvSink,
		sinks:    []Sink{csvSink},
		now:      now,
	}

	stamp := now().UTC().Format(time.RFC3339)
	r.meta.SchemaVersion = SchemaVersion
	r.meta.ResultsFile = ResultsFileName(variant)
	r.meta.Status = StatusInProgress
	r.meta.CompletedTrials = 0
	r.meta.AbortedAtTrial = 0
	if r.meta.StartedAt == "" {
		r.meta.StartedAt = stamp
	}
	r.meta.LastUpdated = stamp

	if cfg.RecordSQLite {
		dbSink, err := OpenSQLite(filepath.Join(dir, DBFile), &r.meta)
		if err != nil {
			csvSink.Close()
			return nil, err
		}
		r.db = dbSink
		r.sinks = append(r.sinks, dbSink)
	}

	if err := r.saveMeta(); err != nil {
		r.closeSinks()
		return nil, err
	}
	return r, nil
}

// Dir returns the participant output directory.
func (r *Recorder) Dir() string { return r.dir }

// ResultsPath returns the location of the results stream.
func (r *Recorder) ResultsPath() string { return r.csv.Path() }

// MetaPath returns the location of the metadata sidecar.
func (r *Recorder) MetaPath() string { return r.metaPath }

// Meta returns a copy of the current metadata.
func (r *Recorder) Meta() SessionMeta { return r.meta }

// RecordTrial persists the outcome of a completed trial.
func (r *Recorder) RecordTrial(t trial.Trial, ev response.Event) error {
	if r.closed {
		return errors.New("recorder is closed")
	}
	if ev.TerminatedByAbort {
		return ErrAbortedTrial
	}
	if ev.TrialOrdinal != t.Ordinal {
		return fmt.Errorf("event for trial %d does not match trial %d", ev.TrialOrdinal, t.Ordinal)
	}

	rec := Record{
		SessionID:    r.meta.SessionID,
		SubjectID:    r.meta.Participant.SubjectID,
		Variant:      r.meta.Participant.Variant,
		Trial:        t.Ordinal,
		Stimulus:     t.Stimulus.Identity,
		Category:     t.Stimulus.Category,
		PressedKeys:  ev.PressedKeys,
		Response:     ev.ResponseLabel,
		Correct:      ev.ResponseLabel == t.Stimulus.Category,
		ReactionTime: ev.ReactionTime,
		RecordedAt:   r.now(),
	}

	// The CSV stream is the first sink and is authoritative: once its row
	// is synced the trial counts as completed even if a mirror fails.
	var sinkErr error
	for i, s := range r.sinks {
		if err := s.Append(rec); err != nil {
			if i == 0 {
				return err
			}
			sinkErr = err
			break
		}
	}

	r.meta.CompletedTrials++
	r.meta.LastUpdated = rec.RecordedAt.UTC().Format(time.RFC3339)
	return errors.Join(sinkErr, r.saveMeta())
}

// Close writes the final status and releases the sinks. abortedAt is the
// ordinal of the trial that was in progress when the session ended early,
// or 0.
func (r *Recorder) Close(status string, abortedAt int) error {
	if r.closed {
		return nil
	}
	r.closed = true

	r.meta.Status = status
	r.meta.AbortedAtTrial = abortedAt
	r.meta.LastUpdated = r.now().UTC().Format(time.RFC3339)

	var errs []error
	if r.db != nil {
		if err := r.db.UpdateMeta(&r.meta); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.saveMeta(); err != nil {
		errs = append(errs, err)
	}
	if err := r.closeSinks(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Discard releases the sinks and removes everything the session wrote, so
// the same subject and variant can be run again without --force. It is
// refused once a trial has been recorded.
func (r *Recorder) Discard() error {
	if r.closed {
		return nil
	}
	if r.meta.CompletedTrials > 0 {
		return fmt.Errorf("refusing to discard session %s with %d recorded trials", r.meta.SessionID, r.meta.CompletedTrials)
	}
	r.closed = true

	var errs []error
	if r.db != nil {
		if err := r.db.DeleteSession(r.meta.SessionID); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.closeSinks(); err != nil {
		errs = append(errs, err)
	}
	for _, path := range []string{r.csv.Path(), r.metaPath} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, &PersistenceError{Op: "remove", Path: path, Err: err})
		}
	}
	return errors.Join(errs...)
}

func (r *Recorder) saveMeta() error {
	if err := SaveMeta(&r.meta, r.metaPath); err != nil {
		return &PersistenceError{Op: "write meta", Path: r.metaPath, Err: err}
	}
	return nil
}

func (r *Recorder) closeSinks() error {
	var errs []error
	for _, s := range r.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
