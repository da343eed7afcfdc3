// Package session runs one participant through one task variant.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/CodexForgeBR/gfmt/internal/banner"
	"github.com/CodexForgeBR/gfmt/internal/config"
	"github.com/CodexForgeBR/gfmt/internal/device"
	"github.com/CodexForgeBR/gfmt/internal/exitcode"
	"github.com/CodexForgeBR/gfmt/internal/logging"
	"github.com/CodexForgeBR/gfmt/internal/notification"
	"github.com/CodexForgeBR/gfmt/internal/participant"
	"github.com/CodexForgeBR/gfmt/internal/recorder"
	"github.com/CodexForgeBR/gfmt/internal/response"
	"github.com/CodexForgeBR/gfmt/internal/stimulus"
	"github.com/CodexForgeBR/gfmt/internal/timing"
	"github.com/CodexForgeBR/gfmt/internal/trial"
)

// Tool is recorded in the session metadata.
const Tool = "gfmt"

// Controller drives the session lifecycle:
// Idle → Ready → Welcoming → Running → Finished | Aborted.
type Controller struct {
	Config      *config.Config
	Participant participant.Info
	// Devices is called once setup has succeeded.
	Devices device.Factory
	// Seed overrides Config.Seed when non-zero.
	Seed      int64
	Force     bool
	Version   string
	Simulated bool
	// LogFile redirects log lines to <out>/<subject>/results_<variant>.log
	// while the devices are held.
	LogFile  bool
	Notifier notification.Notifier
	Clock    timing.Clock
	// NewSessionID defaults to a random UUID.
	NewSessionID func() string

	state     State
	schedule  *trial.Schedule
	rec       *recorder.Recorder
	devices   device.Devices
	sessionID string
	seed      int64
	completed int
	started   timing.Stopwatch
	log       *os.File
	prevLog   io.Writer
}

// NewController creates a controller for one participant and variant.
func NewController(cfg *config.Config, info participant.Info, devices device.Factory) *Controller {
	return &Controller{
		Config:      cfg,
		Participant: info,
		Devices:     devices,
		Notifier: notification.Notifier{
			Webhook: cfg.NotifyWebhook,
			Channel: cfg.NotifyChannel,
			ChatID:  cfg.NotifyChatID,
		},
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// SessionID returns the id assigned during setup.
func (c *Controller) SessionID() string { return c.sessionID }

// Completed returns the number of trials recorded so far.
func (c *Controller) Completed() int { return c.completed }

// Run executes the session and returns an exit code.
func (c *Controller) Run(ctx context.Context) int {
	if c.Clock == nil {
		c.Clock = time.Now
	}
	c.started = timing.Start(c.Clock)

	if code := c.phaseSetup(); code >= 0 {
		return code
	}

	c.phaseBanner()

	if code := c.phaseAcquireDevices(); code >= 0 {
		return code
	}

	if code := c.phaseWelcome(ctx); code >= 0 {
		return code
	}

	return c.phaseTrials(ctx)
}

func (c *Controller) phaseSetup() int {
	logging.Phase("Preparing session")

	if err := c.Participant.Validate(); err != nil {
		logging.Error(fmt.Sprintf("Invalid participant info: %v", err))
		return exitcode.Error
	}

	catalog, err := stimulus.Resolve(c.Config, c.Participant.Variant)
	if err != nil {
		logging.Error(fmt.Sprintf("Failed to resolve stimuli: %v", err))
		return ExitCodeFor(err)
	}
	for _, cc := range catalog.Counts() {
		logging.Debug(fmt.Sprintf("category %s: %d stimuli", cc.Category, cc.Count))
	}

	seed := c.Seed
	if seed == 0 {
		seed = c.Config.Seed
	}
	rng, seed, err := trial.NewRand(seed)
	if err != nil {
		logging.Error(err.Error())
		return exitcode.Error
	}
	c.seed = seed

	schedule, err := trial.Build(catalog, rng)
	if err != nil {
		if errors.Is(err, trial.ErrEmptySchedule) {
			logging.Error(fmt.Sprintf("No stimuli found for variant %q under %s", c.Participant.Variant, c.Config.StimDir))
		} else {
			logging.Error(fmt.Sprintf("Failed to build schedule: %v", err))
		}
		return ExitCodeFor(err)
	}
	c.schedule = schedule

	fingerprint, err := catalog.Fingerprint()
	if err != nil {
		logging.Error(fmt.Sprintf("Failed to fingerprint stimuli: %v", err))
		return exitcode.Error
	}

	newID := c.NewSessionID
	if newID == nil {
		newID = uuid.NewString
	}
	c.sessionID = newID()

	meta := recorder.SessionMeta{
		SessionID:   c.sessionID,
		Tool:        Tool,
		Version:     c.Version,
		Participant: c.Participant,
		Config: recorder.ConfigSnapshot{
			Source:       c.Config.Source,
			StimDir:      c.Config.StimDir,
			StimTypes:    c.Config.StimTypes,
			ResponseKeys: c.Config.ResponseKeys,
			ITIMillis:    c.Config.InterTrialInterval.Milliseconds(),
		},
		Seed:               c.seed,
		CatalogFingerprint: fingerprint,
		TrialCount:         schedule.Len(),
		StartedAt:          c.started.StartedAt().UTC().Format(time.RFC3339),
	}

	rec, err := recorder.Open(c.Config, meta, recorder.Options{Force: c.Force, Clock: c.Clock})
	if err != nil {
		logging.Error(fmt.Sprintf("Failed to open results: %v", err))
		return ExitCodeFor(err)
	}
	c.rec = rec

	c.state = Ready
	return -1
}

func (c *Controller) phaseBanner() {
	banner.PrintStartupBanner(banner.Startup{
		SessionID: c.sessionID,
		SubjectID: c.Participant.SubjectID,
		Variant:   c.Participant.Variant,
		Trials:    c.schedule.Len(),
		Seed:      c.seed,
		Results:   c.rec.ResultsPath(),
		Simulated: c.Simulated,
	})
}

func (c *Controller) phaseAcquireDevices() int {
	devices, err := c.Devices()
	if err != nil {
		logging.Error(fmt.Sprintf("Failed to open display or input: %v", err))
		return c.fail(0, err)
	}
	c.devices = devices

	if c.LogFile {
		path := filepath.Join(c.rec.Dir(), recorder.LogFileName(c.Participant.Variant))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return c.fail(0, &recorder.PersistenceError{Op: "open log", Path: path, Err: err})
		}
		c.log = f
		c.prevLog = logging.SetOutput(f)
	}
	return -1
}

func (c *Controller) phaseWelcome(ctx context.Context) int {
	c.state = Welcoming
	logging.Info("Waiting for participant to start")

	d := c.devices.Display
	if err := d.ShowText(c.Config.WelcomeText, device.Center); err != nil {
		return c.fail(0, err)
	}
	if err := d.Present(); err != nil {
		return c.fail(0, err)
	}

	key, err := c.devices.Input.WaitForAnyKey(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return c.interrupted(0)
		}
		return c.fail(0, err)
	}
	if key == config.AbortKey {
		return c.aborted(0)
	}
	return -1
}

func (c *Controller) phaseTrials(ctx context.Context) int {
	c.state = Running
	total := c.schedule.Len()
	prompt := c.Config.Prompt()
	iti := c.Config.InterTrialInterval.Duration

	collector := response.NewCollector(c.devices.Input, c.Config.ResponseKeys, c.Config.PollInterval.Duration).
		WithClock(c.Clock)

	for {
		t, ok := c.schedule.Next()
		if !ok {
			break
		}
		logging.Trial(t.Ordinal, total, t.Stimulus.Identity)

		if err := c.present(t, prompt); err != nil {
			return c.fail(t.Ordinal, err)
		}

		ev, err := collector.Collect(ctx, t.Ordinal)
		if err != nil {
			if ctx.Err() != nil {
				return c.interrupted(t.Ordinal)
			}
			return c.fail(t.Ordinal, err)
		}
		if ev.TerminatedByAbort {
			return c.aborted(t.Ordinal)
		}

		err = c.rec.RecordTrial(t, ev)
		c.completed = c.rec.Meta().CompletedTrials
		if err != nil {
			return c.fail(t.Ordinal, err)
		}
		logging.Debug(fmt.Sprintf("response %q keys %v rt %s", ev.ResponseLabel, ev.PressedKeys, logging.FormatDuration(ev.ReactionTime)))

		// Blank screen between trials.
		if err := c.devices.Display.Present(); err != nil {
			return c.fail(t.Ordinal, err)
		}
		if c.schedule.Remaining() > 0 {
			if err := timing.Pause(ctx, iti); err != nil {
				return c.interrupted(0)
			}
		}
	}

	return c.finished()
}

func (c *Controller) present(t trial.Trial, prompt string) error {
	d := c.devices.Display
	if err := d.ShowImage(t.Stimulus.Path); err != nil {
		return fmt.Errorf("show %s: %w", t.Stimulus.Identity, err)
	}
	if err := d.ShowText(prompt, device.Bottom); err != nil {
		return fmt.Errorf("show prompt: %w", err)
	}
	if err := d.Present(); err != nil {
		return fmt.Errorf("present trial %d: %w", t.Ordinal, err)
	}
	return nil
}

func (c *Controller) finished() int {
	c.state = Finished
	code := c.end(recorder.StatusFinished, 0, exitcode.Success)
	if code == exitcode.Success {
		banner.PrintCompletionBanner(c.completed, c.started.Elapsed(), c.rec.ResultsPath())
	}
	c.notify(notification.EventFinished, code)
	return code
}

func (c *Controller) aborted(ordinal int) int {
	c.state = Aborted
	logging.Warn("Participant pressed escape, ending session")
	code := c.end(recorder.StatusAborted, ordinal, exitcode.Success)
	banner.PrintAbortedBanner(c.completed, c.schedule.Len(), ordinal)
	c.notify(notification.EventAborted, code)
	return code
}

func (c *Controller) interrupted(ordinal int) int {
	c.state = Aborted
	code := c.end(recorder.StatusInterrupted, ordinal, exitcode.Interrupted)
	banner.PrintInterruptedBanner(c.completed, c.schedule.Len(), c.rec.ResultsPath())
	c.notify(notification.EventInterrupted, code)
	return code
}

func (c *Controller) fail(ordinal int, err error) int {
	c.state = Failed
	code := ExitCodeFor(err)
	if code == exitcode.Success || code == exitcode.Interrupted {
		code = exitcode.Error
	}
	c.end(recorder.StatusFailed, ordinal, code)
	banner.PrintFailureBanner(err.Error())
	c.notify(notification.EventFailed, code)
	return code
}

// end releases the devices and closes the recorder with status. A failure
// to finalize the results turns a successful code into a persistence error.
func (c *Controller) end(status string, ordinal int, code int) int {
	if err := c.devices.Close(); err != nil {
		logging.Warn(fmt.Sprintf("Failed to release devices: %v", err))
	}
	c.devices = device.Devices{}

	if c.log != nil {
		logging.SetOutput(c.prevLog)
		c.log.Close()
		c.log = nil
	}

	if c.discardable(status) {
		if err := c.rec.Discard(); err != nil {
			logging.Error(fmt.Sprintf("Failed to remove empty results: %v", err))
		} else {
			logging.Info(fmt.Sprintf("No trials recorded, removed %s", c.rec.ResultsPath()))
		}
	} else if err := c.rec.Close(status, ordinal); err != nil {
		logging.Error(fmt.Sprintf("Failed to finalize results: %v", err))
		if code == exitcode.Success {
			code = exitcode.Persistence
		}
	}

	logging.Info(fmt.Sprintf("Session %s: %s (%d/%d trials recorded)", c.sessionID, status, c.completed, c.schedule.Len()))
	return code
}

// discardable reports whether the session ended before producing any data
// the participant or operator chose to keep. Such a session leaves nothing
// behind, so a corrected rerun does not need --force.
func (c *Controller) discardable(status string) bool {
	if c.completed > 0 {
		return false
	}
	return status == recorder.StatusFailed || status == recorder.StatusInterrupted
}

func (c *Controller) notify(event string, code int) {
	if !c.Notifier.Enabled() {
		return
	}
	msg := notification.FormatEvent(event, notification.Summary{
		SubjectID: c.Participant.SubjectID,
		Variant:   c.Participant.Variant,
		SessionID: c.sessionID,
		Completed: c.completed,
		Total:     c.schedule.Len(),
		ExitCode:  code,
	})
	if err := c.Notifier.Send(msg); err != nil {
		logging.Debug(fmt.Sprintf("notification not delivered: %v", err))
	}
}
