package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/gfmt/internal/banner"
	"github.com/CodexForgeBR/gfmt/internal/cli"
	"github.com/CodexForgeBR/gfmt/internal/config"
	"github.com/CodexForgeBR/gfmt/internal/device"
	"github.com/CodexForgeBR/gfmt/internal/exitcode"
	"github.com/CodexForgeBR/gfmt/internal/logging"
	"github.com/CodexForgeBR/gfmt/internal/session"
	sighandler "github.com/CodexForgeBR/gfmt/internal/signal"
	"github.com/CodexForgeBR/gfmt/internal/stimulus"
	"github.com/CodexForgeBR/gfmt/internal/trial"
)

// version vars injected via ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	os.Exit(execute(os.Args[1:]))
}

func execute(args []string) int {
	code := exitcode.Success

	rootCmd := &cobra.Command{
		Use:           "gfmt",
		Short:         "Glasgow Face Matching Test trial runner",
		Long:          "gfmt presents face pairs to a participant, collects a same/different keypress per pair, and records every trial as it happens.",
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runOpts := &cli.Options{}
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Present the task to one participant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.ValidateRunFlags(cmd, runOpts); err != nil {
				return err
			}
			code = runSession(cmd, runOpts)
			return nil
		},
	}
	cli.BindRunFlags(runCmd, runOpts)

	checkOpts := &cli.Options{}
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Resolve the stimulus set for a variant and print its counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.ValidateCheckFlags(cmd, checkOpts); err != nil {
				return err
			}
			code = runCheck(cmd, checkOpts)
			return nil
		},
	}
	cli.BindCheckFlags(checkCmd, checkOpts)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version, commit, build date",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "gfmt "+versionString())
		},
	}

	rootCmd.AddCommand(runCmd, checkCmd, versionCmd)
	cli.SetCustomHelp(rootCmd)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		logging.Error(err.Error())
		return exitcode.Error
	}
	return code
}

// loadConfig applies the full precedence chain with overrides taken from
// the flags the user actually set.
func loadConfig(cmd *cobra.Command, opts *cli.Options) (*config.Config, error) {
	logging.SetVerbose(opts.Verbose || opts.Participant.Debug)

	cfg, err := config.LoadWithPrecedence(opts.ConfigFile, cli.BuildOverrides(cmd, opts))
	if err != nil {
		return nil, err
	}
	if cfg.Source != "" {
		logging.Debug("config: " + cfg.Source)
	}
	return cfg, nil
}

func runSession(cmd *cobra.Command, opts *cli.Options) int {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		logging.Error(err.Error())
		return session.ExitCodeFor(err)
	}

	factory := device.TerminalFactory(os.Stdin, os.Stdout)
	if opts.Simulate {
		rng, _, err := trial.NewRand(0)
		if err != nil {
			logging.Error(err.Error())
			return exitcode.Error
		}
		factory = device.SimulatedFactory(cfg.ResponseKeyIDs(), rng)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := sighandler.SetupSignalHandler(ctx, cancel, func(sig os.Signal) {
		logging.Warn(fmt.Sprintf("Received %s, saving results and stopping", sig))
	})
	defer handler.Stop()

	ctrl := session.NewController(cfg, opts.Participant, factory)
	ctrl.Force = opts.Force
	ctrl.Version = version
	ctrl.Simulated = opts.Simulate
	ctrl.LogFile = !opts.Simulate

	return ctrl.Run(ctx)
}

func runCheck(cmd *cobra.Command, opts *cli.Options) int {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		logging.Error(err.Error())
		return session.ExitCodeFor(err)
	}

	variant := opts.Participant.Variant
	catalog, err := stimulus.Resolve(cfg, variant)
	if err != nil {
		logging.Error(err.Error())
		return session.ExitCodeFor(err)
	}

	fingerprint, err := catalog.Fingerprint()
	if err != nil {
		logging.Error(err.Error())
		return exitcode.Error
	}

	banner.PrintCheckBanner(variant, catalog.Counts(), fingerprint)

	if catalog.Len() == 0 {
		err := fmt.Errorf("variant %q under %s: %w", variant, cfg.StimDir, trial.ErrEmptySchedule)
		logging.Error(err.Error())
		return session.ExitCodeFor(err)
	}
	logging.Success(fmt.Sprintf("%d stimuli ready for variant %s", catalog.Len(), variant))
	return exitcode.Success
}
