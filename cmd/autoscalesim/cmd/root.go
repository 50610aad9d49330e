package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/prezi/autoscalesim/internal/common/app"
	"github.com/prezi/autoscalesim/internal/scheduler/baseline"
	"github.com/prezi/autoscalesim/internal/scheduler/billing"
	"github.com/prezi/autoscalesim/internal/scheduler/config"
	"github.com/prezi/autoscalesim/internal/scheduler/driver"
	"github.com/prezi/autoscalesim/internal/scheduler/emitter"
	"github.com/prezi/autoscalesim/internal/scheduler/logging"
	"github.com/prezi/autoscalesim/internal/scheduler/pool"
	"github.com/prezi/autoscalesim/internal/scheduler/queuemanager"
	"github.com/prezi/autoscalesim/internal/scheduler/record"
	"github.com/prezi/autoscalesim/internal/scheduler/sink"
)

// RootCmd builds the autoscalesim command: replay a job trace from stdin
// (plus any extra input files) through the queue autoscaler, writing an
// interleaved stream of launch/terminate commands and echoed job lines to
// stdout. The optional first positional argument names the utilization log
// file; any further positional arguments are additional input files,
// concatenated with stdin.
func RootCmd() *cobra.Command {
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "autoscalesim [log-file] [input-file...]",
		Short: "Replay a job trace through the queue autoscaler.",
		Args:  cobra.ArbitraryArgs,
		RunE:  run,
	}

	flags := cmd.Flags()
	flags.Int("floor", defaults.Floor, "Minimum number of VMs kept running per queue.")
	flags.Float64("min-idle-fraction", defaults.MinIdleFraction, "Lower bound on each queue's idle fraction.")
	flags.Float64("max-idle-fraction", defaults.MaxIdleFraction, "Upper bound on each queue's idle fraction.")
	flags.Duration("boot-delay", defaults.BootDelay, "Time a launched VM takes before it can accept work.")
	flags.Duration("placement-slack", defaults.PlacementSlack, "How far past a job's arrival a VM may free up and still take it.")
	flags.Duration("warmup-grace", defaults.WarmupGrace, "Placement misses are tolerated, not fatal, for this long after the first job.")
	flags.Duration("retire-deadline", defaults.RetireDeadline, "Only VMs with less than this much time left in their billing hour are retirement candidates.")

	flags.Bool("dry-run", false, "Use the fixed-fleet baseline strategy instead of the autoscaler.")
	flags.Int("baseline-fleet-size", baseline.DefaultFleetSize, "Per-queue VM count launched and retired by --dry-run.")

	flags.Int("log-max-size-mb", 0, "Rotate the utilization log after this many megabytes. Disabled if 0.")
	flags.Int("log-max-backups", 0, "Number of rotated utilization log files to keep.")
	flags.Int("log-max-age-days", 0, "Maximum age in days of rotated utilization log files.")

	flags.String("log-level", "info", "Diagnostic log verbosity: debug, info, warn, or error.")
	flags.Bool("estimate-cost", false, "Print an estimated VM-hour total to stderr after the run.")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	logLevelStr, err := flags.GetString("log-level")
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(logLevelStr)
	if err != nil {
		return err
	}
	log := logging.New(os.Stderr, level)

	var logPath string
	var inputFiles []string
	if len(args) > 0 {
		logPath = args[0]
		inputFiles = args[1:]
	}

	input, closeInput, err := inputFromArgs(inputFiles)
	if err != nil {
		return err
	}
	defer closeInput()

	em := emitter.New(os.Stdout)
	ctx := app.CreateContextWithShutdown()

	dryRun, err := flags.GetBool("dry-run")
	if err != nil {
		return err
	}
	if dryRun {
		fleetSize, err := flags.GetInt("baseline-fleet-size")
		if err != nil {
			return err
		}
		return baseline.Run(input, em, fleetSize)
	}

	cfg, err := configFromFlags(flags, config.Default())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logSink, err := sinkFromFlags(flags, logPath)
	if err != nil {
		return err
	}
	defer logSink.Close()

	estimateCost, err := flags.GetBool("estimate-cost")
	if err != nil {
		return err
	}
	var commandSink pool.CommandSink = em
	var tracker *costTracker
	if estimateCost {
		tracker = &costTracker{inner: em}
		commandSink = tracker
	}

	manager := queuemanager.New(cfg, commandSink, logSink, log)
	d := driver.New(input, manager, em)

	runErr := d.Run(ctx)
	if runErr != nil {
		log.WithStacktrace(runErr).Error("autoscalesim stopped early")
		if errors.Is(runErr, emitter.ErrBrokenPipe) {
			log.Warn("downstream reader closed its end of the pipe")
		}
		return runErr
	}

	if tracker != nil {
		hours, err := billing.EstimateVMHours(tracker.commands, cfg.WarmupGrace)
		if err != nil {
			return err
		}
		log.Infof("estimated VM-hours: %d", hours)
	}
	return nil
}

// costTracker records every command alongside forwarding it to the real
// emitter, so a completed run's stream can be replayed through
// billing.EstimateVMHours without a second pass over stdout.
type costTracker struct {
	inner    *emitter.Emitter
	commands []record.Command
}

func (t *costTracker) Emit(cmd record.Command) error {
	t.commands = append(t.commands, cmd)
	return t.inner.Emit(cmd)
}

// inputFromArgs concatenates stdin with any additional input files, in the
// order given, via io.MultiReader.
func inputFromArgs(extraFiles []string) (io.Reader, func(), error) {
	readers := []io.Reader{os.Stdin}
	closers := []func(){}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	for _, path := range extraFiles {
		f, err := os.Open(path)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		readers = append(readers, f)
		closers = append(closers, func() { f.Close() })
	}

	return io.MultiReader(readers...), closeAll, nil
}

// configFromFlags overlays every tuning flag the user actually set onto
// defaults, leaving unset flags at their (already-default-valued) zero
// change.
func configFromFlags(flags *pflag.FlagSet, cfg config.Config) (config.Config, error) {
	var err error
	if cfg.Floor, err = flags.GetInt("floor"); err != nil {
		return cfg, err
	}
	if cfg.MinIdleFraction, err = flags.GetFloat64("min-idle-fraction"); err != nil {
		return cfg, err
	}
	if cfg.MaxIdleFraction, err = flags.GetFloat64("max-idle-fraction"); err != nil {
		return cfg, err
	}
	if cfg.BootDelay, err = flags.GetDuration("boot-delay"); err != nil {
		return cfg, err
	}
	if cfg.PlacementSlack, err = flags.GetDuration("placement-slack"); err != nil {
		return cfg, err
	}
	if cfg.WarmupGrace, err = flags.GetDuration("warmup-grace"); err != nil {
		return cfg, err
	}
	if cfg.RetireDeadline, err = flags.GetDuration("retire-deadline"); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func sinkFromFlags(flags *pflag.FlagSet, path string) (sink.Sink, error) {
	if path == "" {
		return sink.Noop{}, nil
	}

	maxSizeMB, err := flags.GetInt("log-max-size-mb")
	if err != nil {
		return nil, err
	}
	maxBackups, err := flags.GetInt("log-max-backups")
	if err != nil {
		return nil, err
	}
	maxAgeDays, err := flags.GetInt("log-max-age-days")
	if err != nil {
		return nil, err
	}

	return sink.NewFileSink(path, sink.Rotation{
		MaxSizeMB:  maxSizeMB,
		MaxBackups: maxBackups,
		MaxAgeDays: maxAgeDays,
	})
}
