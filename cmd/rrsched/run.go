package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SanjoDeundiak/process-scheduler/pkg/lib/config"
	"github.com/SanjoDeundiak/process-scheduler/pkg/lib/launchspec"
	"github.com/SanjoDeundiak/process-scheduler/pkg/lib/logging"
	"github.com/SanjoDeundiak/process-scheduler/pkg/lib/runner"
	"github.com/SanjoDeundiak/process-scheduler/pkg/lib/schedule"
)

func runSchedule(ctx context.Context, cfg config.Config, args []string, stderr io.Writer, summary bool) error {
	quantum, specs, err := launchspec.Parse(args, cfg.MaxArgs)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}

	r, err := runner.NewRunner(runner.Config{
		Logger: logger,
		Cgroup: runner.CgroupLimits{
			Enabled:    cfg.Cgroup.Enabled,
			CPUWeight:  cfg.Cgroup.CPUWeight,
			MemoryHigh: cfg.Cgroup.MemoryHigh,
		},
	})
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}
	defer r.Close()

	s := schedule.New(r, quantum,
		schedule.WithLogger(logger),
		schedule.WithShutdownGrace(cfg.ShutdownGrace),
		schedule.WithHook(logHook{logger: logger.With("component", "hook")}),
	)

	// Installed before launching so an early interrupt still reaches the
	// children through Run.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Launch(r, specs); err != nil {
		return err
	}

	runErr := s.Run(ctx, r)
	entries := s.Summary()
	for _, e := range entries {
		logger.Info("process summary", summaryAttrs(e)...)
	}
	if summary {
		printSummaryTable(stderr, entries)
	}
	return runErr
}

func newLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if w == os.Stderr {
		return logging.NewLogger(level, cfg.LogFormat), nil
	}
	return logging.NewLoggerWithWriter(level, cfg.LogFormat, w), nil
}
