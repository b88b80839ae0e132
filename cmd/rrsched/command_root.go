package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/SanjoDeundiak/process-scheduler/pkg/lib/config"
	"github.com/SanjoDeundiak/process-scheduler/pkg/lib/launchspec"
)

type rootFlags struct {
	configPath    string
	debug         bool
	logLevel      string
	logFormat     string
	maxArgs       int
	shutdownGrace time.Duration
	summary       bool
}

func NewRootCmd() *cobra.Command {
	var flags rootFlags
	defaults := config.DefaultConfig()

	root := &cobra.Command{
		Use:   "rrsched " + launchspec.Usage,
		Short: "Round-robin scheduler for child processes",
		Long: `rrsched launches every given program held stopped, then lets exactly one of
them run at a time, switching to the next one every quantum_ms milliseconds
until all of them have exited.

Programs are separated by a standalone ":". Flags must precede quantum_ms;
everything after it is passed to the programs untouched.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("%w: expected a quantum and at least one program", launchspec.ErrUsage)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			return runSchedule(cmd.Context(), cfg, args, cmd.ErrOrStderr(), flags.summary)
		},
	}
	// quantum_ms and the programs' own flags must reach Args untouched.
	root.Flags().SetInterspersed(false)

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file (or "+config.EnvPath+" env)")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", defaults.LogFormat, "Log format (text, json)")
	root.PersistentFlags().IntVar(&flags.maxArgs, "max-args", defaults.MaxArgs, "Maximum number of arguments per program")
	root.PersistentFlags().DurationVar(&flags.shutdownGrace, "shutdown-grace", defaults.ShutdownGrace, "Delay between terminate and kill on interrupt")
	root.PersistentFlags().BoolVar(&flags.summary, "summary", false, "Print a per-process summary table to stderr when done")

	return root
}

// resolve loads the config file, if any, and applies explicitly set flags on
// top of it.
func (f *rootFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg := config.DefaultConfig()

	path := f.configPath
	if path == "" {
		path = os.Getenv(config.EnvPath)
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	set := cmd.Flags().Changed
	if set("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if f.debug {
		cfg.LogLevel = "debug"
	}
	if set("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if set("max-args") {
		cfg.MaxArgs = f.maxArgs
	}
	if set("shutdown-grace") {
		cfg.ShutdownGrace = f.shutdownGrace
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
