// Package config holds rrsched settings and loads them from YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/SanjoDeundiak/process-scheduler/pkg/lib/launchspec"
	"github.com/SanjoDeundiak/process-scheduler/pkg/lib/logging"
	"github.com/SanjoDeundiak/process-scheduler/pkg/lib/schedule"
)

// EnvPath names the environment variable consulted when no config file is
// given on the command line.
const EnvPath = "RRSCHED_CONFIG"

// Config holds configuration for a scheduling run.
type Config struct {
	LogLevel      string        `yaml:"log_level"`      // debug, info, warn, error
	LogFormat     string        `yaml:"log_format"`     // text, json
	MaxArgs       int           `yaml:"max_args"`       // per program, not counting the program
	ShutdownGrace time.Duration `yaml:"shutdown_grace"` // terminate-to-kill delay on interrupt
	Cgroup        CgroupConfig  `yaml:"cgroup"`
}

// CgroupConfig controls per-process cgroup v2 placement. Only honored when
// running as root on Linux.
type CgroupConfig struct {
	Enabled    bool  `yaml:"enabled"`
	CPUWeight  int   `yaml:"cpu_weight"`
	MemoryHigh int64 `yaml:"memory_high"` // bytes
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:      "info",
		LogFormat:     logging.FormatText,
		MaxArgs:       launchspec.DefaultMaxArgs,
		ShutdownGrace: schedule.DefaultShutdownGrace,
	}
}

// Load reads the YAML file at path over the defaults. Unknown keys are
// rejected.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that every field holds a usable value.
func (c Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if !logging.ValidFormat(c.LogFormat) {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if c.MaxArgs <= 0 {
		errs = append(errs, fmt.Errorf("max_args must be positive, got %d", c.MaxArgs))
	}
	if c.ShutdownGrace <= 0 {
		errs = append(errs, fmt.Errorf("shutdown_grace must be positive, got %s", c.ShutdownGrace))
	}
	if c.Cgroup.CPUWeight < 0 || c.Cgroup.CPUWeight > 10000 {
		errs = append(errs, fmt.Errorf("cgroup.cpu_weight must be within 1-10000, got %d", c.Cgroup.CPUWeight))
	}
	if c.Cgroup.MemoryHigh < 0 {
		errs = append(errs, fmt.Errorf("cgroup.memory_high must not be negative, got %d", c.Cgroup.MemoryHigh))
	}
	return errors.Join(errs...)
}
