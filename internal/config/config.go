package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSolverCommand is the backend executable looked up on PATH.
const DefaultSolverCommand = "srba-solver"

// LogsDirName is the run log directory created next to the config file
const LogsDirName = "logs"

// SolverConfig describes how the external solver backend is started
type SolverConfig struct {
	// Command is the backend executable (name on PATH or a path)
	Command string `yaml:"command"`

	// Args are passed before the generated arguments
	Args []string `yaml:"args"`

	// Timeout bounds a single backend run (0 = no timeout)
	Timeout time.Duration `yaml:"timeout"`

	// Env holds extra KEY=VALUE entries appended to the inherited environment
	Env map[string]string `yaml:"env"`
}

// Config represents srba-slam configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error).
	// Empty means derive it from --verbose.
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written (empty disables file logging).
	// LoadConfig defaults it to the logs directory beside the config file.
	LogDir string `yaml:"log_dir"`

	// Solver configures the backend process
	Solver SolverConfig `yaml:"solver"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "",
		LogDir:   "",
		Solver: SolverConfig{
			Command: DefaultSolverCommand,
			Timeout: 0,
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// A missing file yields the defaults; a malformed file is an error.
// Unless log_dir says otherwise, logs go to <dir of path>/logs, so the
// default config path keeps them under Home().
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.LogDir = filepath.Join(filepath.Dir(path), LogsDirName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations are written as strings ("90s", "1h")
	type yamlSolver struct {
		Command string            `yaml:"command"`
		Args    []string          `yaml:"args"`
		Timeout string            `yaml:"timeout"`
		Env     map[string]string `yaml:"env"`
	}
	type yamlConfig struct {
		LogLevel *string    `yaml:"log_level"`
		LogDir   *string    `yaml:"log_dir"`
		Solver   yamlSolver `yaml:"solver"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.LogLevel != nil {
		cfg.LogLevel = *yamlCfg.LogLevel
	}
	// An explicit empty log_dir turns file logging off
	if yamlCfg.LogDir != nil {
		cfg.LogDir = *yamlCfg.LogDir
	}
	if yamlCfg.Solver.Command != "" {
		cfg.Solver.Command = yamlCfg.Solver.Command
	}
	if yamlCfg.Solver.Args != nil {
		cfg.Solver.Args = yamlCfg.Solver.Args
	}
	if yamlCfg.Solver.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Solver.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid solver.timeout format %q: %w", yamlCfg.Solver.Timeout, err)
		}
		cfg.Solver.Timeout = timeout
	}
	if yamlCfg.Solver.Env != nil {
		cfg.Solver.Env = yamlCfg.Solver.Env
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .srba/config.yaml in the specified directory
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, DirName, FileName))
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values.
func (c *Config) MergeWithFlags(logLevel *string, logDir *string, solverCommand *string, timeout *time.Duration) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if solverCommand != nil {
		c.Solver.Command = *solverCommand
	}
	if timeout != nil {
		c.Solver.Timeout = *timeout
	}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Solver.Command == "" {
		return fmt.Errorf("solver.command cannot be empty")
	}

	if c.Solver.Timeout < 0 {
		return fmt.Errorf("solver.timeout must be >= 0, got %v", c.Solver.Timeout)
	}

	for k := range c.Solver.Env {
		if k == "" {
			return fmt.Errorf("solver.env contains an empty variable name")
		}
	}

	return nil
}

// Environ renders Solver.Env as KEY=VALUE entries, sorted by key,
// appended to base.
func (s SolverConfig) Environ(base []string) []string {
	keys := make([]string, 0, len(s.Env))
	for k := range s.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := append([]string(nil), base...)
	for _, k := range keys {
		env = append(env, k+"="+s.Env[k])
	}
	return env
}
