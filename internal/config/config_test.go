package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != "" {
		t.Errorf("LogLevel = %q, want empty (derived from --verbose)", cfg.LogLevel)
	}
	if cfg.LogDir != "" {
		t.Errorf("LogDir = %q, want empty", cfg.LogDir)
	}
	if cfg.Solver.Command != "srba-solver" {
		t.Errorf("Solver.Command = %q, want %q", cfg.Solver.Command, "srba-solver")
	}
	if cfg.Solver.Timeout != 0 {
		t.Errorf("Solver.Timeout = %v, want 0", cfg.Solver.Timeout)
	}
	assert.NoError(t, cfg.Validate())
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	path := writeConfig(t, `log_level: debug
log_dir: /tmp/srba-logs
solver:
  command: /opt/srba/bin/srba-solver
  args: ["--threads", "4"]
  timeout: 30m
  env:
    OMP_NUM_THREADS: "4"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/srba-logs", cfg.LogDir)
	assert.Equal(t, "/opt/srba/bin/srba-solver", cfg.Solver.Command)
	assert.Equal(t, []string{"--threads", "4"}, cfg.Solver.Args)
	assert.Equal(t, 30*time.Minute, cfg.Solver.Timeout)
	assert.Equal(t, map[string]string{"OMP_NUM_THREADS": "4"}, cfg.Solver.Env)
}

// TestLoadConfigMissingFile returns defaults without error, logging beside the config path
func TestLoadConfigMissingFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(filepath.Join(dir, "nope.yaml"))
	require.NoError(t, err)

	want := DefaultConfig()
	want.LogDir = filepath.Join(dir, "logs")
	assert.Equal(t, want, cfg)
}

// TestLoadConfigPartialFile keeps defaults for fields that are absent
func TestLoadConfigPartialFile(t *testing.T) {
	path := writeConfig(t, "solver:\n  timeout: 90s\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.Solver.Timeout)
	assert.Equal(t, DefaultSolverCommand, cfg.Solver.Command)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "logs"), cfg.LogDir)
	assert.Empty(t, cfg.LogLevel)
}

// TestLoadConfigEmptyLogDir disables file logging when log_dir is explicitly empty
func TestLoadConfigEmptyLogDir(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "log_dir: \"\"\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.LogDir)
}

// TestLoadConfigErrors covers malformed content
func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"invalid yaml", "log_level: [unclosed\n", "failed to parse config file"},
		{"bad timeout", "solver:\n  timeout: soon\n", "invalid solver.timeout format"},
		{"wrong type", "solver:\n  args: 3\n", "failed to parse config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestLoadConfigUnreadable reports read failures other than not-exist
func TestLoadConfigUnreadable(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

// TestLoadConfigFromDir reads .srba/config.yaml below the directory
func TestLoadConfigFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".srba"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".srba", "config.yaml"), []byte("log_level: warn\n"), 0644))

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)

	assert.Equal(t, filepath.Join(dir, ".srba", "logs"), cfg.LogDir)

	empty := t.TempDir()
	cfg, err = LoadConfigFromDir(empty)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(empty, ".srba", "logs"), cfg.LogDir)
	assert.Equal(t, DefaultSolverCommand, cfg.Solver.Command)
}

// TestMergeWithFlags verifies non-nil flags override file values
func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "info"
	cfg.LogDir = "/var/log/srba"
	cfg.Solver.Timeout = time.Minute

	level := "trace"
	solver := "./bin/solver"
	cfg.MergeWithFlags(&level, nil, &solver, nil)

	assert.Equal(t, "trace", cfg.LogLevel)
	assert.Equal(t, "/var/log/srba", cfg.LogDir)
	assert.Equal(t, "./bin/solver", cfg.Solver.Command)
	assert.Equal(t, time.Minute, cfg.Solver.Timeout)

	logDir := ""
	timeout := 5 * time.Second
	cfg.MergeWithFlags(nil, &logDir, nil, &timeout)

	assert.Empty(t, cfg.LogDir)
	assert.Equal(t, 5*time.Second, cfg.Solver.Timeout)
}

// TestValidate covers each rejected field
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid level", func(c *Config) { c.LogLevel = "error" }, ""},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "invalid log_level"},
		{"empty command", func(c *Config) { c.Solver.Command = "" }, "solver.command cannot be empty"},
		{"negative timeout", func(c *Config) { c.Solver.Timeout = -time.Second }, "solver.timeout must be >= 0"},
		{"empty env key", func(c *Config) { c.Solver.Env = map[string]string{"": "x"} }, "empty variable name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestEnviron appends sorted entries without touching the base slice
func TestEnviron(t *testing.T) {
	base := []string{"PATH=/usr/bin"}
	s := SolverConfig{Env: map[string]string{"ZZ": "1", "AA": "2"}}

	env := s.Environ(base)

	assert.Equal(t, []string{"PATH=/usr/bin", "AA=2", "ZZ=1"}, env)
	assert.Equal(t, []string{"PATH=/usr/bin"}, base)
	assert.Equal(t, base, SolverConfig{}.Environ(base))
}
