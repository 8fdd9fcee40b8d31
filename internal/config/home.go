package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirName is the per-project directory holding config and logs
	DirName = ".srba"

	// FileName is the config file inside DirName
	FileName = "config.yaml"

	// HomeEnv overrides the project directory lookup
	HomeEnv = "SRBA_HOME"
)

// Home returns the directory holding srba-slam state.
// Priority order:
//  1. SRBA_HOME environment variable (if set)
//  2. The nearest ancestor of the working directory containing .srba/
//  3. <working directory>/.srba (not created here)
func Home() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return home, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	if dir, ok := findProjectDir(cwd); ok {
		return filepath.Join(dir, DirName), nil
	}
	return filepath.Join(cwd, DirName), nil
}

// DefaultConfigPath returns <Home()>/config.yaml
func DefaultConfigPath() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, FileName), nil
}

// findProjectDir walks up from start looking for a .srba directory.
func findProjectDir(start string) (string, bool) {
	current := start
	for {
		info, err := os.Stat(filepath.Join(current, DirName))
		if err == nil && info.IsDir() {
			return current, true
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}
