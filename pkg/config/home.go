package config

import (
	"os"
	"path/filepath"
	"sync"
)

const envHome = "BACKYARD_E2E_HOME"

var (
	homeOnce sync.Once
	homeDir  string
)

// GetHome returns the directory holding the app bundle and failure screenshots:
// $BACKYARD_E2E_HOME if set, else the parent of an installed bin/ directory,
// else the working directory. The result is cached for the process.
func GetHome() string {
	homeOnce.Do(func() {
		homeDir = resolveHome()
	})
	return homeDir
}

// GetArtifactsDir resolves dir against home unless it is already absolute.
func GetArtifactsDir(dir string) string {
	if dir == "" {
		dir = "screenshots"
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(GetHome(), dir)
}

func resolveHome() string {
	if env := os.Getenv(envHome); env != "" {
		return env
	}

	// <home>/bin/backyard-e2e
	if execPath, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
			execPath = resolved
		}
		binDir := filepath.Dir(execPath)
		if filepath.Base(binDir) == "bin" {
			return filepath.Dir(binDir)
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}

	return "."
}

// ResetHome resets the cached home directory (for testing).
func ResetHome() {
	homeOnce = sync.Once{}
	homeDir = ""
}
