package config

import (
	"os"
	"path/filepath"
	"strings"
)

// EnvHome overrides the base directory of relative runtime paths.
const EnvHome = "PAGECRAFT_HOME"

// BaseDir returns $PAGECRAFT_HOME, else the executable's directory, else the
// working directory.
func BaseDir() string {
	if home := strings.TrimSpace(os.Getenv(EnvHome)); home != "" {
		return home
	}
	if exe, err := os.Executable(); err == nil && exe != "" {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// ResolveRuntimePath resolves raw (or fallback when raw is empty) against BaseDir.
func ResolveRuntimePath(raw, fallback string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = fallback
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(BaseDir(), target)
}
