package config

import (
	"errors"
	"fmt"
	"os"
)

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	EnvFile  string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves, reads, parses, and validates the runtime configuration.
//
// Environment-provided secrets seed the defaults, so a value written in the
// file still takes precedence.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	envFile, err := loadDotEnv(resolvedPath)
	if err != nil {
		return Loaded{}, err
	}

	base := Default()
	applyEnv(&base)

	content, err := os.ReadFile(resolvedPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
		}
		warnings, verr := Validate(base)
		if verr != nil {
			return Loaded{}, verr
		}
		warnings = append([]Warning{{
			Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
		}}, warnings...)
		return Loaded{
			Path:     resolvedPath,
			EnvFile:  envFile,
			Config:   base,
			Warnings: warnings,
		}, nil
	}

	cfg, warnings, err := Parse(string(content), base)
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
	}

	return Loaded{
		Path:     resolvedPath,
		EnvFile:  envFile,
		Config:   cfg,
		Warnings: warnings,
		Exists:   true,
	}, nil
}
