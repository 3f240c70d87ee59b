package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables consulted for the OpenAI API key, in order.
var apiKeyEnv = []string{"LIVESCRIBE_OPENAI_API_KEY", "OPENAI_API_KEY"}

// loadDotEnv loads KEY=VALUE pairs from the .env file beside the config file.
// Variables already present in the process environment win.
func loadDotEnv(configPath string) (string, error) {
	path := filepath.Join(filepath.Dir(configPath), ".env")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("stat %q: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return "", fmt.Errorf("load %q: %w", path, err)
	}
	return path, nil
}

// applyEnv fills secrets that were not set explicitly from the environment.
func applyEnv(cfg *Config) {
	if cfg.OpenAI.APIKey != "" {
		return
	}
	for _, name := range apiKeyEnv {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			cfg.OpenAI.APIKey = v
			return
		}
	}
}
