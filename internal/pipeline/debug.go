package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rbright/livescribe/internal/pcm"
)

// DumpAudio writes one session's captured PCM as a WAV file under
// state/livescribe/debug and returns its path.
func DumpAudio(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("no audio captured")
	}
	file, err := createDebugFile("audio", "wav")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := pcm.WriteWAV(file, raw); err != nil {
		return "", fmt.Errorf("write debug audio %q: %w", file.Name(), err)
	}
	return file.Name(), nil
}

// createDebugFile creates a timestamped artifact under state/livescribe/debug.
func createDebugFile(prefix string, extension string) (*os.File, error) {
	stateDir, err := resolveStateDir()
	if err != nil {
		return nil, err
	}
	debugDir := filepath.Join(stateDir, "livescribe", "debug")
	if err := os.MkdirAll(debugDir, 0o700); err != nil {
		return nil, fmt.Errorf("create debug dir: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405.000")
	path := filepath.Join(debugDir, fmt.Sprintf("%s-%s.%s", prefix, timestamp, extension))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open debug file %q: %w", path, err)
	}
	return file, nil
}

func resolveStateDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return xdg, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for state: %w", err)
	}
	return filepath.Join(home, ".local", "state"), nil
}
