package hypr

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func installHyprctl(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.log")
	script := "#!/usr/bin/env bash\nset -euo pipefail\nARGS_FILE=" + argsFile + "\n" + body + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hyprctl"), []byte(script), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
	return argsFile
}

func TestNotifyAndDismiss(t *testing.T) {
	argsFile := installHyprctl(t, `printf '%s\n' "$*" >> "$ARGS_FILE"`)

	require.NoError(t, Notify(context.Background(), Notification{
		Icon:    IconError,
		Timeout: 1200 * time.Millisecond,
		Text:    "Speech recognition failed",
	}))
	require.NoError(t, Dismiss(context.Background()))

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Equal(t, []string{
		"--quiet dispatch notify 3 1200 rgb(89b4fa) Speech recognition failed",
		"--quiet dispatch dismissnotify",
	}, lines)
}

func TestFocusedMonitor(t *testing.T) {
	installHyprctl(t, `echo '[{"name":"HDMI-A-1","focused":false},{"name":" DP-1 ","focused":true}]'`)

	name, err := FocusedMonitor(context.Background())
	require.NoError(t, err)
	require.Equal(t, "DP-1", name)
}

func TestFocusedMonitorFallsBackToFirst(t *testing.T) {
	installHyprctl(t, `echo '[{"name":"eDP-1","focused":false}]'`)

	name, err := FocusedMonitor(context.Background())
	require.NoError(t, err)
	require.Equal(t, "eDP-1", name)
}

func TestFocusedMonitorRejectsEmptyList(t *testing.T) {
	installHyprctl(t, `echo '[]'`)

	_, err := FocusedMonitor(context.Background())
	require.ErrorContains(t, err, "no outputs")
}

func TestFailureIncludesOutput(t *testing.T) {
	installHyprctl(t, `echo "no socket" >&2; exit 3`)

	err := Dismiss(context.Background())
	require.ErrorContains(t, err, "no socket")
}
