// Package hypr wraps the few hyprctl calls the indicator needs.
package hypr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Icons accepted by hyprctl notify.
const (
	IconWarning = 0
	IconInfo    = 1
	IconHint    = 2
	IconError   = 3
	IconOK      = 5
)

const defaultColor = "rgb(89b4fa)"

// Notification is one hyprctl notify payload.
type Notification struct {
	Icon    int
	Timeout time.Duration
	Color   string
	Text    string
}

// Notify shows n as a Hyprland notification.
func Notify(ctx context.Context, n Notification) error {
	color := strings.TrimSpace(n.Color)
	if color == "" {
		color = defaultColor
	}
	return run(ctx,
		"--quiet", "dispatch", "notify",
		strconv.Itoa(n.Icon),
		strconv.FormatInt(n.Timeout.Milliseconds(), 10),
		color,
		n.Text,
	)
}

// Dismiss clears every visible Hyprland notification.
func Dismiss(ctx context.Context) error {
	return run(ctx, "--quiet", "dispatch", "dismissnotify")
}

type monitor struct {
	Name    string `json:"name"`
	Focused bool   `json:"focused"`
}

// FocusedMonitor returns the focused monitor, falling back to the first one.
func FocusedMonitor(ctx context.Context) (string, error) {
	out, err := output(ctx, "-j", "monitors")
	if err != nil {
		return "", err
	}

	var monitors []monitor
	if err := json.Unmarshal(out, &monitors); err != nil {
		return "", fmt.Errorf("decode hyprctl monitors: %w", err)
	}
	if len(monitors) == 0 {
		return "", errors.New("hyprctl monitors returned no outputs")
	}
	for _, m := range monitors {
		if m.Focused {
			return strings.TrimSpace(m.Name), nil
		}
	}
	return strings.TrimSpace(monitors[0].Name), nil
}

func run(ctx context.Context, args ...string) error {
	_, err := output(ctx, args...)
	return err
}

func output(ctx context.Context, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "hyprctl", args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return nil, fmt.Errorf("hyprctl %s: %w (%s)", strings.Join(args, " "), err, msg)
		}
		return nil, fmt.Errorf("hyprctl %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}
