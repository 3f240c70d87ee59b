package indicator

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

var notificationsCall = []string{
	"--user", "call",
	"org.freedesktop.Notifications",
	"/org/freedesktop/Notifications",
	"org.freedesktop.Notifications",
}

// desktopNotify calls org.freedesktop.Notifications.Notify through busctl and
// returns the id the daemon assigned. A non-zero replaceID updates in place.
func desktopNotify(ctx context.Context, appName string, replaceID uint32, summary string, timeoutMS int) (uint32, error) {
	out, err := busctl(ctx, "Notify", "susssasa{sv}i",
		appName,
		strconv.FormatUint(uint64(replaceID), 10),
		"", // icon
		summary,
		"",       // body
		"0", "0", // no actions, no hints
		strconv.Itoa(timeoutMS),
	)
	if err != nil {
		return 0, err
	}

	// busctl prints the reply as "u <id>".
	fields := strings.Fields(out)
	if len(fields) != 2 || fields[0] != "u" {
		return 0, fmt.Errorf("busctl Notify: unexpected reply %q", out)
	}
	id, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("busctl Notify: parse id %q: %w", fields[1], err)
	}
	return uint32(id), nil
}

func desktopDismiss(ctx context.Context, id uint32) error {
	_, err := busctl(ctx, "CloseNotification", "u", strconv.FormatUint(uint64(id), 10))
	return err
}

func busctl(ctx context.Context, method string, args ...string) (string, error) {
	argv := append(append([]string{}, notificationsCall...), method)
	argv = append(argv, args...)
	out, err := exec.CommandContext(ctx, "busctl", argv...).CombinedOutput()
	trimmed := strings.TrimSpace(string(out))
	if err != nil {
		if trimmed == "" {
			return "", fmt.Errorf("busctl %s: %w", method, err)
		}
		return "", fmt.Errorf("busctl %s: %w (%s)", method, err, trimmed)
	}
	return trimmed, nil
}
