// Package indicator shows session state as desktop notifications and plays
// short audio cues.
package indicator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/livescribe/internal/config"
	"github.com/rbright/livescribe/internal/hypr"
)

const (
	textLoading = "Loading speech model…"
	textRunning = "Listening…"
	textError   = "Speech recognition error"

	persistent     = 5 * time.Minute
	defaultErrorMS = 1200
	dispatchBudget = 400 * time.Millisecond
)

// Notifier routes indicator output to Hyprland or to the freedesktop
// notification daemon.
type Notifier struct {
	cfg    config.IndicatorConfig
	logger *slog.Logger
	play   func(cueKind) error

	mu        sync.Mutex
	desktopID uint32
	soundMu   sync.Mutex
	sounds    sync.WaitGroup
}

// New returns a notifier for cfg. A nil logger discards dispatch failures.
func New(cfg config.IndicatorConfig, logger *slog.Logger) *Notifier {
	return &Notifier{cfg: cfg, logger: logger, play: emitCue}
}

// ShowLoading is shown while the microphone opens and the model loads.
func (n *Notifier) ShowLoading(ctx context.Context) {
	n.show(ctx, hypr.Notification{Icon: hypr.IconInfo, Timeout: persistent, Color: "rgb(cba6f7)", Text: textLoading})
}

// ShowRunning announces that speech is being captured.
func (n *Notifier) ShowRunning(ctx context.Context) {
	n.cue(cueStart)
	n.show(ctx, hypr.Notification{Icon: hypr.IconInfo, Timeout: persistent, Color: "rgb(89b4fa)", Text: textRunning})
}

// ShowError replaces any visible indicator with text for the configured
// error timeout.
func (n *Notifier) ShowError(ctx context.Context, text string) {
	n.cue(cueError)
	if strings.TrimSpace(text) == "" {
		text = textError
	}
	timeout := n.cfg.ErrorTimeoutMS
	if timeout <= 0 {
		timeout = defaultErrorMS
	}
	n.show(ctx, hypr.Notification{
		Icon:    hypr.IconError,
		Timeout: time.Duration(timeout) * time.Millisecond,
		Color:   "rgb(f38ba8)",
		Text:    text,
	})
}

// CueStop plays the stop cue.
func (n *Notifier) CueStop(context.Context) {
	n.cue(cueStop)
}

// Hide dismisses the indicator.
func (n *Notifier) Hide(ctx context.Context) {
	if !n.cfg.Enable {
		return
	}
	n.dispatch(ctx, func(ctx context.Context) error {
		if n.desktop() {
			return n.dismissDesktop(ctx)
		}
		return hypr.Dismiss(ctx)
	})
}

// Wait blocks until queued cues have played.
func (n *Notifier) Wait() {
	n.sounds.Wait()
}

func (n *Notifier) show(ctx context.Context, note hypr.Notification) {
	if !n.cfg.Enable {
		return
	}
	n.dispatch(ctx, func(ctx context.Context) error {
		if n.desktop() {
			return n.notifyDesktop(ctx, note)
		}
		return hypr.Notify(ctx, note)
	})
}

func (n *Notifier) desktop() bool {
	return strings.EqualFold(strings.TrimSpace(n.cfg.Backend), "desktop")
}

func (n *Notifier) notifyDesktop(ctx context.Context, note hypr.Notification) error {
	n.mu.Lock()
	replaceID := n.desktopID
	n.mu.Unlock()

	appName := strings.TrimSpace(n.cfg.DesktopAppName)
	if appName == "" {
		appName = "livescribe"
	}
	id, err := desktopNotify(ctx, appName, replaceID, note.Text, int(note.Timeout.Milliseconds()))
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.desktopID = id
	n.mu.Unlock()
	return nil
}

func (n *Notifier) dismissDesktop(ctx context.Context) error {
	n.mu.Lock()
	id := n.desktopID
	n.desktopID = 0
	n.mu.Unlock()

	if id == 0 {
		return nil
	}
	return desktopDismiss(ctx, id)
}

func (n *Notifier) dispatch(ctx context.Context, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchBudget)
	defer cancel()
	if err := fn(ctx); err != nil {
		n.debug("indicator dispatch failed", err)
	}
}

// cue plays kind in the background. Cues never overlap.
func (n *Notifier) cue(kind cueKind) {
	if !n.cfg.SoundEnable {
		return
	}
	n.sounds.Add(1)
	go func() {
		defer n.sounds.Done()
		n.soundMu.Lock()
		defer n.soundMu.Unlock()
		if err := n.play(kind); err != nil {
			n.debug("indicator cue failed", err)
		}
	}()
}

func (n *Notifier) debug(msg string, err error) {
	if n.logger != nil {
		n.logger.Debug(msg, "error", err.Error())
	}
}
