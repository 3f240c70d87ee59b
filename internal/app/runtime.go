package app

import (
	"context"
	"log/slog"

	"github.com/rbright/livescribe/internal/audio"
	"github.com/rbright/livescribe/internal/config"
	"github.com/rbright/livescribe/internal/recognize"
	"github.com/rbright/livescribe/internal/session"
	"github.com/rbright/livescribe/internal/vad"
)

// liveRuntime opens the Pulse microphone and the configured recognizer.
type liveRuntime struct {
	cfg    config.Config
	logger *slog.Logger
}

func newLiveRuntime(cfg config.Config, logger *slog.Logger) liveRuntime {
	return liveRuntime{cfg: cfg, logger: logger}
}

func (r liveRuntime) OpenCapture(ctx context.Context, push func([]byte)) (session.Capture, error) {
	a := r.cfg.Audio
	src, err := audio.OpenSource(ctx, audio.SourceOptions{
		Input:    a.Input,
		Fallback: a.Fallback,
		VAD: vad.Options{
			Threshold:   float64(a.EnergyThreshold),
			PhraseLimit: a.RecordTimeout,
			Pause:       a.Pause,
			MinPhrase:   a.MinPhrase,
			NonSpeaking: a.NonSpeaking,
		},
		Calibrate: a.Calibrate,
		KeepRaw:   r.cfg.Debug.EnableAudioDump,
		Logger:    r.logger,
	}, push)
	if err != nil {
		return nil, err
	}
	return sourceCapture{src}, nil
}

func (r liveRuntime) LoadEngine(ctx context.Context) (session.Engine, error) {
	return recognize.Load(ctx, recognize.OptionsFromConfig(r.cfg))
}

type sourceCapture struct {
	*audio.Source
}

func (s sourceCapture) Device() string {
	return s.Selection().Device.Label()
}
