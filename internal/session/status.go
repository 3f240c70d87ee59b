package session

import (
	"context"
	"errors"

	"github.com/rbright/livescribe/internal/audio"
	"github.com/rbright/livescribe/internal/ipc"
	"github.com/rbright/livescribe/internal/pipeline"
	"github.com/rbright/livescribe/internal/recognize"
	"github.com/rbright/livescribe/internal/translate"
)

// StatusMessage maps a session error to the short text shown to the user.
func StatusMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, audio.ErrDevice):
		return "Microphone unavailable"
	case errors.Is(err, recognize.ErrModelLoad):
		return "Speech model failed to load"
	case errors.Is(err, pipeline.ErrRecognition):
		return "Speech recognition failed"
	case errors.Is(err, translate.ErrUnavailable):
		return "Translation unavailable"
	case errors.Is(err, ipc.ErrAlreadyRunning):
		return "A session is already running"
	case errors.Is(err, context.Canceled):
		return "Cancelled"
	default:
		return "Session failed"
	}
}
