package output

import (
	"log/slog"

	"github.com/rbright/livescribe/internal/transcript"
)

// Log records transcript events on a structured logger.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Preview(u transcript.Utterance) {
	l.logger.Debug("utterance preview", "index", u.Index, "text", u.Text)
}

func (l *Log) Finalize(u transcript.Utterance) {
	l.logger.Info("utterance final", "index", u.Index, "text", u.Text)
}

func (l *Log) Status(message string) {
	l.logger.Info("status", "message", message)
}
