package output

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/rbright/livescribe/internal/transcript"
)

const typeTimeout = 2 * time.Second

// Typer injects finalized utterances into the focused window by piping them
// to a typing command such as `wtype -`. Previews are never typed.
type Typer struct {
	argv   []string
	format transcript.Options
	logger *slog.Logger
	ctx    context.Context
}

// NewTyper returns a Typer running argv. ctx bounds every command.
func NewTyper(ctx context.Context, argv []string, format transcript.Options, logger *slog.Logger) *Typer {
	return &Typer{argv: argv, format: format, logger: logger, ctx: ctx}
}

func (t *Typer) Preview(transcript.Utterance) {}

func (t *Typer) Status(string) {}

// Finalize types the formatted utterance. Failures are logged, not fatal.
func (t *Typer) Finalize(u transcript.Utterance) {
	text := transcript.Format(u.Text, t.format)
	if strings.TrimSpace(text) == "" {
		return
	}

	ctx, cancel := context.WithTimeout(t.ctx, typeTimeout)
	defer cancel()
	if err := runCommandWithInput(ctx, t.argv, text); err != nil && t.logger != nil {
		t.logger.Error("type command failed", "index", u.Index, "error", err.Error())
	}
}
