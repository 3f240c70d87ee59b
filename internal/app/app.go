// Package app dispatches livescribe commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rbright/livescribe/internal/audio"
	"github.com/rbright/livescribe/internal/cli"
	"github.com/rbright/livescribe/internal/config"
	"github.com/rbright/livescribe/internal/doctor"
	"github.com/rbright/livescribe/internal/ipc"
	"github.com/rbright/livescribe/internal/logging"
	"github.com/rbright/livescribe/internal/session"
	"github.com/rbright/livescribe/internal/version"
)

const (
	binaryName     = "livescribe"
	forwardTimeout = 220 * time.Millisecond
)

// Runner executes one command. The zero value writes nowhere; use Execute.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	// Logger overrides the JSONL file logger.
	Logger *slog.Logger
	// NewRuntime overrides the microphone and recognition backend.
	NewRuntime func(config.Config, *slog.Logger) session.Runtime
}

// Execute runs args with the default runner and returns the exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return 2
	}

	switch parsed.Command {
	case cli.CommandHelp:
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	case cli.CommandVersion:
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	loaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	logger, closeLog := r.logger(loaded.Config.Log.Level)
	defer closeLog()

	for _, w := range loaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}
	logger.Info("command start", "command", parsed.Command, "config", loaded.Path, "config_exists", loaded.Exists)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, loaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandTranscript:
		return r.commandTranscript(ctx)
	case cli.CommandStop:
		return r.forward(ctx, ipc.CommandStop)
	case cli.CommandToggle:
		return r.commandToggle(ctx, loaded.Config, logger)
	case cli.CommandRun:
		return r.commandRun(ctx, loaded.Config, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// logger opens the JSONL log at level. An unusable log file is reported and
// logging continues to nowhere.
func (r Runner) logger(level string) (*slog.Logger, func()) {
	if r.Logger != nil {
		return r.Logger, func() {}
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		fmt.Fprintf(r.Stderr, "warning: %v\n", err)
	}
	rt, err := logging.New(lvl)
	if err != nil {
		fmt.Fprintf(r.Stderr, "warning: setup logging: %v\n", err)
		rt = logging.Discard()
	}
	return rt.Logger, func() { _ = rt.Close() }
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	yesNo := map[bool]string{true: "yes", false: "no"}
	for _, d := range devices {
		mark := " "
		if d.Default {
			mark = "*"
		}
		fmt.Fprintf(r.Stdout, "%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			mark, d.ID, d.Description, d.State, yesNo[d.Available], yesNo[d.Muted])
	}
	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	resp, err := r.send(ctx, ipc.CommandStatus)
	switch {
	case errors.Is(err, ipc.ErrNoSession):
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	case err != nil:
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	line := resp.State
	if resp.Message != "" {
		line += ": " + resp.Message
	}
	fmt.Fprintln(r.Stdout, line)
	return 0
}

func (r Runner) commandTranscript(ctx context.Context) int {
	resp, err := r.send(ctx, ipc.CommandTranscript)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	for _, line := range resp.Lines {
		fmt.Fprintln(r.Stdout, line)
	}
	return 0
}

func (r Runner) forward(ctx context.Context, command string) int {
	resp, err := r.send(ctx, command)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

func (r Runner) send(ctx context.Context, command string) (ipc.Response, error) {
	path, err := ipc.RuntimeSocketPath()
	if err != nil {
		return ipc.Response{}, ipc.ErrNoSession
	}
	return ipc.Command(ctx, path, command, forwardTimeout)
}

// commandToggle stops the running session, or becomes the owner of a new one.
func (r Runner) commandToggle(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	resp, err := r.send(ctx, ipc.CommandToggle)
	switch {
	case err == nil:
		if resp.Message != "" {
			fmt.Fprintln(r.Stdout, resp.Message)
		}
		return 0
	case !errors.Is(err, ipc.ErrNoSession):
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return r.commandRun(ctx, cfg, logger)
}
