package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rbright/livescribe/internal/config"
	"github.com/rbright/livescribe/internal/indicator"
	"github.com/rbright/livescribe/internal/ipc"
	"github.com/rbright/livescribe/internal/metrics"
	"github.com/rbright/livescribe/internal/output"
	"github.com/rbright/livescribe/internal/pipeline"
	"github.com/rbright/livescribe/internal/session"
	"github.com/rbright/livescribe/internal/transcript"
	"github.com/rbright/livescribe/internal/translate"
)

const cueDrainTimeout = time.Second

// commandRun owns one session in the foreground. It serves IPC until the
// session ends, then prints the final transcript to stdout.
func (r Runner) commandRun(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8, nil)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintf(r.Stderr, "error: %s\n", session.StatusMessage(err))
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	m := metrics.New()
	hub := output.NewHub(logger)
	if cfg.HTTP.Listen != "" {
		_, stopHTTP, err := startHTTP(cfg.HTTP.Listen, m, hub, logger)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		defer stopHTTP()
	}

	notifier := indicator.New(cfg.Indicator, logger)
	controller := session.NewController(r.runtime(cfg, logger), session.Options{
		Pipeline:       pipelineOptions(cfg, logger),
		QueueMaxChunks: cfg.Pipeline.QueueMaxChunks,
		DumpAudio:      cfg.Debug.EnableAudioDump,
		Observer:       r.observers(ctx, cfg, logger, hub),
		Indicator:      notifier,
		Logger:         logger,
		Metrics:        m,
	})

	serverCtx, serverCancel := context.WithCancel(context.WithoutCancel(ctx))
	defer serverCancel()
	serverErr := make(chan error, 1)
	go func() { serverErr <- ipc.Serve(serverCtx, listener, controller) }()

	if err := controller.Start(ctx); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	hub.SetSession(controller.SessionID())

	result, err := controller.Wait(context.WithoutCancel(ctx))
	if err != nil {
		result.Err = err
	}
	_ = controller.Close()

	serverCancel()
	if err := <-serverErr; err != nil {
		logger.Error("ipc server failed", "error", err.Error())
	}
	waitForCues(notifier)

	for _, line := range result.Lines {
		fmt.Fprintln(r.Stdout, line)
	}
	if result.Err != nil {
		fmt.Fprintf(r.Stderr, "error: %s: %v\n", session.StatusMessage(result.Err), result.Err)
		return 1
	}
	return 0
}

func (r Runner) runtime(cfg config.Config, logger *slog.Logger) session.Runtime {
	if r.NewRuntime != nil {
		return r.NewRuntime(cfg, logger)
	}
	return newLiveRuntime(cfg, logger)
}

func pipelineOptions(cfg config.Config, logger *slog.Logger) pipeline.Options {
	opts := pipeline.Options{
		PhraseTimeout: cfg.Pipeline.PhraseTimeout,
		PollInterval:  cfg.Pipeline.PollInterval,
		Language:      cfg.RecognitionLanguage(),
	}
	if pair := cfg.TranslationPair(); pair != nil {
		loader := translate.NewOpenAILoader(translate.OpenAIOptions{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.Translation.Model,
		})
		opts.Translator = translate.NewAdapter(loader, translate.Options{
			Marker: cfg.Translation.DegradedMarker,
			Logger: logger,
		})
		opts.Pair = pair
	}
	return opts
}

// observers fans assembler events out to the log, the hub, and whichever of
// the console and typing sinks are enabled.
func (r Runner) observers(ctx context.Context, cfg config.Config, logger *slog.Logger, hub *output.Hub) pipeline.Observer {
	sinks := output.Fanout{output.NewLog(logger), hub}
	if cfg.Output.Console {
		sinks = append(sinks, output.NewConsole(r.Stderr, true))
	}
	if argv := cfg.Output.TypeCmd.Argv; len(argv) > 0 {
		language := cfg.RecognitionLanguage()
		if pair := cfg.TranslationPair(); pair != nil {
			language = pair.Target.Code
		}
		sinks = append(sinks, output.NewTyper(context.WithoutCancel(ctx), argv, transcript.Options{
			TrailingSpace:       cfg.Output.TrailingSpace,
			CapitalizeSentences: cfg.Output.CapitalizeSentences,
			Language:            language,
		}, logger))
	}
	return sinks
}

func waitForCues(n *indicator.Notifier) {
	done := make(chan struct{})
	go func() {
		n.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(cueDrainTimeout):
	}
}
