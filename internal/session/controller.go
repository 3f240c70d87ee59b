// Package session owns the pipeline lifecycle: it opens capture, loads the
// recognition engine, runs the assembler, and reports one Result per session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rbright/livescribe/internal/fsm"
	"github.com/rbright/livescribe/internal/ipc"
	"github.com/rbright/livescribe/internal/metrics"
	"github.com/rbright/livescribe/internal/pipeline"
	"github.com/rbright/livescribe/internal/queue"
)

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("session controller closed")

// Capture is an open CaptureSource.
type Capture interface {
	// Stop ends capture. Any span still in progress is pushed before it returns.
	Stop()
	Device() string
	BytesCaptured() int64
	RawPCM() []byte
}

// Engine is a loaded recognition engine.
type Engine interface {
	pipeline.Recognizer
	Close() error
}

// Runtime opens the resources a session owns.
type Runtime interface {
	OpenCapture(ctx context.Context, push func(span []byte)) (Capture, error)
	LoadEngine(ctx context.Context) (Engine, error)
}

// Indicator is the session-facing subset of indicator behavior.
type Indicator interface {
	ShowLoading(context.Context)
	ShowRunning(context.Context)
	ShowError(context.Context, string)
	CueStop(context.Context)
	Hide(context.Context)
}

type noopIndicator struct{}

func (noopIndicator) ShowLoading(context.Context)       {}
func (noopIndicator) ShowRunning(context.Context)       {}
func (noopIndicator) ShowError(context.Context, string) {}
func (noopIndicator) CueStop(context.Context)           {}
func (noopIndicator) Hide(context.Context)              {}

// Options wires one controller.
type Options struct {
	// Pipeline is copied into every session's assembler. Its Logger and
	// Metrics are overridden by the fields below.
	Pipeline       pipeline.Options
	QueueMaxChunks int
	DumpAudio      bool

	Observer  pipeline.Observer
	Indicator Indicator
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Result is the record of one finished session.
type Result struct {
	SessionID     string
	State         fsm.State
	Lines         []string
	Device        string
	BytesCaptured int64
	Chunks        int64
	Dropped       int64
	Ticks         int
	Recognitions  int
	Degraded      int
	Utterances    int
	AudioDump     string
	StartedAt     time.Time
	FinishedAt    time.Time
	Err           error
}

// Duration is the wall-clock length of the session.
func (r Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// run is the per-session mutable state shared between the controller and
// its lifecycle goroutine.
type run struct {
	id         string
	stop       chan struct{}
	stopOnce   sync.Once
	cancelLoad context.CancelFunc
	done       chan struct{}

	assembler *pipeline.Assembler
	device    string
	result    Result
}

func (r *run) requestStop() {
	r.stopOnce.Do(func() {
		close(r.stop)
		r.cancelLoad()
	})
}

// Controller drives the Idle → Loading → Running → Stopping → Idle cycle.
type Controller struct {
	runtime   Runtime
	opts      Options
	observer  pipeline.Observer
	indicator Indicator
	logger    *slog.Logger

	mu      sync.RWMutex
	state   fsm.State
	status  string
	current *run
	last    *Result
}

// NewController returns an idle controller.
func NewController(runtime Runtime, opts Options) *Controller {
	observer := opts.Observer
	if observer == nil {
		observer = pipeline.NopObserver{}
	}
	indicator := opts.Indicator
	if indicator == nil {
		indicator = noopIndicator{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Controller{
		runtime:   runtime,
		opts:      opts,
		observer:  observer,
		indicator: indicator,
		logger:    logger,
		state:     fsm.StateIdle,
	}
	opts.Metrics.SetState(string(fsm.StateIdle))
	return c
}

// State returns the current state snapshot.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Status returns the last user-facing status message.
func (c *Controller) Status() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// SessionID returns the id of the active session, if any.
func (c *Controller) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return ""
	}
	return c.current.id
}

// Lines returns the live transcript of the active session, or the final
// transcript of the last one.
func (c *Controller) Lines() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current != nil && c.current.assembler != nil {
		return c.current.assembler.Lines()
	}
	if c.last != nil {
		return append([]string(nil), c.last.Lines...)
	}
	return nil
}

// transitionLocked applies event; c.mu must be held.
func (c *Controller) transitionLocked(event fsm.Event) error {
	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	c.opts.Metrics.SetState(string(next))
	return nil
}

func (c *Controller) transition(event fsm.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transitionLocked(event)
}

// Start begins a session and returns without waiting for it to load. It is
// a no-op while a session is already loading or running.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case fsm.StateLoading, fsm.StateRunning:
		return nil
	case fsm.StateStopped:
		return ErrClosed
	}
	if err := c.transitionLocked(fsm.EventStart); err != nil {
		return err
	}

	loadCtx, cancel := context.WithCancel(ctx)
	r := &run{
		id:         uuid.NewString(),
		stop:       make(chan struct{}),
		cancelLoad: cancel,
		done:       make(chan struct{}),
	}
	r.result.SessionID = r.id
	r.result.StartedAt = time.Now()
	c.current = r
	c.status = ""

	go c.watch(ctx, r)
	go c.lifecycle(ctx, loadCtx, r)
	return nil
}

// Stop requests a cooperative stop of the active session. It is a no-op
// while idle or already stopping.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != fsm.StateLoading && c.state != fsm.StateRunning {
		return
	}
	if err := c.transitionLocked(fsm.EventStop); err != nil {
		return
	}
	c.current.requestStop()
}

// Wait blocks until the active session ends and returns its Result. With no
// session active it returns the last Result.
func (c *Controller) Wait(ctx context.Context) (Result, error) {
	c.mu.RLock()
	r := c.current
	last := c.last
	c.mu.RUnlock()

	if r == nil {
		if last == nil {
			return Result{}, errors.New("no session has run")
		}
		return *last, nil
	}
	select {
	case <-r.done:
		return r.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Run starts a session and waits for it. Cancelling ctx stops the session
// gracefully: the in-flight tick completes and the transcript is finalized.
func (c *Controller) Run(ctx context.Context) Result {
	if err := c.Start(ctx); err != nil {
		now := time.Now()
		return Result{State: c.State(), StartedAt: now, FinishedAt: now, Err: err}
	}
	result, err := c.Wait(context.WithoutCancel(ctx))
	if err != nil {
		result.Err = err
	}
	return result
}

// Close moves an idle controller to its terminal state.
func (c *Controller) Close() error {
	return c.transition(fsm.EventClose)
}

// watch converts cancellation of the start context into a graceful stop.
func (c *Controller) watch(ctx context.Context, r *run) {
	select {
	case <-ctx.Done():
		c.mu.RLock()
		same := c.current == r
		c.mu.RUnlock()
		if same {
			c.Stop()
		}
	case <-r.done:
	}
}

func (c *Controller) lifecycle(ctx, loadCtx context.Context, r *run) {
	logger := c.logger.With("session_id", r.id)
	c.indicator.ShowLoading(loadCtx)

	q := queue.New(c.opts.QueueMaxChunks)
	push := func(span []byte) {
		evicted := q.Push(span)
		c.opts.Metrics.ChunkPushed(evicted, q.Len())
	}

	capture, err := c.runtime.OpenCapture(loadCtx, push)
	if err != nil {
		c.end(r, logger, nil, nil, q, fmt.Errorf("open capture: %w", err))
		return
	}
	c.mu.Lock()
	r.device = capture.Device()
	c.mu.Unlock()
	logger.Info("capture opened", "device", capture.Device())

	engine, err := c.runtime.LoadEngine(loadCtx)
	if err != nil {
		capture.Stop()
		c.end(r, logger, capture, nil, q, fmt.Errorf("load engine: %w", err))
		return
	}

	popts := c.opts.Pipeline
	popts.Logger = logger
	popts.Metrics = c.opts.Metrics
	assembler := pipeline.New(q, engine, c.observer, popts)

	c.mu.Lock()
	readyErr := c.transitionLocked(fsm.EventReady)
	if readyErr == nil {
		r.assembler = assembler
	}
	c.mu.Unlock()
	if readyErr != nil {
		// Stop arrived between load and ready.
		capture.Stop()
		c.end(r, logger, capture, engine, q, nil)
		return
	}

	c.indicator.ShowRunning(ctx)
	logger.Info("session running")

	runCtx := context.WithoutCancel(ctx)
	runErr := assembler.Run(runCtx, r.stop)
	c.Stop()
	capture.Stop()
	c.indicator.CueStop(runCtx)

	if runErr == nil {
		runErr = assembler.Finish(runCtx)
	}
	c.end(r, logger, capture, engine, q, runErr)
}

// end releases session resources, records the Result, and returns the
// controller to idle. A non-nil err fails the session.
func (c *Controller) end(r *run, logger *slog.Logger, capture Capture, engine Engine, q *queue.Queue, err error) {
	if engine != nil {
		if closeErr := engine.Close(); closeErr != nil {
			logger.Warn("engine close failed", "error", closeErr.Error())
		}
	}

	// A load cancelled by Stop is a clean stop, not a failure.
	c.mu.RLock()
	stopping := c.state == fsm.StateStopping
	c.mu.RUnlock()
	if err != nil && stopping && r.assembler == nil && errors.Is(err, context.Canceled) {
		err = nil
	}

	res := &r.result
	res.Device = r.device
	res.Chunks, res.Dropped = q.Stats()
	if capture != nil {
		res.BytesCaptured = capture.BytesCaptured()
		if c.opts.DumpAudio {
			path, dumpErr := pipeline.DumpAudio(capture.RawPCM())
			if dumpErr != nil {
				logger.Warn("debug audio dump failed", "error", dumpErr.Error())
			} else {
				res.AudioDump = path
				logger.Info("debug audio written", "path", path)
			}
		}
	}
	if r.assembler != nil {
		stats := r.assembler.Stats()
		res.Lines = r.assembler.Lines()
		res.Ticks = stats.Ticks
		res.Recognitions = stats.Recognitions
		res.Degraded = stats.Degraded
		res.Utterances = stats.Utterances
	}
	res.Err = err
	res.FinishedAt = time.Now()

	cleanupCtx, cancel := context.WithTimeout(context.Background(), 800*time.Millisecond)
	defer cancel()

	c.mu.Lock()
	if err != nil {
		_ = c.transitionLocked(fsm.EventFail)
		c.status = StatusMessage(err)
	} else {
		_ = c.transitionLocked(fsm.EventStopped)
	}
	res.State = c.state
	status := c.status
	c.current = nil
	c.last = res
	c.mu.Unlock()
	r.cancelLoad()

	attrs := []any{
		"device", res.Device,
		"bytes_captured", res.BytesCaptured,
		"chunks", res.Chunks,
		"dropped", res.Dropped,
		"ticks", res.Ticks,
		"utterances", res.Utterances,
		"duration_ms", res.Duration().Milliseconds(),
	}
	if err != nil {
		c.observer.Status(status)
		c.indicator.ShowError(cleanupCtx, status)
		c.opts.Metrics.SessionEnded("failed")
		logger.Error("session failed", append(attrs, "error", err.Error())...)
	} else {
		c.indicator.Hide(cleanupCtx)
		c.opts.Metrics.SessionEnded("complete")
		logger.Info("session complete", attrs...)
	}
	for i, line := range res.Lines {
		logger.Info("final transcript", "index", i, "text", line)
	}
	close(r.done)
}

// Handle serves IPC commands for the owner process.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	state := c.State()
	switch req.Command {
	case ipc.CommandStatus:
		return ipc.Response{
			OK:      true,
			State:   string(state),
			Message: c.Status(),
			Session: c.SessionID(),
			Device:  c.device(),
		}
	case ipc.CommandStop, ipc.CommandToggle:
		if !fsm.Active(state) {
			return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot %s from state %s", req.Command, state)}
		}
		if state == fsm.StateStopping {
			return ipc.Response{OK: true, State: string(state), Message: "stop already requested"}
		}
		c.Stop()
		return ipc.Response{OK: true, State: string(c.State()), Message: "stop requested"}
	case ipc.CommandTranscript:
		return ipc.Response{OK: true, State: string(state), Session: c.SessionID(), Lines: c.Lines()}
	default:
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

func (c *Controller) device() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return ""
	}
	return c.current.device
}
