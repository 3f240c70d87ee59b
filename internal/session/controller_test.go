package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/rbright/livescribe/internal/audio"
	"github.com/rbright/livescribe/internal/fsm"
	"github.com/rbright/livescribe/internal/ipc"
	"github.com/rbright/livescribe/internal/metrics"
	"github.com/rbright/livescribe/internal/pipeline"
	"github.com/rbright/livescribe/internal/transcript"
)

type fakeCapture struct {
	stops atomic.Int32
	bytes atomic.Int64
}

func (c *fakeCapture) Stop()                { c.stops.Add(1) }
func (c *fakeCapture) Device() string       { return "Test Mic" }
func (c *fakeCapture) BytesCaptured() int64 { return c.bytes.Load() }
func (c *fakeCapture) RawPCM() []byte       { return nil }

type fakeEngine struct {
	text   string
	err    error
	calls  atomic.Int32
	closed atomic.Int32
}

func (e *fakeEngine) Transcribe(context.Context, []float32, string) (string, error) {
	e.calls.Add(1)
	return e.text, e.err
}

func (e *fakeEngine) Close() error {
	e.closed.Add(1)
	return nil
}

// gatedEngine blocks every Transcribe until release is closed.
type gatedEngine struct {
	text    string
	started chan struct{}
	release chan struct{}
	once    sync.Once
	closed  atomic.Int32
}

func (e *gatedEngine) Transcribe(context.Context, []float32, string) (string, error) {
	e.once.Do(func() { close(e.started) })
	<-e.release
	return e.text, nil
}

func (e *gatedEngine) Close() error {
	e.closed.Add(1)
	return nil
}

type fakeRuntime struct {
	capture    *fakeCapture
	engine     *fakeEngine
	loaded     Engine
	captureErr error
	// blockLoad makes LoadEngine wait for cancellation.
	blockLoad bool

	mu   sync.Mutex
	push func([]byte)
}

func (r *fakeRuntime) OpenCapture(_ context.Context, push func([]byte)) (Capture, error) {
	if r.captureErr != nil {
		return nil, r.captureErr
	}
	r.mu.Lock()
	r.push = push
	r.mu.Unlock()
	return r.capture, nil
}

func (r *fakeRuntime) LoadEngine(ctx context.Context) (Engine, error) {
	if r.blockLoad {
		<-ctx.Done()
		return nil, fmt.Errorf("load: %w", ctx.Err())
	}
	if r.loaded != nil {
		return r.loaded, nil
	}
	return r.engine, nil
}

func (r *fakeRuntime) speak(n int) {
	r.mu.Lock()
	push := r.push
	r.mu.Unlock()
	span := make([]byte, n)
	for i := range span {
		span[i] = byte(i)
	}
	r.capture.bytes.Add(int64(n))
	push(span)
}

type recorder struct {
	mu        sync.Mutex
	finalized []transcript.Utterance
	statuses  []string
}

func (r *recorder) Preview(transcript.Utterance) {}

func (r *recorder) Finalize(u transcript.Utterance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalized = append(r.finalized, u)
}

func (r *recorder) Status(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, message)
}

func (r *recorder) snapshot() ([]transcript.Utterance, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]transcript.Utterance(nil), r.finalized...), append([]string(nil), r.statuses...)
}

func newRuntime() *fakeRuntime {
	return &fakeRuntime{capture: &fakeCapture{}, engine: &fakeEngine{text: "hello there"}}
}

func newController(rt Runtime, obs pipeline.Observer, m *metrics.Metrics) *Controller {
	return NewController(rt, Options{
		Pipeline: pipeline.Options{PhraseTimeout: 3 * time.Second, PollInterval: 5 * time.Millisecond},
		Observer: obs,
		Metrics:  m,
	})
}

func waitForState(t *testing.T, c *Controller, want fsm.State) {
	t.Helper()
	require.Eventually(t, func() bool { return c.State() == want }, 2*time.Second, 2*time.Millisecond)
}

func TestSessionLifecycle(t *testing.T) {
	rt := newRuntime()
	rec := &recorder{}
	m := metrics.New()
	c := newController(rt, rec, m)

	require.NoError(t, c.Start(context.Background()))
	waitForState(t, c, fsm.StateRunning)
	id := c.SessionID()
	require.NotEmpty(t, id)

	rt.speak(3200)
	require.Eventually(t, func() bool { return len(c.Lines()) == 1 }, 2*time.Second, 2*time.Millisecond)
	require.Equal(t, []string{"hello there"}, c.Lines())

	c.Stop()
	res, err := c.Wait(context.Background())
	require.NoError(t, err)

	require.NoError(t, res.Err)
	require.Equal(t, fsm.StateIdle, res.State)
	require.Equal(t, fsm.StateIdle, c.State())
	require.Equal(t, id, res.SessionID)
	require.Equal(t, "Test Mic", res.Device)
	require.Equal(t, []string{"hello there"}, res.Lines)
	require.EqualValues(t, 1, res.Chunks)
	require.EqualValues(t, 3200, res.BytesCaptured)
	require.Equal(t, 1, res.Utterances)
	require.False(t, res.FinishedAt.Before(res.StartedAt))

	finalized, _ := rec.snapshot()
	require.Len(t, finalized, 1)
	require.Equal(t, "hello there", finalized[0].Text)

	require.Positive(t, rt.capture.stops.Load())
	require.EqualValues(t, 1, rt.engine.closed.Load())
	require.Equal(t, 1.0, testutil.ToFloat64(m.Sessions.WithLabelValues("complete")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.PipelineState.WithLabelValues(string(fsm.StateIdle))))
	require.Empty(t, c.SessionID())
	require.Equal(t, []string{"hello there"}, c.Lines())
}

func TestStopMidInferenceMergesInFlightResult(t *testing.T) {
	engine := &gatedEngine{text: "in flight", started: make(chan struct{}), release: make(chan struct{})}
	rt := newRuntime()
	rt.loaded = engine
	rec := &recorder{}
	c := newController(rt, rec, nil)

	require.NoError(t, c.Start(context.Background()))
	waitForState(t, c, fsm.StateRunning)
	rt.speak(3200)
	<-engine.started

	c.Stop()
	require.Equal(t, fsm.StateStopping, c.State())
	require.Never(t, func() bool { return c.State() != fsm.StateStopping }, 50*time.Millisecond, 5*time.Millisecond)

	close(engine.release)
	res, err := c.Wait(context.Background())
	require.NoError(t, err)

	require.NoError(t, res.Err)
	require.Equal(t, fsm.StateIdle, res.State)
	require.Equal(t, fsm.StateIdle, c.State())
	require.Equal(t, []string{"in flight"}, res.Lines)
	finalized, _ := rec.snapshot()
	require.Equal(t, []transcript.Utterance{{Index: 0, Text: "in flight", Final: true}}, finalized)
	require.EqualValues(t, 1, engine.closed.Load())
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	rt := newRuntime()
	c := newController(rt, nil, nil)

	require.NoError(t, c.Start(context.Background()))
	waitForState(t, c, fsm.StateRunning)
	id := c.SessionID()

	require.NoError(t, c.Start(context.Background()))
	require.Equal(t, id, c.SessionID())

	c.Stop()
	_, err := c.Wait(context.Background())
	require.NoError(t, err)
}

func TestStopWhileIdleIsNoop(t *testing.T) {
	c := newController(newRuntime(), nil, nil)
	c.Stop()
	require.Equal(t, fsm.StateIdle, c.State())
}

func TestDeviceErrorReturnsToIdle(t *testing.T) {
	rt := newRuntime()
	rt.captureErr = fmt.Errorf("%w: no such source", audio.ErrDevice)
	rec := &recorder{}
	m := metrics.New()
	c := newController(rt, rec, m)

	res := c.Run(context.Background())
	require.ErrorIs(t, res.Err, audio.ErrDevice)
	require.Equal(t, fsm.StateIdle, res.State)
	require.Equal(t, "Microphone unavailable", c.Status())
	require.Zero(t, rt.engine.calls.Load())

	_, statuses := rec.snapshot()
	require.Equal(t, []string{"Microphone unavailable"}, statuses)
	require.Equal(t, 1.0, testutil.ToFloat64(m.Sessions.WithLabelValues("failed")))
}

func TestRecognitionFailureReturnsToIdle(t *testing.T) {
	rt := newRuntime()
	rt.engine.err = errors.New("inference crashed")
	c := newController(rt, nil, nil)

	require.NoError(t, c.Start(context.Background()))
	waitForState(t, c, fsm.StateRunning)
	rt.speak(3200)

	res, err := c.Wait(context.Background())
	require.NoError(t, err)
	require.ErrorIs(t, res.Err, pipeline.ErrRecognition)
	require.Equal(t, fsm.StateIdle, c.State())
	require.Equal(t, "Speech recognition failed", c.Status())
	require.EqualValues(t, 1, rt.engine.closed.Load())

	require.NoError(t, c.Start(context.Background()))
	require.Empty(t, c.Status())
	c.Stop()
	_, err = c.Wait(context.Background())
	require.NoError(t, err)
}

func TestStopDuringLoadingCancelsLoad(t *testing.T) {
	rt := newRuntime()
	rt.blockLoad = true
	c := newController(rt, nil, nil)

	require.NoError(t, c.Start(context.Background()))
	waitForState(t, c, fsm.StateLoading)
	c.Stop()

	res, err := c.Wait(context.Background())
	require.NoError(t, err)
	require.NoError(t, res.Err)
	require.Equal(t, fsm.StateIdle, res.State)
	require.Positive(t, rt.capture.stops.Load())
	require.Empty(t, c.Status())
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	rt := newRuntime()
	c := newController(rt, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan Result, 1)
	go func() { done <- c.Run(ctx) }()

	waitForState(t, c, fsm.StateRunning)
	rt.speak(3200)
	require.Eventually(t, func() bool { return len(c.Lines()) == 1 }, 2*time.Second, 2*time.Millisecond)
	cancel()

	select {
	case res := <-done:
		require.NoError(t, res.Err)
		require.Equal(t, []string{"hello there"}, res.Lines)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
}

func TestCloseIsTerminal(t *testing.T) {
	c := newController(newRuntime(), nil, nil)
	require.NoError(t, c.Close())
	require.Equal(t, fsm.StateStopped, c.State())
	require.ErrorIs(t, c.Start(context.Background()), ErrClosed)
}

func TestHandleCommands(t *testing.T) {
	rt := newRuntime()
	c := newController(rt, nil, nil)
	ctx := context.Background()

	resp := c.Handle(ctx, ipc.Request{Command: ipc.CommandStop})
	require.False(t, resp.OK)
	require.Equal(t, "idle", resp.State)

	require.NoError(t, c.Start(ctx))
	waitForState(t, c, fsm.StateRunning)
	rt.speak(3200)
	require.Eventually(t, func() bool { return len(c.Lines()) == 1 }, 2*time.Second, 2*time.Millisecond)

	resp = c.Handle(ctx, ipc.Request{Command: ipc.CommandStatus})
	require.True(t, resp.OK)
	require.Equal(t, "running", resp.State)
	require.Equal(t, c.SessionID(), resp.Session)
	require.Equal(t, "Test Mic", resp.Device)

	resp = c.Handle(ctx, ipc.Request{Command: ipc.CommandTranscript})
	require.True(t, resp.OK)
	require.Equal(t, []string{"hello there"}, resp.Lines)

	resp = c.Handle(ctx, ipc.Request{Command: "dance"})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "unknown command")

	resp = c.Handle(ctx, ipc.Request{Command: ipc.CommandToggle})
	require.True(t, resp.OK)
	require.Equal(t, "stop requested", resp.Message)

	_, err := c.Wait(ctx)
	require.NoError(t, err)
}

func TestStatusMessage(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"nil":      {nil, ""},
		"device":   {fmt.Errorf("open: %w", audio.ErrDevice), "Microphone unavailable"},
		"recog":    {fmt.Errorf("tick: %w", pipeline.ErrRecognition), "Speech recognition failed"},
		"owner":    {ipc.ErrAlreadyRunning, "A session is already running"},
		"cancel":   {context.Canceled, "Cancelled"},
		"fallback": {errors.New("boom"), "Session failed"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, StatusMessage(tc.err))
		})
	}
}
