package audio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"

	"github.com/rbright/livescribe/internal/pcm"
)

// FrameBytes is one 20ms capture frame at 16kHz mono s16.
const FrameBytes = 640

// FrameFunc receives fixed-size PCM frames on the capture goroutine.
type FrameFunc func(frame []byte)

// Capture records 16kHz mono s16 audio from one Pulse source.
type Capture struct {
	device  Device
	onFrame FrameFunc
	keepRaw bool

	client *pulse.Client
	stream *pulse.RecordStream

	mu       sync.Mutex
	pending  []byte
	raw      []byte
	stopped  bool
	inflight sync.WaitGroup
	bytes    atomic.Int64

	stopOnce sync.Once
}

// StartCapture opens a record stream on selected and starts delivering frames.
// Capture stops when ctx ends or Stop is called.
func StartCapture(ctx context.Context, selected Device, onFrame FrameFunc, keepRaw bool) (*Capture, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}

	source, err := client.SourceByID(selected.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", selected.ID, err)
	}

	c := &Capture{device: selected, onFrame: onFrame, keepRaw: keepRaw, client: client}

	stream, err := client.NewRecord(
		pulse.NewWriter(writerFunc(c.onPCM), pulseproto.FormatInt16LE),
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(pcm.SampleRate),
		pulse.RecordBufferFragmentSize(FrameBytes),
		pulse.RecordMediaName("livescribe capture"),
	)
	if err != nil {
		c.Stop()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}
	c.stream = stream
	stream.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return c, nil
}

// Device returns the source being recorded.
func (c *Capture) Device() Device {
	return c.device
}

// BytesCaptured reports total bytes accepted from Pulse.
func (c *Capture) BytesCaptured() int64 {
	return c.bytes.Load()
}

// RawPCM returns a copy of everything recorded so far. It is empty unless the
// capture was started with keepRaw.
func (c *Capture) RawPCM() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.raw...)
}

// Stop halts the stream and delivers any partial trailing frame. It is
// idempotent, and every call returns only after the last frame callback has
// finished, including calls racing the one that does the work.
func (c *Capture) Stop() {
	c.stopOnce.Do(c.stop)
}

func (c *Capture) stop() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()

	if c.stream != nil {
		c.stream.Stop()
		c.stream.Close()
	}
	if c.client != nil {
		c.client.Close()
	}
	c.inflight.Wait()

	c.mu.Lock()
	tail := c.pending
	c.pending = nil
	c.mu.Unlock()

	if len(tail) > 0 && c.onFrame != nil {
		c.onFrame(tail)
	}
}

// onPCM slices Pulse buffers into FrameBytes frames.
func (c *Capture) onPCM(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return 0, io.EOF
	}
	// Add under the same lock as stopped so Stop's Wait cannot race it.
	c.inflight.Add(1)
	defer c.inflight.Done()

	if c.keepRaw {
		c.raw = append(c.raw, buffer...)
	}
	c.pending = append(c.pending, buffer...)

	var frames [][]byte
	for len(c.pending) >= FrameBytes {
		frame := make([]byte, FrameBytes)
		copy(frame, c.pending)
		c.pending = c.pending[FrameBytes:]
		frames = append(frames, frame)
	}
	c.mu.Unlock()

	c.bytes.Add(int64(len(buffer)))
	if c.onFrame != nil {
		for _, frame := range frames {
			c.onFrame(frame)
		}
	}
	return len(buffer), nil
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}
