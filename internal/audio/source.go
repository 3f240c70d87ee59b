package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rbright/livescribe/internal/pcm"
	"github.com/rbright/livescribe/internal/vad"
)

// SourceOptions configures a Source.
type SourceOptions struct {
	Input    string
	Fallback string
	VAD      vad.Options
	// Calibrate, when positive, samples ambient noise for that long before
	// segmentation starts and raises the threshold above it.
	Calibrate time.Duration
	KeepRaw   bool
	Logger    *slog.Logger
}

// PushFunc receives one bounded speech span. It must not block.
type PushFunc func(span []byte)

// Source is a microphone plus a fixed-threshold segmenter: every detected
// speech span is handed to the push callback from the capture goroutine.
type Source struct {
	selection Selection
	capture   *Capture
	push      PushFunc
	logger    *slog.Logger

	mu             sync.Mutex
	seg            *vad.Segmenter
	calibrateBytes int
	ambient        []byte

	spans    atomic.Int64
	stopOnce sync.Once
}

// OpenSource selects a device and starts capturing. Failures wrap ErrDevice.
func OpenSource(ctx context.Context, opts SourceOptions, push PushFunc) (*Source, error) {
	selection, err := SelectDevice(ctx, opts.Input, opts.Fallback)
	if err != nil {
		return nil, err
	}
	if selection.Warning != "" && opts.Logger != nil {
		opts.Logger.Warn(selection.Warning)
	}

	s := newSource(opts, push)
	s.selection = selection

	capture, err := StartCapture(ctx, selection.Device, s.handleFrame, opts.KeepRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDevice, selection.Device.ID, err)
	}
	s.capture = capture
	return s, nil
}

func newSource(opts SourceOptions, push PushFunc) *Source {
	return &Source{
		push:           push,
		logger:         opts.Logger,
		seg:            vad.New(opts.VAD),
		calibrateBytes: pcm.BytesFor(opts.Calibrate),
	}
}

func (s *Source) handleFrame(frame []byte) {
	s.mu.Lock()
	if s.calibrateBytes > 0 {
		s.ambient = append(s.ambient, frame...)
		if len(s.ambient) >= s.calibrateBytes {
			threshold := s.seg.Calibrate(s.ambient)
			s.calibrateBytes = 0
			s.ambient = nil
			if s.logger != nil {
				s.logger.Info("energy threshold calibrated", "threshold", threshold)
			}
		}
		s.mu.Unlock()
		return
	}
	span := s.seg.Feed(frame)
	s.mu.Unlock()

	s.emit(span)
}

func (s *Source) emit(span []byte) {
	if len(span) == 0 || s.push == nil {
		return
	}
	s.spans.Add(1)
	s.push(span)
}

// Stop ends capture and pushes any speech span still in progress.
func (s *Source) Stop() {
	s.stopOnce.Do(func() {
		if s.capture != nil {
			s.capture.Stop()
		}
		s.mu.Lock()
		span := s.seg.Flush()
		s.mu.Unlock()
		s.emit(span)
	})
}

// Selection returns the resolved device.
func (s *Source) Selection() Selection {
	return s.selection
}

// Threshold returns the energy threshold in force.
func (s *Source) Threshold() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seg.Threshold()
}

// Spans reports how many speech spans were pushed.
func (s *Source) Spans() int64 {
	return s.spans.Load()
}

// BytesCaptured reports the raw audio volume recorded.
func (s *Source) BytesCaptured() int64 {
	if s.capture == nil {
		return 0
	}
	return s.capture.BytesCaptured()
}

// RawPCM returns the full recording when KeepRaw was set.
func (s *Source) RawPCM() []byte {
	if s.capture == nil {
		return nil
	}
	return s.capture.RawPCM()
}
