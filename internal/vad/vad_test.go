package vad

import (
	"testing"
	"time"

	"github.com/rbright/livescribe/internal/pcm"
	"github.com/stretchr/testify/require"
)

const frameBytes = 640 // 20ms

func quietFrame() []byte { return make([]byte, frameBytes) }

func loudFrame() []byte {
	samples := make([]float32, frameBytes/2)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 0.5
		} else {
			samples[i] = -0.5
		}
	}
	return pcm.Denormalize(samples)
}

func feedN(s *Segmenter, frame func() []byte, n int) [][]byte {
	var out [][]byte
	for i := 0; i < n; i++ {
		if span := s.Feed(frame()); span != nil {
			out = append(out, span)
		}
	}
	return out
}

func TestSpanEndsAfterPauseWithPrerollAndTrimmedTail(t *testing.T) {
	s := New(Defaults())

	require.Empty(t, feedN(s, quietFrame, 10))
	require.Empty(t, feedN(s, loudFrame, 20))
	require.Empty(t, feedN(s, quietFrame, 40))

	spans := feedN(s, quietFrame, 1)
	require.Len(t, spans, 1)
	// 10 preroll + 20 speech + 41 quiet, minus 320ms of trailing quiet beyond the kept 500ms.
	require.Len(t, spans[0], (10+20+41-16)*frameBytes)
}

func TestSpanIsCappedAtPhraseLimit(t *testing.T) {
	s := New(Defaults())

	spans := feedN(s, loudFrame, 150)
	require.Len(t, spans, 1)
	require.Equal(t, 2*time.Second, pcm.Duration(len(spans[0])))

	flushed := s.Flush()
	require.Equal(t, time.Second, pcm.Duration(len(flushed)))
}

func TestShortBlipIsDiscarded(t *testing.T) {
	s := New(Defaults())

	require.Empty(t, feedN(s, quietFrame, 30))
	require.Empty(t, feedN(s, loudFrame, 5))
	require.Empty(t, feedN(s, quietFrame, 60))
}

func TestThresholdIsFixed(t *testing.T) {
	opts := Defaults()
	opts.Threshold = 20000
	s := New(opts)

	require.Empty(t, feedN(s, loudFrame, 500))
	require.Equal(t, float64(20000), s.Threshold())
}

func TestCalibrateRaisesThresholdOnce(t *testing.T) {
	s := New(Defaults())

	ambient := pcm.Denormalize([]float32{0.0625, -0.0625, 0.0625, -0.0625})
	require.InDelta(t, 3072, s.Calibrate(ambient), 1)

	require.InDelta(t, 3072, s.Calibrate(make([]byte, 64)), 1)
}

func TestFlushWithoutSpeechReturnsNil(t *testing.T) {
	s := New(Defaults())
	feedN(s, quietFrame, 5)
	require.Nil(t, s.Flush())
}

func TestNewAppliesDefaults(t *testing.T) {
	s := New(Options{})
	require.Equal(t, Defaults().Threshold, s.Threshold())
	require.Equal(t, Defaults().PhraseLimit, s.opts.PhraseLimit)
	require.Equal(t, Defaults().Pause, s.opts.Pause)
}
