// Package vad splits a continuous PCM stream into bounded speech spans using a
// fixed energy threshold.
package vad

import (
	"time"

	"github.com/rbright/livescribe/internal/pcm"
)

// Options tunes the segmenter. Zero durations fall back to Defaults.
type Options struct {
	// Threshold is the RMS level (int16 scale) above which a frame counts as speech.
	Threshold float64
	// PhraseLimit caps the length of one emitted span.
	PhraseLimit time.Duration
	// Pause is the run of quiet audio that ends a span.
	Pause time.Duration
	// MinPhrase is the least amount of speech a span must contain to be emitted.
	MinPhrase time.Duration
	// NonSpeaking is the quiet audio kept before and after speech.
	NonSpeaking time.Duration
}

// Defaults mirrors the conventional listen-in-background tuning.
func Defaults() Options {
	return Options{
		Threshold:   1000,
		PhraseLimit: 2 * time.Second,
		Pause:       800 * time.Millisecond,
		MinPhrase:   300 * time.Millisecond,
		NonSpeaking: 500 * time.Millisecond,
	}
}

// CalibrationRatio scales measured ambient energy into a speech threshold.
const CalibrationRatio = 1.5

type state int

const (
	stateWaiting state = iota
	statePhrase
)

// Segmenter is not safe for concurrent use; one capture goroutine owns it.
type Segmenter struct {
	opts Options

	state   state
	preroll [][]byte
	phrase  []byte
	lead    int
	pause   time.Duration
}

// New returns a segmenter in the waiting state.
func New(opts Options) *Segmenter {
	def := Defaults()
	if opts.Threshold <= 0 {
		opts.Threshold = def.Threshold
	}
	if opts.PhraseLimit <= 0 {
		opts.PhraseLimit = def.PhraseLimit
	}
	if opts.Pause <= 0 {
		opts.Pause = def.Pause
	}
	if opts.MinPhrase < 0 {
		opts.MinPhrase = 0
	}
	if opts.NonSpeaking < 0 {
		opts.NonSpeaking = 0
	}
	return &Segmenter{opts: opts}
}

// Threshold returns the energy level currently in force.
func (s *Segmenter) Threshold() float64 {
	return s.opts.Threshold
}

// Calibrate raises the threshold above measured ambient energy, once.
// The threshold never adapts after this call.
func (s *Segmenter) Calibrate(ambient []byte) float64 {
	level := pcm.Energy(ambient) * CalibrationRatio
	if level > s.opts.Threshold {
		s.opts.Threshold = level
	}
	return s.opts.Threshold
}

// Feed consumes one capture frame and returns a completed span, or nil.
func (s *Segmenter) Feed(frame []byte) []byte {
	if len(frame) == 0 {
		return nil
	}
	loud := pcm.Energy(frame) > s.opts.Threshold

	switch s.state {
	case stateWaiting:
		if !loud {
			s.keepPreroll(frame)
			return nil
		}
		s.state = statePhrase
		s.pause = 0
		s.phrase = s.phrase[:0]
		for _, p := range s.preroll {
			s.phrase = append(s.phrase, p...)
		}
		s.lead = len(s.phrase)
		s.preroll = nil
		s.phrase = append(s.phrase, frame...)
	case statePhrase:
		s.phrase = append(s.phrase, frame...)
		if loud {
			s.pause = 0
		} else {
			s.pause += pcm.Duration(len(frame))
		}
	}

	if s.pause > s.opts.Pause || pcm.Duration(len(s.phrase)) >= s.opts.PhraseLimit {
		return s.finish()
	}
	return nil
}

// Flush ends an in-progress span, returning it when it holds enough speech.
func (s *Segmenter) Flush() []byte {
	if s.state != statePhrase {
		s.preroll = nil
		return nil
	}
	return s.finish()
}

func (s *Segmenter) finish() []byte {
	phrase := s.phrase
	pause := s.pause
	lead := s.lead

	s.state = stateWaiting
	s.phrase = nil
	s.lead = 0
	s.pause = 0

	speech := pcm.Duration(len(phrase)-lead) - pause
	if speech < s.opts.MinPhrase {
		return nil
	}

	if trim := pause - s.opts.NonSpeaking; trim > 0 {
		cut := pcm.BytesFor(trim)
		if cut > len(phrase) {
			cut = len(phrase)
		}
		phrase = phrase[:len(phrase)-cut]
	}

	out := make([]byte, len(phrase))
	copy(out, phrase)
	return out
}

// keepPreroll retains at most NonSpeaking worth of recent quiet frames.
func (s *Segmenter) keepPreroll(frame []byte) {
	limit := pcm.BytesFor(s.opts.NonSpeaking)
	if limit == 0 {
		return
	}
	s.preroll = append(s.preroll, frame)
	total := 0
	for _, p := range s.preroll {
		total += len(p)
	}
	for total > limit && len(s.preroll) > 0 {
		total -= len(s.preroll[0])
		s.preroll = s.preroll[1:]
	}
}
