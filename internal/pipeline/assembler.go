// Package pipeline drains captured speech, runs recognition, and merges the
// results into a rolling transcript.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/livescribe/internal/metrics"
	"github.com/rbright/livescribe/internal/pcm"
	"github.com/rbright/livescribe/internal/queue"
	"github.com/rbright/livescribe/internal/transcript"
	"github.com/rbright/livescribe/internal/translate"
)

// ErrRecognition marks a recognition call that failed mid-session.
var ErrRecognition = errors.New("recognition failed")

// DefaultPollInterval is the sleep between polls of an empty queue.
const DefaultPollInterval = 250 * time.Millisecond

// Recognizer transcribes normalized samples.
type Recognizer interface {
	Transcribe(ctx context.Context, samples []float32, language string) (string, error)
}

// Translator rewrites recognized text into another language.
type Translator interface {
	Translate(ctx context.Context, text string, pair translate.Pair) translate.Result
}

// Options tunes the assembler.
type Options struct {
	PhraseTimeout time.Duration
	PollInterval  time.Duration
	Language      string

	// Translation is applied when both Translator and Pair are set.
	Translator Translator
	Pair       *translate.Pair

	Now     func() time.Time
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Stats summarizes assembler activity.
type Stats struct {
	Ticks        int
	Drains       int
	Recognitions int
	Degraded     int
	Utterances   int
}

// Assembler owns the transcript of one session. Tick and Run must be called
// from a single goroutine; Lines and Stats may be read concurrently.
type Assembler struct {
	queue    *queue.Queue
	engine   Recognizer
	observer Observer
	opts     Options

	phrase *transcript.PhraseState

	mu         sync.RWMutex
	transcript transcript.Transcript
	stats      Stats
}

// New returns an assembler reading from q.
func New(q *queue.Queue, engine Recognizer, observer Observer, opts Options) *Assembler {
	if observer == nil {
		observer = NopObserver{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Assembler{
		queue:    q,
		engine:   engine,
		observer: observer,
		opts:     opts,
		phrase:   transcript.NewPhraseState(opts.PhraseTimeout),
	}
}

// Run polls until stop is closed or ctx ends. A tick in progress always
// completes, and its result is merged, before Run returns. Recognition
// errors end the loop.
func (a *Assembler) Run(ctx context.Context, stop <-chan struct{}) error {
	timer := time.NewTimer(a.opts.PollInterval)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		drained, err := a.Tick(ctx)
		if err != nil {
			return err
		}
		if drained {
			continue
		}

		timer.Reset(a.opts.PollInterval)
		select {
		case <-stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Tick runs one poll: drain, detect a phrase boundary, recognize, translate,
// and merge. It reports whether any audio was drained.
func (a *Assembler) Tick(ctx context.Context) (bool, error) {
	a.mu.Lock()
	a.stats.Ticks++
	a.mu.Unlock()

	if a.queue.IsEmpty() {
		return false, nil
	}
	pending := queue.Concat(a.queue.DrainAll())
	a.opts.Metrics.Drained(a.queue.Len())
	if len(pending) == 0 {
		return false, nil
	}

	// Only silence between drains closes a phrase. The pending buffer is
	// recognized on its own and dropped after this tick.
	boundary := a.phrase.Observe(a.opts.Now())

	started := time.Now()
	text, err := a.engine.Transcribe(ctx, pcm.Normalize(pending), a.opts.Language)
	a.opts.Metrics.Recognition(time.Since(started), err)
	if err != nil {
		return true, fmt.Errorf("%w: %w", ErrRecognition, err)
	}
	text = strings.TrimSpace(text)

	degraded := false
	if a.opts.Translator != nil && a.opts.Pair != nil {
		res := a.opts.Translator.Translate(ctx, text, *a.opts.Pair)
		text, degraded = res.Text, res.Degraded
		a.opts.Metrics.Translation(degraded)
		if res.Err != nil {
			a.observer.Status("translation unavailable; showing untranslated text")
			a.logWarn("translation degraded", "error", res.Err.Error())
		}
	}

	a.mu.Lock()
	update := a.transcript.Merge(text, boundary)
	a.stats.Drains++
	a.stats.Recognitions++
	if degraded {
		a.stats.Degraded++
	}
	if update.Appended {
		a.stats.Utterances++
	}
	a.mu.Unlock()

	if update.Closed != nil {
		a.observer.Finalize(*update.Closed)
		a.opts.Metrics.Finalize()
	}
	a.observer.Preview(update.Current)
	a.opts.Metrics.Preview()

	a.logDebug("tick merged",
		"bytes", len(pending),
		"boundary", boundary,
		"index", update.Current.Index,
	)
	return true, nil
}

// Finish processes audio still queued after capture stopped, then finalizes
// the open utterance.
func (a *Assembler) Finish(ctx context.Context) error {
	var tickErr error
	if !a.queue.IsEmpty() {
		_, tickErr = a.Tick(ctx)
	}

	a.mu.Lock()
	closed := a.transcript.Close()
	a.mu.Unlock()
	if closed != nil {
		a.observer.Finalize(*closed)
		a.opts.Metrics.Finalize()
	}
	return tickErr
}

// Lines returns the transcript so far.
func (a *Assembler) Lines() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.transcript.Lines()
}

// Stats returns activity counters.
func (a *Assembler) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}

func (a *Assembler) logDebug(msg string, attrs ...any) {
	if a.opts.Logger != nil {
		a.opts.Logger.Debug(msg, attrs...)
	}
}

func (a *Assembler) logWarn(msg string, attrs ...any) {
	if a.opts.Logger != nil {
		a.opts.Logger.Warn(msg, attrs...)
	}
}
