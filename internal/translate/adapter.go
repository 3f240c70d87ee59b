// Package translate provides the optional post-recognition translation step.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// ErrUnavailable marks a translation that could not be performed.
var ErrUnavailable = errors.New("translation unavailable")

// DefaultMarker prefixes text emitted untranslated in degraded mode.
const DefaultMarker = "[untranslated] "

// Translator translates text for one fixed language pair.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Loader constructs a Translator for a pair. It is called at most once per
// pair per Adapter.
type Loader func(ctx context.Context, pair Pair) (Translator, error)

// Result is the outcome of one Adapter.Translate call.
type Result struct {
	Text     string
	Degraded bool
	// Err is set when a failure happened that has not been reported yet.
	Err error
}

// Options tunes Adapter behavior.
type Options struct {
	Marker string
	Logger *slog.Logger
}

type entry struct {
	translator Translator
	err        error
}

// Adapter lazily builds one Translator per language pair and reuses it for
// the lifetime of the adapter. Construction failures are cached too, so a
// broken pair is reported once and then degrades silently.
type Adapter struct {
	loader Loader
	marker string
	logger *slog.Logger

	mu    sync.Mutex
	cache map[Pair]*entry
}

// NewAdapter returns an Adapter backed by loader.
func NewAdapter(loader Loader, opts Options) *Adapter {
	marker := opts.Marker
	if marker == "" {
		marker = DefaultMarker
	}
	return &Adapter{
		loader: loader,
		marker: marker,
		logger: opts.Logger,
		cache:  make(map[Pair]*entry),
	}
}

// Translate translates text from source to target. It never fails outright:
// on any error the untranslated text is returned with the degraded marker.
func (a *Adapter) Translate(ctx context.Context, text string, pair Pair) Result {
	if strings.TrimSpace(text) == "" || pair.Source.Code == pair.Target.Code {
		return Result{Text: text}
	}

	translator, fresh, err := a.translatorFor(ctx, pair)
	if err != nil {
		res := Result{Text: a.marker + text, Degraded: true}
		if fresh {
			res.Err = err
		}
		return res
	}

	out, err := translator.Translate(ctx, text)
	if err != nil {
		err = fmt.Errorf("%w: translate %s: %v", ErrUnavailable, pair, err)
		a.log("translation call failed", pair, err)
		return Result{Text: a.marker + text, Degraded: true, Err: err}
	}
	return Result{Text: strings.TrimSpace(out)}
}

// Loaded reports whether a working translator has been built for pair.
func (a *Adapter) Loaded(pair Pair) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.cache[pair]
	return ok && e.err == nil
}

func (a *Adapter) translatorFor(ctx context.Context, pair Pair) (Translator, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if e, ok := a.cache[pair]; ok {
		return e.translator, false, e.err
	}

	var (
		translator Translator
		err        error
	)
	if a.loader == nil {
		err = errors.New("no translation loader configured")
	} else {
		translator, err = a.loader(ctx, pair)
	}
	if err == nil && translator == nil {
		err = errors.New("loader returned no translator")
	}
	if err != nil {
		err = fmt.Errorf("%w: load %s: %v", ErrUnavailable, pair, err)
		a.log("translation model load failed", pair, err)
		a.cache[pair] = &entry{err: err}
		return nil, true, err
	}

	a.cache[pair] = &entry{translator: translator}
	return translator, true, nil
}

func (a *Adapter) log(msg string, pair Pair, err error) {
	if a.logger == nil {
		return
	}
	a.logger.Warn(msg, "pair", pair.String(), "error", err.Error())
}
