// Package recognize adapts speech-to-text backends to a single engine contract:
// normalized 16 kHz mono samples in, text out.
package recognize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrModelLoad marks a failure to make a recognition backend ready.
var ErrModelLoad = errors.New("recognition model load failed")

const (
	BackendWhisperCPP = "whispercpp"
	BackendOpenAI     = "openai"
	BackendGRPC       = "grpc"
)

// Engine transcribes one buffer of normalized samples.
type Engine interface {
	Transcribe(ctx context.Context, samples []float32, language string) (string, error)
	Close() error
}

// Options selects and configures a backend. Model holds a tier or a literal
// model name; Load resolves it through ModelName.
type Options struct {
	Backend      string
	Endpoint     string
	Model        string
	Multilingual bool
	ModelDir     string
	Timeout      time.Duration
	DialTimeout  time.Duration
	GRPCMethod   string
	APIKey       string
	BaseURL      string
	HTTPClient   *http.Client
}

var tiers = []string{"tiny", "base", "small", "medium", "large"}

// Tiers lists the recognized model size tiers, smallest first.
func Tiers() []string {
	return append([]string(nil), tiers...)
}

// ModelName maps a size tier to a concrete model name. English-only variants
// exist for every tier except large. Unknown values pass through unchanged.
func ModelName(model string, multilingual bool) string {
	name := strings.TrimSpace(model)
	lower := strings.ToLower(name)
	for _, tier := range tiers {
		if lower != tier {
			continue
		}
		if tier == "large" || multilingual {
			return tier
		}
		return tier + ".en"
	}
	return name
}

// Load resolves the model and returns a ready engine. Every failure wraps
// ErrModelLoad.
func Load(ctx context.Context, opts Options) (Engine, error) {
	opts.Model = ModelName(opts.Model, opts.Multilingual)
	if opts.Model == "" {
		return nil, fmt.Errorf("%w: model is empty", ErrModelLoad)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 3 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	var (
		engine Engine
		err    error
	)
	switch opts.Backend {
	case BackendWhisperCPP:
		engine, err = loadWhisperCPP(ctx, opts)
	case BackendOpenAI:
		engine, err = loadOpenAI(opts)
	case BackendGRPC:
		engine, err = loadGRPC(ctx, opts)
	default:
		err = fmt.Errorf("unknown backend %q", opts.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s model %q: %w", ErrModelLoad, opts.Backend, opts.Model, err)
	}
	return engine, nil
}
