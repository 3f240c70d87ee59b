package recognize

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/rbright/livescribe/internal/pcm"
)

// OpenAI transcribes through an OpenAI-compatible audio transcription API.
type OpenAI struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func loadOpenAI(opts Options) (*OpenAI, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("no OpenAI API key configured")
	}
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	cfg.HTTPClient = opts.HTTPClient
	return &OpenAI{
		client:  openai.NewClientWithConfig(cfg),
		model:   opts.Model,
		timeout: opts.Timeout,
	}, nil
}

// Transcribe implements Engine.
func (o *OpenAI) Transcribe(ctx context.Context, samples []float32, language string) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}
	wav, err := pcm.WAVBytes(pcm.Denormalize(samples))
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.CreateTranscription(callCtx, openai.AudioRequest{
		Model:    o.model,
		FilePath: "audio.wav",
		Reader:   bytes.NewReader(wav),
		Language: language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

// Close implements Engine.
func (o *OpenAI) Close() error { return nil }
