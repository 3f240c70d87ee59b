package recognize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rbright/livescribe/internal/pcm"
)

// WhisperCPP talks to a whisper.cpp example server.
type WhisperCPP struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
}

func loadWhisperCPP(ctx context.Context, opts Options) (*WhisperCPP, error) {
	w := &WhisperCPP{
		endpoint: strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/"),
		client:   opts.HTTPClient,
		timeout:  opts.Timeout,
	}
	if w.endpoint == "" {
		return nil, fmt.Errorf("endpoint is empty")
	}

	loadCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	if opts.ModelDir == "" {
		if err := w.probe(loadCtx); err != nil {
			return nil, err
		}
		return w, nil
	}

	path := filepath.Join(opts.ModelDir, "ggml-"+opts.Model+".bin")
	if _, err := w.post(loadCtx, "/load", map[string]string{"model": path}, nil); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *WhisperCPP) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint+"/", nil)
	if err != nil {
		return err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", w.endpoint, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("probe %s: http %d", w.endpoint, resp.StatusCode)
	}
	return nil
}

type whisperResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// Transcribe implements Engine.
func (w *WhisperCPP) Transcribe(ctx context.Context, samples []float32, language string) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}
	wav, err := pcm.WAVBytes(pcm.Denormalize(samples))
	if err != nil {
		return "", err
	}

	fields := map[string]string{
		"temperature":     "0.0",
		"response_format": "json",
	}
	if language != "" {
		fields["language"] = language
	}

	callCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	body, err := w.post(callCtx, "/inference", fields, wav)
	if err != nil {
		return "", err
	}

	var out whisperResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode inference response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("inference: %s", out.Error)
	}
	return strings.TrimSpace(out.Text), nil
}

// Close implements Engine.
func (w *WhisperCPP) Close() error { return nil }

func (w *WhisperCPP) post(ctx context.Context, path string, fields map[string]string, wav []byte) ([]byte, error) {
	var payload bytes.Buffer
	mw := multipart.NewWriter(&payload)
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			return nil, err
		}
	}
	if wav != nil {
		fw, err := mw.CreateFormFile("file", "audio.wav")
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(wav); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint+path, &payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("POST %s: http %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
