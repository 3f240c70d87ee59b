package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIOptions configures the chat-completion translator.
type OpenAIOptions struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAI translates through an OpenAI-compatible chat completion endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
	prompt string
}

// NewOpenAILoader returns a Loader that builds OpenAI translators.
func NewOpenAILoader(opts OpenAIOptions) Loader {
	return func(_ context.Context, pair Pair) (Translator, error) {
		if strings.TrimSpace(opts.APIKey) == "" {
			return nil, errors.New("no OpenAI API key configured")
		}
		cfg := openai.DefaultConfig(opts.APIKey)
		if opts.BaseURL != "" {
			cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
		}
		return &OpenAI{
			client: openai.NewClientWithConfig(cfg),
			model:  opts.Model,
			prompt: fmt.Sprintf(
				"Translate the user's message from %s to %s. Reply with the translation only.",
				pair.Source.Name, pair.Target.Name,
			),
		}, nil
	}
}

// Translate implements Translator.
func (o *OpenAI) Translate(ctx context.Context, text string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: o.prompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty chat completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
