package llm

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements Client using Claude. It serves as the fallback
// provider when the primary OpenAI-compatible endpoint is down or keyless.
// Claude uses the same model for text and vision requests.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicClient creates a Claude-backed inference client.
func NewAnthropicClient(apiKey, model string, maxTokens int) *AnthropicClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &AnthropicClient{
		client:    &client,
		model:     model,
		maxTokens: int64(maxTokens),
	}
}

func (a *AnthropicClient) ProviderName() string { return "anthropic" }
func (a *AnthropicClient) TextModel() string    { return a.model }
func (a *AnthropicClient) VisionModel() string  { return a.model }

func (a *AnthropicClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}
	return collectText(message)
}

func (a *AnthropicClient) CompleteVision(ctx context.Context, system, prompt string, image []byte, mimeType string) (string, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mimeType, base64.StdEncoding.EncodeToString(image)),
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic vision API call: %w", err)
	}
	return collectText(message)
}

// collectText concatenates the text blocks of a Claude response.
// Content blocks come back as a union type; AsAny() unwraps each one so a
// type assertion can pick out the text blocks.
func collectText(message *anthropic.Message) (string, error) {
	var out string
	for _, block := range message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			out += text.Text
		}
	}
	if out == "" {
		return "", fmt.Errorf("anthropic returned no text content")
	}
	return out, nil
}
