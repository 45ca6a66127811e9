package llm

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client against any OpenAI-compatible
// chat-completions endpoint. With the default base URL it talks to OpenAI;
// pointed at https://api.groq.com/openai/v1 it talks to Groq, which serves
// the fast Llama vision models this service uses as its primary provider.
type OpenAIClient struct {
	client      *openai.Client
	provider    string
	textModel   string
	visionModel string
	maxTokens   int
	temperature float32
}

// NewOpenAIClient creates a client for an OpenAI-compatible provider.
// provider is the name recorded in call accounting (e.g. "groq", "openai").
func NewOpenAIClient(provider, apiKey, baseURL, textModel, visionModel string, maxTokens int, temperature float32) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(cfg),
		provider:    provider,
		textModel:   textModel,
		visionModel: visionModel,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (c *OpenAIClient) ProviderName() string { return c.provider }
func (c *OpenAIClient) TextModel() string    { return c.textModel }
func (c *OpenAIClient) VisionModel() string  { return c.visionModel }

func (c *OpenAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.textModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		// json_object mode makes the provider emit a single JSON object,
		// which is what the gateway's parser expects.
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s API call: %w", c.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", c.provider)
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) CompleteVision(ctx context.Context, system, prompt string, image []byte, mimeType string) (string, error) {
	// Images travel as data URLs inside the message content — the
	// OpenAI-compatible vision format.
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.visionModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s vision API call: %w", c.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", c.provider)
	}
	return resp.Choices[0].Message.Content, nil
}
