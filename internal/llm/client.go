// Package llm provides a provider-agnostic interface for the chat-completion
// models that identify and interpret artworks. Providers return raw response
// text; turning that text into a structured draft (or a degraded fallback)
// is the gateway's job, so a flaky provider payload never leaks past it.
package llm

import "context"

// Client is the interface for inference providers. Both the OpenAI-compatible
// client (Groq) and Anthropic implement it, allowing the gateway to fall back
// from one to the other.
//
// Go interface design tip: keep interfaces small. Two calls — one for text,
// one for text+image — is all the pipeline needs. Go proverb: "The bigger
// the interface, the weaker the abstraction."
type Client interface {
	// Complete sends a text-only prompt and returns the raw response content.
	Complete(ctx context.Context, system, prompt string) (string, error)

	// CompleteVision sends a prompt together with raw image bytes and returns
	// the raw response content. The image is passed through untouched — no
	// resizing or re-encoding happens anywhere in this service.
	CompleteVision(ctx context.Context, system, prompt string, image []byte, mimeType string) (string, error)

	ProviderName() string
	TextModel() string
	VisionModel() string
}
