// Package gateway isolates the rest of the pipeline from inference providers.
// The orchestrator hands it raw names or raw image bytes and gets back
// structured drafts or a typed unavailability error — never a
// provider-specific payload or transport error.
//
// Policy lives here, in one place:
//   - every provider call runs under a bounded timeout
//   - providers are tried in configured order; first success wins
//   - transport failures become ErrGenerationUnavailable
//   - unparseable interpretation output becomes a fixed degraded draft,
//     never an error
//   - identification non-answers ("unknown" etc.) become "no identification"
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mcoelho/artwise/internal/llm"
	"github.com/mcoelho/artwise/internal/model"
	"github.com/mcoelho/artwise/internal/storage"
)

// ErrGenerationUnavailable is returned when no configured provider could be
// reached, responded in time, or returned a transport-level success.
// Callers check with errors.Is; the provider-specific cause stays wrapped.
var ErrGenerationUnavailable = errors.New("generation unavailable")

// sentinelNonAnswers are identification replies that mean "I don't know".
// They must never be treated as a valid artwork name, or a garbage name
// would poison the name cache.
var sentinelNonAnswers = map[string]struct{}{
	"unknown":        {},
	"not identified": {},
	"unidentified":   {},
	"n/a":            {},
	"none":           {},
}

// Gateway fans requests out to an ordered list of inference clients.
// The first client is primary, the rest are fallbacks — swapping priority is
// a config change, not a code change. A shared rate limiter keeps total
// provider spend bounded regardless of which client serves a call.
type Gateway struct {
	clients  []llm.Client
	limiter  *rate.Limiter
	callRepo storage.LLMCallRepository
	timeout  time.Duration
	logger   *zap.Logger
}

// New creates a gateway over the given clients.
// ratePerMinute bounds provider calls; timeout bounds each individual call
// (generation can take tens of seconds, so this is generous but finite).
func New(clients []llm.Client, ratePerMinute int, timeout time.Duration, callRepo storage.LLMCallRepository, logger *zap.Logger) *Gateway {
	rps := rate.Every(time.Minute / time.Duration(ratePerMinute))
	return &Gateway{
		clients:  clients,
		limiter:  rate.NewLimiter(rps, 1),
		callRepo: callRepo,
		timeout:  timeout,
		logger:   logger,
	}
}

// Identify asks the vision model to name the artwork in the image.
// Returns (nil, nil) when the model cannot identify it — a non-answer is
// not an error. Transport failure across all providers is an error.
func (g *Gateway) Identify(ctx context.Context, image []byte, contentType string) (*model.Identification, error) {
	raw, err := g.completeVision(ctx, model.OpIdentify, llm.IdentifySystemPrompt, llm.IdentifyPrompt(), image, contentType)
	if err != nil {
		return nil, err
	}

	name := parseIdentification(raw)
	if name == "" {
		g.logger.Debug("identification returned no usable name")
		return nil, nil
	}
	return &model.Identification{ArtworkName: name}, nil
}

// InterpretByName produces a structured draft for a named artwork.
// The returned draft is always valid: if the provider's output cannot be
// parsed, a fixed degraded draft is substituted. A low-quality cached record
// is preferred over surfacing a hard failure to the caller.
func (g *Gateway) InterpretByName(ctx context.Context, name string) (*model.Draft, error) {
	start := time.Now()
	raw, err := g.complete(ctx, model.OpInterpretByName, name, llm.InterpretSystemPrompt, llm.InterpretByNamePrompt(name))
	if err != nil {
		return nil, err
	}

	draft := parseDraft(raw, name)
	draft.ProcessingTime = time.Since(start).Seconds()
	if draft.Degraded {
		g.logger.Warn("provider output unparseable, using degraded draft",
			zap.String("artwork", name),
		)
	}
	return draft, nil
}

// InterpretByImage produces a structured draft from the image itself.
// Same parse-or-degrade contract as InterpretByName.
func (g *Gateway) InterpretByImage(ctx context.Context, image []byte, contentType string) (*model.Draft, error) {
	start := time.Now()
	raw, err := g.completeVision(ctx, model.OpInterpretByImage, llm.InterpretSystemPrompt, llm.InterpretByImagePrompt(), image, contentType)
	if err != nil {
		return nil, err
	}

	draft := parseDraft(raw, fallbackArtworkName)
	draft.ProcessingTime = time.Since(start).Seconds()
	if draft.Degraded {
		g.logger.Warn("provider output unparseable, using degraded draft",
			zap.String("operation", model.OpInterpretByImage),
		)
	}
	return draft, nil
}

// complete tries each client's text completion in order.
func (g *Gateway) complete(ctx context.Context, op, subject, system, prompt string) (string, error) {
	return g.tryAll(ctx, op, subject, func(callCtx context.Context, client llm.Client) (string, string, error) {
		raw, err := client.Complete(callCtx, system, prompt)
		return raw, client.TextModel(), err
	})
}

// completeVision tries each client's vision completion in order.
func (g *Gateway) completeVision(ctx context.Context, op, system, prompt string, image []byte, contentType string) (string, error) {
	return g.tryAll(ctx, op, "image", func(callCtx context.Context, client llm.Client) (string, string, error) {
		raw, err := client.CompleteVision(callCtx, system, prompt, image, contentType)
		return raw, client.VisionModel(), err
	})
}

// tryAll runs one call against each client in order until one succeeds.
// Each attempt waits on the rate limiter, runs under its own timeout, and is
// recorded for cost tracking. If every client fails, the last cause is
// wrapped in ErrGenerationUnavailable.
func (g *Gateway) tryAll(ctx context.Context, op, subject string, call func(context.Context, llm.Client) (string, string, error)) (string, error) {
	if len(g.clients) == 0 {
		return "", fmt.Errorf("%w: no inference providers configured", ErrGenerationUnavailable)
	}

	var lastErr error
	for i, client := range g.clients {
		// Rate limit — blocks until a token is available or context is cancelled.
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: rate limit wait: %w", ErrGenerationUnavailable, err)
		}

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		start := time.Now()
		raw, modelName, err := call(callCtx, client)
		cancel()
		duration := time.Since(start).Milliseconds()

		g.recordCall(ctx, client.ProviderName(), modelName, op, subject, err == nil, duration)

		if err == nil {
			return raw, nil
		}
		lastErr = err

		if i < len(g.clients)-1 {
			g.logger.Warn("inference provider failed, trying next",
				zap.String("operation", op),
				zap.String("provider", client.ProviderName()),
				zap.Error(err),
			)
		}
	}

	return "", fmt.Errorf("%w: all providers failed: %w", ErrGenerationUnavailable, lastErr)
}

func (g *Gateway) recordCall(ctx context.Context, provider, modelName, op, subject string, success bool, durationMs int64) {
	if g.callRepo == nil {
		return
	}
	call := &model.LLMCall{
		Provider:  provider,
		Model:     modelName,
		Operation: op,
		Subject:   subject,
		Success:   success,
	}
	call.DurationMs = &durationMs

	if err := g.callRepo.Create(ctx, call); err != nil {
		g.logger.Error("recording inference call", zap.Error(err))
	}
}

// isSentinelNonAnswer reports whether an identification reply means
// "no identification" rather than a name.
func isSentinelNonAnswer(name string) bool {
	_, ok := sentinelNonAnswers[strings.ToLower(strings.TrimSpace(name))]
	return ok
}
