package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mcoelho/artwise/internal/model"
	"github.com/mcoelho/artwise/internal/storage"
)

// Interpreter is the slice of the inference gateway the orchestrator needs.
// Declared here, on the consumer side, so tests can substitute a counting
// mock without touching the real gateway package.
type Interpreter interface {
	// Identify returns the artwork name seen in the image, or (nil, nil)
	// when the model cannot identify one.
	Identify(ctx context.Context, image []byte, contentType string) (*model.Identification, error)
	// InterpretByName always returns at least a degraded draft on success.
	InterpretByName(ctx context.Context, name string) (*model.Draft, error)
	// InterpretByImage always returns at least a degraded draft on success.
	InterpretByImage(ctx context.Context, image []byte, contentType string) (*model.Draft, error)
}

// Result pairs an analysis with whether it came from cache. Freshly
// generated records report Cached=false; every cache-hit path reports true.
type Result struct {
	Analysis *model.Analysis
	Cached   bool
}

// AnalysisService is the pipeline controller. Each request walks the state
// machine strictly in order:
//
//	validate → fingerprint → cache by fingerprint → identify →
//	cache by name → generate → enrich → persist
//
// with cheaper and more precise checks always before more expensive ones.
// There is no cross-request de-duplication: two simultaneous misses for the
// same new artwork may both generate and both persist. That race is accepted
// and pinned by tests rather than locked away.
type AnalysisService struct {
	repo     storage.AnalysisRepository
	resolver *Resolver
	gateway  Interpreter
	images   ImageFinder // nil disables enrichment
	logger   *zap.Logger

	maxUploadBytes int64
	allowedTypes   map[string]struct{}
}

// NewAnalysisService creates the orchestrator with all collaborators wired.
// Dependencies are constructed once at process start by the host and passed
// in — the service holds no ambient global state. images can be nil.
func NewAnalysisService(
	repo storage.AnalysisRepository,
	gateway Interpreter,
	images ImageFinder,
	maxUploadBytes int64,
	allowedTypes []string,
	logger *zap.Logger,
) *AnalysisService {
	typeSet := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		typeSet[strings.ToLower(t)] = struct{}{}
	}

	return &AnalysisService{
		repo:           repo,
		resolver:       NewResolver(repo, logger),
		gateway:        gateway,
		images:         images,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
		allowedTypes:   typeSet,
	}
}

// AnalyzeByName resolves or generates an interpretation for a named artwork.
// A name-only request never has a content fingerprint, so the only cache key
// is the (case-insensitively matched) name itself.
func (s *AnalysisService) AnalyzeByName(ctx context.Context, name string) (*Result, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: artwork name is required", ErrInvalidInput)
	}

	if hit := s.resolver.ByName(ctx, name); hit != nil {
		s.logger.Info("cache hit by name", zap.String("artwork", hit.ArtworkName))
		return &Result{Analysis: hit, Cached: true}, nil
	}

	s.logger.Info("cache miss, generating interpretation", zap.String("artwork", name))

	draft, err := s.gateway.InterpretByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("interpreting %q: %w", name, err)
	}

	s.enrich(ctx, draft)

	analysis, err := s.persist(ctx, draft, "")
	if err != nil {
		return nil, err
	}
	return &Result{Analysis: analysis}, nil
}

// AnalyzeByImage resolves or generates an interpretation for uploaded image
// bytes. Validation runs before any hashing or network call; the fingerprint
// check runs before any identification, being strictly cheaper and strictly
// more precise (exact bytes vs. a model's best-guess name).
func (s *AnalysisService) AnalyzeByImage(ctx context.Context, data []byte, contentType string) (*Result, error) {
	contentType = normalizeContentType(contentType)
	if _, ok := s.allowedTypes[contentType]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	if int64(len(data)) > s.maxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrPayloadTooLarge, len(data), s.maxUploadBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}

	fingerprint := Fingerprint(data)
	if hit := s.resolver.ByFingerprint(ctx, fingerprint); hit != nil {
		s.logger.Info("cache hit by fingerprint", zap.String("fingerprint", short(fingerprint)))
		return &Result{Analysis: hit, Cached: true}, nil
	}

	// Fingerprint miss — ask the model what this is before paying for a
	// full interpretation.
	ident, err := s.gateway.Identify(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("identifying artwork: %w", err)
	}

	if ident != nil {
		if hit := s.resolver.ByName(ctx, NormalizeName(ident.ArtworkName)); hit != nil {
			// Return the known record as-is. The new fingerprint is NOT
			// written onto it — fewer writes over richer cross-indexing.
			s.logger.Info("identified artwork found in cache by name",
				zap.String("artwork", hit.ArtworkName),
			)
			return &Result{Analysis: hit, Cached: true}, nil
		}
	}

	s.logger.Info("cache miss, generating interpretation from image",
		zap.String("fingerprint", short(fingerprint)),
	)

	draft, err := s.gateway.InterpretByImage(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("interpreting image: %w", err)
	}

	// The identification step is higher-confidence than the free-form
	// draft's self-reported name, so it wins.
	if ident != nil {
		draft.ArtworkName = ident.ArtworkName
	}

	s.enrich(ctx, draft)

	analysis, err := s.persist(ctx, draft, fingerprint)
	if err != nil {
		return nil, err
	}
	return &Result{Analysis: analysis}, nil
}

// GetByID fetches a single stored analysis. Unlike the resolve-or-generate
// flows, this lookup can terminate in storage.ErrNotFound.
func (s *AnalysisService) GetByID(ctx context.Context, id string) (*model.Analysis, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes a stored analysis. Administrative escape hatch; nothing in
// the pipeline deletes records.
func (s *AnalysisService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// enrich fills in a representative image URL, best-effort. The finder bounds
// its own time; failure leaves the field empty and is never an error.
func (s *AnalysisService) enrich(ctx context.Context, draft *model.Draft) {
	if s.images == nil {
		return
	}
	draft.ImageURL = s.images.FindImageURL(ctx, draft.ArtworkName, draft.ImageURL)
}

// persist turns a draft into a durable record. fingerprint is "" for
// name-derived records. A write failure here is fatal to the request:
// silently losing a freshly generated result is disallowed.
func (s *AnalysisService) persist(ctx context.Context, draft *model.Draft, fingerprint string) (*model.Analysis, error) {
	analysis := &model.Analysis{
		ArtworkName:    NormalizeName(draft.ArtworkName),
		Interpretation: draft.Interpretation,
		Artist:         optional(draft.Artist),
		Year:           optional(draft.Year),
		Style:          optional(draft.Style),
		Emotions:       draft.Emotions,
		ImageURL:       optional(draft.ImageURL),
		ImageHash:      optional(fingerprint),
		ProcessingTime: draft.ProcessingTime,
	}

	if err := s.repo.Create(ctx, analysis); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	s.logger.Info("analysis persisted",
		zap.String("id", analysis.ID),
		zap.String("artwork", analysis.ArtworkName),
		zap.Bool("degraded", draft.Degraded),
		zap.Float64("processing_seconds", draft.ProcessingTime),
	)
	return analysis, nil
}

// optional maps "" to a NULL column.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// normalizeContentType lowercases the declared type and drops parameters
// like "; charset=binary".
func normalizeContentType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
