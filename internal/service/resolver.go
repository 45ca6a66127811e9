package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mcoelho/artwise/internal/model"
	"github.com/mcoelho/artwise/internal/storage"
)

// Resolver performs the side-effect-free cache reads of the pipeline.
// A nil return always means "miss": a store read error is logged and
// degraded to a miss so the request can still fall through to generation.
// Only exact matching happens here — substring search is a separate browse
// capability and plays no part in cache-hit decisions.
type Resolver struct {
	repo   storage.AnalysisRepository
	logger *zap.Logger
}

// NewResolver creates a resolver over the given repository.
func NewResolver(repo storage.AnalysisRepository, logger *zap.Logger) *Resolver {
	return &Resolver{repo: repo, logger: logger}
}

// ByName looks up a record whose name matches case-insensitively.
// The name must already be normalized (trimmed) by the caller.
func (r *Resolver) ByName(ctx context.Context, name string) *model.Analysis {
	analysis, err := r.repo.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("name lookup failed, treating as cache miss",
				zap.String("artwork", name),
				zap.Error(err),
			)
		}
		return nil
	}
	return analysis
}

// ByFingerprint looks up a record by exact content hash.
func (r *Resolver) ByFingerprint(ctx context.Context, hash string) *model.Analysis {
	analysis, err := r.repo.GetByFingerprint(ctx, hash)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("fingerprint lookup failed, treating as cache miss",
				zap.String("fingerprint", short(hash)),
				zap.Error(err),
			)
		}
		return nil
	}
	return analysis
}

// short truncates a fingerprint for log output.
func short(hash string) string {
	if len(hash) > 10 {
		return hash[:10]
	}
	return hash
}
