package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ImageFinder locates a representative image URL for an artwork.
// It is a best-effort enrichment: "" is a perfectly fine answer and never
// an error, and implementations must bound their own time so they cannot
// stall the persistence path.
type ImageFinder interface {
	FindImageURL(ctx context.Context, artworkName string, candidates ...string) string
}

// WikiImageFinder probes candidate URLs with lightweight HEAD requests and
// falls back to the Wikipedia page summary API for a thumbnail. The first
// candidate that answers 200 with an image/* content type wins.
type WikiImageFinder struct {
	client  *resty.Client
	timeout time.Duration
	logger  *zap.Logger
}

// wikiSummary is the slice of the Wikipedia REST summary response we use.
type wikiSummary struct {
	OriginalImage struct {
		Source string `json:"source"`
	} `json:"originalimage"`
	Thumbnail struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
}

// NewWikiImageFinder creates a finder with its own short per-lookup budget.
func NewWikiImageFinder(timeout time.Duration, logger *zap.Logger) *WikiImageFinder {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", "artwise/1.0")

	return &WikiImageFinder{
		client:  client,
		timeout: timeout,
		logger:  logger,
	}
}

// FindImageURL returns the first candidate URL that validates, or "".
// The whole lookup — probes included — runs under one finder-scoped timeout,
// independent of however much time the generation call already spent.
func (f *WikiImageFinder) FindImageURL(ctx context.Context, artworkName string, candidates ...string) string {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if f.probe(ctx, candidate) {
			return candidate
		}
	}

	for _, candidate := range f.wikipediaCandidates(ctx, artworkName) {
		if f.probe(ctx, candidate) {
			return candidate
		}
	}

	f.logger.Debug("no representative image found",
		zap.String("artwork", artworkName),
	)
	return ""
}

// wikipediaCandidates asks the Wikipedia summary endpoint for page images.
func (f *WikiImageFinder) wikipediaCandidates(ctx context.Context, artworkName string) []string {
	if strings.TrimSpace(artworkName) == "" {
		return nil
	}

	title := url.PathEscape(strings.ReplaceAll(strings.TrimSpace(artworkName), " ", "_"))
	endpoint := fmt.Sprintf("https://en.wikipedia.org/api/rest_v1/page/summary/%s", title)

	var summary wikiSummary
	resp, err := f.client.R().
		SetContext(ctx).
		SetResult(&summary).
		Get(endpoint)
	if err != nil || resp.StatusCode() != 200 {
		return nil
	}

	var out []string
	if summary.OriginalImage.Source != "" {
		out = append(out, summary.OriginalImage.Source)
	}
	if summary.Thumbnail.Source != "" {
		out = append(out, summary.Thumbnail.Source)
	}
	return out
}

// probe checks that a URL exists and actually serves an image.
func (f *WikiImageFinder) probe(ctx context.Context, candidate string) bool {
	resp, err := f.client.R().SetContext(ctx).Head(candidate)
	if err != nil || resp.StatusCode() != 200 {
		return false
	}
	return strings.HasPrefix(resp.Header().Get("Content-Type"), "image/")
}
