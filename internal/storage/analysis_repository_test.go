// Go testing basics:
// - Test files must end with _test.go (they're excluded from production builds)
// - Test functions must start with Test and take *testing.T
// - Run with: go test ./internal/storage/ -v
// - t.Fatal stops the test immediately; t.Error continues to find more failures
package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mcoelho/artwise/internal/model"
)

// setupTestDB creates a temporary SQLite database for testing.
// Go's testing.T has a TempDir() method that creates a temp directory
// automatically cleaned up after the test — no manual teardown needed.
func setupTestDB(t *testing.T) *testDeps {
	t.Helper() // marks this as a helper so error line numbers point to the caller

	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDatabase(dbPath)
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}

	// t.Cleanup registers a function to run when the test finishes.
	// Similar to defer, but scoped to the test lifecycle.
	t.Cleanup(func() {
		db.Close()
	})

	return &testDeps{
		analysisRepo: NewAnalysisRepository(db),
		llmCallRepo:  NewLLMCallRepository(db),
	}
}

type testDeps struct {
	analysisRepo AnalysisRepository
	llmCallRepo  LLMCallRepository
}

func str(s string) *string { return &s }

func sampleAnalysis(name string) *model.Analysis {
	return &model.Analysis{
		ArtworkName:    name,
		Interpretation: "A meditation on turbulence and stillness.",
		Artist:         str("Vincent van Gogh"),
		Year:           str("1889"),
		Style:          str("Post-Impressionism"),
		Emotions:       []string{"awe", "longing"},
		ProcessingTime: 2.4,
	}
}

func TestAnalysisRepository_CreateAndGet(t *testing.T) {
	deps := setupTestDB(t)
	ctx := context.Background()

	analysis := sampleAnalysis("The Starry Night")
	if err := deps.analysisRepo.Create(ctx, analysis); err != nil {
		t.Fatalf("creating analysis: %v", err)
	}

	// The repository assigns identity and timestamps on insert.
	if analysis.ID == "" {
		t.Error("expected analysis ID to be set after create")
	}
	if analysis.CreatedAt.IsZero() {
		t.Error("expected created_at to be set after create")
	}
	if !analysis.UpdatedAt.Equal(analysis.CreatedAt) {
		t.Error("expected updated_at to equal created_at on insert")
	}

	got, err := deps.analysisRepo.GetByID(ctx, analysis.ID)
	if err != nil {
		t.Fatalf("getting analysis: %v", err)
	}
	if got.ArtworkName != "The Starry Night" {
		t.Errorf("expected artwork name 'The Starry Night', got %s", got.ArtworkName)
	}
	if got.Artist == nil || *got.Artist != "Vincent van Gogh" {
		t.Errorf("expected artist 'Vincent van Gogh', got %v", got.Artist)
	}
	if len(got.Emotions) != 2 || got.Emotions[0] != "awe" {
		t.Errorf("expected emotions [awe longing], got %v", got.Emotions)
	}
}

func TestAnalysisRepository_GetByName_CaseInsensitive(t *testing.T) {
	deps := setupTestDB(t)
	ctx := context.Background()

	if err := deps.analysisRepo.Create(ctx, sampleAnalysis("Guernica")); err != nil {
		t.Fatalf("creating analysis: %v", err)
	}

	// Lookups must match regardless of casing; the stored record keeps
	// its original capitalization.
	for _, query := range []string{"Guernica", "guernica", "GUERNICA"} {
		got, err := deps.analysisRepo.GetByName(ctx, query)
		if err != nil {
			t.Fatalf("getting analysis by name %q: %v", query, err)
		}
		if got.ArtworkName != "Guernica" {
			t.Errorf("query %q: expected stored name 'Guernica', got %s", query, got.ArtworkName)
		}
	}
}

func TestAnalysisRepository_GetByName_NotFound(t *testing.T) {
	deps := setupTestDB(t)
	ctx := context.Background()

	_, err := deps.analysisRepo.GetByName(ctx, "Does Not Exist")
	// errors.Is checks the error chain — %w wrapping preserves the original error
	// so you can match against sentinel values like ErrNotFound.
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAnalysisRepository_GetByFingerprint(t *testing.T) {
	deps := setupTestDB(t)
	ctx := context.Background()

	withHash := sampleAnalysis("The Scream")
	withHash.ImageHash = str("abc123def456")
	if err := deps.analysisRepo.Create(ctx, withHash); err != nil {
		t.Fatalf("creating analysis: %v", err)
	}
	// A name-derived record with no hash must never match a fingerprint lookup.
	if err := deps.analysisRepo.Create(ctx, sampleAnalysis("Water Lilies")); err != nil {
		t.Fatalf("creating analysis: %v", err)
	}

	got, err := deps.analysisRepo.GetByFingerprint(ctx, "abc123def456")
	if err != nil {
		t.Fatalf("getting analysis by fingerprint: %v", err)
	}
	if got.ArtworkName != "The Scream" {
		t.Errorf("expected 'The Scream', got %s", got.ArtworkName)
	}

	if _, err := deps.analysisRepo.GetByFingerprint(ctx, "unknownhash"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown hash, got %v", err)
	}
}

func TestAnalysisRepository_ListRecent(t *testing.T) {
	deps := setupTestDB(t)
	ctx := context.Background()

	names := []string{"First", "Second", "Third"}
	for _, name := range names {
		if err := deps.analysisRepo.Create(ctx, sampleAnalysis(name)); err != nil {
			t.Fatalf("creating analysis %s: %v", name, err)
		}
		time.Sleep(5 * time.Millisecond) // distinct created_at per row
	}

	recent, err := deps.analysisRepo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("listing recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(recent))
	}
	if recent[0].ArtworkName != "Third" {
		t.Errorf("expected newest first, got %s", recent[0].ArtworkName)
	}
	if recent[1].ArtworkName != "Second" {
		t.Errorf("expected 'Second' second, got %s", recent[1].ArtworkName)
	}
}

func TestAnalysisRepository_ListWithFilters(t *testing.T) {
	deps := setupTestDB(t)
	ctx := context.Background()

	a := sampleAnalysis("The Starry Night")
	b := sampleAnalysis("Guernica")
	b.Artist = str("Pablo Picasso")
	b.Style = str("Cubism")
	c := sampleAnalysis("Les Demoiselles d'Avignon")
	c.Artist = str("Pablo Picasso")
	c.Style = str("Cubism")

	for _, analysis := range []*model.Analysis{a, b, c} {
		if err := deps.analysisRepo.Create(ctx, analysis); err != nil {
			t.Fatalf("creating analysis: %v", err)
		}
	}

	got, total, err := deps.analysisRepo.List(ctx, ListFilter{Artist: "picasso"})
	if err != nil {
		t.Fatalf("listing with artist filter: %v", err)
	}
	if total != 2 {
		t.Errorf("expected total 2, got %d", total)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 analyses, got %d", len(got))
	}

	// Pagination: page 2 with limit 1 should return the second match.
	got, total, err = deps.analysisRepo.List(ctx, ListFilter{Artist: "picasso", Page: 2, Limit: 1})
	if err != nil {
		t.Fatalf("listing page 2: %v", err)
	}
	if total != 2 {
		t.Errorf("expected total 2 on page 2, got %d", total)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 analysis on page 2, got %d", len(got))
	}

	// A LIKE wildcard in the filter value must be treated literally.
	_, total, err = deps.analysisRepo.List(ctx, ListFilter{ArtworkName: "%"})
	if err != nil {
		t.Fatalf("listing with wildcard filter: %v", err)
	}
	if total != 0 {
		t.Errorf("expected literal %% to match nothing, got %d", total)
	}
}

func TestAnalysisRepository_SearchByName(t *testing.T) {
	deps := setupTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"The Starry Night", "Starry Night Over the Rhône", "Guernica"} {
		if err := deps.analysisRepo.Create(ctx, sampleAnalysis(name)); err != nil {
			t.Fatalf("creating analysis %s: %v", name, err)
		}
	}

	got, err := deps.analysisRepo.SearchByName(ctx, "starry")
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 matches for 'starry', got %d", len(got))
	}
}

func TestAnalysisRepository_Stats(t *testing.T) {
	deps := setupTestDB(t)
	ctx := context.Background()

	a := sampleAnalysis("The Starry Night")
	a.ProcessingTime = 2.0
	b := sampleAnalysis("Guernica")
	b.Artist = str("Pablo Picasso")
	b.ImageHash = str("hash-b")
	b.ProcessingTime = 4.0
	cached := sampleAnalysis("Cached Copy")
	cached.ProcessingTime = 0 // cache hits don't contribute to the average

	for _, analysis := range []*model.Analysis{a, b, cached} {
		if err := deps.analysisRepo.Create(ctx, analysis); err != nil {
			t.Fatalf("creating analysis: %v", err)
		}
	}

	stats, err := deps.analysisRepo.Stats(ctx)
	if err != nil {
		t.Fatalf("reading stats: %v", err)
	}
	if stats.TotalAnalyses != 3 {
		t.Errorf("expected 3 total, got %d", stats.TotalAnalyses)
	}
	if stats.FromImages != 1 {
		t.Errorf("expected 1 from images, got %d", stats.FromImages)
	}
	if stats.DistinctArtists != 2 {
		t.Errorf("expected 2 distinct artists, got %d", stats.DistinctArtists)
	}
	if stats.AvgProcessing != 3.0 {
		t.Errorf("expected avg processing 3.0, got %f", stats.AvgProcessing)
	}
}

func TestAnalysisRepository_Delete(t *testing.T) {
	deps := setupTestDB(t)
	ctx := context.Background()

	analysis := sampleAnalysis("The Starry Night")
	if err := deps.analysisRepo.Create(ctx, analysis); err != nil {
		t.Fatalf("creating analysis: %v", err)
	}

	if err := deps.analysisRepo.Delete(ctx, analysis.ID); err != nil {
		t.Fatalf("deleting analysis: %v", err)
	}
	if _, err := deps.analysisRepo.GetByID(ctx, analysis.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	if err := deps.analysisRepo.Delete(ctx, "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting missing id, got %v", err)
	}
}

func TestAnalysisRepository_DuplicateNamesAllowed(t *testing.T) {
	deps := setupTestDB(t)
	ctx := context.Background()

	// Two concurrent generations for the same new artwork may both insert.
	// The schema deliberately has no UNIQUE constraint, so both rows land.
	first := sampleAnalysis("The Starry Night")
	second := sampleAnalysis("The Starry Night")
	if err := deps.analysisRepo.Create(ctx, first); err != nil {
		t.Fatalf("creating first: %v", err)
	}
	if err := deps.analysisRepo.Create(ctx, second); err != nil {
		t.Fatalf("creating duplicate: %v", err)
	}
	if first.ID == second.ID {
		t.Error("expected distinct IDs for duplicate rows")
	}

	// Lookups still resolve to exactly one row.
	if _, err := deps.analysisRepo.GetByName(ctx, "the starry night"); err != nil {
		t.Fatalf("getting duplicated name: %v", err)
	}
}

func TestLLMCallRepository_CreateAndCount(t *testing.T) {
	deps := setupTestDB(t)
	ctx := context.Background()

	duration := int64(1500)
	call := &model.LLMCall{
		Provider:   "groq",
		Model:      "meta-llama/llama-4-scout-17b-16e-instruct",
		Operation:  model.OpInterpretByName,
		Subject:    "The Starry Night",
		Success:    true,
		DurationMs: &duration,
	}

	if err := deps.llmCallRepo.Create(ctx, call); err != nil {
		t.Fatalf("creating llm call: %v", err)
	}
	if call.ID == 0 {
		t.Error("expected llm call ID to be set after create")
	}

	count, err := deps.llmCallRepo.CountByOperation(ctx, model.OpInterpretByName)
	if err != nil {
		t.Fatalf("counting llm calls: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 llm call, got %d", count)
	}
}
