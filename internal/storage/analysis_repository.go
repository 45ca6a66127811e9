package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mcoelho/artwise/internal/model"
)

// ErrNotFound is returned when an analysis doesn't exist in the database.
// Go uses sentinel errors (predefined error values) instead of exception types.
// Callers check with errors.Is(err, ErrNotFound). A miss is always this
// sentinel — never a transport error dressed up as "not found".
var ErrNotFound = errors.New("analysis not found")

// AnalysisRepository defines the interface for analysis persistence.
// Go interfaces are implicit — any struct that has these methods satisfies it.
// The orchestrator tests exploit this: a hand-written mock with call counters
// stands in for the SQLite implementation without importing it.
type AnalysisRepository interface {
	// GetByName performs a case-insensitive exact match on artwork_name.
	GetByName(ctx context.Context, name string) (*model.Analysis, error)
	// GetByFingerprint performs an exact match on image_hash.
	GetByFingerprint(ctx context.Context, hash string) (*model.Analysis, error)
	GetByID(ctx context.Context, id string) (*model.Analysis, error)
	Create(ctx context.Context, analysis *model.Analysis) error
	ListRecent(ctx context.Context, limit int) ([]model.Analysis, error)
	List(ctx context.Context, filter ListFilter) ([]model.Analysis, int64, error)
	SearchByName(ctx context.Context, query string) ([]model.Analysis, error)
	Stats(ctx context.Context) (*model.Stats, error)
	Delete(ctx context.Context, id string) error
}

// ListFilter holds pagination and optional substring filters for List.
// Substring matching here is a browse/search capability — the cache
// resolver never uses it.
type ListFilter struct {
	Page        int
	Limit       int
	ArtworkName string
	Artist      string
	Style       string
}

// sqliteAnalysisRepository is the SQLite implementation of AnalysisRepository.
// The struct is unexported — only the interface is public.
type sqliteAnalysisRepository struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a new SQLite-backed AnalysisRepository.
func NewAnalysisRepository(db *sqlx.DB) AnalysisRepository {
	return &sqliteAnalysisRepository{db: db}
}

func (r *sqliteAnalysisRepository) GetByName(ctx context.Context, name string) (*model.Analysis, error) {
	var analysis model.Analysis
	// COLLATE NOCASE makes the comparison case-insensitive while the stored
	// name keeps its original casing.
	err := r.db.GetContext(ctx, &analysis,
		"SELECT * FROM analyses WHERE artwork_name = ? COLLATE NOCASE LIMIT 1", name)
	return finishGet(&analysis, err, "by name")
}

func (r *sqliteAnalysisRepository) GetByFingerprint(ctx context.Context, hash string) (*model.Analysis, error) {
	var analysis model.Analysis
	err := r.db.GetContext(ctx, &analysis,
		"SELECT * FROM analyses WHERE image_hash = ? LIMIT 1", hash)
	return finishGet(&analysis, err, "by fingerprint")
}

func (r *sqliteAnalysisRepository) GetByID(ctx context.Context, id string) (*model.Analysis, error) {
	var analysis model.Analysis
	err := r.db.GetContext(ctx, &analysis, "SELECT * FROM analyses WHERE id = ?", id)
	return finishGet(&analysis, err, "by id")
}

// finishGet maps sql.ErrNoRows to ErrNotFound and hydrates the emotions slice.
func finishGet(analysis *model.Analysis, err error, what string) (*model.Analysis, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting analysis %s: %w", what, err)
	}
	if err := analysis.DecodeEmotions(); err != nil {
		return nil, fmt.Errorf("decoding emotions: %w", err)
	}
	return analysis, nil
}

func (r *sqliteAnalysisRepository) Create(ctx context.Context, analysis *model.Analysis) error {
	// The store assigns the identity and the timestamps. updated_at is set
	// equal to created_at and no operation mutates it afterwards.
	analysis.ID = uuid.NewString()
	now := time.Now().UTC()
	analysis.CreatedAt = now
	analysis.UpdatedAt = now

	if err := analysis.EncodeEmotions(); err != nil {
		return fmt.Errorf("encoding emotions: %w", err)
	}

	// NamedExecContext uses the struct's `db:` tags to map fields to :named placeholders.
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO analyses (id, artwork_name, interpretation, artist, year, style,
		                      emotions, image_hash, image_url, processing_time,
		                      created_at, updated_at)
		VALUES (:id, :artwork_name, :interpretation, :artist, :year, :style,
		        :emotions, :image_hash, :image_url, :processing_time,
		        :created_at, :updated_at)
	`, analysis)
	if err != nil {
		return fmt.Errorf("creating analysis: %w", err)
	}
	return nil
}

func (r *sqliteAnalysisRepository) ListRecent(ctx context.Context, limit int) ([]model.Analysis, error) {
	var analyses []model.Analysis
	err := r.db.SelectContext(ctx, &analyses,
		"SELECT * FROM analyses ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent analyses: %w", err)
	}
	return decodeAll(analyses)
}

func (r *sqliteAnalysisRepository) List(ctx context.Context, filter ListFilter) ([]model.Analysis, int64, error) {
	where := []string{}
	args := []interface{}{}

	// LIKE with escaped wildcards gives substring matching on the optional
	// filters. SQL column list is fixed; only values are parameterized.
	addLike := func(column, value string) {
		if value == "" {
			return
		}
		where = append(where, fmt.Sprintf("%s LIKE ? ESCAPE '\\'", column))
		args = append(args, "%"+escapeLike(value)+"%")
	}
	addLike("artwork_name", filter.ArtworkName)
	addLike("artist", filter.Artist)
	addLike("style", filter.Style)

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM analyses"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("counting analyses: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	var analyses []model.Analysis
	query := "SELECT * FROM analyses" + clause + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	err := r.db.SelectContext(ctx, &analyses, query, append(args, filter.Limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing analyses: %w", err)
	}

	decoded, err := decodeAll(analyses)
	if err != nil {
		return nil, 0, err
	}
	return decoded, total, nil
}

func (r *sqliteAnalysisRepository) SearchByName(ctx context.Context, query string) ([]model.Analysis, error) {
	var analyses []model.Analysis
	err := r.db.SelectContext(ctx, &analyses,
		"SELECT * FROM analyses WHERE artwork_name LIKE ? ESCAPE '\\' ORDER BY created_at DESC LIMIT 50",
		"%"+escapeLike(query)+"%")
	if err != nil {
		return nil, fmt.Errorf("searching analyses: %w", err)
	}
	return decodeAll(analyses)
}

func (r *sqliteAnalysisRepository) Stats(ctx context.Context) (*model.Stats, error) {
	var stats model.Stats
	err := r.db.GetContext(ctx, &stats, `
		SELECT COUNT(*)                                                          AS total_analyses,
		       COUNT(image_hash)                                                 AS from_images,
		       COUNT(DISTINCT artist)                                            AS distinct_artists,
		       COALESCE(AVG(CASE WHEN processing_time > 0 THEN processing_time END), 0) AS avg_processing
		FROM analyses
	`)
	if err != nil {
		return nil, fmt.Errorf("aggregating stats: %w", err)
	}
	return &stats, nil
}

func (r *sqliteAnalysisRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM analyses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting analysis %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeAll(analyses []model.Analysis) ([]model.Analysis, error) {
	for i := range analyses {
		if err := analyses[i].DecodeEmotions(); err != nil {
			return nil, fmt.Errorf("decoding emotions: %w", err)
		}
	}
	return analyses, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

// LLMCallRepository handles persistence of inference call tracking.
type LLMCallRepository interface {
	Create(ctx context.Context, call *model.LLMCall) error
	CountByOperation(ctx context.Context, operation string) (int64, error)
}

type sqliteLLMCallRepository struct {
	db *sqlx.DB
}

// NewLLMCallRepository creates a new SQLite-backed LLMCallRepository.
func NewLLMCallRepository(db *sqlx.DB) LLMCallRepository {
	return &sqliteLLMCallRepository{db: db}
}

func (r *sqliteLLMCallRepository) Create(ctx context.Context, call *model.LLMCall) error {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO llm_calls (provider, model, operation, subject, success, duration_ms)
		VALUES (:provider, :model, :operation, :subject, :success, :duration_ms)
	`, call)
	if err != nil {
		return fmt.Errorf("creating llm call record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	call.ID = id
	return nil
}

func (r *sqliteLLMCallRepository) CountByOperation(ctx context.Context, operation string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM llm_calls WHERE operation = ?", operation)
	return count, err
}
