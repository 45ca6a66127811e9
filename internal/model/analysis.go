// Package model defines the core data types for the artwork analysis service.
// In Go, we use structs instead of classes. Struct tags (the `json:"..."` and
// `db:"..."` annotations) tell serialization libraries how to map fields.
package model

import (
	"encoding/json"
	"time"
)

// Analysis is the durable unit: one interpretation of one artwork.
// Each field has two tags:
//   - `db:"column_name"` — used by sqlx to scan database rows
//   - `json:"field_name"` — used for JSON serialization (API responses)
//
// ImageHash is only set for image-derived records; it's the exact-match
// cache key for uploaded bytes. ArtworkName is the soft cache key for
// text lookups (matched case-insensitively at query time, stored as-is).
type Analysis struct {
	ID             string    `db:"id" json:"id"`
	ArtworkName    string    `db:"artwork_name" json:"artwork_name"`
	Interpretation string    `db:"interpretation" json:"interpretation"`
	Artist         *string   `db:"artist" json:"artist,omitempty"`
	Year           *string   `db:"year" json:"year,omitempty"`
	Style          *string   `db:"style" json:"style,omitempty"`
	EmotionsJSON   string    `db:"emotions" json:"-"`
	ImageHash      *string   `db:"image_hash" json:"image_hash,omitempty"`
	ImageURL       *string   `db:"image_url" json:"image_url,omitempty"`
	ProcessingTime float64   `db:"processing_time" json:"processing_time"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`

	// Emotions is decoded from EmotionsJSON by the repository after a scan.
	// SQLite has no array type, so the list is stored as a JSON-encoded TEXT
	// column and hydrated on read.
	Emotions []string `db:"-" json:"emotions"`
}

// EncodeEmotions serializes the Emotions slice into EmotionsJSON for storage.
func (a *Analysis) EncodeEmotions() error {
	if a.Emotions == nil {
		a.Emotions = []string{}
	}
	data, err := json.Marshal(a.Emotions)
	if err != nil {
		return err
	}
	a.EmotionsJSON = string(data)
	return nil
}

// DecodeEmotions hydrates the Emotions slice from the stored JSON column.
func (a *Analysis) DecodeEmotions() error {
	if a.EmotionsJSON == "" {
		a.Emotions = []string{}
		return nil
	}
	return json.Unmarshal([]byte(a.EmotionsJSON), &a.Emotions)
}

// Draft is an in-memory, not-yet-persisted interpretation produced by the
// inference gateway. The orchestrator turns a Draft into an Analysis when
// it persists it.
type Draft struct {
	ArtworkName    string
	Interpretation string
	Artist         string
	Year           string
	Style          string
	Emotions       []string
	ImageURL       string
	ProcessingTime float64

	// Degraded marks a draft built from the fixed fallback content because
	// the provider responded with something that couldn't be parsed.
	Degraded bool
}

// Identification is the result of asking the vision model to name an artwork.
type Identification struct {
	ArtworkName string
}

// Stats summarizes the stored analyses for the stats endpoint.
type Stats struct {
	TotalAnalyses   int64   `db:"total_analyses" json:"total_analyses"`
	FromImages      int64   `db:"from_images" json:"from_images"`
	DistinctArtists int64   `db:"distinct_artists" json:"distinct_artists"`
	AvgProcessing   float64 `db:"avg_processing" json:"avg_processing_seconds"`
}

// LLMCall tracks each call to an inference provider for cost monitoring.
type LLMCall struct {
	ID         int64     `db:"id" json:"id"`
	Provider   string    `db:"provider" json:"provider"`
	Model      string    `db:"model" json:"model"`
	Operation  string    `db:"operation" json:"operation"`
	Subject    string    `db:"subject" json:"subject"`
	Success    bool      `db:"success" json:"success"`
	DurationMs *int64    `db:"duration_ms" json:"duration_ms,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Operation names recorded in llm_calls rows.
const (
	OpIdentify         = "identify"
	OpInterpretByName  = "interpret_by_name"
	OpInterpretByImage = "interpret_by_image"
)
