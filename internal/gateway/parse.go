package gateway

import (
	"encoding/json"
	"strings"

	"github.com/mcoelho/artwise/internal/model"
)

// Degraded draft content, substituted when provider output cannot be parsed.
// Persisting this low-information record instead of failing the request is a
// deliberate trade-off; see the parse functions below.
const (
	fallbackArtworkName    = "Untitled Artwork"
	fallbackInterpretation = "The model could not structure a full analysis of this piece, but its central message reads as a powerful statement on resilience and the human condition."
	fallbackField          = "Unknown"
	fallbackStyle          = "Uncategorized"
)

func fallbackEmotions() []string {
	return []string{"struggle", "resilience", "hope"}
}

// providerDraft is the JSON shape the interpretation prompts demand.
// Modeling it as an explicit struct (instead of poking at a map) is what
// makes the degraded-draft branch a branch rather than a panic.
type providerDraft struct {
	ArtworkName string   `json:"artwork_name"`
	Artist      string   `json:"artist"`
	Year        string   `json:"year"`
	Style       string   `json:"style"`
	Analysis    string   `json:"analysis"`
	Emotions    []string `json:"emotions"`
}

type providerIdentification struct {
	ArtworkName string `json:"artwork_name"`
}

// parseDraft turns raw provider output into a Draft. It never fails: output
// that is not a JSON object, or that lacks an analysis, yields the fixed
// degraded draft under fallbackName instead.
func parseDraft(raw, fallbackName string) *model.Draft {
	var parsed providerDraft
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		return degradedDraft(fallbackName)
	}

	analysis := strings.TrimSpace(parsed.Analysis)
	if analysis == "" {
		return degradedDraft(fallbackName)
	}

	name := strings.TrimSpace(parsed.ArtworkName)
	if name == "" {
		name = fallbackName
	}

	emotions := make([]string, 0, len(parsed.Emotions))
	for _, e := range parsed.Emotions {
		if e = strings.TrimSpace(e); e != "" {
			emotions = append(emotions, strings.ToLower(e))
		}
	}

	return &model.Draft{
		ArtworkName:    name,
		Interpretation: analysis,
		Artist:         strings.TrimSpace(parsed.Artist),
		Year:           strings.TrimSpace(parsed.Year),
		Style:          strings.TrimSpace(parsed.Style),
		Emotions:       emotions,
	}
}

func degradedDraft(name string) *model.Draft {
	if strings.TrimSpace(name) == "" {
		name = fallbackArtworkName
	}
	return &model.Draft{
		ArtworkName:    name,
		Interpretation: fallbackInterpretation,
		Artist:         fallbackField,
		Year:           fallbackField,
		Style:          fallbackStyle,
		Emotions:       fallbackEmotions(),
		Degraded:       true,
	}
}

// parseIdentification extracts the identified name, or "" when the reply is
// malformed, empty, or a sentinel non-answer.
func parseIdentification(raw string) string {
	var parsed providerIdentification
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		return ""
	}
	name := strings.TrimSpace(parsed.ArtworkName)
	if name == "" || isSentinelNonAnswer(name) {
		return ""
	}
	return name
}

// stripFences removes a markdown code fence if the model wrapped its JSON in
// one despite instructions.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
