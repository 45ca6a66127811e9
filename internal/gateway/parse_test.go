package gateway

import "testing"

const goodDraftJSON = `{
	"artwork_name": "The Starry Night",
	"artist": "Vincent van Gogh",
	"year": "1889",
	"style": "Post-Impressionism",
	"analysis": "Swirling skies over a sleeping town.",
	"emotions": ["Awe", " longing ", ""]
}`

func TestParseDraft_WellFormed(t *testing.T) {
	draft := parseDraft(goodDraftJSON, "request name")

	if draft.Degraded {
		t.Fatal("expected a well-formed draft, got degraded")
	}
	if draft.ArtworkName != "The Starry Night" {
		t.Errorf("expected model's name, got %s", draft.ArtworkName)
	}
	if draft.Artist != "Vincent van Gogh" {
		t.Errorf("expected artist, got %s", draft.Artist)
	}
	// Emotions are trimmed, lowercased, and empties dropped.
	if len(draft.Emotions) != 2 || draft.Emotions[0] != "awe" || draft.Emotions[1] != "longing" {
		t.Errorf("expected [awe longing], got %v", draft.Emotions)
	}
}

func TestParseDraft_FencedJSON(t *testing.T) {
	// Some models wrap their JSON in a markdown fence despite instructions.
	fenced := "```json\n" + goodDraftJSON + "\n```"
	draft := parseDraft(fenced, "request name")
	if draft.Degraded {
		t.Fatal("expected fenced JSON to parse")
	}
	if draft.ArtworkName != "The Starry Night" {
		t.Errorf("expected 'The Starry Night', got %s", draft.ArtworkName)
	}
}

func TestParseDraft_MalformedBecomesDegraded(t *testing.T) {
	for name, raw := range map[string]string{
		"prose":          "I think this is a lovely painting about stars.",
		"truncated":      `{"artwork_name": "The St`,
		"empty":          "",
		"empty analysis": `{"artwork_name": "Guernica", "analysis": "  "}`,
	} {
		draft := parseDraft(raw, "Guernica")
		if !draft.Degraded {
			t.Errorf("%s: expected degraded draft", name)
			continue
		}
		// The degraded draft is fixed content under the request's name.
		if draft.ArtworkName != "Guernica" {
			t.Errorf("%s: expected request name kept, got %s", name, draft.ArtworkName)
		}
		if draft.Interpretation != fallbackInterpretation {
			t.Errorf("%s: expected fallback interpretation", name)
		}
		if len(draft.Emotions) != 3 {
			t.Errorf("%s: expected fallback emotions, got %v", name, draft.Emotions)
		}
	}
}

func TestParseDraft_MissingNameFallsBack(t *testing.T) {
	draft := parseDraft(`{"analysis": "A fine piece."}`, "Guernica")
	if draft.Degraded {
		t.Fatal("a draft with analysis but no name is not degraded")
	}
	if draft.ArtworkName != "Guernica" {
		t.Errorf("expected fallback to request name, got %s", draft.ArtworkName)
	}
}

func TestDegradedDraft_EmptyNameGetsPlaceholder(t *testing.T) {
	draft := degradedDraft("  ")
	if draft.ArtworkName != fallbackArtworkName {
		t.Errorf("expected %q, got %q", fallbackArtworkName, draft.ArtworkName)
	}
}

func TestParseIdentification(t *testing.T) {
	if got := parseIdentification(`{"artwork_name": "Guernica"}`); got != "Guernica" {
		t.Errorf("expected 'Guernica', got %q", got)
	}
	if got := parseIdentification("```json\n{\"artwork_name\": \"Guernica\"}\n```"); got != "Guernica" {
		t.Errorf("expected fenced identification to parse, got %q", got)
	}

	// Non-answers and malformed output all mean "no identification".
	for name, raw := range map[string]string{
		"sentinel unknown": `{"artwork_name": "Unknown"}`,
		"sentinel n/a":     `{"artwork_name": "N/A"}`,
		"sentinel none":    `{"artwork_name": "none"}`,
		"empty name":       `{"artwork_name": "  "}`,
		"prose":            "I cannot tell what painting this is.",
		"empty":            "",
	} {
		if got := parseIdentification(raw); got != "" {
			t.Errorf("%s: expected no identification, got %q", name, got)
		}
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                     `{"a":1}`,
		"```json\n{\"a\":1}\n```":       `{"a":1}`,
		"```\n{\"a\":1}\n```":           `{"a":1}`,
		"  ```json\n{\"a\":1}\n```  \n": `{"a":1}`,
	}
	for in, want := range cases {
		if got := stripFences(in); got != want {
			t.Errorf("stripFences(%q) = %q, want %q", in, got, want)
		}
	}
}
