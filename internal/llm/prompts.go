package llm

import "fmt"

// Prompts live together in one place so the contract between the service and
// the models — the JSON shapes below — is easy to audit. Handlers and the
// gateway never build prompt text themselves.

// InterpretSystemPrompt frames the model as an incisive cultural art analyst
// that must reply with a single JSON object.
const InterpretSystemPrompt = `You are an incisive, culturally aware art analyst. Your job is to return a JSON object containing a deep analysis of the meaning and context of a work of art, strictly following the requested structure.`

// IdentifySystemPrompt frames the model as an artwork identifier.
const IdentifySystemPrompt = `You are an art historian who identifies works of art from photographs. You reply only with a JSON object.`

// interpretStructure is the draft shape both interpretation prompts demand.
const interpretStructure = `Respond with a valid JSON object and NOTHING else — no markdown fences, no text outside the object. Structure:
{
  "artwork_name": "Name of the work (as confirmed by you)",
  "artist": "Artist name",
  "year": "Year or era of creation",
  "style": "Artistic style",
  "analysis": "Open with a paragraph stating the work and its central thesis. Then one paragraph analyzing the first key visual element (central figure, setting, color, expression, form) and its role in the narrative. Then one paragraph on a second important visual element (use of light, a specific symbol), connecting it to the theme. Close with a paragraph on the overall impact and lasting message.",
  "emotions": ["3 to 5", "key emotions", "lowercase"]
}
If the work concerns a specific social or historical context, make the analysis reflect that prominently.`

// InterpretByNamePrompt asks for a full structured interpretation of a named
// artwork.
func InterpretByNamePrompt(artworkName string) string {
	return fmt.Sprintf(`Act as a cultural art analyst. Uncover the central message and the human context behind the artwork %q. The analysis must be direct, powerful and revealing.

%s`, artworkName, interpretStructure)
}

// InterpretByImagePrompt asks for a full structured interpretation of the
// attached image.
func InterpretByImagePrompt() string {
	return fmt.Sprintf(`Act as a cultural art analyst. The attached image shows a work of art. Uncover its central message and human context. If you recognize the work, use its real name; otherwise give it a short descriptive name.

%s`, interpretStructure)
}

// IdentifyPrompt asks only for the name of the artwork in the attached image.
// "unknown" is the contract for a non-answer; the gateway filters it out.
func IdentifyPrompt() string {
	return `Look at the attached image and identify the work of art it shows.

Respond with a valid JSON object and NOTHING else. Structure:
{
  "artwork_name": "The commonly used name of the work"
}
If you cannot identify the specific work with reasonable confidence, set "artwork_name" to "unknown". Do not guess loosely related works.`
}
