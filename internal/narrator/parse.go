package narrator

import (
	"encoding/json"
	"strings"

	"github.com/storyloom/trpg-api/internal/errors"
)

// FallbackNarration is used when the generator output carries no
// usable narration at all.
const FallbackNarration = "Nothing of note happens."

// fallbackMaxRunes bounds how much raw generator text is salvaged
// into a fallback narration.
const fallbackMaxRunes = 400

// ParseResponse decodes raw generator text into a TurnResponse.
// Generators wrap JSON in markdown fences or pad it with prose often
// enough that the raw text is tried as-is first, then re-tried on the
// extracted JSON slice.
func ParseResponse(raw string) (*TurnResponse, error) {
	var resp TurnResponse
	if err := json.Unmarshal([]byte(raw), &resp); err == nil {
		return &resp, nil
	}

	cleaned := ExtractJSON(raw)
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, errors.InvalidArgumentf("generator response is not valid JSON: %v", err)
	}
	return &resp, nil
}

// ExtractJSON slices the most plausible JSON object out of generator
// text: markdown fences are stripped and everything outside the first
// '{' and last '}' is discarded.
func ExtractJSON(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, "```") {
		parts := strings.Split(cleaned, "```")
		if len(parts) >= 3 {
			cleaned = parts[1]
			// Drop a leading language token like "json"
			if rest, ok := strings.CutPrefix(strings.TrimSpace(cleaned), "json"); ok {
				cleaned = rest
			}
		} else {
			cleaned = strings.ReplaceAll(cleaned, "```", "")
		}
	}

	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start != -1 && end > start {
		cleaned = cleaned[start : end+1]
	}

	return cleaned
}

// Fallback builds a deterministic minimal response from unusable
// generator text: the raw text (truncated) becomes the narration, no
// dialogues, no state changes.
func Fallback(raw string) *TurnResponse {
	narration := strings.TrimSpace(raw)
	if runes := []rune(narration); len(runes) > fallbackMaxRunes {
		narration = string(runes[:fallbackMaxRunes]) + "..."
	}
	if narration == "" {
		narration = FallbackNarration
	}
	return &TurnResponse{
		Narration: narration,
		Dialogues: nil,
	}
}
