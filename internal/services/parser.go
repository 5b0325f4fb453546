package services

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/AnshRaj112/ai-journal-backend/internal/apperrors"
	"github.com/AnshRaj112/ai-journal-backend/internal/models"
)

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// ParseAnalysis extracts the first balanced JSON object from raw model output
// and validates it. The returned error is always an AI_RESPONSE AppError.
func ParseAnalysis(raw string) (models.Analysis, error) {
	object, ok := firstJSONObject(thinkBlock.ReplaceAllString(raw, ""))
	if !ok {
		return models.Analysis{}, apperrors.NewAIResponseError("no JSON object found")
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(object), &fields); err != nil {
		return models.Analysis{}, apperrors.NewAIResponseError("malformed JSON").WithCause(err)
	}

	// mood is stored exactly as returned; only its emptiness is checked trimmed
	summary := stringField(fields, "summary")
	mood, _ := fields["mood"].(string)
	if summary == "" || strings.TrimSpace(mood) == "" {
		return models.Analysis{}, apperrors.NewAIResponseError("incomplete analysis")
	}

	suggestion := stringField(fields, "suggestion")
	if _, present := fields["suggestion"]; !present {
		suggestion = stringField(fields, "suggestions")
	}

	return models.Analysis{
		Summary:    summary,
		Suggestion: suggestion,
		Mood:       models.Mood(mood),
	}, nil
}

// firstJSONObject returns the text from the first '{' to its matching '}'.
// Braces inside string literals are ignored.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func stringField(fields map[string]any, key string) string {
	v, ok := fields[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}
