package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/generation"
)

// parseFlashcards decodes the model output. Both a bare array and an object
// with a "flashcards" array are accepted; a surrounding markdown code fence
// is ignored.
func parseFlashcards(text string) ([]domain.CardDraft, error) {
	text = stripFence(strings.TrimSpace(text))
	if text == "" {
		return nil, fmt.Errorf("%w: empty model output", generation.ErrInvalidResponse)
	}

	var drafts []domain.CardDraft
	if strings.HasPrefix(text, "{") {
		var wrapped generation.Response
		if err := json.Unmarshal([]byte(text), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
		}
		drafts = wrapped.Flashcards
	} else if err := json.Unmarshal([]byte(text), &drafts); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
	}
	return drafts, nil
}

func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
