package gemini

import (
	"testing"

	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPrompt(t *testing.T) {
	t.Parallel()

	tmpl, err := parsePrompt(defaultPrompt)
	require.NoError(t, err)

	t.Run("defaults", func(t *testing.T) {
		out, err := renderPrompt(tmpl, generation.Options{}, "Some material")
		require.NoError(t, err)
		assert.Contains(t, out, "Write every flashcard in english.")
		assert.Contains(t, out, "The learner's goal is understanding.")
		assert.Contains(t, out, "Detail level 3 of 5")
		assert.NotContains(t, out, "Prioritize these topics")
		assert.Contains(t, out, "Material:\nSome material")
	})

	t.Run("keywords and goal", func(t *testing.T) {
		out, err := renderPrompt(tmpl, generation.Options{
			Language:    "polish",
			DetailLevel: 9,
			Keywords:    "cells, , enzymes",
			StudyGoal:   "memorization",
		}, "")
		require.NoError(t, err)
		assert.Contains(t, out, "Write every flashcard in polish.")
		assert.Contains(t, out, "Detail level 5 of 5")
		assert.Contains(t, out, "- cells\n- enzymes")
		assert.Contains(t, out, "definitions, names, dates")
		assert.Contains(t, out, "The material is the attached document.")
	})
}

func TestParsePrompt_Invalid(t *testing.T) {
	t.Parallel()

	_, err := parsePrompt("{{.Language")
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestParseFlashcards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		want    []domain.CardDraft
		wantErr error
	}{
		{name: "array", text: `[{"question":"Q","answer":"A"}]`, want: []domain.CardDraft{{Question: "Q", Answer: "A"}}},
		{name: "wrapped", text: ` {"flashcards":[{"question":"Q","answer":"A"}]} `, want: []domain.CardDraft{{Question: "Q", Answer: "A"}}},
		{name: "fenced", text: "```json\n[{\"question\":\"Q\",\"answer\":\"A\"}]\n```", want: []domain.CardDraft{{Question: "Q", Answer: "A"}}},
		{name: "empty", text: "  ", wantErr: generation.ErrInvalidResponse},
		{name: "prose", text: "Here you go", wantErr: generation.ErrInvalidResponse},
		{name: "broken object", text: `{"flashcards":`, wantErr: generation.ErrInvalidResponse},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseFlashcards(tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
