package generation

import (
	"context"

	"github.com/phrazzld/memoria/internal/domain"
)

// Client requests flashcards for a document on behalf of a session.
// Implementations validate the document before any network call and return
// ErrUnreachable, *FailedError or domain validation errors.
type Client interface {
	Generate(ctx context.Context, sess domain.Session, doc Document, opts Options) ([]domain.CardDraft, error)
}

// Generator turns a validated document into flashcards. It serves the
// upload-generate endpoint.
type Generator interface {
	GenerateCards(ctx context.Context, doc Document, opts Options) ([]domain.CardDraft, error)
}

// Response is the success body of the upload-generate endpoint.
type Response struct {
	Flashcards []domain.CardDraft `json:"flashcards"`
}

// ErrorResponse is the failure body of the upload-generate endpoint.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ValidDrafts trims every draft and drops those with an empty field. It
// returns ErrGenerationFailed when nothing is left.
func ValidDrafts(drafts []domain.CardDraft) ([]domain.CardDraft, error) {
	out := make([]domain.CardDraft, 0, len(drafts))
	for _, d := range drafts {
		v, err := domain.NewCardDraft(d.Question, d.Answer)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, ErrGenerationFailed
	}
	return out, nil
}
