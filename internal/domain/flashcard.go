package domain

import (
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Flashcard is a question/answer pair belonging to exactly one study set.
type Flashcard struct {
	ID         string    `json:"id"`
	StudySetID string    `json:"study_set_id"`
	UserID     string    `json:"user_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CardDraft is a flashcard without identity, as produced by imports and
// generation and consumed by exports.
type CardDraft struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ValidateCard trims both fields and rejects the pair when either is empty.
// It has no side effects and is the gate every add and edit passes through.
func ValidateCard(question, answer string) (string, string, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return "", "", NewValidationError("question", "cannot be empty", ErrEmptyField)
	}

	a := strings.TrimSpace(answer)
	if a == "" {
		return "", "", NewValidationError("answer", "cannot be empty", ErrEmptyField)
	}

	return q, a, nil
}

// NewCardDraft returns a validated, trimmed draft.
func NewCardDraft(question, answer string) (CardDraft, error) {
	q, a, err := ValidateCard(question, answer)
	if err != nil {
		return CardDraft{}, err
	}
	return CardDraft{Question: q, Answer: a}, nil
}

// Draft strips identity from the card.
func (c Flashcard) Draft() CardDraft {
	return CardDraft{Question: c.Question, Answer: c.Answer}
}

// Drafts converts a card list into drafts, preserving order.
func Drafts(cards []Flashcard) []CardDraft {
	drafts := make([]CardDraft, 0, len(cards))
	for _, c := range cards {
		drafts = append(drafts, c.Draft())
	}
	return drafts
}

const localCardIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewLocalCardID returns a random alphanumeric token identifying a card that
// is kept only in this process. It never starts with a dash, so it can be
// passed as a command line argument.
func NewLocalCardID() (string, error) {
	return gonanoid.Generate(localCardIDAlphabet, 21)
}

// ExampleCard is the single card placed in a freshly initialized empty set.
func ExampleCard() CardDraft {
	return CardDraft{
		Question: "What is a flashcard?",
		Answer:   "A card with a question on one side and the answer on the other. Edit or delete this one and add your own.",
	}
}
