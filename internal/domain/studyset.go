package domain

import (
	"fmt"
	"strings"
	"time"
)

// FirstStudySetName is used when a user without any sets saves an unnamed set.
const FirstStudySetName = "My First Flashcard Set"

// StudySet is a named, owned collection of flashcards.
type StudySet struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Name      string      `json:"name"`
	CreatedAt time.Time   `json:"created_at"`
	Cards     []Flashcard `json:"cards,omitempty"`
}

// Persisted reports whether the set has been assigned an identity by the store.
func (s StudySet) Persisted() bool {
	return s.ID != ""
}

// DefaultStudySetName returns the name substituted for an empty one, given how
// many sets the owner already has.
func DefaultStudySetName(existing int) string {
	if existing <= 0 {
		return FirstStudySetName
	}
	return fmt.Sprintf("Untitled Set %d", existing+1)
}

// ResolveStudySetName trims name and falls back to DefaultStudySetName.
func ResolveStudySetName(name string, existing int) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return DefaultStudySetName(existing)
}
