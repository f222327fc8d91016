package store

import (
	"context"

	"github.com/phrazzld/memoria/internal/domain"
)

// StudySetStore is the contract for the remote document store holding study
// sets and their cards. Every method is scoped by the explicit session: reads
// only see the caller's records and writes are refused with ErrUnauthenticated
// when the record's owner is not the session's user.
type StudySetStore interface {
	// ListStudySets returns metadata (no cards) for every set the caller owns,
	// oldest first. It returns an empty slice when there are none.
	ListStudySets(ctx context.Context, sess domain.Session) ([]domain.StudySet, error)

	// ListCards returns the cards whose study set is studySetID, in insertion
	// order. Returns ErrStudySetNotFound when the set does not exist.
	ListCards(ctx context.Context, sess domain.Session, studySetID string) ([]domain.Flashcard, error)

	// CreateStudySet persists an empty set with createdAt set to now and
	// returns its ID. Cards reference the returned ID.
	CreateStudySet(ctx context.Context, sess domain.Session, name string) (string, error)

	// CreateStudySetWithCards persists a set together with its initial batch.
	// Either the set and every card are stored, or nothing is.
	CreateStudySetWithCards(
		ctx context.Context,
		sess domain.Session,
		name string,
		drafts []domain.CardDraft,
	) (domain.StudySet, error)

	// AddCard persists one card and returns its ID. A card reported as added is
	// visible to every subsequent ListCards call.
	AddCard(ctx context.Context, sess domain.Session, studySetID, question, answer string) (string, error)

	// UpdateCard replaces a card's question and answer.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateCard(ctx context.Context, sess domain.Session, cardID, question, answer string) error

	// DeleteCard removes a card. Returns ErrCardNotFound if it does not exist.
	DeleteCard(ctx context.Context, sess domain.Session, cardID string) error

	// DeleteStudySet removes a set and every card referencing it. Card
	// deletions are best effort: failures do not stop the batch and the set
	// record is removed anyway, in which case a *CascadeError lists the cards
	// that remain. Returns ErrStudySetNotFound if the set does not exist.
	DeleteStudySet(ctx context.Context, sess domain.Session, studySetID string) error
}

// Authorize returns ErrUnauthenticated unless sess is authenticated and owns
// a record owned by ownerID. An empty ownerID only checks authentication.
func Authorize(sess domain.Session, ownerID string) error {
	if !sess.Authenticated() {
		return ErrUnauthenticated
	}
	if ownerID != "" && !sess.Owns(ownerID) {
		return ErrUnauthenticated
	}
	return nil
}
