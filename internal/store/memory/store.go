package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/platform/logger"
	"github.com/phrazzld/memoria/internal/store"
)

// Operation names a store call, as seen by a Hook.
type Operation string

// Operations reported to hooks.
const (
	OpListStudySets  Operation = "list_study_sets"
	OpListCards      Operation = "list_cards"
	OpCreateStudySet Operation = "create_study_set"
	OpAddCard        Operation = "add_card"
	OpUpdateCard     Operation = "update_card"
	OpDeleteCard     Operation = "delete_card"
	OpDeleteStudySet Operation = "delete_study_set"
)

// Hook runs before an operation touches the data, outside the store's lock.
// id is the study set or card the operation targets, empty for list and
// create calls. A non-nil error fails the operation with that error; a hook
// may also block to simulate latency.
type Hook func(ctx context.Context, op Operation, id string) error

// Option configures a Store.
type Option func(*Store)

// WithHook installs h on every operation.
func WithHook(h Hook) Option {
	return func(s *Store) { s.hook = h }
}

// WithClock replaces time.Now for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCascadeConcurrency bounds the card deletions DeleteStudySet runs at once.
func WithCascadeConcurrency(n int) Option {
	return func(s *Store) { s.cascadeLimit = n }
}

// WithLogger sets the fallback logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store keeps study sets, cards and users in maps guarded by one lock.
// Writes are visible to every read that starts after they return.
type Store struct {
	mu sync.RWMutex

	sets     map[string]domain.StudySet
	setOrder []string

	cards     map[string]domain.Flashcard
	cardOrder []string

	users       map[string]domain.User
	usersByMail map[string]string

	hook         Hook
	now          func() time.Time
	cascadeLimit int
	bcryptCost   int
	logger       *slog.Logger
}

// Store implements store.StudySetStore
var _ store.StudySetStore = (*Store)(nil)

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		sets:         make(map[string]domain.StudySet),
		cards:        make(map[string]domain.Flashcard),
		users:        make(map[string]domain.User),
		usersByMail:  make(map[string]string),
		now:          func() time.Time { return time.Now().UTC() },
		cascadeLimit: store.DefaultCascadeConcurrency,
		bcryptCost:   minBCryptCost,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "memory_store"))
	return s
}

func (s *Store) runHook(ctx context.Context, op Operation, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.hook == nil {
		return nil
	}
	return s.hook(ctx, op, id)
}

// ListStudySets returns the caller's sets without cards, oldest first.
func (s *Store) ListStudySets(ctx context.Context, sess domain.Session) ([]domain.StudySet, error) {
	if err := store.Authorize(sess, ""); err != nil {
		return nil, err
	}
	if err := s.runHook(ctx, OpListStudySets, ""); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sets := make([]domain.StudySet, 0)
	for _, id := range s.setOrder {
		set := s.sets[id]
		if set.UserID == sess.UserID {
			sets = append(sets, set)
		}
	}
	return sets, nil
}

// ListCards returns the cards of one set in insertion order.
func (s *Store) ListCards(ctx context.Context, sess domain.Session, studySetID string) ([]domain.Flashcard, error) {
	if err := store.Authorize(sess, ""); err != nil {
		return nil, err
	}
	if err := s.runHook(ctx, OpListCards, studySetID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.sets[studySetID]
	if !ok {
		return nil, store.ErrStudySetNotFound
	}
	if err := store.Authorize(sess, set.UserID); err != nil {
		return nil, err
	}

	cards := make([]domain.Flashcard, 0)
	for _, id := range s.cardOrder {
		if c := s.cards[id]; c.StudySetID == studySetID {
			cards = append(cards, c)
		}
	}
	return cards, nil
}

// CreateStudySet stores an empty set and returns its ID.
func (s *Store) CreateStudySet(ctx context.Context, sess domain.Session, name string) (string, error) {
	set, err := s.CreateStudySetWithCards(ctx, sess, name, nil)
	if err != nil {
		return "", err
	}
	return set.ID, nil
}

// CreateStudySetWithCards stores a set and its initial cards in one step.
func (s *Store) CreateStudySetWithCards(
	ctx context.Context,
	sess domain.Session,
	name string,
	drafts []domain.CardDraft,
) (domain.StudySet, error) {
	if err := store.Authorize(sess, ""); err != nil {
		return domain.StudySet{}, err
	}
	if err := s.runHook(ctx, OpCreateStudySet, ""); err != nil {
		return domain.StudySet{}, err
	}

	validated := make([]domain.CardDraft, 0, len(drafts))
	for _, d := range drafts {
		v, err := domain.NewCardDraft(d.Question, d.Answer)
		if err != nil {
			return domain.StudySet{}, store.NewStoreError("card", "create", "invalid card in batch", err)
		}
		validated = append(validated, v)
	}
	ids, err := newCardIDs(len(validated))
	if err != nil {
		return domain.StudySet{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	set := domain.StudySet{
		ID:        uuid.NewString(),
		UserID:    sess.UserID,
		Name:      name,
		CreatedAt: now,
	}
	s.sets[set.ID] = set
	s.setOrder = append(s.setOrder, set.ID)

	for i, d := range validated {
		set.Cards = append(set.Cards, s.insertCardLocked(ids[i], sess.UserID, set.ID, d.Question, d.Answer, now))
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("study set created",
		slog.String("study_set_id", set.ID),
		slog.Int("card_count", len(set.Cards)))

	return set, nil
}

// AddCard stores one card and returns its ID.
func (s *Store) AddCard(
	ctx context.Context,
	sess domain.Session,
	studySetID, question, answer string,
) (string, error) {
	if err := store.Authorize(sess, ""); err != nil {
		return "", err
	}
	if err := s.runHook(ctx, OpAddCard, studySetID); err != nil {
		return "", err
	}
	ids, err := newCardIDs(1)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[studySetID]
	if !ok {
		return "", store.ErrStudySetNotFound
	}
	if err := store.Authorize(sess, set.UserID); err != nil {
		return "", err
	}

	card := s.insertCardLocked(ids[0], sess.UserID, studySetID, question, answer, s.now())
	return card.ID, nil
}

// newCardIDs draws n local card IDs before any state is touched, so a failed
// draw leaves the store unchanged.
func newCardIDs(n int) ([]string, error) {
	ids := make([]string, n)
	for i := range ids {
		id, err := domain.NewLocalCardID()
		if err != nil {
			return nil, store.NewStoreError("card", "create", "failed to generate card id", err)
		}
		ids[i] = id
	}
	return ids, nil
}

func (s *Store) insertCardLocked(id, userID, studySetID, question, answer string, now time.Time) domain.Flashcard {
	card := domain.Flashcard{
		ID:         id,
		StudySetID: studySetID,
		UserID:     userID,
		Question:   question,
		Answer:     answer,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.cards[card.ID] = card
	s.cardOrder = append(s.cardOrder, card.ID)
	return card
}

// UpdateCard replaces a card's question and answer.
func (s *Store) UpdateCard(ctx context.Context, sess domain.Session, cardID, question, answer string) error {
	if err := store.Authorize(sess, ""); err != nil {
		return err
	}
	if err := s.runHook(ctx, OpUpdateCard, cardID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[cardID]
	if !ok {
		return store.ErrCardNotFound
	}
	if err := store.Authorize(sess, card.UserID); err != nil {
		return err
	}

	card.Question = question
	card.Answer = answer
	card.UpdatedAt = s.now()
	s.cards[cardID] = card
	return nil
}

// DeleteCard removes a card.
func (s *Store) DeleteCard(ctx context.Context, sess domain.Session, cardID string) error {
	if err := store.Authorize(sess, ""); err != nil {
		return err
	}
	if err := s.runHook(ctx, OpDeleteCard, cardID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[cardID]
	if !ok {
		return store.ErrCardNotFound
	}
	if err := store.Authorize(sess, card.UserID); err != nil {
		return err
	}

	delete(s.cards, cardID)
	s.cardOrder = removeID(s.cardOrder, cardID)
	return nil
}

// DeleteStudySet removes a set and, best effort, every card in it. The set
// goes first, under the same lock that collects its cards, so an AddCard
// racing the cascade fails with ErrStudySetNotFound instead of leaving an
// orphan.
func (s *Store) DeleteStudySet(ctx context.Context, sess domain.Session, studySetID string) error {
	if err := store.Authorize(sess, ""); err != nil {
		return err
	}
	if err := s.runHook(ctx, OpDeleteStudySet, studySetID); err != nil {
		return err
	}

	s.mu.Lock()
	set, ok := s.sets[studySetID]
	if !ok {
		s.mu.Unlock()
		return store.ErrStudySetNotFound
	}
	if err := store.Authorize(sess, set.UserID); err != nil {
		s.mu.Unlock()
		return err
	}
	var cardIDs []string
	for _, id := range s.cardOrder {
		if s.cards[id].StudySetID == studySetID {
			cardIDs = append(cardIDs, id)
		}
	}
	delete(s.sets, studySetID)
	s.setOrder = removeID(s.setOrder, studySetID)
	s.mu.Unlock()

	cascadeErr := store.CascadeDelete(ctx, studySetID, cardIDs, s.cascadeLimit,
		func(ctx context.Context, cardID string) error {
			return s.DeleteCard(ctx, sess, cardID)
		})
	if cascadeErr != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("study set deleted with remaining cards",
			slog.String("study_set_id", studySetID),
			slog.Int("remaining", len(cascadeErr.Remaining)))
		return cascadeErr
	}
	return nil
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
