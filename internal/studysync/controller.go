package studysync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/generation"
	"github.com/phrazzld/memoria/internal/notify"
	"github.com/phrazzld/memoria/internal/platform/logger"
	"github.com/phrazzld/memoria/internal/store"
)

// Option configures a Controller.
type Option func(*Controller)

// WithGenerator sets the client used by GenerateSet.
func WithGenerator(g generation.Client) Option {
	return func(c *Controller) { c.generator = g }
}

// WithNotifications makes Dispatch publish failures to n.
func WithNotifications(n *notify.Center) Option {
	return func(c *Controller) { c.notices = n }
}

// WithLogger sets the fallback logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithClock replaces time.Now for locally stamped cards.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller is the only writer of the active card list. It is safe for
// concurrent use.
type Controller struct {
	store     store.StudySetStore
	generator generation.Client
	notices   *notify.Center
	logger    *slog.Logger
	now       func() time.Time

	mu         sync.Mutex
	sess       domain.Session
	sets       []domain.StudySet
	setsLoaded bool
	active     *domain.StudySet
	cards      []domain.Flashcard
	loading    bool
	// deleting is set while DeleteActiveSet runs; no new mutation is admitted.
	deleting bool
	// epoch changes whenever the active set is replaced or cleared.
	epoch   uint64
	pending int
	// tickets holds, per card (or per set for adds), the channel closed by
	// the most recently issued mutation when it finishes.
	tickets map[string]chan struct{}
}

// New creates a Controller in StateNoActiveSet acting as sess.
func New(st store.StudySetStore, sess domain.Session, opts ...Option) *Controller {
	if st == nil {
		panic("studysync: New requires a store")
	}

	c := &Controller{
		store:   st,
		sess:    sess,
		logger:  slog.Default(),
		now:     func() time.Time { return time.Now().UTC() },
		tickets: make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("component", "study_sync"))
	return c
}

// mutation is a card operation that has been admitted against the active set.
type mutation struct {
	epoch uint64
	setID string
	sess  domain.Session
}

// Session returns the identity used for store calls.
func (c *Controller) Session() domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// SetSession switches identity and drops all local state.
func (c *Controller) SetSession(sess domain.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess = sess
	c.sets = nil
	c.setsLoaded = false
	c.resetActiveLocked()
}

// Notifications returns the center Dispatch publishes to, or nil.
func (c *Controller) Notifications() *notify.Center {
	return c.notices
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Snapshot returns a copy of the controller's state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		State:   c.stateLocked(),
		Cards:   cloneCards(c.cards),
		Sets:    cloneSets(c.sets),
		Pending: c.pending,
	}
	if c.active != nil {
		active := *c.active
		snap.ActiveSet = &active
	}
	return snap
}

// LoadSets refreshes the caller's set list.
func (c *Controller) LoadSets(ctx context.Context) ([]domain.StudySet, error) {
	sets, err := c.store.ListStudySets(ctx, c.Session())
	if err != nil {
		return nil, fmt.Errorf("failed to load study sets: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets = cloneSets(sets)
	c.setsLoaded = true
	if c.active != nil {
		if i := indexOfSet(c.sets, c.active.ID); i >= 0 {
			active := c.sets[i]
			c.active = &active
		}
	}
	return cloneSets(c.sets), nil
}

// SelectSet makes id the active set and loads its cards. On failure the
// controller ends with no active set. A load overtaken by another change of
// active set is discarded.
func (c *Controller) SelectSet(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrEmptyStudySetID
	}

	c.mu.Lock()
	c.resetActiveLocked()
	meta := domain.StudySet{ID: id}
	if i := indexOfSet(c.sets, id); i >= 0 {
		meta = c.sets[i]
	}
	c.active = &meta
	c.loading = true
	epoch, sess := c.epoch, c.sess
	c.mu.Unlock()

	cards, err := c.store.ListCards(ctx, sess, id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		log.Debug("discarding superseded card load", slog.String("study_set_id", id))
		return nil
	}

	c.loading = false
	if err != nil {
		c.active = nil
		c.cards = nil
		return fmt.Errorf("failed to load cards: %w", err)
	}

	c.cards = cloneCards(cards)
	log.Debug("study set selected",
		slog.String("study_set_id", id),
		slog.Int("card_count", len(cards)))
	return nil
}

// CreateNewSet clears the active set and its cards, from any state, ahead of
// a creation flow.
func (c *Controller) CreateNewSet() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetActiveLocked()
}

// AddCard validates the pair and appends it to the active set once the store
// has stored it. Adds to one set are written in issue order.
func (c *Controller) AddCard(ctx context.Context, question, answer string) (domain.Flashcard, error) {
	q, a, err := domain.ValidateCard(question, answer)
	if err != nil {
		return domain.Flashcard{}, err
	}

	c.mu.Lock()
	m, err := c.beginLocked()
	if err != nil {
		c.mu.Unlock()
		return domain.Flashcard{}, err
	}
	key := "set:" + m.setID
	prev, mine := c.takeTicketLocked(key)
	c.mu.Unlock()

	if err := c.await(ctx, key, prev, mine, m); err != nil {
		return domain.Flashcard{}, err
	}

	id, err := c.store.AddCard(ctx, m.sess, m.setID, q, a)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseLocked(key, mine)
	current := c.finishLocked(m)

	if err != nil {
		return domain.Flashcard{}, fmt.Errorf("failed to add card: %w", err)
	}

	now := c.now()
	card := domain.Flashcard{
		ID:         id,
		StudySetID: m.setID,
		UserID:     m.sess.UserID,
		Question:   q,
		Answer:     a,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if current {
		c.cards = append(c.cards, card)
	} else {
		c.discarded(ctx, "add_card", id)
	}
	return card, nil
}

// EditCard validates the pair and replaces the card's content once the store
// has accepted it. Edits of one card are written in issue order, so the last
// issued edit is the one that remains.
func (c *Controller) EditCard(ctx context.Context, cardID, question, answer string) error {
	if cardID == "" {
		return domain.ErrEmptyCardID
	}
	q, a, err := domain.ValidateCard(question, answer)
	if err != nil {
		return err
	}

	c.mu.Lock()
	m, err := c.beginCardLocked(cardID)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	key := "card:" + cardID
	prev, mine := c.takeTicketLocked(key)
	c.mu.Unlock()

	if err := c.await(ctx, key, prev, mine, m); err != nil {
		return err
	}

	err = c.store.UpdateCard(ctx, m.sess, cardID, q, a)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseLocked(key, mine)
	current := c.finishLocked(m)

	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	if !current {
		c.discarded(ctx, "edit_card", cardID)
		return nil
	}
	if i := indexOfCard(c.cards, cardID); i >= 0 {
		c.cards[i].Question = q
		c.cards[i].Answer = a
		c.cards[i].UpdatedAt = c.now()
	}
	return nil
}

// DeleteCard removes the card once the store has deleted it.
func (c *Controller) DeleteCard(ctx context.Context, cardID string) error {
	if cardID == "" {
		return domain.ErrEmptyCardID
	}

	c.mu.Lock()
	m, err := c.beginCardLocked(cardID)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	key := "card:" + cardID
	prev, mine := c.takeTicketLocked(key)
	c.mu.Unlock()

	if err := c.await(ctx, key, prev, mine, m); err != nil {
		return err
	}

	err = c.store.DeleteCard(ctx, m.sess, cardID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseLocked(key, mine)
	current := c.finishLocked(m)

	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	if !current {
		c.discarded(ctx, "delete_card", cardID)
		return nil
	}
	if i := indexOfCard(c.cards, cardID); i >= 0 {
		c.cards = append(c.cards[:i], c.cards[i+1:]...)
	}
	return nil
}

// DeleteActiveSet deletes the active set and its cards, then selects the
// first remaining set, if any. Mutations are refused from the moment it is
// called, and adds already issued to the set are written before the set is
// deleted. A partial cascade still removes the set locally and is returned
// as a *store.CascadeError.
func (c *Controller) DeleteActiveSet(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	c.mu.Lock()
	m, err := c.beginLocked()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.deleting = true
	key := "set:" + m.setID
	prev, mine := c.takeTicketLocked(key)
	c.mu.Unlock()

	if err := c.await(ctx, key, prev, mine, m); err != nil {
		c.mu.Lock()
		if c.epoch == m.epoch {
			c.deleting = false
		}
		c.mu.Unlock()
		return err
	}

	err = c.store.DeleteStudySet(ctx, m.sess, m.setID)

	c.mu.Lock()
	c.releaseLocked(key, mine)
	c.mu.Unlock()

	var cascade *store.CascadeError
	if err != nil && !errors.As(err, &cascade) {
		c.mu.Lock()
		if c.finishLocked(m) {
			c.deleting = false
		}
		c.mu.Unlock()
		return fmt.Errorf("failed to delete study set: %w", err)
	}
	if cascade != nil {
		log.Warn("study set deleted with cards left behind",
			slog.String("study_set_id", m.setID),
			slog.Int("remaining", len(cascade.Remaining)))
	}

	c.mu.Lock()
	c.sets = removeSet(c.sets, m.setID)
	var next string
	if c.epoch == m.epoch {
		c.resetActiveLocked()
		if len(c.sets) > 0 {
			next = c.sets[0].ID
		}
	}
	c.mu.Unlock()

	if next != "" {
		if selErr := c.SelectSet(ctx, next); selErr != nil {
			return errors.Join(err, selErr)
		}
	}
	return err
}

func (c *Controller) stateLocked() State {
	switch {
	case c.active == nil:
		return StateNoActiveSet
	case c.loading:
		return StateLoadingCards
	case c.pending > 0:
		return StateMutating
	default:
		return StateActiveSet
	}
}

func (c *Controller) resetActiveLocked() {
	c.epoch++
	c.active = nil
	c.cards = nil
	c.loading = false
	c.deleting = false
	c.pending = 0
}

func (c *Controller) beginLocked() (mutation, error) {
	if c.active == nil || c.loading || c.deleting {
		return mutation{}, ErrNoActiveSet
	}
	c.pending++
	return mutation{epoch: c.epoch, setID: c.active.ID, sess: c.sess}, nil
}

func (c *Controller) beginCardLocked(cardID string) (mutation, error) {
	if c.active == nil || c.loading || c.deleting {
		return mutation{}, ErrNoActiveSet
	}
	if indexOfCard(c.cards, cardID) < 0 {
		return mutation{}, ErrCardNotInSet
	}
	return c.beginLocked()
}

// finishLocked ends m and reports whether its set is still the active one.
func (c *Controller) finishLocked(m mutation) bool {
	if m.epoch != c.epoch {
		return false
	}
	c.pending--
	return true
}

func (c *Controller) takeTicketLocked(key string) (prev, mine chan struct{}) {
	prev = c.tickets[key]
	mine = make(chan struct{})
	c.tickets[key] = mine
	return prev, mine
}

func (c *Controller) releaseLocked(key string, mine chan struct{}) {
	close(mine)
	if c.tickets[key] == mine {
		delete(c.tickets, key)
	}
}

// await blocks until the previously issued mutation on key has finished. If
// ctx ends first, m is abandoned and its ticket is released once the
// predecessor finishes, keeping later mutations in order.
func (c *Controller) await(ctx context.Context, key string, prev, mine chan struct{}, m mutation) error {
	if prev == nil {
		return nil
	}

	select {
	case <-prev:
		return nil
	case <-ctx.Done():
		go func() {
			<-prev
			c.mu.Lock()
			c.releaseLocked(key, mine)
			c.mu.Unlock()
		}()
		c.mu.Lock()
		c.finishLocked(m)
		c.mu.Unlock()
		return ctx.Err()
	}
}

func (c *Controller) discarded(ctx context.Context, op, id string) {
	logger.FromContextOrDefault(ctx, c.logger).Debug("discarding result for replaced study set",
		slog.String("operation", op),
		slog.String("id", id))
}

func indexOfCard(cards []domain.Flashcard, id string) int {
	for i, card := range cards {
		if card.ID == id {
			return i
		}
	}
	return -1
}

func indexOfSet(sets []domain.StudySet, id string) int {
	for i, set := range sets {
		if set.ID == id {
			return i
		}
	}
	return -1
}

func removeSet(sets []domain.StudySet, id string) []domain.StudySet {
	if i := indexOfSet(sets, id); i >= 0 {
		return append(sets[:i:i], sets[i+1:]...)
	}
	return sets
}

func cloneCards(cards []domain.Flashcard) []domain.Flashcard {
	if cards == nil {
		return nil
	}
	out := make([]domain.Flashcard, len(cards))
	copy(out, cards)
	return out
}

func cloneSets(sets []domain.StudySet) []domain.StudySet {
	if sets == nil {
		return nil
	}
	out := make([]domain.StudySet, len(sets))
	for i, s := range sets {
		s.Cards = nil
		out[i] = s
	}
	return out
}
