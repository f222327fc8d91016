package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/platform/logger"
	"github.com/phrazzld/memoria/internal/store"
)

// PostgresStudySetStore implements store.StudySetStore over the study_sets
// and cards tables.
type PostgresStudySetStore struct {
	db           store.DBTX
	sqlDB        *sql.DB // set when db is a pool; enables transactions
	logger       *slog.Logger
	cascadeLimit int
	now          func() time.Time
}

// NewPostgresStudySetStore creates a study set store on top of a pool or an
// open transaction. If logger is nil, a default logger will be used.
func NewPostgresStudySetStore(db store.DBTX, logger *slog.Logger) *PostgresStudySetStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &PostgresStudySetStore{
		db:           db,
		logger:       logger.With(slog.String("component", "study_set_store")),
		cascadeLimit: store.DefaultCascadeConcurrency,
		now:          func() time.Time { return time.Now().UTC() },
	}
	if sqlDB, ok := db.(*sql.DB); ok {
		s.sqlDB = sqlDB
	}
	return s
}

// Ensure PostgresStudySetStore implements store.StudySetStore interface
var _ store.StudySetStore = (*PostgresStudySetStore)(nil)

// WithTx returns a store bound to tx.
func (s *PostgresStudySetStore) WithTx(tx *sql.Tx) *PostgresStudySetStore {
	return &PostgresStudySetStore{
		db:           tx,
		logger:       s.logger,
		cascadeLimit: s.cascadeLimit,
		now:          s.now,
	}
}

// SetCascadeConcurrency bounds the card deletions DeleteStudySet runs at once.
func (s *PostgresStudySetStore) SetCascadeConcurrency(n int) {
	s.cascadeLimit = n
}

// validID reports whether id can address a row; anything else cannot exist.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ListStudySets implements store.StudySetStore.ListStudySets
func (s *PostgresStudySetStore) ListStudySets(ctx context.Context, sess domain.Session) ([]domain.StudySet, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := store.Authorize(sess, ""); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, name, created_at
		FROM study_sets
		WHERE user_id = $1
		ORDER BY created_at, seq
	`
	rows, err := s.db.QueryContext(ctx, query, sess.UserID)
	if err != nil {
		log.Error("failed to list study sets",
			slog.String("error", err.Error()),
			slog.String("user_id", sess.UserID))
		return nil, store.NewStoreError("study_set", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	sets := make([]domain.StudySet, 0)
	for rows.Next() {
		var set domain.StudySet
		if err := rows.Scan(&set.ID, &set.UserID, &set.Name, &set.CreatedAt); err != nil {
			return nil, store.NewStoreError("study_set", "list", "scan failed", err)
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("study_set", "list", "row iteration failed", err)
	}

	log.Debug("study sets listed", slog.String("user_id", sess.UserID), slog.Int("count", len(sets)))
	return sets, nil
}

// inTx runs fn in a transaction when the store is on a pool, and directly on
// the caller's transaction otherwise.
func (s *PostgresStudySetStore) inTx(ctx context.Context, fn func(ctx context.Context, db store.DBTX) error) error {
	if s.sqlDB == nil {
		return fn(ctx, s.db)
	}
	return store.RunInTransaction(ctx, s.sqlDB, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, tx)
	})
}

// ownerOfSet returns the owner of a study set or ErrStudySetNotFound. With
// share set, the row stays locked FOR SHARE until db's transaction ends, so
// a concurrent DeleteStudySet waits for it.
func ownerOfSet(ctx context.Context, db store.DBTX, studySetID string, share bool) (string, error) {
	if !validID(studySetID) {
		return "", store.ErrStudySetNotFound
	}

	query := `SELECT user_id FROM study_sets WHERE id = $1`
	if share {
		query += ` FOR SHARE`
	}
	var owner string
	err := db.QueryRowContext(ctx, query, studySetID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrStudySetNotFound
	}
	if err != nil {
		return "", store.NewStoreError("study_set", "get", "query failed", MapError(err))
	}
	return owner, nil
}

// ownerOfCard returns the owner of a card or ErrCardNotFound.
func (s *PostgresStudySetStore) ownerOfCard(ctx context.Context, cardID string) (string, error) {
	if !validID(cardID) {
		return "", store.ErrCardNotFound
	}

	var owner string
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM cards WHERE id = $1`, cardID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrCardNotFound
	}
	if err != nil {
		return "", store.NewStoreError("card", "get", "query failed", MapError(err))
	}
	return owner, nil
}

// ListCards implements store.StudySetStore.ListCards
func (s *PostgresStudySetStore) ListCards(
	ctx context.Context,
	sess domain.Session,
	studySetID string,
) ([]domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := store.Authorize(sess, ""); err != nil {
		return nil, err
	}
	owner, err := ownerOfSet(ctx, s.db, studySetID, false)
	if err != nil {
		return nil, err
	}
	if err := store.Authorize(sess, owner); err != nil {
		log.Warn("card listing refused", slog.String("study_set_id", studySetID))
		return nil, err
	}

	query := `
		SELECT id, study_set_id, user_id, question, answer, created_at, updated_at
		FROM cards
		WHERE study_set_id = $1 AND user_id = $2
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query, studySetID, sess.UserID)
	if err != nil {
		log.Error("failed to list cards",
			slog.String("error", err.Error()),
			slog.String("study_set_id", studySetID))
		return nil, store.NewStoreError("card", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	cards := make([]domain.Flashcard, 0)
	for rows.Next() {
		var c domain.Flashcard
		if err := rows.Scan(&c.ID, &c.StudySetID, &c.UserID, &c.Question, &c.Answer, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, store.NewStoreError("card", "list", "scan failed", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", "list", "row iteration failed", err)
	}

	return cards, nil
}

// CreateStudySet implements store.StudySetStore.CreateStudySet
func (s *PostgresStudySetStore) CreateStudySet(ctx context.Context, sess domain.Session, name string) (string, error) {
	set, err := s.CreateStudySetWithCards(ctx, sess, name, nil)
	if err != nil {
		return "", err
	}
	return set.ID, nil
}

// CreateStudySetWithCards implements store.StudySetStore.CreateStudySetWithCards.
// On a pool the set and its cards are written in one transaction; on a
// transaction-bound store the caller's transaction provides atomicity.
func (s *PostgresStudySetStore) CreateStudySetWithCards(
	ctx context.Context,
	sess domain.Session,
	name string,
	drafts []domain.CardDraft,
) (domain.StudySet, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := store.Authorize(sess, ""); err != nil {
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

	var created domain.StudySet
	write := func(ctx context.Context, db store.DBTX) error {
		set, err := s.insertSet(ctx, db, sess, name, validated)
		if err != nil {
			return err
		}
		created = set
		return nil
	}

	if err := s.inTx(ctx, write); err != nil {
		log.Error("failed to create study set",
			slog.String("error", err.Error()),
			slog.String("user_id", sess.UserID),
			slog.Int("card_count", len(validated)))
		return domain.StudySet{}, err
	}

	log.Info("study set created",
		slog.String("study_set_id", created.ID),
		slog.String("user_id", sess.UserID),
		slog.Int("card_count", len(created.Cards)))
	return created, nil
}

func (s *PostgresStudySetStore) insertSet(
	ctx context.Context,
	db store.DBTX,
	sess domain.Session,
	name string,
	drafts []domain.CardDraft,
) (domain.StudySet, error) {
	now := s.now()
	set := domain.StudySet{
		ID:        uuid.NewString(),
		UserID:    sess.UserID,
		Name:      name,
		CreatedAt: now,
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO study_sets (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		set.ID, set.UserID, set.Name, set.CreatedAt)
	if err != nil {
		return domain.StudySet{}, store.NewStoreError("study_set", "create", "insert failed", MapError(err))
	}

	for _, d := range drafts {
		card, err := insertCard(ctx, db, sess.UserID, set.ID, d.Question, d.Answer, now)
		if err != nil {
			return domain.StudySet{}, err
		}
		set.Cards = append(set.Cards, card)
	}

	return set, nil
}

func insertCard(
	ctx context.Context,
	db store.DBTX,
	userID, studySetID, question, answer string,
	now time.Time,
) (domain.Flashcard, error) {
	card := domain.Flashcard{
		StudySetID: studySetID,
		UserID:     userID,
		Question:   question,
		Answer:     answer,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	query := `
		INSERT INTO cards (id, user_id, study_set_id, question, answer, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := db.QueryRowContext(ctx, query,
		uuid.NewString(), userID, studySetID, question, answer, now, now,
	).Scan(&card.ID)
	if err != nil {
		return domain.Flashcard{}, store.NewStoreError("card", "create", "insert failed", MapError(err))
	}
	return card, nil
}

// AddCard implements store.StudySetStore.AddCard
// The set row is share-locked while the card is inserted, so the card either
// lands before a concurrent DeleteStudySet collects the set's cards or fails
// with ErrStudySetNotFound.
func (s *PostgresStudySetStore) AddCard(
	ctx context.Context,
	sess domain.Session,
	studySetID, question, answer string,
) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := store.Authorize(sess, ""); err != nil {
		return "", err
	}

	var card domain.Flashcard
	err := s.inTx(ctx, func(ctx context.Context, db store.DBTX) error {
		owner, err := ownerOfSet(ctx, db, studySetID, true)
		if err != nil {
			return err
		}
		if err := store.Authorize(sess, owner); err != nil {
			return err
		}
		card, err = insertCard(ctx, db, sess.UserID, studySetID, question, answer, s.now())
		return err
	})
	if err != nil {
		if !errors.Is(err, store.ErrStudySetNotFound) && !errors.Is(err, store.ErrUnauthenticated) {
			log.Error("failed to add card",
				slog.String("error", err.Error()),
				slog.String("study_set_id", studySetID))
		}
		return "", err
	}

	log.Debug("card added", slog.String("card_id", card.ID), slog.String("study_set_id", studySetID))
	return card.ID, nil
}

// UpdateCard implements store.StudySetStore.UpdateCard
func (s *PostgresStudySetStore) UpdateCard(
	ctx context.Context,
	sess domain.Session,
	cardID, question, answer string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := store.Authorize(sess, ""); err != nil {
		return err
	}
	owner, err := s.ownerOfCard(ctx, cardID)
	if err != nil {
		return err
	}
	if err := store.Authorize(sess, owner); err != nil {
		return err
	}

	query := `
		UPDATE cards
		SET question = $1, answer = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5
	`
	result, err := s.db.ExecContext(ctx, query, question, answer, s.now(), cardID, sess.UserID)
	if err != nil {
		log.Error("failed to update card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID))
		return store.NewStoreError("card", "update", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// DeleteCard implements store.StudySetStore.DeleteCard
func (s *PostgresStudySetStore) DeleteCard(ctx context.Context, sess domain.Session, cardID string) error {
	if err := store.Authorize(sess, ""); err != nil {
		return err
	}
	owner, err := s.ownerOfCard(ctx, cardID)
	if err != nil {
		return err
	}
	if err := store.Authorize(sess, owner); err != nil {
		return err
	}
	return s.deleteCard(ctx, sess.UserID, cardID)
}

func (s *PostgresStudySetStore) deleteCard(ctx context.Context, userID, cardID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1 AND user_id = $2`, cardID, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID))
		return store.NewStoreError("card", "delete", "delete failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// DeleteStudySet implements store.StudySetStore.DeleteStudySet
// The set row is deleted and its card IDs collected in one transaction; the
// delete waits for AddCard calls holding the row, and later ones find no set.
// Cards are then deleted one by one and concurrently; a *store.CascadeError
// lists the survivors.
func (s *PostgresStudySetStore) DeleteStudySet(ctx context.Context, sess domain.Session, studySetID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := store.Authorize(sess, ""); err != nil {
		return err
	}
	owner, err := ownerOfSet(ctx, s.db, studySetID, false)
	if err != nil {
		return err
	}
	if err := store.Authorize(sess, owner); err != nil {
		return err
	}

	var cardIDs []string
	err = s.inTx(ctx, func(ctx context.Context, db store.DBTX) error {
		result, err := db.ExecContext(ctx,
			`DELETE FROM study_sets WHERE id = $1 AND user_id = $2`, studySetID, sess.UserID)
		if err != nil {
			log.Error("failed to delete study set",
				slog.String("error", err.Error()),
				slog.String("study_set_id", studySetID))
			return store.NewStoreError("study_set", "delete", "delete failed", MapError(err))
		}
		if err := CheckRowsAffected(result, store.ErrStudySetNotFound); err != nil {
			return err
		}
		cardIDs, err = setCardIDs(ctx, db, sess.UserID, studySetID)
		return err
	})
	if err != nil {
		return err
	}

	cascadeErr := store.CascadeDelete(ctx, studySetID, cardIDs, s.cascadeLimit,
		func(ctx context.Context, cardID string) error {
			return s.deleteCard(ctx, sess.UserID, cardID)
		})
	if cascadeErr != nil {
		log.Warn("study set deleted with remaining cards",
			slog.String("study_set_id", studySetID),
			slog.Int("remaining", len(cascadeErr.Remaining)))
		return cascadeErr
	}

	log.Info("study set deleted",
		slog.String("study_set_id", studySetID),
		slog.Int("card_count", len(cardIDs)))
	return nil
}

func setCardIDs(ctx context.Context, db store.DBTX, userID, studySetID string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id FROM cards WHERE study_set_id = $1 AND user_id = $2 ORDER BY seq`,
		studySetID, userID)
	if err != nil {
		return nil, store.NewStoreError("card", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan card id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
