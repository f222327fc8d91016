package store

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultCascadeConcurrency bounds the card deletions a cascade runs at once.
const DefaultCascadeConcurrency = 8

// CascadeDelete deletes every card in cardIDs with deleteCard, at most limit at
// a time. A failed deletion never stops the others. It returns nil when every
// card was deleted and a *CascadeError naming the survivors otherwise.
func CascadeDelete(
	ctx context.Context,
	studySetID string,
	cardIDs []string,
	limit int,
	deleteCard func(ctx context.Context, cardID string) error,
) *CascadeError {
	if limit <= 0 {
		limit = DefaultCascadeConcurrency
	}

	var (
		mu        sync.Mutex
		remaining map[string]error
	)

	var g errgroup.Group
	g.SetLimit(limit)
	for _, id := range cardIDs {
		id := id
		g.Go(func() error {
			err := deleteCard(ctx, id)
			if err == nil || IsNotFoundError(err) {
				return nil
			}
			mu.Lock()
			if remaining == nil {
				remaining = make(map[string]error)
			}
			remaining[id] = err
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(remaining) == 0 {
		return nil
	}
	return &CascadeError{StudySetID: studySetID, Remaining: remaining}
}
