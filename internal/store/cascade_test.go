package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/phrazzld/memoria/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func domainSession(userID string) domain.Session {
	return domain.Session{UserID: userID}
}

func TestCascadeDelete_AllSucceed(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	deleted := map[string]bool{}

	err := CascadeDelete(context.Background(), "set", []string{"a", "b", "c"}, 2,
		func(ctx context.Context, id string) error {
			mu.Lock()
			defer mu.Unlock()
			deleted[id] = true
			return nil
		})

	assert.Nil(t, err)
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, deleted)
}

func TestCascadeDelete_PartialFailureContinues(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	boom := errors.New("boom")

	err := CascadeDelete(context.Background(), "set-9", []string{"a", "b", "c", "d"}, 0,
		func(ctx context.Context, id string) error {
			calls.Add(1)
			if id == "b" || id == "d" {
				return boom
			}
			return nil
		})

	require.NotNil(t, err)
	assert.Equal(t, int32(4), calls.Load(), "every card must be attempted")
	assert.Equal(t, "set-9", err.StudySetID)
	assert.Equal(t, []string{"b", "d"}, err.RemainingIDs())
	assert.ErrorIs(t, err.Remaining["b"], boom)
}

func TestCascadeDelete_NotFoundCountsAsDeleted(t *testing.T) {
	t.Parallel()

	err := CascadeDelete(context.Background(), "set", []string{"gone"}, 1,
		func(ctx context.Context, id string) error {
			return ErrCardNotFound
		})

	assert.Nil(t, err)
}

func TestCascadeDelete_Empty(t *testing.T) {
	t.Parallel()

	err := CascadeDelete(context.Background(), "set", nil, 1,
		func(ctx context.Context, id string) error {
			t.Fatal("should not be called")
			return nil
		})

	assert.Nil(t, err)
}
