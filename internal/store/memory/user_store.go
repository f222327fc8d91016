package memory

import (
	"context"
	"strings"

	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// minBCryptCost keeps hashing fast for an in-process store.
const minBCryptCost = bcrypt.MinCost

// Users exposes the account half of the Store as a store.UserStore.
func (s *Store) Users() store.UserStore {
	return userStore{s}
}

type userStore struct{ s *Store }

var _ store.UserStore = userStore{}

// Create validates the user, hashes its password and stores it.
func (u userStore) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := user.Validate(); err != nil {
		return store.NewStoreError("user", "create", "validation failed", err)
	}

	if user.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), u.s.bcryptCost)
		if err != nil {
			return store.NewStoreError("user", "create", "failed to hash password", err)
		}
		user.HashedPassword = string(hash)
		user.Password = ""
	}

	email := strings.ToLower(user.Email)

	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, taken := u.s.usersByMail[email]; taken {
		return store.ErrEmailExists
	}
	u.s.users[user.ID] = *user
	u.s.usersByMail[email] = user.ID
	return nil
}

// GetByID returns a copy of the stored user.
func (u userStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	user, ok := u.s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &user, nil
}

// GetByEmail looks a user up by case-insensitive email.
func (u userStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	id, ok := u.s.usersByMail[strings.ToLower(email)]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	user := u.s.users[id]
	return &user, nil
}
