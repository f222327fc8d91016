package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/store"
	"github.com/phrazzld/memoria/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodPassword = "correct-horse-battery"

func newTestAccountService(t *testing.T) (*AccountService, store.UserStore) {
	t.Helper()
	users := memory.New().Users()
	tokens := newTestJWTService(t, time.Now)
	return NewAccountService(users, tokens, NewBcryptVerifier(), nil), users
}

func TestAccountService_RegisterAndLogin(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAccountService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "  Ada@Example.com ", goodPassword)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Empty(t, user.Password)
	assert.NotEmpty(t, user.HashedPassword)

	tok, err := svc.Login(ctx, "ADA@example.com", goodPassword)
	require.NoError(t, err)
	assert.Equal(t, user.ID, tok.UserID)
	assert.NotEmpty(t, tok.Token)
	assert.True(t, tok.ExpiresAt.After(time.Now()))

	sess, err := svc.Authenticate(ctx, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.Session{UserID: user.ID, Token: tok.Token}, sess)
}

func TestAccountService_Register_Errors(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAccountService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-an-email", goodPassword)
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Register(ctx, "bob@example.com", "short")
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)

	_, err = svc.Register(ctx, "bob@example.com", goodPassword)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "BOB@example.com", goodPassword)
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestAccountService_Login_InvalidCredentials(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAccountService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "carol@example.com", goodPassword)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "carol@example.com", "wrong-password-entirely")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", goodPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

type failingUsers struct{ store.UserStore }

func (failingUsers) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, errors.New("connection reset")
}

func (failingUsers) GetByID(context.Context, string) (*domain.User, error) {
	return nil, errors.New("connection reset")
}

func TestAccountService_StoreFailure(t *testing.T) {
	t.Parallel()

	tokens := newTestJWTService(t, time.Now)
	svc := NewAccountService(failingUsers{}, tokens, NewBcryptVerifier(), nil)

	_, err := svc.Login(context.Background(), "dan@example.com", goodPassword)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)

	token, _, err := tokens.GenerateToken(context.Background(), "user-1")
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestAccountService_Authenticate_UnknownUser(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAccountService(t)
	token, _, err := svc.tokens.GenerateToken(context.Background(), "deleted-user")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewAccountService_PanicsOnNil(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewAccountService(nil, nil, nil, nil) })
}
