package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/platform/logger"
	"github.com/phrazzld/memoria/internal/store"
)

// Token is the result of a successful login.
type Token struct {
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountService registers users, logs them in and turns bearer tokens back
// into sessions.
type AccountService struct {
	users    store.UserStore
	tokens   JWTService
	verifier PasswordVerifier
	logger   *slog.Logger
}

// NewAccountService creates an AccountService. It panics on nil dependencies.
func NewAccountService(
	users store.UserStore,
	tokens JWTService,
	verifier PasswordVerifier,
	logger *slog.Logger,
) *AccountService {
	if users == nil || tokens == nil || verifier == nil {
		panic("auth: NewAccountService requires a user store, token service and verifier")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		users:    users,
		tokens:   tokens,
		verifier: verifier,
		logger:   logger.With(slog.String("component", "account_service")),
	}
}

// Register creates an account. The email is trimmed and lower-cased.
// Returns a domain validation error for a bad email or password and
// store.ErrEmailExists when the email is taken.
func (s *AccountService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(normalizeEmail(email), password)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration rejected: email taken")
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID))
	return user, nil
}

// Login checks the credentials and issues a token.
func (s *AccountService) Login(ctx context.Context, email, password string) (Token, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			_ = s.verifier.Compare(dummyHash(), password)
			log.Debug("login rejected: unknown email")
			return Token{}, ErrInvalidCredentials
		}
		return Token{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login rejected: wrong password", slog.String("user_id", user.ID))
		return Token{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return Token{}, err
	}

	log.Info("user logged in", slog.String("user_id", user.ID))
	return Token{UserID: user.ID, Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate validates a bearer token and returns the session it grants.
// The user must still exist.
func (s *AccountService) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	claims, err := s.tokens.ValidateToken(ctx, token)
	if err != nil {
		return domain.Session{}, err
	}

	if _, err := s.users.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return domain.Session{}, ErrInvalidToken
		}
		return domain.Session{}, fmt.Errorf("failed to look up user: %w", err)
	}

	return domain.Session{UserID: claims.UserID, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
