package auth

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Service wraps authentication business rules.
type Service struct {
	logger *slog.Logger
	repo   Repository
	tokens *TokenStore
}

// NewService constructs a new Service.
func NewService(logger *slog.Logger, repo Repository, tokens *TokenStore) *Service {
	return &Service{logger: logger, repo: repo, tokens: tokens}
}

// Login validates credentials and issues a bearer token. Every failure
// collapses to ErrInvalidCredentials so the response does not reveal
// whether the account exists.
func (s *Service) Login(ctx context.Context, email, password string) (Session, *User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return Session{}, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return Session{}, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, nil, ErrInvalidCredentials
	}

	session, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return Session{}, nil, err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return session, user, nil
}

// Logout revokes the bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// UserForToken resolves the account behind a bearer token.
func (s *Service) UserForToken(ctx context.Context, token string) (*User, error) {
	userID, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if !user.IsActive {
		return nil, ErrTokenInvalid
	}
	return user, nil
}

// HashPassword produces a bcrypt hash for account provisioning.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
