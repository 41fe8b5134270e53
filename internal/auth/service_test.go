package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karvyapaar/karvyapaar/internal/platform/httpx"
	_ "github.com/karvyapaar/karvyapaar/testing"
)

type mockRepository struct {
	users map[string]*User
}

func (m *mockRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return user, nil
}

func (m *mockRepository) FindByID(_ context.Context, id int64) (*User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (m *mockRepository) Create(_ context.Context, email, name, hash string) (*User, error) {
	user := &User{ID: int64(len(m.users) + 1), Email: email, Name: name, PasswordHash: hash, IsActive: true}
	m.users[email] = user
	return user, nil
}

func newFixture(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hash, err := HashPassword("pharmacy123")
	require.NoError(t, err)

	repo := &mockRepository{users: map[string]*User{
		"owner@karvyapaar.in": {
			ID: 1, Email: "owner@karvyapaar.in", Name: "Owner",
			PasswordHash: hash, IsActive: true,
		},
		"former@karvyapaar.in": {
			ID: 2, Email: "former@karvyapaar.in", Name: "Former",
			PasswordHash: hash, IsActive: false,
		},
	}}
	tokens := NewTokenStore(client, time.Hour)
	return NewService(slog.New(slog.DiscardHandler), repo, tokens), mr
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _ := newFixture(t)

	session, user, err := svc.Login(context.Background(), "owner@karvyapaar.in", "pharmacy123")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, int64(1), user.ID)

	resolved, err := svc.UserForToken(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newFixture(t)

	_, _, err := svc.Login(context.Background(), "owner@karvyapaar.in", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody@karvyapaar.in", "pharmacy123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	svc, _ := newFixture(t)

	_, _, err := svc.Login(context.Background(), "former@karvyapaar.in", "pharmacy123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newFixture(t)

	session, _, err := svc.Login(context.Background(), "owner@karvyapaar.in", "pharmacy123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), session.Token))

	_, err = svc.UserForToken(context.Background(), session.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenExpires(t *testing.T) {
	svc, mr := newFixture(t)

	session, _, err := svc.Login(context.Background(), "owner@karvyapaar.in", "pharmacy123")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = svc.UserForToken(context.Background(), session.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestUnknownTokenRejected(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.UserForToken(context.Background(), "not-a-real-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
