package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/berth-api/internal/logging"
	"github.com/tech-arch1tect/berth-api/internal/user"
)

type fakeUsers struct {
	byID map[uint]*user.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uint]*user.User{}}
}

func (f *fakeUsers) add(t *testing.T, id uint, email, password, role string) *user.User {
	t.Helper()
	hash, err := user.HashPassword(password)
	require.NoError(t, err)
	u := &user.User{ID: id, Email: email, Password: hash, Name: "test", Role: role}
	f.byID[id] = u
	return u
}

func (f *fakeUsers) Create(_ context.Context, u *user.User) error {
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) List(_ context.Context) ([]user.User, error) {
	var out []user.User
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id uint) (*user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (f *fakeUsers) Update(_ context.Context, id uint, fields map[string]any) error {
	u, ok := f.byID[id]
	if !ok {
		return user.ErrUserNotFound
	}
	if v, ok := fields["refresh_token"].(string); ok {
		u.RefreshToken = v
	}
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, u *user.User) error {
	delete(f.byID, u.ID)
	return nil
}

func newTestTokens() *TokenService {
	return NewTokenService("access-secret", "refresh-secret", 20*time.Minute, time.Hour)
}

func newTestService() (*Service, *fakeUsers, *TokenService) {
	users := newFakeUsers()
	tokens := newTestTokens()
	return NewService(users, tokens, logging.NewNopLogger()), users, tokens
}
