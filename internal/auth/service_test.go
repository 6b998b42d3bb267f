package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/berth-api/internal/user"
)

func TestLoginIssuesTokensAndStoresRefreshHash(t *testing.T) {
	svc, users, tokens := newTestService()
	users.add(t, 1, "dev@gmail.com", "pw123123", user.RoleUser)

	pair, err := svc.Login(context.Background(), "dev@gmail.com", "pw123123")
	require.NoError(t, err)

	claims, err := tokens.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.ID)

	stored := users.byID[1].RefreshToken
	require.NotEmpty(t, stored)
	assert.NotEqual(t, pair.RefreshToken, stored)
}

func TestLoginFailures(t *testing.T) {
	svc, users, _ := newTestService()
	users.add(t, 1, "dev@gmail.com", "pw123123", user.RoleUser)

	_, err := svc.Login(context.Background(), "nobody@gmail.com", "pw123123")
	assert.ErrorIs(t, err, ErrUnregisteredUser)

	_, err = svc.Login(context.Background(), "dev@gmail.com", "wrong-password")
	assert.ErrorIs(t, err, ErrWrongPassword)
	assert.Empty(t, users.byID[1].RefreshToken)
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	svc, users, tokens := newTestService()
	users.add(t, 1, "dev@gmail.com", "pw123123", user.RoleAdmin)

	pair, err := svc.Login(context.Background(), "dev@gmail.com", "pw123123")
	require.NoError(t, err)
	claims, err := tokens.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)

	access, err := svc.Refresh(context.Background(), claims, pair.RefreshToken)
	require.NoError(t, err)

	fresh, err := tokens.ParseAccess(access)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, fresh.Role)
}

func TestRefreshRejectsUnknownOrStaleTokens(t *testing.T) {
	svc, users, _ := newTestService()
	users.add(t, 1, "dev@gmail.com", "pw123123", user.RoleUser)

	_, err := svc.Refresh(context.Background(), &Claims{ID: 1}, "token")
	assert.ErrorIs(t, err, ErrRefreshNotFound)

	_, err = svc.Refresh(context.Background(), &Claims{ID: 99}, "token")
	assert.ErrorIs(t, err, ErrUnregisteredUser)

	_, err = svc.Login(context.Background(), "dev@gmail.com", "pw123123")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), &Claims{ID: 1}, "some-other-token")
	assert.ErrorIs(t, err, ErrRefreshMismatch)
}
