package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager/db"
	"task-manager/models"
)

func TestTokenIssueAndValidate(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemory()
	users := newCredentialStore(t, store)
	tokens := NewTokenService(store, "s3cret", 0)

	u := register(t, users, "Ann", "ann@example.com")
	tok, err := tokens.Issue(ctx, u.ID)
	require.NoError(t, err)

	got, err := tokens.Validate(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got)

	stored, err := store.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{tok}, stored.Tokens)
}

func TestTokensIssuedTogetherAreDistinct(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemory()
	users := newCredentialStore(t, store)
	tokens := NewTokenService(store, "s3cret", 0)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return fixed }

	u := register(t, users, "Ann", "ann@example.com")
	a, err := tokens.Issue(ctx, u.ID)
	require.NoError(t, err)
	b, err := tokens.Issue(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTokenValidateRejects(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemory()
	users := newCredentialStore(t, store)
	tokens := NewTokenService(store, "s3cret", 0)
	u := register(t, users, "Ann", "ann@example.com")

	valid, err := tokens.Issue(ctx, u.ID)
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Validate(ctx, "not-a-token")
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("other secret", func(t *testing.T) {
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: u.ID.String()}).
			SignedString([]byte("other"))
		require.NoError(t, err)
		require.NoError(t, store.AddToken(ctx, u.ID, forged))

		_, err = tokens.Validate(ctx, forged)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("unsigned", func(t *testing.T) {
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: u.ID.String()}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		require.NoError(t, store.AddToken(ctx, u.ID, none))

		_, err = tokens.Validate(ctx, none)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("signed but never stored", func(t *testing.T) {
		loose, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject: u.ID.String(),
			ID:      uuid.NewString(),
		}).SignedString([]byte("s3cret"))
		require.NoError(t, err)

		_, err = tokens.Validate(ctx, loose)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("revoked", func(t *testing.T) {
		require.NoError(t, tokens.Revoke(ctx, u.ID, valid))
		_, err := tokens.Validate(ctx, valid)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("owner deleted", func(t *testing.T) {
		v := register(t, users, "Vic", "vic@example.com")
		tok, err := tokens.Issue(ctx, v.ID)
		require.NoError(t, err)
		_, err = users.DeleteAccount(ctx, v.ID)
		require.NoError(t, err)

		_, err = tokens.Validate(ctx, tok)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})
}

func TestTokenTTL(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemory()
	users := newCredentialStore(t, store)
	tokens := NewTokenService(store, "s3cret", time.Hour)
	u := register(t, users, "Ann", "ann@example.com")

	now := time.Now()
	tokens.now = func() time.Time { return now }
	tok, err := tokens.Issue(ctx, u.ID)
	require.NoError(t, err)

	_, err = tokens.Validate(ctx, tok)
	require.NoError(t, err)

	tokens.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = tokens.Validate(ctx, tok)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestRevokeLeavesOtherTokens(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemory()
	users := newCredentialStore(t, store)
	tokens := NewTokenService(store, "s3cret", 0)
	u := register(t, users, "Ann", "ann@example.com")

	first, err := tokens.Issue(ctx, u.ID)
	require.NoError(t, err)
	second, err := tokens.Issue(ctx, u.ID)
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(ctx, u.ID, first))
	require.NoError(t, tokens.Revoke(ctx, u.ID, first))

	_, err = tokens.Validate(ctx, first)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
	_, err = tokens.Validate(ctx, second)
	assert.NoError(t, err)
}

func TestRevokeAllIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemory()
	users := newCredentialStore(t, store)
	tokens := NewTokenService(store, "s3cret", 0)
	u := register(t, users, "Ann", "ann@example.com")

	for i := 0; i < 3; i++ {
		_, err := tokens.Issue(ctx, u.ID)
		require.NoError(t, err)
	}

	for i := 0; i < 2; i++ {
		require.NoError(t, tokens.RevokeAll(ctx, u.ID))
		stored, err := store.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.Tokens)
	}
}
