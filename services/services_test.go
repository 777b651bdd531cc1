package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"task-manager/db"
	"task-manager/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCredentialStore(t *testing.T, store db.UserRepository, opts ...CredentialOption) *CredentialStore {
	t.Helper()
	s, err := NewCredentialStore(store, bcrypt.MinCost, testLogger(), opts...)
	require.NoError(t, err)
	return s
}

func register(t *testing.T, s *CredentialStore, name, email string) *models.User {
	t.Helper()
	u, err := s.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "secret1"})
	require.NoError(t, err)
	s.Wait()
	return u
}
