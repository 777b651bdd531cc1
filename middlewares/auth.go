package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"task-manager/models"
	"task-manager/utils"
)

type contextKey string

const (
	userKey  contextKey = "user"
	tokenKey contextKey = "token"
)

// TokenValidator resolves a bearer token to its owner.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (uuid.UUID, error)
}

// UserLoader fetches the full user record.
type UserLoader interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// Authenticator guards routes that need a signed-in user.
type Authenticator struct {
	Tokens TokenValidator
	Users  UserLoader
	Logger *slog.Logger
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func reject(w http.ResponseWriter) {
	utils.WriteError(w, http.StatusUnauthorized, models.ErrUnauthenticated.Error())
}

// RequireAuth attaches the user and the presented token to the request
// context, or answers 401 without calling next.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			reject(w)
			return
		}

		userID, err := a.Tokens.Validate(r.Context(), token)
		if err != nil {
			if !errors.Is(err, models.ErrUnauthenticated) {
				a.Logger.Error("token validation failed", slog.String("error", err.Error()))
			}
			reject(w)
			return
		}

		user, err := a.Users.Get(r.Context(), userID)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				a.Logger.Error("load user failed", slog.String("user_id", userID.String()), slog.String("error", err.Error()))
			}
			reject(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), user, token)))
	})
}

// WithIdentity returns ctx carrying user and token the way RequireAuth
// stores them.
func WithIdentity(ctx context.Context, user *models.User, token string) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, tokenKey, token)
}

// CurrentUser returns the authenticated user, or nil outside RequireAuth.
func CurrentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userKey).(*models.User)
	return user
}

// CurrentToken returns the token the request authenticated with.
func CurrentToken(r *http.Request) string {
	token, _ := r.Context().Value(tokenKey).(string)
	return token
}
