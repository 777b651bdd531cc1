package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"task-manager/db"
	"task-manager/models"
)

// TokenService issues bearer tokens and checks them against the owner's
// stored token list. Removing a token from that list is what logs it out.
type TokenService struct {
	users  db.UserRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService signs with HS256. A zero ttl issues tokens without expiry.
func NewTokenService(users db.UserRepository, secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a new token for userID and appends it to the user's list.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:  userID.String(),
		ID:       uuid.NewString(),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	if err := s.users.AddToken(ctx, userID, token); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// Validate returns the token's owner. Any failure, including a signature
// that verifies for a token no longer in the owner's list, is reported as
// models.ErrUnauthenticated; store errors are returned as is.
func (s *TokenService) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return uuid.Nil, models.ErrUnauthenticated
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, models.ErrUnauthenticated
	}

	ok, err := s.users.HasToken(ctx, userID, token)
	if err != nil {
		return uuid.Nil, fmt.Errorf("check token: %w", err)
	}
	if !ok {
		return uuid.Nil, models.ErrUnauthenticated
	}
	return userID, nil
}

// Revoke removes exactly one token. Revoking an absent token is not an error.
func (s *TokenService) Revoke(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.users.RemoveToken(ctx, userID, token); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// RevokeAll empties the user's token list.
func (s *TokenService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.RemoveAllTokens(ctx, userID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}
	return nil
}
