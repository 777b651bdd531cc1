package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"task-manager/db"
	"task-manager/models"
)

// Notifier sends account lifecycle emails.
type Notifier interface {
	SendWelcome(ctx context.Context, email, name string) error
	SendFarewell(ctx context.Context, email, name string) error
}

// AvatarMirror keeps an external copy of processed avatars.
type AvatarMirror interface {
	Upload(ctx context.Context, userID uuid.UUID, png []byte) error
	Remove(ctx context.Context, userID uuid.UUID) error
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      *int
}

// CredentialStore owns user accounts: registration, login, profile changes,
// avatars and account deletion.
type CredentialStore struct {
	users     db.UserRepository
	notifier  Notifier
	mirror    AvatarMirror
	logger    *slog.Logger
	cost      int
	dummyHash []byte
	pending   sync.WaitGroup
}

// notifyTimeout bounds a single background email delivery.
const notifyTimeout = 30 * time.Second

type CredentialOption func(*CredentialStore)

// WithNotifier enables welcome and farewell emails.
func WithNotifier(n Notifier) CredentialOption {
	return func(s *CredentialStore) { s.notifier = n }
}

// WithAvatarMirror copies avatar changes to an external store.
func WithAvatarMirror(m AvatarMirror) CredentialOption {
	return func(s *CredentialStore) { s.mirror = m }
}

func NewCredentialStore(users db.UserRepository, cost int, logger *slog.Logger, opts ...CredentialOption) (*CredentialStore, error) {
	s := &CredentialStore{
		users:  users,
		logger: logger,
		cost:   cost,
	}
	for _, opt := range opts {
		opt(s)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}
	s.dummyHash = dummy
	return s, nil
}

// notify runs send in the background, detached from the request's
// cancellation. Failures are logged.
func (s *CredentialStore) notify(ctx context.Context, kind string, userID uuid.UUID, send func(context.Context) error) {
	if s.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		if err := send(ctx); err != nil {
			s.logger.Warn(kind+" email failed", slog.String("user_id", userID.String()), slog.String("error", err.Error()))
		}
	}()
}

// Wait blocks until every background email has been attempted.
func (s *CredentialStore) Wait() {
	s.pending.Wait()
}

func (s *CredentialStore) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func duplicateEmail(err error) error {
	if errors.Is(err, models.ErrDuplicateEmail) {
		return &models.ValidationError{Field: "email", Message: "Email is already registered"}
	}
	return err
}

// Register validates the input, stores the user with a hashed password and
// queues the welcome email.
func (s *CredentialStore) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name, err := models.ValidateName(in.Name)
	if err != nil {
		return nil, err
	}
	email, err := models.ValidateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	password, err := models.ValidatePassword(in.Password)
	if err != nil {
		return nil, err
	}
	age := 0
	if in.Age != nil {
		age = *in.Age
	}
	if err := models.ValidateAge(age); err != nil {
		return nil, err
	}

	hashed, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Name: name, Email: email, Password: hashed, Age: age}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, duplicateEmail(err)
	}

	s.notify(ctx, "welcome", user.ID, func(ctx context.Context) error {
		return s.notifier.SendWelcome(ctx, user.Email, user.Name)
	})
	return user, nil
}

// Authenticate returns the user for a matching email and password. Unknown
// emails and wrong passwords produce the same error and cost the same bcrypt
// comparison.
func (s *CredentialStore) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, models.ErrUnableToLogin
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.ErrUnableToLogin
	}
	return user, nil
}

func (s *CredentialStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// UpdateProfile applies the patch to the stored user, validating every
// changed field and re-hashing a new password. Nothing is saved unless all
// fields are valid.
func (s *CredentialStore) UpdateProfile(ctx context.Context, userID uuid.UUID, patch models.UserPatch) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if user.Name, err = models.ValidateName(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Email != nil {
		if user.Email, err = models.ValidateEmail(*patch.Email); err != nil {
			return nil, err
		}
	}
	if patch.Age != nil {
		if err := models.ValidateAge(*patch.Age); err != nil {
			return nil, err
		}
		user.Age = *patch.Age
	}
	if patch.Password != nil {
		password, err := models.ValidatePassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		if user.Password, err = s.hash(password); err != nil {
			return nil, err
		}
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, duplicateEmail(err)
	}
	return user, nil
}

// DeleteAccount removes the user and every task they own, then queues the
// farewell email. The returned user is the record as it was before deletion.
func (s *CredentialStore) DeleteAccount(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.DeleteUserAndTasks(ctx, userID); err != nil {
		return nil, fmt.Errorf("delete account: %w", err)
	}

	if s.mirror != nil && user.HasAvatar() {
		if err := s.mirror.Remove(ctx, userID); err != nil {
			s.logger.Warn("avatar mirror removal failed", slog.String("user_id", userID.String()), slog.String("error", err.Error()))
		}
	}
	s.notify(ctx, "farewell", userID, func(ctx context.Context) error {
		return s.notifier.SendFarewell(ctx, user.Email, user.Name)
	})
	return user, nil
}

// SetAvatar stores an already processed PNG avatar.
func (s *CredentialStore) SetAvatar(ctx context.Context, userID uuid.UUID, png []byte) error {
	if err := s.users.SetAvatar(ctx, userID, png); err != nil {
		return err
	}
	if s.mirror != nil {
		if err := s.mirror.Upload(ctx, userID, png); err != nil {
			s.logger.Warn("avatar mirror upload failed", slog.String("user_id", userID.String()), slog.String("error", err.Error()))
		}
	}
	return nil
}

func (s *CredentialStore) ClearAvatar(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.SetAvatar(ctx, userID, nil); err != nil {
		return err
	}
	if s.mirror != nil {
		if err := s.mirror.Remove(ctx, userID); err != nil {
			s.logger.Warn("avatar mirror removal failed", slog.String("user_id", userID.String()), slog.String("error", err.Error()))
		}
	}
	return nil
}

// Avatar returns the stored avatar, or models.ErrNotFound when the user or
// the avatar is missing.
func (s *CredentialStore) Avatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasAvatar() {
		return nil, models.ErrNotFound
	}
	return user.Avatar, nil
}
