package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"task-manager/config"
	"task-manager/models"
)

// UserRepository persists accounts and their token lists. Lookups return
// models.ErrNotFound when no row matches; writes that collide on email
// return models.ErrDuplicateEmail.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateUser saves name, email, password and age.
	UpdateUser(ctx context.Context, user *models.User) error
	// SetAvatar stores the image; nil clears it.
	SetAvatar(ctx context.Context, id uuid.UUID, avatar []byte) error
	// DeleteUserAndTasks removes the user together with every task they own.
	DeleteUserAndTasks(ctx context.Context, id uuid.UUID) error

	AddToken(ctx context.Context, id uuid.UUID, token string) error
	RemoveToken(ctx context.Context, id uuid.UUID, token string) error
	RemoveAllTokens(ctx context.Context, id uuid.UUID) error
	HasToken(ctx context.Context, id uuid.UUID, token string) (bool, error)
}

// TaskRepository persists tasks. Every lookup is keyed by owner and id
// together; a task owned by someone else is reported as models.ErrNotFound.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	ListTasksByOwner(ctx context.Context, owner uuid.UUID, q models.TaskQuery) ([]models.Task, error)
	GetTask(ctx context.Context, owner, id uuid.UUID) (*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, owner, id uuid.UUID) (*models.Task, error)
}

// Store is a complete persistence backend.
type Store interface {
	UserRepository
	TaskRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Connect opens the backend selected by cfg.StoreDriver.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		s, err := NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to PostgreSQL")
		return s, nil
	case config.DriverMongo:
		s, err := NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to MongoDB", slog.String("database", cfg.MongoDatabase))
		return s, nil
	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
