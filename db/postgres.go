package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"task-manager/models"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// Postgres stores users, tokens and tasks in PostgreSQL through a pgx pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres connects, verifies the connection and applies the schema.
func NewPostgres(ctx context.Context, dbURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to DB: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Postgres{Pool: pool}, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}

func (p *Postgres) Close(context.Context) error {
	p.Pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (p *Postgres) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	err := p.Pool.QueryRow(ctx,
		`INSERT INTO users (id, name, email, password, age)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		user.ID, user.Name, user.Email, user.Password, user.Age,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return models.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

const userColumns = `id, name, email, password, age, avatar, created_at, updated_at`

func (p *Postgres) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User
	err := p.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Age, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}

	rows, err := p.Pool.Query(ctx, `SELECT token FROM user_tokens WHERE user_id=$1 ORDER BY id`, u.ID)
	if err != nil {
		return nil, fmt.Errorf("select tokens: %w", err)
	}
	u.Tokens, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan tokens: %w", err)
	}
	return &u, nil
}

func (p *Postgres) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return p.getUser(ctx, "id=$1", id)
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return p.getUser(ctx, "email=$1", email)
}

func (p *Postgres) UpdateUser(ctx context.Context, user *models.User) error {
	err := p.Pool.QueryRow(ctx,
		`UPDATE users SET name=$1, email=$2, password=$3, age=$4, updated_at=now()
		 WHERE id=$5 RETURNING updated_at`,
		user.Name, user.Email, user.Password, user.Age, user.ID,
	).Scan(&user.UpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return models.ErrNotFound
	case isUniqueViolation(err):
		return models.ErrDuplicateEmail
	case err != nil:
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (p *Postgres) SetAvatar(ctx context.Context, id uuid.UUID, avatar []byte) error {
	tag, err := p.Pool.Exec(ctx, `UPDATE users SET avatar=$1, updated_at=now() WHERE id=$2`, avatar, id)
	if err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteUserAndTasks removes the user's tasks and the user in one transaction.
func (p *Postgres) DeleteUserAndTasks(ctx context.Context, id uuid.UUID) error {
	return pgx.BeginFunc(ctx, p.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE owner=$1`, id); err != nil {
			return fmt.Errorf("delete user tasks: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}

func (p *Postgres) AddToken(ctx context.Context, id uuid.UUID, token string) error {
	_, err := p.Pool.Exec(ctx, `INSERT INTO user_tokens (user_id, token) VALUES ($1, $2)`, id, token)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (p *Postgres) RemoveToken(ctx context.Context, id uuid.UUID, token string) error {
	if _, err := p.Pool.Exec(ctx, `DELETE FROM user_tokens WHERE user_id=$1 AND token=$2`, id, token); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func (p *Postgres) RemoveAllTokens(ctx context.Context, id uuid.UUID) error {
	if _, err := p.Pool.Exec(ctx, `DELETE FROM user_tokens WHERE user_id=$1`, id); err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	return nil
}

func (p *Postgres) HasToken(ctx context.Context, id uuid.UUID, token string) (bool, error) {
	var found bool
	err := p.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_tokens WHERE user_id=$1 AND token=$2)`, id, token,
	).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("check token: %w", err)
	}
	return found, nil
}

const taskColumns = `id, owner, description, completed, created_at, updated_at`

func scanTask(row pgx.Row) (models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.Owner, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (p *Postgres) CreateTask(ctx context.Context, task *models.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	err := p.Pool.QueryRow(ctx,
		`INSERT INTO tasks (id, owner, description, completed)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		task.ID, task.Owner, task.Description, task.Completed,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

var taskSortColumns = map[string]string{
	models.SortCreatedAt:   "created_at",
	models.SortUpdatedAt:   "updated_at",
	models.SortDescription: "description",
	models.SortCompleted:   "completed",
}

func (p *Postgres) ListTasksByOwner(ctx context.Context, owner uuid.UUID, q models.TaskQuery) ([]models.Task, error) {
	q = q.Normalize()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner=$1`
	args := []any{owner}
	if q.Completed != nil {
		args = append(args, *q.Completed)
		query += fmt.Sprintf(" AND completed=$%d", len(args))
	}

	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s, id %s", taskSortColumns[q.SortBy], dir, dir)

	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if q.Skip > 0 {
		args = append(args, q.Skip)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := p.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Task, error) {
		return scanTask(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan tasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (p *Postgres) GetTask(ctx context.Context, owner, id uuid.UUID) (*models.Task, error) {
	t, err := scanTask(p.Pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id=$1 AND owner=$2`, id, owner))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select task: %w", err)
	}
	return &t, nil
}

func (p *Postgres) UpdateTask(ctx context.Context, task *models.Task) error {
	err := p.Pool.QueryRow(ctx,
		`UPDATE tasks SET description=$1, completed=$2, updated_at=now()
		 WHERE id=$3 AND owner=$4 RETURNING updated_at`,
		task.Description, task.Completed, task.ID, task.Owner,
	).Scan(&task.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (p *Postgres) DeleteTask(ctx context.Context, owner, id uuid.UUID) (*models.Task, error) {
	t, err := scanTask(p.Pool.QueryRow(ctx,
		`DELETE FROM tasks WHERE id=$1 AND owner=$2 RETURNING `+taskColumns, id, owner))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}
	return &t, nil
}
