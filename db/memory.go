package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"task-manager/models"
)

// Memory keeps everything in process. It backs tests and local runs with
// STORE_DRIVER=memory.
type Memory struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*models.User
	tasks map[uuid.UUID]*models.Task
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		users: make(map[uuid.UUID]*models.User),
		tasks: make(map[uuid.UUID]*models.Task),
		now:   time.Now,
	}
}

func (m *Memory) Ping(context.Context) error  { return nil }
func (m *Memory) Close(context.Context) error { return nil }

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Tokens = append([]string(nil), u.Tokens...)
	if u.Avatar != nil {
		c.Avatar = append([]byte(nil), u.Avatar...)
	}
	return &c
}

func (m *Memory) emailTaken(email string, except uuid.UUID) bool {
	for id, u := range m.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.emailTaken(user.Email, uuid.Nil) {
		return models.ErrDuplicateEmail
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := m.now()
	user.CreatedAt, user.UpdatedAt = now, now
	m.users[user.ID] = cloneUser(user)
	return nil
}

func (m *Memory) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneUser(u), nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *Memory) UpdateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.users[user.ID]
	if !ok {
		return models.ErrNotFound
	}
	if m.emailTaken(user.Email, user.ID) {
		return models.ErrDuplicateEmail
	}
	stored.Name = user.Name
	stored.Email = user.Email
	stored.Password = user.Password
	stored.Age = user.Age
	stored.UpdatedAt = m.now()
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *Memory) SetAvatar(_ context.Context, id uuid.UUID, avatar []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return models.ErrNotFound
	}
	if avatar == nil {
		u.Avatar = nil
	} else {
		u.Avatar = append([]byte(nil), avatar...)
	}
	u.UpdatedAt = m.now()
	return nil
}

func (m *Memory) DeleteUserAndTasks(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return models.ErrNotFound
	}
	for tid, t := range m.tasks {
		if t.Owner == id {
			delete(m.tasks, tid)
		}
	}
	delete(m.users, id)
	return nil
}

func (m *Memory) AddToken(_ context.Context, id uuid.UUID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.Tokens = append(u.Tokens, token)
	return nil
}

func (m *Memory) RemoveToken(_ context.Context, id uuid.UUID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil
	}
	kept := u.Tokens[:0]
	for _, t := range u.Tokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	u.Tokens = kept
	return nil
}

func (m *Memory) RemoveAllTokens(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil
	}
	u.Tokens = nil
	return nil
}

func (m *Memory) HasToken(_ context.Context, id uuid.UUID, token string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return false, nil
	}
	return u.HasToken(token), nil
}

func (m *Memory) CreateTask(_ context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := m.now()
	task.CreatedAt, task.UpdatedAt = now, now
	c := *task
	m.tasks[task.ID] = &c
	return nil
}

func (m *Memory) ListTasksByOwner(_ context.Context, owner uuid.UUID, q models.TaskQuery) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q = q.Normalize()
	tasks := []models.Task{}
	for _, t := range m.tasks {
		if t.Owner != owner {
			continue
		}
		if q.Completed != nil && t.Completed != *q.Completed {
			continue
		}
		tasks = append(tasks, *t)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		c := compareTasks(&tasks[i], &tasks[j], q.SortBy)
		if c == 0 {
			c = strings.Compare(tasks[i].ID.String(), tasks[j].ID.String())
		}
		if q.Desc {
			return c > 0
		}
		return c < 0
	})

	if q.Skip > 0 {
		if q.Skip >= len(tasks) {
			return []models.Task{}, nil
		}
		tasks = tasks[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < len(tasks) {
		tasks = tasks[:q.Limit]
	}
	return tasks, nil
}

func compareTasks(a, b *models.Task, field string) int {
	switch field {
	case models.SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case models.SortDescription:
		return strings.Compare(a.Description, b.Description)
	case models.SortCompleted:
		switch {
		case a.Completed == b.Completed:
			return 0
		case !a.Completed:
			return -1
		default:
			return 1
		}
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func (m *Memory) GetTask(_ context.Context, owner, id uuid.UUID) (*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tasks[id]
	if !ok || t.Owner != owner {
		return nil, models.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (m *Memory) UpdateTask(_ context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[task.ID]
	if !ok || t.Owner != task.Owner {
		return models.ErrNotFound
	}
	t.Description = task.Description
	t.Completed = task.Completed
	t.UpdatedAt = m.now()
	task.UpdatedAt = t.UpdatedAt
	return nil
}

func (m *Memory) DeleteTask(_ context.Context, owner, id uuid.UUID) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok || t.Owner != owner {
		return nil, models.ErrNotFound
	}
	delete(m.tasks, id)
	return t, nil
}
