package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager/models"
)

// runStoreContract exercises behaviour every backend must share. Each case
// creates its own users so it can run against a shared database.
func runStoreContract(t *testing.T, s Store) {
	ctx := context.Background()

	newUser := func(t *testing.T) *models.User {
		t.Helper()
		u := &models.User{
			Name:     "Ann",
			Email:    uuid.NewString() + "@example.com",
			Password: "hash",
		}
		require.NoError(t, s.CreateUser(ctx, u))
		require.NotEqual(t, uuid.Nil, u.ID)
		return u
	}
	newTask := func(t *testing.T, owner uuid.UUID, desc string, done bool) *models.Task {
		t.Helper()
		task := &models.Task{Owner: owner, Description: desc, Completed: done}
		require.NoError(t, s.CreateTask(ctx, task))
		return task
	}

	t.Run("user lookup", func(t *testing.T) {
		u := newUser(t)

		byID, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, byID.Email)
		assert.Equal(t, "hash", byID.Password)
		assert.Empty(t, byID.Tokens)

		byEmail, err := s.GetUserByEmail(ctx, u.Email)
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)

		_, err = s.GetUserByID(ctx, uuid.New())
		assert.ErrorIs(t, err, models.ErrNotFound)
		_, err = s.GetUserByEmail(ctx, "nobody-"+uuid.NewString()+"@example.com")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("email is unique", func(t *testing.T) {
		a := newUser(t)
		dup := &models.User{Name: "Bob", Email: a.Email, Password: "hash"}
		assert.ErrorIs(t, s.CreateUser(ctx, dup), models.ErrDuplicateEmail)

		b := newUser(t)
		b.Email = a.Email
		assert.ErrorIs(t, s.UpdateUser(ctx, b), models.ErrDuplicateEmail)
	})

	t.Run("update user", func(t *testing.T) {
		u := newUser(t)
		u.Name = "Annie"
		u.Age = 30
		require.NoError(t, s.UpdateUser(ctx, u))

		got, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Annie", got.Name)
		assert.Equal(t, 30, got.Age)
	})

	t.Run("avatar", func(t *testing.T) {
		u := newUser(t)
		require.NoError(t, s.SetAvatar(ctx, u.ID, []byte{1, 2, 3}))
		got, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, got.Avatar)

		require.NoError(t, s.SetAvatar(ctx, u.ID, nil))
		got, err = s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.False(t, got.HasAvatar())

		assert.ErrorIs(t, s.SetAvatar(ctx, uuid.New(), []byte{1}), models.ErrNotFound)
	})

	t.Run("tokens", func(t *testing.T) {
		u := newUser(t)
		require.NoError(t, s.AddToken(ctx, u.ID, "t1"))
		require.NoError(t, s.AddToken(ctx, u.ID, "t2"))

		ok, err := s.HasToken(ctx, u.ID, "t1")
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, s.RemoveToken(ctx, u.ID, "t1"))
		require.NoError(t, s.RemoveToken(ctx, u.ID, "t1"))
		ok, err = s.HasToken(ctx, u.ID, "t1")
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = s.HasToken(ctx, u.ID, "t2")
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, s.RemoveAllTokens(ctx, u.ID))
		require.NoError(t, s.RemoveAllTokens(ctx, u.ID))
		got, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Tokens)

		ok, err = s.HasToken(ctx, uuid.New(), "t2")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("tasks are scoped to their owner", func(t *testing.T) {
		a, b := newUser(t), newUser(t)
		task := newTask(t, a.ID, "buy milk", false)

		got, err := s.GetTask(ctx, a.ID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "buy milk", got.Description)
		assert.Equal(t, a.ID, got.Owner)

		_, err = s.GetTask(ctx, b.ID, task.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)

		stolen := *task
		stolen.Owner = b.ID
		stolen.Completed = true
		assert.ErrorIs(t, s.UpdateTask(ctx, &stolen), models.ErrNotFound)

		_, err = s.DeleteTask(ctx, b.ID, task.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)

		list, err := s.ListTasksByOwner(ctx, b.ID, models.TaskQuery{})
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)

		task.Completed = true
		require.NoError(t, s.UpdateTask(ctx, task))
		deleted, err := s.DeleteTask(ctx, a.ID, task.ID)
		require.NoError(t, err)
		assert.True(t, deleted.Completed)

		_, err = s.GetTask(ctx, a.ID, task.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("list filters, sorts and windows", func(t *testing.T) {
		u := newUser(t)
		newTask(t, u.ID, "b", true)
		newTask(t, u.ID, "a", false)
		newTask(t, u.ID, "c", false)

		descriptions := func(q models.TaskQuery) []string {
			t.Helper()
			tasks, err := s.ListTasksByOwner(ctx, u.ID, q)
			require.NoError(t, err)
			out := make([]string, 0, len(tasks))
			for _, task := range tasks {
				out = append(out, task.Description)
			}
			return out
		}

		assert.Len(t, descriptions(models.TaskQuery{}), 3)
		assert.Equal(t, []string{"a", "b", "c"}, descriptions(models.TaskQuery{SortBy: models.SortDescription}))
		assert.Equal(t, []string{"c", "b", "a"}, descriptions(models.TaskQuery{SortBy: models.SortDescription, Desc: true}))
		assert.Equal(t, []string{"b", "c"}, descriptions(models.TaskQuery{SortBy: models.SortDescription, Limit: 2, Skip: 1}))
		assert.Empty(t, descriptions(models.TaskQuery{Skip: 10}))

		done := true
		assert.Equal(t, []string{"b"}, descriptions(models.TaskQuery{Completed: &done}))
		notDone := false
		assert.Equal(t, []string{"a", "c"}, descriptions(models.TaskQuery{Completed: &notDone, SortBy: models.SortDescription}))
	})

	t.Run("deleting a user removes their tasks only", func(t *testing.T) {
		a, b := newUser(t), newUser(t)
		newTask(t, a.ID, "one", false)
		newTask(t, a.ID, "two", false)
		kept := newTask(t, b.ID, "other", false)

		require.NoError(t, s.DeleteUserAndTasks(ctx, a.ID))

		_, err := s.GetUserByID(ctx, a.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		list, err := s.ListTasksByOwner(ctx, a.ID, models.TaskQuery{})
		require.NoError(t, err)
		assert.Empty(t, list)

		_, err = s.GetTask(ctx, b.ID, kept.ID)
		assert.NoError(t, err)

		assert.ErrorIs(t, s.DeleteUserAndTasks(ctx, a.ID), models.ErrNotFound)
	})
}
