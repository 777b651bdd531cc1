package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager/db"
	"task-manager/models"
)

func TestTaskStoreOwnership(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore(db.NewMemory())
	alice, bob := uuid.New(), uuid.New()

	task, err := s.Create(ctx, alice, "  buy milk ", false)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", task.Description)
	assert.Equal(t, alice, task.Owner)
	assert.False(t, task.Completed)

	_, err = s.Get(ctx, bob, task.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, errMissing := s.Get(ctx, bob, uuid.New())
	assert.ErrorIs(t, errMissing, models.ErrNotFound)
	assert.Equal(t, err.Error(), errMissing.Error())

	done := true
	_, err = s.Update(ctx, bob, task.ID, models.TaskPatch{Completed: &done})
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = s.Delete(ctx, bob, task.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	got, err := s.Get(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
}

func TestTaskStoreRejectsBlankDescription(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore(db.NewMemory())
	owner := uuid.New()

	_, err := s.Create(ctx, owner, "   ", false)
	assert.True(t, models.IsValidation(err))

	task, err := s.Create(ctx, owner, "write report", false)
	require.NoError(t, err)

	blank := " \t "
	_, err = s.Update(ctx, owner, task.ID, models.TaskPatch{Description: &blank})
	assert.True(t, models.IsValidation(err))

	got, err := s.Get(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "write report", got.Description)
}

func TestTaskStoreUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore(db.NewMemory())
	owner := uuid.New()

	task, err := s.Create(ctx, owner, "write report", false)
	require.NoError(t, err)

	done := true
	updated, err := s.Update(ctx, owner, task.ID, models.TaskPatch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "write report", updated.Description)

	deleted, err := s.Delete(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, deleted.ID)

	_, err = s.Delete(ctx, owner, task.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTaskStoreListNeverNil(t *testing.T) {
	s := NewTaskStore(db.NewMemory())
	tasks, err := s.List(context.Background(), uuid.New(), models.TaskQuery{})
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}
