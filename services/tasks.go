package services

import (
	"context"

	"github.com/google/uuid"

	"task-manager/db"
	"task-manager/models"
)

// TaskStore scopes every task operation to the requesting user. A task id
// on its own never reaches the repository.
type TaskStore struct {
	tasks db.TaskRepository
}

func NewTaskStore(tasks db.TaskRepository) *TaskStore {
	return &TaskStore{tasks: tasks}
}

// List returns the user's tasks; no match yields an empty slice.
func (s *TaskStore) List(ctx context.Context, userID uuid.UUID, q models.TaskQuery) ([]models.Task, error) {
	tasks, err := s.tasks.ListTasksByOwner(ctx, userID, q.Normalize())
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (s *TaskStore) Get(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error) {
	return s.tasks.GetTask(ctx, userID, taskID)
}

// Create stores a task owned by userID.
func (s *TaskStore) Create(ctx context.Context, userID uuid.UUID, description string, completed bool) (*models.Task, error) {
	task := &models.Task{
		Description: description,
		Completed:   completed,
		Owner:       userID,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update applies the patch to a task the user owns.
func (s *TaskStore) Update(ctx context.Context, userID, taskID uuid.UUID, patch models.TaskPatch) (*models.Task, error) {
	task, err := s.tasks.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := s.tasks.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskStore) Delete(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error) {
	return s.tasks.DeleteTask(ctx, userID, taskID)
}
