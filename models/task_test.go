package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTaskValidate(t *testing.T) {
	task := Task{Description: "  buy milk ", Owner: uuid.New()}
	assert.NoError(t, task.Validate())
	assert.Equal(t, "buy milk", task.Description)

	blank := Task{Description: " \t\n", Owner: uuid.New()}
	assert.True(t, IsValidation(blank.Validate()))

	orphan := Task{Description: "x"}
	assert.True(t, IsValidation(orphan.Validate()))
}

func TestTaskQueryNormalize(t *testing.T) {
	q := TaskQuery{Limit: -3, Skip: -1, SortBy: "owner", Desc: true}.Normalize()
	assert.Equal(t, 0, q.Limit)
	assert.Equal(t, 0, q.Skip)
	assert.Equal(t, SortCreatedAt, q.SortBy)
	assert.False(t, q.Desc)

	q = TaskQuery{SortBy: SortDescription, Desc: true, Limit: 5}.Normalize()
	assert.Equal(t, SortDescription, q.SortBy)
	assert.True(t, q.Desc)
	assert.Equal(t, 5, q.Limit)
}
