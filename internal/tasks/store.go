// Package tasks implements the workshop's task API as an API Gateway
// proxy-integration Lambda handler.
package tasks

import (
	"context"
	"errors"

	"github.com/workshopstudio/taskapi/internal/types"
)

// Common errors
var (
	// ErrNotFound is returned when a task does not exist or belongs to another user
	ErrNotFound = errors.New("task not found")
	// ErrAlreadyExists is returned when creating a task whose id is taken
	ErrAlreadyExists = errors.New("task already exists")
)

// Store persists tasks. Implementations scope every lookup to the owning user.
type Store interface {
	Create(ctx context.Context, task *types.Task) error
	Get(ctx context.Context, userID, taskID string) (*types.Task, error)
	ListByUser(ctx context.Context, userID string) ([]types.Task, error)
	Update(ctx context.Context, task *types.Task) error
	Delete(ctx context.Context, userID, taskID string) error
}
