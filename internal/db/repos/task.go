package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/workshopstudio/taskapi/internal/db"
	"github.com/workshopstudio/taskapi/internal/db/models"
	"github.com/workshopstudio/taskapi/internal/tasks"
	"github.com/workshopstudio/taskapi/internal/types"
)

// TaskRepository handles database operations for tasks. It implements
// tasks.Store for local and test deployments.
type TaskRepository struct {
	db *gorm.DB
}

var _ tasks.Store = (*TaskRepository)(nil)

// NewTaskRepository creates a new instance of TaskRepository
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

// Create creates a new task in the database
func (r *TaskRepository) Create(ctx context.Context, task *types.Task) error {
	row := models.FromTask(*task)
	err := r.db.WithContext(ctx).Create(&row).Error
	if db.IsDuplicateKeyError(err) {
		return tasks.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// CreateBatch creates a batch of tasks in the database
func (r *TaskRepository) CreateBatch(ctx context.Context, batch []types.Task) error {
	rows := make([]models.Task, 0, len(batch))
	for _, t := range batch {
		rows = append(rows, models.FromTask(t))
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, 100).Error
	})
}

// Get retrieves a task owned by userID
func (r *TaskRepository) Get(ctx context.Context, userID, taskID string) (*types.Task, error) {
	row, err := r.find(ctx, r.db, userID, taskID)
	if err != nil {
		return nil, err
	}
	task := row.ToTask()
	return &task, nil
}

// ListByUser retrieves the user's tasks ordered by creation time
func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]types.Task, error) {
	return r.List(ctx, userID, nil)
}

// List retrieves the user's tasks with pagination
func (r *TaskRepository) List(ctx context.Context, userID string, opts *models.ListOptions) ([]types.Task, error) {
	var rows []models.Task
	query := r.db.WithContext(ctx).
		Where(models.TaskUserIDField+" = ?", userID).
		Order("created_at ASC").Order("id ASC")
	if opts != nil {
		limit := opts.Limit
		if limit <= 0 {
			limit = models.DefaultLimit
		}
		query = query.Limit(limit).Offset(opts.Offset)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	out := make([]types.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToTask())
	}
	return out, nil
}

// UpdateStatus updates the status of a task in the database
func (r *TaskRepository) UpdateStatus(ctx context.Context, userID, taskID string, status types.TaskStatus) error {
	if _, err := types.ParseTaskStatus(string(status)); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&models.Task{}).
		Where(models.TaskIDField+" = ? AND "+models.TaskUserIDField+" = ?", taskID, userID).
		Update(models.TaskStatusField, status)
	if res.Error != nil {
		return fmt.Errorf("failed to update task status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return tasks.ErrNotFound
	}
	return nil
}

// Update replaces an existing task in the database.
func (r *TaskRepository) Update(ctx context.Context, task *types.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := r.find(ctx, tx, task.UserID, task.TaskID)
		if err != nil {
			return err
		}
		row := models.FromTask(*task)
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		return nil
	})
}

// Delete permanently removes a task owned by userID
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	res := r.db.WithContext(ctx).Unscoped().
		Where(models.TaskIDField+" = ? AND "+models.TaskUserIDField+" = ?", taskID, userID).
		Delete(&models.Task{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return tasks.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) find(ctx context.Context, conn *gorm.DB, userID, taskID string) (*models.Task, error) {
	var row models.Task
	err := conn.WithContext(ctx).
		Where(models.TaskIDField+" = ? AND "+models.TaskUserIDField+" = ?", taskID, userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tasks.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &row, nil
}
