package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/workshopstudio/taskapi/internal/types"
)

// Field names for task model
const (
	// TaskIDField is the column holding the public task id
	TaskIDField = "task_id"
	// TaskUserIDField is the column holding the owning user
	TaskUserIDField = "user_id"
	// TaskStatusField is the field name for task status
	TaskStatusField = "status"
)

// Task is the relational representation of a task record
type Task struct {
	gorm.Model
	TaskID      string             `gorm:"not null;uniqueIndex"`
	UserID      string             `gorm:"not null;index"`
	Title       string             `gorm:"not null"`
	Description string             `gorm:"type:text"`
	Status      types.TaskStatus   `gorm:"not null;index"`
	Priority    types.TaskPriority `gorm:"not null"`
	DueDate     time.Time
	Tags        []string  `gorm:"serializer:json"`
	CreatedAt   time.Time `gorm:"index"`
}

// FromTask converts a domain task into its row representation
func FromTask(t types.Task) Task {
	t = t.Clone()
	return Task{
		TaskID:      t.TaskID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		Tags:        t.Tags,
		CreatedAt:   t.CreatedAt,
		Model:       gorm.Model{UpdatedAt: t.UpdatedAt},
	}
}

// ToTask converts the row into a domain task
func (m Task) ToTask() types.Task {
	return types.Task{
		TaskID:      m.TaskID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		Status:      m.Status,
		Priority:    m.Priority,
		DueDate:     m.DueDate.UTC(),
		Tags:        m.Tags,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}.Clone()
}

// BeforeCreate is a GORM hook that runs before creating a new task
func (m *Task) BeforeCreate(_ *gorm.DB) error {
	if m.Status == "" {
		m.Status = types.TaskStatusTodo
	}
	if m.Priority == "" {
		m.Priority = types.TaskPriorityMedium
	}
	t := m.ToTask()
	return t.Validate()
}
