package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Field names of a task record as they appear on the wire and in DynamoDB
const (
	TaskIDField          = "taskId"
	TaskUserIDField      = "userId"
	TaskTitleField       = "title"
	TaskDescriptionField = "description"
	TaskStatusField      = "status"
	TaskPriorityField    = "priority"
	TaskDueDateField     = "dueDate"
	TaskTagsField        = "tags"
	TaskCreatedAtField   = "createdAt"
	TaskUpdatedAtField   = "updatedAt"
)

// RequiredTaskFields lists the fields every stored task must carry.
var RequiredTaskFields = []string{
	TaskIDField,
	TaskUserIDField,
	TaskTitleField,
	TaskStatusField,
	TaskCreatedAtField,
	TaskUpdatedAtField,
}

// TaskStatus represents the workflow state of a task
type TaskStatus string

// Task status constants
const (
	// TaskStatusTodo indicates the task has not been started
	TaskStatusTodo TaskStatus = "TODO"
	// TaskStatusInProgress indicates the task is being worked on
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	// TaskStatusDone indicates the task is finished
	TaskStatusDone TaskStatus = "DONE"
)

// TaskPriority represents how urgent a task is
type TaskPriority string

// Task priority constants
const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// Task is the domain record managed by the task API.
type Task struct {
	TaskID      string       `json:"taskId" dynamodbav:"taskId"`
	UserID      string       `json:"userId" dynamodbav:"userId"`
	Title       string       `json:"title" dynamodbav:"title"`
	Description string       `json:"description" dynamodbav:"description"`
	Status      TaskStatus   `json:"status" dynamodbav:"status"`
	Priority    TaskPriority `json:"priority" dynamodbav:"priority"`
	DueDate     time.Time    `json:"dueDate" dynamodbav:"dueDate"`
	Tags        []string     `json:"tags" dynamodbav:"tags"`
	CreatedAt   time.Time    `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt" dynamodbav:"updatedAt"`
}

// String returns the string representation of the task status
func (s TaskStatus) String() string {
	return string(s)
}

// ParseTaskStatus converts a string to a TaskStatus type
func ParseTaskStatus(str string) (TaskStatus, error) {
	switch TaskStatus(str) {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return TaskStatus(str), nil
	default:
		return "", fmt.Errorf("invalid task status: %s", str)
	}
}

// UnmarshalJSON implements json.Unmarshaler for TaskStatus
func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*s = ""
		return nil
	}

	status, err := ParseTaskStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

// String returns the string representation of the task priority
func (p TaskPriority) String() string {
	return string(p)
}

// ParseTaskPriority converts a string to a TaskPriority type
func ParseTaskPriority(str string) (TaskPriority, error) {
	switch TaskPriority(str) {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return TaskPriority(str), nil
	default:
		return "", fmt.Errorf("invalid task priority: %s", str)
	}
}

// UnmarshalJSON implements json.Unmarshaler for TaskPriority
func (p *TaskPriority) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*p = ""
		return nil
	}

	priority, err := ParseTaskPriority(str)
	if err != nil {
		return err
	}

	*p = priority
	return nil
}

// Validate ensures that the task data is valid
func (t *Task) Validate() error {
	if t.UserID == "" {
		return fmt.Errorf("task user id cannot be empty")
	}
	if t.Title == "" {
		return fmt.Errorf("task title cannot be empty")
	}
	if t.Status != "" {
		if _, err := ParseTaskStatus(string(t.Status)); err != nil {
			return err
		}
	}
	if t.Priority != "" {
		if _, err := ParseTaskPriority(string(t.Priority)); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a copy of the task that shares no slices with the original
func (t Task) Clone() Task {
	if t.Tags != nil {
		tags := make([]string, len(t.Tags))
		copy(tags, t.Tags)
		t.Tags = tags
	}
	return t
}
