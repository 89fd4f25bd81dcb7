package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskStatus(t *testing.T) {
	for _, s := range []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone} {
		got, err := ParseTaskStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseTaskStatus("todo")
	assert.Error(t, err, "status parsing is case sensitive")
}

func TestParseTaskPriority(t *testing.T) {
	for _, p := range []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh} {
		got, err := ParseTaskPriority(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := ParseTaskPriority("URGENT")
	assert.Error(t, err)
}

func TestTask_UnmarshalRejectsUnknownEnums(t *testing.T) {
	var task Task
	err := json.Unmarshal([]byte(`{"taskId":"t1","status":"BLOCKED"}`), &task)
	assert.ErrorContains(t, err, "invalid task status")

	err = json.Unmarshal([]byte(`{"taskId":"t1","priority":"URGENT"}`), &task)
	assert.ErrorContains(t, err, "invalid task priority")

	err = json.Unmarshal([]byte(`{"taskId":"t1","status":"DONE","priority":"HIGH"}`), &task)
	require.NoError(t, err)
	assert.Equal(t, TaskStatusDone, task.Status)
	assert.Equal(t, TaskPriorityHigh, task.Priority)
}

func TestTask_Validate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid task",
			task: Task{UserID: "user-1", Title: "write docs", Status: TaskStatusTodo},
		},
		{
			name:    "missing user",
			task:    Task{Title: "write docs"},
			wantErr: true,
			errMsg:  "user id",
		},
		{
			name:    "missing title",
			task:    Task{UserID: "user-1"},
			wantErr: true,
			errMsg:  "title",
		},
		{
			name:    "bad status",
			task:    Task{UserID: "user-1", Title: "x", Status: "BLOCKED"},
			wantErr: true,
			errMsg:  "invalid task status",
		},
		{
			name:    "bad priority",
			task:    Task{UserID: "user-1", Title: "x", Priority: "URGENT"},
			wantErr: true,
			errMsg:  "invalid task priority",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Task.Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Task.Validate() error message = %v, want to contain %v", err, tt.errMsg)
			}
		})
	}
}

func TestTask_Clone(t *testing.T) {
	orig := Task{TaskID: "t1", Tags: []string{"a", "b"}}
	clone := orig.Clone()
	clone.Tags[0] = "changed"

	assert.Equal(t, "a", orig.Tags[0], "clone must not share tags")
	assert.Nil(t, Task{}.Clone().Tags)
}

func TestTask_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Task{TaskID: "t1"})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, field := range RequiredTaskFields {
		assert.Contains(t, raw, field)
	}
}
