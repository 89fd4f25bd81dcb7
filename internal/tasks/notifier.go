package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/lambda/lambdaiface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/workshopstudio/taskapi/internal/types"
)

// Task event names sent to the notification function
const (
	EventTaskCreated = "TaskCreated"
	EventTaskUpdated = "TaskUpdated"
	EventTaskDeleted = "TaskDeleted"
)

// Event is the payload of an asynchronous notification invoke
type Event struct {
	Type string     `json:"type"`
	Task types.Task `json:"task"`
}

// Notifier fans task changes out to a notification function and archives
// deleted tasks to S3.
type Notifier struct {
	Lambda       lambdaiface.LambdaAPI
	S3           s3iface.S3API
	FunctionName string
	Bucket       string
}

// TaskChanged invokes the notification function asynchronously
func (n *Notifier) TaskChanged(ctx context.Context, eventType string, task types.Task) error {
	if n.Lambda == nil || n.FunctionName == "" {
		return nil
	}
	payload, err := json.Marshal(Event{Type: eventType, Task: task})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = n.Lambda.InvokeWithContext(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(n.FunctionName),
		InvocationType: aws.String(lambda.InvocationTypeEvent),
		Payload:        payload,
	})
	if err != nil {
		return fmt.Errorf("failed to invoke %s: %w", n.FunctionName, err)
	}
	return nil
}

// ArchiveKey is the object key a deleted task is archived under
func ArchiveKey(task types.Task) string {
	return fmt.Sprintf("archive/%s/%s.json", task.UserID, task.TaskID)
}

// Archive writes the task as JSON to the archive bucket
func (n *Notifier) Archive(ctx context.Context, task types.Task) error {
	if n.S3 == nil || n.Bucket == "" {
		return nil
	}
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	_, err = n.S3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(n.Bucket),
		Key:         aws.String(ArchiveKey(task)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to archive task %s: %w", task.TaskID, err)
	}
	return nil
}
