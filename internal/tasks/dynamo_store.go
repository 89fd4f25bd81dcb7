package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"

	"github.com/workshopstudio/taskapi/internal/types"
)

// UserIndexName is the global secondary index keyed by userId
const UserIndexName = "userId-index"

// DynamoStore is a Store backed by a DynamoDB table keyed by taskId.
type DynamoStore struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

// NewDynamoStore creates a store over the given table
func NewDynamoStore(client dynamodbiface.DynamoDBAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

// Create stores a new task, failing with ErrAlreadyExists if the id is taken
func (s *DynamoStore) Create(ctx context.Context, task *types.Task) error {
	item, err := dynamodbattribute.MarshalMap(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	_, err = s.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String(fmt.Sprintf("attribute_not_exists(%s)", types.TaskIDField)),
	})
	if isConditionFailed(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to put task: %w", err)
	}
	return nil
}

// Get retrieves a task owned by userID
func (s *DynamoStore) Get(ctx context.Context, userID, taskID string) (*types.Task, error) {
	out, err := s.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       taskKey(taskID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var task types.Task
	if err := dynamodbattribute.UnmarshalMap(out.Item, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	if task.UserID != userID {
		return nil, ErrNotFound
	}
	return &task, nil
}

// ListByUser returns the user's tasks ordered by creation time
func (s *DynamoStore) ListByUser(ctx context.Context, userID string) ([]types.Task, error) {
	out, err := s.client.QueryWithContext(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		IndexName:              aws.String(UserIndexName),
		KeyConditionExpression: aws.String(types.TaskUserIDField + " = :u"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":u": {S: aws.String(userID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}

	tasks := make([]types.Task, 0, len(out.Items))
	if err := dynamodbattribute.UnmarshalListOfMaps(out.Items, &tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tasks: %w", err)
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// Update replaces an existing task
func (s *DynamoStore) Update(ctx context.Context, task *types.Task) error {
	if _, err := s.Get(ctx, task.UserID, task.TaskID); err != nil {
		return err
	}
	item, err := dynamodbattribute.MarshalMap(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	_, err = s.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String(fmt.Sprintf("attribute_exists(%s)", types.TaskIDField)),
	})
	if isConditionFailed(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// Delete removes a task owned by userID
func (s *DynamoStore) Delete(ctx context.Context, userID, taskID string) error {
	if _, err := s.Get(ctx, userID, taskID); err != nil {
		return err
	}
	_, err := s.client.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       taskKey(taskID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func taskKey(taskID string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		types.TaskIDField: {S: aws.String(taskID)},
	}
}

func isConditionFailed(err error) bool {
	var aerr awserr.Error
	return errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException
}
