package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"dario.cat/mergo"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"

	"github.com/workshopstudio/taskapi/internal/config"
	"github.com/workshopstudio/taskapi/internal/tasks"
	"github.com/workshopstudio/taskapi/internal/types"
	"github.com/workshopstudio/taskapi/test/mocks"
)

// Proxy event defaults
const (
	DefaultEventMethod = http.MethodGet
	DefaultEventPath   = "/"
	DefaultUserAgent   = "test-agent"
	DefaultStage       = "test"
	DefaultAPIID       = "test-api-id"
)

// DefaultWait is how long Wait suspends when given a negative duration
const DefaultWait = 100 * time.Millisecond

// Task fixture defaults
var (
	DefaultTaskID          = "task-123e4567-e89b-12d3-a456-426614174000"
	DefaultUserID          = "user-123"
	DefaultTaskTitle       = "Test Task"
	DefaultTaskDescription = "This is a test task"
	DefaultTaskDueDate     = time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	DefaultTaskCreatedAt   = time.Date(2024, 6, 17, 10, 0, 0, 0, time.UTC)
)

// EventOptions describes a proxy request. Zero fields take the defaults.
type EventOptions struct {
	Method string
	Path   string
	// Body is JSON-encoded when non-nil
	Body                  interface{}
	QueryStringParameters map[string]string
	PathParameters        map[string]string
	// Headers are merged over the default headers
	Headers map[string]string
}

// Fixtures builds canonical test inputs
type Fixtures struct {
	Gen *Generator
}

// NewFixtures creates fixtures drawing random data from gen
func NewFixtures(gen *Generator) *Fixtures {
	if gen == nil {
		gen = NewGenerator(DefaultSeed)
	}
	return &Fixtures{Gen: gen}
}

// LambdaEvent returns an API Gateway proxy request as the gateway would
// deliver it to the task function.
func (f *Fixtures) LambdaEvent(opts EventOptions) events.APIGatewayProxyRequest {
	if opts.Method == "" {
		opts.Method = DefaultEventMethod
	}
	if opts.Path == "" {
		opts.Path = DefaultEventPath
	}

	headers := map[string]string{
		tasks.HeaderContentType: tasks.ContentTypeJSON,
		"User-Agent":            DefaultUserAgent,
	}
	for k, v := range opts.Headers {
		headers[k] = v
	}

	return events.APIGatewayProxyRequest{
		HTTPMethod:            opts.Method,
		Path:                  opts.Path,
		Body:                  encodeBody(opts.Body),
		QueryStringParameters: opts.QueryStringParameters,
		PathParameters:        opts.PathParameters,
		Headers:               headers,
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID:  DefaultRequestID,
			Stage:      DefaultStage,
			HTTPMethod: opts.Method,
			Path:       opts.Path,
			AccountID:  config.TestAccountID,
			APIID:      DefaultAPIID,
		},
		IsBase64Encoded: false,
	}
}

// LambdaContext returns an invocation context for functionName
func (f *Fixtures) LambdaContext(functionName string) *LambdaContext {
	return NewLambdaContext(functionName)
}

// Task returns the canonical test task. Non-zero fields of each override
// replace the defaults, in order. Zero values cannot be set this way; set
// them on the returned value instead.
func (f *Fixtures) Task(overrides ...types.Task) types.Task {
	task := types.Task{
		TaskID:      DefaultTaskID,
		UserID:      DefaultUserID,
		Title:       DefaultTaskTitle,
		Description: DefaultTaskDescription,
		Status:      types.TaskStatusTodo,
		Priority:    types.TaskPriorityMedium,
		DueDate:     DefaultTaskDueDate,
		Tags:        []string{"test"},
		CreatedAt:   DefaultTaskCreatedAt,
		UpdatedAt:   DefaultTaskCreatedAt,
	}
	for _, o := range overrides {
		if err := mergo.Merge(&task, o.Clone(), mergo.WithOverride, mergo.WithTransformers(timeTransformer{})); err != nil {
			panic(fmt.Sprintf("failed to apply task override: %v", err))
		}
	}
	return task.Clone()
}

// RandomTask returns a task with generated ids, title and description
func (f *Fixtures) RandomTask(overrides ...types.Task) types.Task {
	random := types.Task{
		TaskID:      f.Gen.TaskID(),
		UserID:      f.Gen.UserID(),
		Title:       f.Gen.Title(),
		Description: f.Gen.Description(),
	}
	return f.Task(append([]types.Task{random}, overrides...)...)
}

// TaskItem returns the DynamoDB record of task
func (f *Fixtures) TaskItem(task types.Task) mocks.Item {
	item, err := dynamodbattribute.MarshalMap(task)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal task item: %v", err))
	}
	return item
}

// APIResponse returns a proxy response. A zero status means 200, a nil body
// means an empty JSON object; headers are merged over the default headers.
func (f *Fixtures) APIResponse(status int, body interface{}, headers map[string]string) events.APIGatewayProxyResponse {
	if status == 0 {
		status = http.StatusOK
	}
	if body == nil {
		body = map[string]interface{}{}
	}

	merged := map[string]string{
		tasks.HeaderContentType: tasks.ContentTypeJSON,
		tasks.HeaderAllowOrigin: tasks.AllowOriginAny,
	}
	for k, v := range headers {
		merged[k] = v
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    merged,
		Body:       encodeBody(body),
	}
}

// Wait suspends for d, or DefaultWait when d is negative. A zero d returns
// at once. It returns early with the context's error if ctx is done first.
func Wait(ctx context.Context, d time.Duration) error {
	switch {
	case d == 0:
		return ctx.Err()
	case d < 0:
		d = DefaultWait
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// timeTransformer keeps mergo from treating a zero time.Time as a value
type timeTransformer struct{}

func (timeTransformer) Transformer(typ reflect.Type) func(dst, src reflect.Value) error {
	if typ != reflect.TypeOf(time.Time{}) {
		return nil
	}
	return func(dst, src reflect.Value) error {
		if dst.CanSet() && !src.Interface().(time.Time).IsZero() {
			dst.Set(src)
		}
		return nil
	}
}

func encodeBody(body interface{}) string {
	if body == nil {
		return ""
	}
	data, err := json.Marshal(body)
	if err != nil {
		panic(fmt.Sprintf("failed to encode body: %v", err))
	}
	return string(data)
}
