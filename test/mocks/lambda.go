package mocks

import (
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/lambda/lambdaiface"
)

// MethodInvoke is the Lambda method name recorded by the CallRecorder
const MethodInvoke = "Invoke"

// MockLambda accepts every invocation without running anything
type MockLambda struct {
	lambdaiface.LambdaAPI

	// InvokeFunc may be replaced directly before the double is shared;
	// use the Simulate methods once other goroutines may be calling it.
	InvokeFunc func(ctx aws.Context, in *lambda.InvokeInput) (*lambda.InvokeOutput, error)

	std      *StandardResponses
	calls    *CallRecorder
	behavior sync.RWMutex
}

// NewMockLambda creates a Lambda double with standard responses
func NewMockLambda(std *StandardResponses) *MockLambda {
	m := &MockLambda{std: std, calls: NewCallRecorder()}
	setupStandardLambdaResponses(m)
	return m
}

// setupStandardLambdaResponses answers 202 for async invokes and 200 with the
// standard payload otherwise
func setupStandardLambdaResponses(m *MockLambda) {
	m.setInvoke(func(_ aws.Context, in *lambda.InvokeInput) (*lambda.InvokeOutput, error) {
		if aws.StringValue(in.InvocationType) == lambda.InvocationTypeEvent {
			return &lambda.InvokeOutput{StatusCode: aws.Int64(http.StatusAccepted)}, nil
		}
		return &lambda.InvokeOutput{
			StatusCode:      aws.Int64(http.StatusOK),
			Payload:         m.std.Lambda.Payload,
			ExecutedVersion: aws.String(m.std.Lambda.ExecutedVersion),
		}, nil
	})
}

func (m *MockLambda) setInvoke(fn func(aws.Context, *lambda.InvokeInput) (*lambda.InvokeOutput, error)) {
	m.behavior.Lock()
	defer m.behavior.Unlock()
	m.InvokeFunc = fn
}

// Name returns the service name
func (m *MockLambda) Name() string {
	return ServiceLambda
}

// Calls returns the invocation recorder
func (m *MockLambda) Calls() *CallRecorder {
	return m.calls
}

// Clear drops recorded invocations
func (m *MockLambda) Clear() {
	m.calls.Clear()
}

// ResetToStandard restores the standard responses
func (m *MockLambda) ResetToStandard() {
	setupStandardLambdaResponses(m)
}

// Invocations returns the inputs of every recorded Invoke
func (m *MockLambda) Invocations() []*lambda.InvokeInput {
	var out []*lambda.InvokeInput
	for _, in := range m.calls.Inputs(MethodInvoke) {
		out = append(out, in.(*lambda.InvokeInput))
	}
	return out
}

// SimulateNotFound configures Invoke to fail as if the function did not exist
func (m *MockLambda) SimulateNotFound() {
	m.setInvoke(func(aws.Context, *lambda.InvokeInput) (*lambda.InvokeOutput, error) {
		return nil, ErrFunctionNotFound
	})
}

// SimulateThrottling configures Invoke to fail with ErrThrottled
func (m *MockLambda) SimulateThrottling() {
	m.setInvoke(func(aws.Context, *lambda.InvokeInput) (*lambda.InvokeOutput, error) {
		return nil, ErrThrottled
	})
}

// InvokeWithContext calls the mocked Invoke function
func (m *MockLambda) InvokeWithContext(ctx aws.Context, in *lambda.InvokeInput, _ ...request.Option) (*lambda.InvokeOutput, error) {
	m.calls.Record(MethodInvoke, in)
	m.behavior.RLock()
	fn := m.InvokeFunc
	m.behavior.RUnlock()
	return fn(ctx, in)
}
