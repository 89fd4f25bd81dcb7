package mocks

import (
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/aws/aws-sdk-go/service/cloudformation/cloudformationiface"
)

// MethodDescribeStacks is the CloudFormation method name recorded by the CallRecorder
const MethodDescribeStacks = "DescribeStacks"

// MockCloudFormation reports the workshop stack as deployed
type MockCloudFormation struct {
	cloudformationiface.CloudFormationAPI

	DescribeStacksFunc func(ctx aws.Context, in *cloudformation.DescribeStacksInput) (*cloudformation.DescribeStacksOutput, error)

	std      *StandardResponses
	calls    *CallRecorder
	behavior sync.RWMutex
}

// NewMockCloudFormation creates a CloudFormation double with standard responses
func NewMockCloudFormation(std *StandardResponses) *MockCloudFormation {
	m := &MockCloudFormation{std: std, calls: NewCallRecorder()}
	setupStandardStackResponses(m)
	return m
}

func setupStandardStackResponses(m *MockCloudFormation) {
	m.setDescribeStacks(describeStack(m.std.CloudFormation.Stack))
}

func (m *MockCloudFormation) setDescribeStacks(fn func(aws.Context, *cloudformation.DescribeStacksInput) (*cloudformation.DescribeStacksOutput, error)) {
	m.behavior.Lock()
	defer m.behavior.Unlock()
	m.DescribeStacksFunc = fn
}

// describeStack answers DescribeStacks with stack, matched by name or id
func describeStack(stack *cloudformation.Stack) func(aws.Context, *cloudformation.DescribeStacksInput) (*cloudformation.DescribeStacksOutput, error) {
	return func(_ aws.Context, in *cloudformation.DescribeStacksInput) (*cloudformation.DescribeStacksOutput, error) {
		if name := aws.StringValue(in.StackName); name != "" &&
			name != aws.StringValue(stack.StackName) && name != aws.StringValue(stack.StackId) {
			return nil, ErrStackNotFound
		}
		copied := *stack
		return &cloudformation.DescribeStacksOutput{Stacks: []*cloudformation.Stack{&copied}}, nil
	}
}

// Name returns the service name
func (m *MockCloudFormation) Name() string {
	return ServiceCloudFormation
}

// Calls returns the invocation recorder
func (m *MockCloudFormation) Calls() *CallRecorder {
	return m.calls
}

// Clear drops recorded invocations
func (m *MockCloudFormation) Clear() {
	m.calls.Clear()
}

// ResetToStandard restores the standard responses
func (m *MockCloudFormation) ResetToStandard() {
	setupStandardStackResponses(m)
}

// SetOutput overrides a stack output value for the rest of the test
func (m *MockCloudFormation) SetOutput(key, value string) {
	std := *m.std.CloudFormation.Stack
	outputs := make([]*cloudformation.Output, 0, len(std.Outputs)+1)
	replaced := false
	for _, o := range std.Outputs {
		if aws.StringValue(o.OutputKey) == key {
			outputs = append(outputs, &cloudformation.Output{OutputKey: aws.String(key), OutputValue: aws.String(value)})
			replaced = true
			continue
		}
		outputs = append(outputs, o)
	}
	if !replaced {
		outputs = append(outputs, &cloudformation.Output{OutputKey: aws.String(key), OutputValue: aws.String(value)})
	}
	std.Outputs = outputs
	m.setDescribeStacks(describeStack(&std))
}

// SimulateNotFound configures DescribeStacks to fail as if the stack did not exist
func (m *MockCloudFormation) SimulateNotFound() {
	m.setDescribeStacks(func(aws.Context, *cloudformation.DescribeStacksInput) (*cloudformation.DescribeStacksOutput, error) {
		return nil, ErrStackNotFound
	})
}

// SimulateAccessDenied configures DescribeStacks to fail with ErrAccessDenied
func (m *MockCloudFormation) SimulateAccessDenied() {
	m.setDescribeStacks(func(aws.Context, *cloudformation.DescribeStacksInput) (*cloudformation.DescribeStacksOutput, error) {
		return nil, ErrAccessDenied
	})
}

// DescribeStacksWithContext calls the mocked DescribeStacks function
func (m *MockCloudFormation) DescribeStacksWithContext(ctx aws.Context, in *cloudformation.DescribeStacksInput, _ ...request.Option) (*cloudformation.DescribeStacksOutput, error) {
	m.calls.Record(MethodDescribeStacks, in)
	m.behavior.RLock()
	fn := m.DescribeStacksFunc
	m.behavior.RUnlock()
	return fn(ctx, in)
}
