package test

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/workshopstudio/taskapi/internal/config"
	"github.com/workshopstudio/taskapi/test/mocks"
)

// Lambda context defaults
const (
	DefaultFunctionName    = "test-function"
	DefaultFunctionVersion = "$LATEST"
	DefaultMemoryLimitMB   = 256
	DefaultRequestID       = "test-request-id"
	DefaultLogStreamName   = "2024/06/17/[$LATEST]test-stream"
	DefaultRemainingTime   = 30 * time.Second
)

// Completion callbacks recorded by LambdaContext
const (
	CallbackDone    = "done"
	CallbackFail    = "fail"
	CallbackSucceed = "succeed"
)

// LambdaContext describes the invocation a handler runs in. The completion
// callbacks do nothing but record their arguments.
type LambdaContext struct {
	FunctionName       string
	FunctionVersion    string
	InvokedFunctionArn string
	MemoryLimitInMB    int
	AwsRequestID       string
	LogGroupName       string
	LogStreamName      string
	Remaining          time.Duration

	Callbacks *mocks.CallRecorder
}

// DoneArgs are the arguments recorded by Done
type DoneArgs struct {
	Err    error
	Result interface{}
}

// NewLambdaContext creates a context for functionName, or for
// DefaultFunctionName when it is empty.
func NewLambdaContext(functionName string) *LambdaContext {
	if functionName == "" {
		functionName = DefaultFunctionName
	}
	return &LambdaContext{
		FunctionName:    functionName,
		FunctionVersion: DefaultFunctionVersion,
		InvokedFunctionArn: fmt.Sprintf("arn:aws:lambda:%s:%s:function:%s",
			config.TestRegion, config.TestAccountID, functionName),
		MemoryLimitInMB: DefaultMemoryLimitMB,
		AwsRequestID:    DefaultRequestID,
		LogGroupName:    "/aws/lambda/" + functionName,
		LogStreamName:   DefaultLogStreamName,
		Remaining:       DefaultRemainingTime,
		Callbacks:       mocks.NewCallRecorder(),
	}
}

// RemainingTime returns the time left before the invocation times out
func (l *LambdaContext) RemainingTime() time.Duration {
	return l.Remaining
}

// Done records a completion callback
func (l *LambdaContext) Done(err error, result interface{}) {
	l.Callbacks.Record(CallbackDone, DoneArgs{Err: err, Result: result})
}

// Fail records a failure callback
func (l *LambdaContext) Fail(err error) {
	l.Callbacks.Record(CallbackFail, err)
}

// Succeed records a success callback
func (l *LambdaContext) Succeed(result interface{}) {
	l.Callbacks.Record(CallbackSucceed, result)
}

// Context derives a context.Context carrying the invocation metadata the
// way the Lambda runtime does, with a deadline of the remaining time.
func (l *LambdaContext) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx := lambdacontext.NewContext(parent, &lambdacontext.LambdaContext{
		AwsRequestID:       l.AwsRequestID,
		InvokedFunctionArn: l.InvokedFunctionArn,
	})
	return context.WithTimeout(ctx, l.Remaining)
}
