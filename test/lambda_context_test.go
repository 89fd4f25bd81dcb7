package test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLambdaContext(t *testing.T) {
	lc := NewLambdaContext("")
	assert.Equal(t, DefaultFunctionName, lc.FunctionName)
	assert.Equal(t, "$LATEST", lc.FunctionVersion)
	assert.Equal(t, "arn:aws:lambda:us-east-1:123456789012:function:test-function", lc.InvokedFunctionArn)
	assert.Equal(t, 256, lc.MemoryLimitInMB)
	assert.Equal(t, "test-request-id", lc.AwsRequestID)
	assert.Equal(t, "/aws/lambda/test-function", lc.LogGroupName)
	assert.Equal(t, "2024/06/17/[$LATEST]test-stream", lc.LogStreamName)
	assert.Equal(t, 30*time.Second, lc.RemainingTime())

	named := NewLambdaContext("create-task")
	assert.Equal(t, "arn:aws:lambda:us-east-1:123456789012:function:create-task", named.InvokedFunctionArn)
	assert.Equal(t, "/aws/lambda/create-task", named.LogGroupName)
}

func TestLambdaContext_Callbacks(t *testing.T) {
	lc := NewLambdaContext("fn")
	failure := errors.New("boom")

	lc.Done(nil, "ok")
	lc.Fail(failure)
	lc.Succeed(map[string]int{"n": 1})
	lc.Succeed(nil)

	assert.Equal(t, 1, lc.Callbacks.Count(CallbackDone))
	assert.Equal(t, 1, lc.Callbacks.Count(CallbackFail))
	assert.Equal(t, 2, lc.Callbacks.Count(CallbackSucceed))
	assert.Equal(t, []interface{}{DoneArgs{Result: "ok"}}, lc.Callbacks.Inputs(CallbackDone))
	assert.Equal(t, []interface{}{failure}, lc.Callbacks.Inputs(CallbackFail))
}

func TestLambdaContext_Context(t *testing.T) {
	lc := NewLambdaContext("fn")
	lc.Remaining = time.Minute

	ctx, cancel := lc.Context(context.Background())
	defer cancel()

	meta, ok := lambdacontext.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, lc.AwsRequestID, meta.AwsRequestID)
	assert.Equal(t, lc.InvokedFunctionArn, meta.InvokedFunctionArn)

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}
