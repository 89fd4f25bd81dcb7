package mocks

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockS3(t *testing.T) {
	ctx := context.Background()
	m := NewMockS3()

	_, err := m.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String("bucket"),
		Key:    aws.String("a.json"),
		Body:   strings.NewReader(`{"a":1}`),
	})
	require.NoError(t, err)

	body, ok := m.Object("bucket", "a.json")
	require.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(body))

	out, err := m.GetObjectWithContext(ctx, &s3.GetObjectInput{Bucket: aws.String("bucket"), Key: aws.String("a.json")})
	require.NoError(t, err)
	data, err := io.ReadAll(out.Body)
	require.NoError(t, err)
	assert.Equal(t, body, data)

	_, err = m.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{Bucket: aws.String("bucket"), Key: aws.String("a.json")})
	require.NoError(t, err)
	_, err = m.GetObjectWithContext(ctx, &s3.GetObjectInput{Bucket: aws.String("bucket"), Key: aws.String("a.json")})
	assert.ErrorIs(t, err, ErrNoSuchKey)

	m.SimulateAccessDenied()
	_, err = m.PutObjectWithContext(ctx, &s3.PutObjectInput{Bucket: aws.String("bucket"), Key: aws.String("b")})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, 2, m.Calls().Count(MethodPutObject))
}

func TestMockLambda(t *testing.T) {
	ctx := context.Background()
	m := NewMockLambda(NewStandardResponses())

	out, err := m.InvokeWithContext(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String("notify"),
		InvocationType: aws.String(lambda.InvocationTypeEvent),
		Payload:        []byte(`{}`),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 202, aws.Int64Value(out.StatusCode))

	out, err = m.InvokeWithContext(ctx, &lambda.InvokeInput{FunctionName: aws.String("notify")})
	require.NoError(t, err)
	assert.EqualValues(t, 200, aws.Int64Value(out.StatusCode))
	assert.Equal(t, DefaultInvokePayload, out.Payload)

	invocations := m.Invocations()
	require.Len(t, invocations, 2)
	assert.Equal(t, "notify", aws.StringValue(invocations[0].FunctionName))

	m.SimulateNotFound()
	_, err = m.InvokeWithContext(ctx, &lambda.InvokeInput{FunctionName: aws.String("notify")})
	assert.ErrorIs(t, err, ErrFunctionNotFound)
}

func TestMockCloudFormation(t *testing.T) {
	ctx := context.Background()
	m := NewMockCloudFormation(NewStandardResponses())

	out, err := m.DescribeStacksWithContext(ctx, &cloudformation.DescribeStacksInput{StackName: aws.String("test-workshop-stack")})
	require.NoError(t, err)
	require.Len(t, out.Stacks, 1)
	assert.Equal(t, cloudformation.StackStatusCreateComplete, aws.StringValue(out.Stacks[0].StackStatus))
	assert.Len(t, out.Stacks[0].Outputs, 3)

	_, err = m.DescribeStacksWithContext(ctx, &cloudformation.DescribeStacksInput{StackName: aws.String("other")})
	assert.ErrorIs(t, err, ErrStackNotFound)

	m.SetOutput(OutputAPIEndpoint, "http://127.0.0.1:9999")
	out, err = m.DescribeStacksWithContext(ctx, &cloudformation.DescribeStacksInput{})
	require.NoError(t, err)
	var endpoint string
	for _, o := range out.Stacks[0].Outputs {
		if aws.StringValue(o.OutputKey) == OutputAPIEndpoint {
			endpoint = aws.StringValue(o.OutputValue)
		}
	}
	assert.Equal(t, "http://127.0.0.1:9999", endpoint)
	_, err = m.DescribeStacksWithContext(ctx, &cloudformation.DescribeStacksInput{StackName: aws.String("other")})
	assert.ErrorIs(t, err, ErrStackNotFound)

	m.ResetToStandard()
	out, err = m.DescribeStacksWithContext(ctx, &cloudformation.DescribeStacksInput{})
	require.NoError(t, err)
	assert.Len(t, out.Stacks[0].Outputs, 3)
	assert.Equal(t, 5, m.Calls().Count(MethodDescribeStacks))
}
