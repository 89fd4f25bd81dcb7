package stack_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshopstudio/taskapi/internal/config"
	"github.com/workshopstudio/taskapi/internal/stack"
	"github.com/workshopstudio/taskapi/test/mocks"
)

func TestDescribe(t *testing.T) {
	ctx := context.Background()
	cfn := mocks.NewMockCloudFormation(mocks.NewStandardResponses())

	out, err := stack.Describe(ctx, cfn, config.TestStackName)
	require.NoError(t, err)
	assert.Equal(t, config.TestAPIEndpoint, out.APIEndpoint)
	assert.Equal(t, config.TestTableName, out.TableName)
	assert.Equal(t, config.TestBucketName, out.BucketName)
	assert.Equal(t, mocks.DefaultStackID, out.StackID)
	assert.Empty(t, out.Extra)

	cfn.SetOutput("UserPoolId", "pool-1")
	out, err = stack.Describe(ctx, cfn, config.TestStackName)
	require.NoError(t, err)
	assert.Equal(t, "pool-1", out.Extra["UserPoolId"])
}

func TestDescribe_Errors(t *testing.T) {
	ctx := context.Background()
	cfn := mocks.NewMockCloudFormation(mocks.NewStandardResponses())

	_, err := stack.Describe(ctx, cfn, "someone-elses-stack")
	assert.ErrorIs(t, err, mocks.ErrStackNotFound)

	cfn.DescribeStacksFunc = func(aws.Context, *cloudformation.DescribeStacksInput) (*cloudformation.DescribeStacksOutput, error) {
		return &cloudformation.DescribeStacksOutput{Stacks: []*cloudformation.Stack{{
			StackId:     aws.String("id"),
			StackStatus: aws.String(cloudformation.StackStatusCreateInProgress),
		}}}, nil
	}
	out, err := stack.Describe(ctx, cfn, config.TestStackName)
	assert.ErrorIs(t, err, stack.ErrNotReady)
	require.NotNil(t, out)
	assert.Equal(t, cloudformation.StackStatusCreateInProgress, out.Status)

	cfn.DescribeStacksFunc = func(aws.Context, *cloudformation.DescribeStacksInput) (*cloudformation.DescribeStacksOutput, error) {
		return &cloudformation.DescribeStacksOutput{}, nil
	}
	_, err = stack.Describe(ctx, cfn, config.TestStackName)
	assert.ErrorContains(t, err, "not found")
}

func TestOutputs_Apply(t *testing.T) {
	base := config.TestConstants()

	got := (&stack.Outputs{APIEndpoint: "https://abc.execute-api.eu-west-1.amazonaws.com/prod"}).Apply(base)
	assert.Equal(t, "https://abc.execute-api.eu-west-1.amazonaws.com/prod", got.APIEndpoint)
	assert.Equal(t, base.TableName, got.TableName, "missing outputs keep the current value")
	assert.Equal(t, base.BucketName, got.BucketName)

	got = (&stack.Outputs{TableName: "prod-tasks", BucketName: "prod-archive"}).Apply(base)
	assert.Equal(t, "prod-tasks", got.TableName)
	assert.Equal(t, "prod-archive", got.BucketName)
	assert.Equal(t, base.APIEndpoint, got.APIEndpoint)
}
