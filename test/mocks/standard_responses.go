package mocks

import (
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/workshopstudio/taskapi/internal/config"
	"github.com/workshopstudio/taskapi/internal/stack"
)

// Default test values for the deployed stack
var (
	DefaultStackID        = "arn:aws:cloudformation:us-east-1:123456789012:stack/test-workshop-stack/00000000-0000-0000-0000-000000000000"
	DefaultStackStatus    = cloudformation.StackStatusCreateComplete
	DefaultStackCreatedAt = time.Date(2024, 6, 17, 10, 0, 0, 0, time.UTC)

	// Stack output keys
	OutputAPIEndpoint = stack.OutputAPIEndpoint
	OutputTableName   = stack.OutputTableName
	OutputBucketName  = stack.OutputBucketName
)

// DefaultETag is returned for every stored object
var DefaultETag = `"mock-etag"`

// Default test values for Lambda invocations
var (
	DefaultInvokePayload   = []byte(`{"ok":true}`)
	DefaultExecutedVersion = "$LATEST"
)

// Errors returned by the Simulate* helpers and by the in-memory doubles
var (
	ErrThrottled        = awserr.New("ThrottlingException", "mock: rate exceeded", nil)
	ErrAccessDenied     = awserr.New("AccessDeniedException", "mock: access denied", nil)
	ErrConditionFailed  = awserr.New(dynamodb.ErrCodeConditionalCheckFailedException, "mock: the conditional request failed", nil)
	ErrTableNotFound    = awserr.New(dynamodb.ErrCodeResourceNotFoundException, "mock: requested resource not found", nil)
	ErrNoSuchKey        = awserr.New(s3.ErrCodeNoSuchKey, "mock: the specified key does not exist", nil)
	ErrFunctionNotFound = awserr.New(lambda.ErrCodeResourceNotFoundException, "mock: function not found", nil)
	ErrStackNotFound    = awserr.New("ValidationError", "mock: stack does not exist", nil)
)

// StandardResponses contains the canned success responses shared by the doubles
type StandardResponses struct {
	Lambda         StandardLambdaResponses
	CloudFormation StandardStackResponses
}

// StandardLambdaResponses contains the standard Invoke results
type StandardLambdaResponses struct {
	Payload         []byte
	ExecutedVersion string
}

// StandardStackResponses contains the standard DescribeStacks result
type StandardStackResponses struct {
	Stack *cloudformation.Stack
}

// NewStandardResponses creates the standard responses for the workshop stack
func NewStandardResponses() *StandardResponses {
	return &StandardResponses{
		Lambda: StandardLambdaResponses{
			Payload:         DefaultInvokePayload,
			ExecutedVersion: DefaultExecutedVersion,
		},
		CloudFormation: StandardStackResponses{
			Stack: &cloudformation.Stack{
				StackId:      aws.String(DefaultStackID),
				StackName:    aws.String(config.TestStackName),
				StackStatus:  aws.String(DefaultStackStatus),
				CreationTime: aws.Time(DefaultStackCreatedAt),
				Outputs: []*cloudformation.Output{
					{OutputKey: aws.String(OutputAPIEndpoint), OutputValue: aws.String(config.TestAPIEndpoint)},
					{OutputKey: aws.String(OutputTableName), OutputValue: aws.String(config.TestTableName)},
					{OutputKey: aws.String(OutputBucketName), OutputValue: aws.String(config.TestBucketName)},
				},
			},
		},
	}
}
