// Package stack reads the outputs of the deployed workshop stack.
package stack

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/aws/aws-sdk-go/service/cloudformation/cloudformationiface"

	"github.com/workshopstudio/taskapi/internal/config"
)

// Output keys published by the workshop template
const (
	OutputAPIEndpoint = "ApiEndpoint"
	OutputTableName   = "TableName"
	OutputBucketName  = "BucketName"
)

// ErrNotReady is returned when the stack exists but has not finished deploying
var ErrNotReady = errors.New("stack is not ready")

// Outputs are the resolved stack outputs the task API depends on
type Outputs struct {
	StackID     string
	Status      string
	APIEndpoint string
	TableName   string
	BucketName  string
	// Extra holds outputs without a dedicated field
	Extra map[string]string
}

// Describe fetches the named stack and resolves its outputs
func Describe(ctx context.Context, client cloudformationiface.CloudFormationAPI, name string) (*Outputs, error) {
	out, err := client.DescribeStacksWithContext(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe stack %s: %w", name, err)
	}
	if len(out.Stacks) == 0 {
		return nil, fmt.Errorf("stack %s not found", name)
	}

	s := out.Stacks[0]
	res := &Outputs{
		StackID: aws.StringValue(s.StackId),
		Status:  aws.StringValue(s.StackStatus),
		Extra:   make(map[string]string),
	}
	if !ready(res.Status) {
		return res, fmt.Errorf("%w: %s is %s", ErrNotReady, name, res.Status)
	}

	for _, o := range s.Outputs {
		value := aws.StringValue(o.OutputValue)
		switch key := aws.StringValue(o.OutputKey); key {
		case OutputAPIEndpoint:
			res.APIEndpoint = value
		case OutputTableName:
			res.TableName = value
		case OutputBucketName:
			res.BucketName = value
		default:
			res.Extra[key] = value
		}
	}
	return res, nil
}

func ready(status string) bool {
	switch status {
	case cloudformation.StackStatusCreateComplete,
		cloudformation.StackStatusUpdateComplete,
		cloudformation.StackStatusUpdateRollbackComplete:
		return true
	}
	return false
}

// Apply overrides the constants with every output the stack published
func (o *Outputs) Apply(c config.Constants) config.Constants {
	if o.APIEndpoint != "" {
		c.APIEndpoint = o.APIEndpoint
	}
	if o.TableName != "" {
		c.TableName = o.TableName
	}
	if o.BucketName != "" {
		c.BucketName = o.BucketName
	}
	return c
}
