// Package awsclients groups the AWS service clients the task API talks to so
// tests can substitute every one of them at once.
package awsclients

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/aws/aws-sdk-go/service/cloudformation/cloudformationiface"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/lambda/lambdaiface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// Clients holds one client per AWS service
type Clients struct {
	DynamoDB       dynamodbiface.DynamoDBAPI
	S3             s3iface.S3API
	Lambda         lambdaiface.LambdaAPI
	CloudFormation cloudformationiface.CloudFormationAPI
}

// New creates live clients for the given region from the default credential chain
func New(region string) (*Clients, error) {
	sess, err := session.NewSession(aws.NewConfig().WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &Clients{
		DynamoDB:       dynamodb.New(sess),
		S3:             s3.New(sess),
		Lambda:         lambda.New(sess),
		CloudFormation: cloudformation.New(sess),
	}, nil
}
