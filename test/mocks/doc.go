// Package mocks provides inert stand-ins for the AWS services the task API
// depends on.
//
// Every double implements the aws-sdk-go service interface of the client it
// replaces by embedding that interface and overriding the operations the
// task API calls. Operations that are not overridden panic, which makes an
// accidental dependency on an unmocked call obvious.
//
// Each mock follows these principles:
//  1. Configurable behavior through exported function fields
//  2. Standard success responses restored by ResetToStandard
//  3. Simulate* helpers for common failure scenarios
//  4. A CallRecorder counting every invocation, cleared by Clear
//
// Example usage:
//
//	registry := mocks.NewRegistry()
//	registry.InstallDefaults()
//	registry.DynamoDB().GetItemFunc = func(ctx aws.Context, in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
//		return &dynamodb.GetItemOutput{}, nil
//	}
//	store := tasks.NewDynamoStore(registry.Clients().DynamoDB, "test-tasks-table")
package mocks
