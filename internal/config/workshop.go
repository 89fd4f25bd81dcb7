// Package config resolves the workshop's deployment constants and the
// process environment the task API reads.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"

	rootconfig "github.com/workshopstudio/taskapi/config"
	"github.com/workshopstudio/taskapi/internal/constants"
)

// Test defaults for the workshop deployment
const (
	TestRegion      = "us-east-1"
	TestTableName   = "test-tasks-table"
	TestAPIEndpoint = "https://test-api.execute-api.us-east-1.amazonaws.com/test"
	TestBucketName  = "test-workshop-bucket"
	TestStackName   = "test-workshop-stack"
	TestAccountID   = "123456789012"
)

// DefaultDotEnvFile is the dotenv file loaded before the suite runs
const DefaultDotEnvFile = ".env.test"

// Constants describes the deployed workshop resources
type Constants struct {
	Region      string `json:"AWS_REGION" yaml:"aws_region"`
	TableName   string `json:"TABLE_NAME" yaml:"table_name"`
	APIEndpoint string `json:"API_ENDPOINT" yaml:"api_endpoint"`
	BucketName  string `json:"BUCKET_NAME" yaml:"bucket_name"`
	StackName   string `json:"STACK_NAME" yaml:"stack_name"`
}

// TestConstants returns the constants every test sees by default
func TestConstants() Constants {
	return Constants{
		Region:      TestRegion,
		TableName:   TestTableName,
		APIEndpoint: TestAPIEndpoint,
		BucketName:  TestBucketName,
		StackName:   TestStackName,
	}
}

// FromEnv resolves the constants from the environment, falling back to the
// test defaults for anything unset.
func FromEnv() Constants {
	return Constants{
		Region:      rootconfig.GetEnv(constants.EnvAWSRegion, TestRegion),
		TableName:   rootconfig.GetEnv(constants.EnvTableName, TestTableName),
		APIEndpoint: rootconfig.GetEnv(constants.EnvAPIEndpoint, TestAPIEndpoint),
		BucketName:  rootconfig.GetEnv(constants.EnvBucketName, TestBucketName),
		StackName:   rootconfig.GetEnv(constants.EnvStackName, TestStackName),
	}
}

// TestEnv returns the environment variables set for code under test.
// The values are informational and are not validated.
func TestEnv() map[string]string {
	return map[string]string{
		constants.EnvAppEnv:      constants.AppEnvTest,
		constants.EnvAWSRegion:   TestRegion,
		constants.EnvTableName:   TestTableName,
		constants.EnvAPIEndpoint: TestAPIEndpoint,
	}
}

// GetEnvironmentVars returns the constants as environment variables
func (c Constants) GetEnvironmentVars() map[string]string {
	return map[string]string{
		constants.EnvAWSRegion:   c.Region,
		constants.EnvTableName:   c.TableName,
		constants.EnvAPIEndpoint: c.APIEndpoint,
		constants.EnvBucketName:  c.BucketName,
		constants.EnvStackName:   c.StackName,
	}
}

// LoadDotEnv loads the given dotenv files without overriding variables that
// are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{DefaultDotEnvFile}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}
