// Package constants provides centralized definitions of constants used throughout the application
package constants

// Environment variable names
const (
	// EnvAppEnv is the runtime mode flag; "test" while the suite runs
	EnvAppEnv = "APP_ENV"

	// EnvAWSRegion is the AWS region the functions run in
	EnvAWSRegion = "AWS_REGION"

	// EnvTableName is the DynamoDB table holding tasks
	EnvTableName = "TABLE_NAME"

	// EnvAPIEndpoint is the base URL of the deployed task API
	EnvAPIEndpoint = "API_ENDPOINT"

	// EnvBucketName is the S3 bucket deleted tasks are archived to
	EnvBucketName = "BUCKET_NAME"

	// EnvStackName is the CloudFormation stack the workshop deploys
	EnvStackName = "STACK_NAME"

	// EnvNotifyFunction is the Lambda function notified of task changes
	EnvNotifyFunction = "NOTIFY_FUNCTION"

	// EnvLogLevel selects the logrus level
	EnvLogLevel = "LOG_LEVEL"

	// EnvLogFormat selects "json" (default) or "text" output
	EnvLogFormat = "LOG_FORMAT"

	// EnvTestTimeout overrides the default per-environment test timeout
	EnvTestTimeout = "TEST_TIMEOUT"

	// EnvTestVerbose leaves log output on the console instead of capturing it
	EnvTestVerbose = "TEST_VERBOSE"
)

// Database environment variable names, read by the postgres store
const (
	EnvDBHost     = "DB_HOST"
	EnvDBPort     = "DB_PORT"
	EnvDBUser     = "DB_USER"
	EnvDBPassword = "DB_PASSWORD"
	EnvDBName     = "DB_NAME"
	EnvDBSSLMode  = "DB_SSL_MODE"
)

// AppEnvTest is the value of EnvAppEnv while tests run
const AppEnvTest = "test"
