// Command taskfn is the task API Lambda function behind the workshop's
// API Gateway proxy integration.
package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	rootconfig "github.com/workshopstudio/taskapi/config"
	"github.com/workshopstudio/taskapi/internal/awsclients"
	"github.com/workshopstudio/taskapi/internal/config"
	"github.com/workshopstudio/taskapi/internal/constants"
	"github.com/workshopstudio/taskapi/internal/logger"
	"github.com/workshopstudio/taskapi/internal/tasks"
)

func main() {
	logger.InitializeAndConfigure()

	consts := config.FromEnv()
	clients, err := awsclients.New(consts.Region)
	if err != nil {
		logger.Get().WithError(err).Fatal("Failed to create AWS clients")
	}

	handler := tasks.NewHandler(
		tasks.NewDynamoStore(clients.DynamoDB, consts.TableName),
		tasks.WithLogger(logger.Get()),
		tasks.WithNotifier(&tasks.Notifier{
			Lambda:       clients.Lambda,
			S3:           clients.S3,
			FunctionName: rootconfig.GetEnv(constants.EnvNotifyFunction, ""),
			Bucket:       consts.BucketName,
		}),
	)

	logger.InfoWithFields("Starting task function", map[string]interface{}{
		"region": consts.Region,
		"table":  consts.TableName,
	})
	lambda.Start(handler.Handle)
}
