// Package gateway emulates the API Gateway proxy integration locally: it turns
// HTTP requests into proxy events, invokes the task handler and writes the
// proxy response back.
package gateway

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/workshopstudio/taskapi/internal/api/middleware"
	"github.com/workshopstudio/taskapi/internal/tasks"
)

// DefaultStage is the stage name reported in the request context
const DefaultStage = "local"

// HealthPath answers liveness checks without invoking the handler
const HealthPath = "/health"

// HandlerFunc is the shape of a proxy-integrated Lambda handler
type HandlerFunc func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Config configures the emulator
type Config struct {
	Stage string
	Log   logrus.FieldLogger
}

// New creates a fiber app routing the task API paths to handler
func New(handler HandlerFunc, cfg Config) *fiber.App {
	if cfg.Stage == "" {
		cfg.Stage = DefaultStage
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(middleware.Logger(cfg.Log))

	app.Get(HealthPath, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	proxy := proxyHandler(handler, cfg.Stage)
	app.All(tasks.TasksPath, proxy)
	app.All(tasks.TasksPath+"/:"+tasks.PathTaskID, proxy)
	return app
}

func proxyHandler(handler HandlerFunc, stage string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := ToProxyRequest(c, stage)
		c.Set(middleware.RequestIDHeader, req.RequestContext.RequestID)

		resp, err := handler(c.UserContext(), req)
		if err != nil {
			return err
		}
		return WriteProxyResponse(c, resp)
	}
}

// ToProxyRequest converts the current fiber request into a proxy event
func ToProxyRequest(c *fiber.Ctx, stage string) events.APIGatewayProxyRequest {
	headers := make(map[string]string)
	multiHeaders := make(map[string][]string)
	for k, v := range c.GetReqHeaders() {
		multiHeaders[k] = v
		if len(v) > 0 {
			headers[k] = v[len(v)-1]
		}
	}

	resource := tasks.TasksPath
	var pathParams map[string]string
	if id := c.Params(tasks.PathTaskID); id != "" {
		resource = tasks.TasksPath + "/{" + tasks.PathTaskID + "}"
		pathParams = map[string]string{tasks.PathTaskID: id}
	}

	var query map[string]string
	if q := c.Queries(); len(q) > 0 {
		query = q
	}

	method := c.Method()
	return events.APIGatewayProxyRequest{
		Resource:              resource,
		Path:                  c.Path(),
		HTTPMethod:            method,
		Headers:               headers,
		MultiValueHeaders:     multiHeaders,
		QueryStringParameters: query,
		PathParameters:        pathParams,
		Body:                  string(c.Body()),
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID:  uuid.NewString(),
			Stage:      stage,
			HTTPMethod: method,
			Path:       c.Path(),
			Identity: events.APIGatewayRequestIdentity{
				SourceIP:  c.IP(),
				UserAgent: c.Get(fiber.HeaderUserAgent),
			},
		},
	}
}

// WriteProxyResponse copies a proxy response onto the fiber response
func WriteProxyResponse(c *fiber.Ctx, resp events.APIGatewayProxyResponse) error {
	for k, v := range resp.Headers {
		c.Set(k, v)
	}
	for k, values := range resp.MultiValueHeaders {
		for _, v := range values {
			c.Append(k, v)
		}
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	c.Status(status)
	if resp.Body == "" {
		return nil
	}

	if resp.IsBase64Encoded {
		body, err := base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "invalid base64 body from handler")
		}
		return c.Send(body)
	}
	return c.SendString(resp.Body)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	c.Set(tasks.HeaderAllowOrigin, tasks.AllowOriginAny)
	return c.Status(code).JSON(tasks.ErrorBody{Error: strings.TrimSpace(err.Error())})
}
