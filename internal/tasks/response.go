package tasks

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// Response header names and values shared by every reply
const (
	HeaderContentType     = "Content-Type"
	HeaderAllowOrigin     = "Access-Control-Allow-Origin"
	HeaderAllowHeaders    = "Access-Control-Allow-Headers"
	HeaderAllowMethods    = "Access-Control-Allow-Methods"
	ContentTypeJSON       = "application/json"
	AllowOriginAny        = "*"
	allowedRequestHeaders = "Content-Type,Authorization,X-User-Id"
	allowedRequestMethods = "GET,POST,PUT,DELETE,OPTIONS"
)

// ErrorBody is the JSON body of every error response
type ErrorBody struct {
	Error string `json:"error"`
}

// DefaultHeaders returns the headers attached to every response
func DefaultHeaders() map[string]string {
	return map[string]string{
		HeaderContentType:  ContentTypeJSON,
		HeaderAllowOrigin:  AllowOriginAny,
		HeaderAllowHeaders: allowedRequestHeaders,
		HeaderAllowMethods: allowedRequestMethods,
	}
}

// Respond builds a proxy response with a JSON body
func Respond(status int, body interface{}) events.APIGatewayProxyResponse {
	resp := events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    DefaultHeaders(),
	}
	if body == nil {
		return resp
	}
	data, err := json.Marshal(body)
	if err != nil {
		resp.StatusCode = http.StatusInternalServerError
		data, _ = json.Marshal(ErrorBody{Error: "failed to encode response"})
	}
	resp.Body = string(data)
	return resp
}

// RespondError builds an error response
func RespondError(status int, msg string) events.APIGatewayProxyResponse {
	return Respond(status, ErrorBody{Error: msg})
}
