package tasks_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/workshopstudio/taskapi/internal/tasks"
	"github.com/workshopstudio/taskapi/internal/types"
	"github.com/workshopstudio/taskapi/test"
	"github.com/workshopstudio/taskapi/test/mocks"
)

var handlerNow = time.Date(2024, 6, 18, 9, 30, 0, 0, time.UTC)

type HandlerTestSuite struct {
	test.Suite
	handler *tasks.Handler
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) SetupTest() {
	s.Suite.SetupTest()
	s.handler = s.Env.NewHandler(tasks.WithClock(func() time.Time { return handlerNow }))
}

func (s *HandlerTestSuite) call(opts test.EventOptions) events.APIGatewayProxyResponse {
	if opts.Headers == nil {
		opts.Headers = map[string]string{tasks.HeaderUserID: test.DefaultUserID}
	}
	resp, err := s.handler.Handle(s.Env.Context(), s.Fixtures().LambdaEvent(opts))
	s.Require().NoError(err)
	test.AssertValidAPIResponse(s.T(), resp)
	test.AssertCORSHeaders(s.T(), resp)
	return resp
}

func (s *HandlerTestSuite) seed(tasks ...types.Task) {
	for _, task := range tasks {
		s.Mocks().DynamoDB().Seed(s.Env.Constants.TableName, s.Fixtures().TaskItem(task))
	}
}

func (s *HandlerTestSuite) errorMessage(resp events.APIGatewayProxyResponse) string {
	var body tasks.ErrorBody
	s.Require().NoError(json.Unmarshal([]byte(resp.Body), &body))
	return body.Error
}

func (s *HandlerTestSuite) TestOptions() {
	resp := s.call(test.EventOptions{Method: http.MethodOptions, Path: "/tasks", Headers: map[string]string{}})
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Empty(resp.Body)
	s.Zero(s.Mocks().TotalCalls())
}

func (s *HandlerTestSuite) TestUnknownRoute() {
	resp := s.call(test.EventOptions{Path: "/projects"})
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal(tasks.ErrMsgRouteNotFound, s.errorMessage(resp))
}

func (s *HandlerTestSuite) TestMissingUser() {
	resp := s.call(test.EventOptions{Path: "/tasks", Headers: map[string]string{}})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(tasks.ErrMsgUserIDRequired, s.errorMessage(resp))
}

func (s *HandlerTestSuite) TestUserFromQuery() {
	s.seed(s.Fixtures().Task())
	resp := s.call(test.EventOptions{
		Path:                  "/tasks",
		Headers:               map[string]string{},
		QueryStringParameters: map[string]string{tasks.QueryUserID: test.DefaultUserID},
	})
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *HandlerTestSuite) TestMethodNotAllowed() {
	resp := s.call(test.EventOptions{Method: http.MethodPatch, Path: "/tasks"})
	s.Equal(http.StatusMethodNotAllowed, resp.StatusCode)
}

func (s *HandlerTestSuite) TestList() {
	f := s.Fixtures()
	mine := f.Task()
	other := f.RandomTask()
	s.seed(mine, other)

	resp := s.call(test.EventOptions{Path: "/tasks"})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var list tasks.ListTasksResponse
	s.Require().NoError(json.Unmarshal([]byte(resp.Body), &list))
	s.Equal(1, list.Count)
	s.Require().Len(list.Tasks, 1)
	s.Equal(mine.TaskID, list.Tasks[0].TaskID)
	s.Equal(1, s.Mocks().DynamoDB().Calls().Count(mocks.MethodQuery))
}

func (s *HandlerTestSuite) TestCreate() {
	resp := s.call(test.EventOptions{
		Method: http.MethodPost,
		Path:   "/tasks",
		Body:   map[string]interface{}{"title": "  Prepare slides  ", "tags": []string{"talk"}},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	test.AssertValidTask(s.T(), resp.Body)

	var task types.Task
	s.Require().NoError(json.Unmarshal([]byte(resp.Body), &task))
	s.Equal("Prepare slides", task.Title)
	s.Equal(test.DefaultUserID, task.UserID)
	s.Equal(types.TaskStatusTodo, task.Status)
	s.Equal(types.TaskPriorityMedium, task.Priority)
	s.Equal(handlerNow, task.CreatedAt)
	s.Equal(handlerNow, task.UpdatedAt)
	s.Equal([]string{"talk"}, task.Tags)

	s.Len(s.Mocks().DynamoDB().Items(s.Env.Constants.TableName), 1)

	invocations := s.Mocks().Lambda().Invocations()
	s.Require().Len(invocations, 1)
	s.Equal(test.NotifyFunctionName, *invocations[0].FunctionName)
	var event tasks.Event
	s.Require().NoError(json.Unmarshal(invocations[0].Payload, &event))
	s.Equal(tasks.EventTaskCreated, event.Type)
	s.Equal(task.TaskID, event.Task.TaskID)
}

func (s *HandlerTestSuite) TestCreate_InvalidInput() {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "malformed json", body: "{", want: tasks.ErrMsgInvalidReqBody},
		{name: "unknown priority", body: `{"title":"x","priority":"URGENT"}`, want: tasks.ErrMsgInvalidReqBody},
		{name: "missing title", body: `{"description":"no title"}`, want: "title"},
		{name: "blank title", body: `{"title":"   "}`, want: "title"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			event := s.Fixtures().LambdaEvent(test.EventOptions{
				Method:  http.MethodPost,
				Path:    "/tasks",
				Headers: map[string]string{tasks.HeaderUserID: test.DefaultUserID},
			})
			event.Body = tt.body
			resp, err := s.handler.Handle(s.Env.Context(), event)
			s.Require().NoError(err)
			s.Equal(http.StatusBadRequest, resp.StatusCode)
			s.Contains(s.errorMessage(resp), tt.want)
		})
	}
	s.Empty(s.Mocks().DynamoDB().Items(s.Env.Constants.TableName))
	s.Empty(s.Mocks().Lambda().Invocations())
}

func (s *HandlerTestSuite) TestGet() {
	task := s.Fixtures().Task()
	s.seed(task)

	resp := s.call(test.EventOptions{
		Path:           "/tasks/" + task.TaskID,
		PathParameters: map[string]string{tasks.PathTaskID: task.TaskID},
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var got types.Task
	s.Require().NoError(json.Unmarshal([]byte(resp.Body), &got))
	s.Equal(task, got)
}

func (s *HandlerTestSuite) TestGet_PathWithoutParameters() {
	task := s.Fixtures().Task()
	s.seed(task)

	resp := s.call(test.EventOptions{Path: "/tasks/" + task.TaskID})
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *HandlerTestSuite) TestGet_NotFound() {
	resp := s.call(test.EventOptions{Path: "/tasks/task-missing"})
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal(tasks.ErrMsgTaskNotFound, s.errorMessage(resp))
}

func (s *HandlerTestSuite) TestGet_OtherUsersTask() {
	task := s.Fixtures().Task(types.Task{UserID: "someone-else"})
	s.seed(task)

	resp := s.call(test.EventOptions{Path: "/tasks/" + task.TaskID})
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *HandlerTestSuite) TestUpdate() {
	task := s.Fixtures().Task()
	s.seed(task)

	resp := s.call(test.EventOptions{
		Method: http.MethodPut,
		Path:   "/tasks/" + task.TaskID,
		Body:   map[string]interface{}{"status": "IN_PROGRESS", "priority": "HIGH"},
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var got types.Task
	s.Require().NoError(json.Unmarshal([]byte(resp.Body), &got))
	s.Equal(types.TaskStatusInProgress, got.Status)
	s.Equal(types.TaskPriorityHigh, got.Priority)
	s.Equal(task.Title, got.Title)
	s.Equal(task.CreatedAt, got.CreatedAt)
	s.Equal(handlerNow, got.UpdatedAt)

	invocations := s.Mocks().Lambda().Invocations()
	s.Require().Len(invocations, 1)
	var event tasks.Event
	s.Require().NoError(json.Unmarshal(invocations[0].Payload, &event))
	s.Equal(tasks.EventTaskUpdated, event.Type)
}

func (s *HandlerTestSuite) TestUpdate_InvalidStatus() {
	task := s.Fixtures().Task()
	s.seed(task)

	resp := s.call(test.EventOptions{
		Method: http.MethodPut,
		Path:   "/tasks/" + task.TaskID,
		Body:   map[string]interface{}{"status": "BLOCKED"},
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HandlerTestSuite) TestUpdate_NotFound() {
	resp := s.call(test.EventOptions{
		Method: http.MethodPut,
		Path:   "/tasks/task-missing",
		Body:   map[string]interface{}{"title": "renamed"},
	})
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Empty(s.Mocks().Lambda().Invocations())
}

func (s *HandlerTestSuite) TestDelete() {
	task := s.Fixtures().Task()
	s.seed(task)

	resp := s.call(test.EventOptions{Method: http.MethodDelete, Path: "/tasks/" + task.TaskID})
	s.Require().Equal(http.StatusNoContent, resp.StatusCode)
	s.Empty(resp.Body)

	s.Empty(s.Mocks().DynamoDB().Items(s.Env.Constants.TableName))

	body, ok := s.Mocks().S3().Object(s.Env.Constants.BucketName, tasks.ArchiveKey(task))
	s.Require().True(ok, "deleted task is archived")
	var archived types.Task
	s.Require().NoError(json.Unmarshal(body, &archived))
	s.Equal(task.TaskID, archived.TaskID)

	invocations := s.Mocks().Lambda().Invocations()
	s.Require().Len(invocations, 1)
	var event tasks.Event
	s.Require().NoError(json.Unmarshal(invocations[0].Payload, &event))
	s.Equal(tasks.EventTaskDeleted, event.Type)
}

func (s *HandlerTestSuite) TestNotificationFailureIsLogged() {
	s.Mocks().Lambda().SimulateThrottling()
	s.Mocks().S3().SimulateAccessDenied()
	task := s.Fixtures().Task()
	s.seed(task)

	resp := s.call(test.EventOptions{Method: http.MethodDelete, Path: "/tasks/" + task.TaskID})
	s.Equal(http.StatusNoContent, resp.StatusCode)

	console := s.Env.Console
	s.Equal(2, console.Count(logrus.WarnLevel))
	s.Contains(console.Messages(), "Failed to archive task")
	s.Contains(console.Messages(), "Failed to publish task event")
}

func (s *HandlerTestSuite) TestStoreFailure() {
	s.Mocks().DynamoDB().SimulateThrottling()

	resp := s.call(test.EventOptions{Path: "/tasks"})
	s.Equal(http.StatusInternalServerError, resp.StatusCode)
	s.Equal(tasks.ErrMsgInternal, s.errorMessage(resp))
	s.Equal(1, s.Env.Console.Count(logrus.ErrorLevel))
}

func TestHandler_NoNotifier(t *testing.T) {
	env := test.NewTestEnvironment(t)
	handler := tasks.NewHandler(env.Store, tasks.WithLogger(logrus.New()))

	resp, err := handler.Handle(env.Context(), env.Fixtures.LambdaEvent(test.EventOptions{
		Method:  http.MethodPost,
		Path:    "/tasks",
		Body:    map[string]string{"title": "quiet task"},
		Headers: map[string]string{tasks.HeaderUserID: test.DefaultUserID},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Empty(t, env.Mocks.Lambda().Invocations())

	var task types.Task
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &task))
	assert.Regexp(t, `^task-`, task.TaskID)
}
