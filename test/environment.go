package test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	rootconfig "github.com/workshopstudio/taskapi/config"
	"github.com/workshopstudio/taskapi/internal/awsclients"
	"github.com/workshopstudio/taskapi/internal/config"
	"github.com/workshopstudio/taskapi/internal/constants"
	"github.com/workshopstudio/taskapi/internal/db/repos"
	"github.com/workshopstudio/taskapi/internal/logger"
	"github.com/workshopstudio/taskapi/internal/stack"
	"github.com/workshopstudio/taskapi/internal/tasks"
	"github.com/workshopstudio/taskapi/test/mocks"
)

// NotifyFunctionName is the notification function the test handler invokes
const NotifyFunctionName = "test-notify-function"

// TestEnvironment encapsulates everything a task API test runs against.
// It provides:
//   - Mocked AWS services with standard responses
//   - Fixture factories and a seeded data generator
//   - Captured log output
//   - The workshop environment variables
//   - Optionally a database-backed store and a real HTTP server
type TestEnvironment struct {
	t *testing.T // The testing.T instance for this environment

	// Mock services
	Mocks   *mocks.Registry
	Clients *awsclients.Clients

	// Test data
	Fixtures  *Fixtures
	Constants config.Constants

	// Captured log output, nil when capture is disabled
	Console *logger.Console

	// Code under test
	Store   tasks.Store
	Handler *tasks.Handler

	// Database components
	DB       *gorm.DB
	TaskRepo *repos.TaskRepository

	// Server components
	App    *fiber.App
	Server *httptest.Server
	Client *http.Client

	// Context management
	ctx        context.Context
	cancelFunc context.CancelFunc

	seed           int64
	captureConsole bool
	useDB          bool
	useServer      bool

	background sync.WaitGroup

	// Cleanup functions, run last to first
	cleanups    []func()
	cleanupOnce sync.Once
}

// NewTestEnvironment creates a new test environment with the given options.
// Cleanup is registered with t.Cleanup and may also be called directly.
// The environment sets process environment variables through t.Setenv, so
// it cannot be used from parallel tests.
func NewTestEnvironment(t *testing.T, opts ...Option) *TestEnvironment {
	t.Helper()

	// Create environment with default timeout
	timeout := rootconfig.GetEnvDuration(constants.EnvTestTimeout, DefaultTestTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	env := &TestEnvironment{
		t:              t,
		ctx:            ctx,
		cancelFunc:     cancel,
		Mocks:          mocks.NewRegistry(),
		Constants:      config.TestConstants(),
		seed:           DefaultSeed,
		captureConsole: !rootconfig.GetEnvBool(constants.EnvTestVerbose, false),
	}
	env.Mocks.InstallDefaults()
	t.Cleanup(env.Cleanup)

	// Apply additional options
	for _, opt := range opts {
		opt(env)
	}

	env.Fixtures = NewFixtures(NewGenerator(env.seed))
	env.Clients = env.Mocks.Clients()
	for k, v := range config.TestEnv() {
		t.Setenv(k, v)
	}
	for k, v := range env.Constants.GetEnvironmentVars() {
		t.Setenv(k, v)
	}

	if env.captureConsole {
		env.Console = logger.Capture()
		env.addCleanup(env.Console.Restore)
	}
	if env.useDB {
		SetupTestDB(env, env.DB)
	}
	env.Store = env.newStore()
	env.Handler = env.NewHandler()
	if env.useServer {
		SetupServer(env)
	}

	return env
}

// NewHandler builds a task handler over the environment's store, wired to
// the installed Lambda and S3 doubles.
func (e *TestEnvironment) NewHandler(opts ...tasks.HandlerOption) *tasks.Handler {
	clients := e.Mocks.Clients()
	defaults := []tasks.HandlerOption{
		tasks.WithNotifier(&tasks.Notifier{
			Lambda:       clients.Lambda,
			S3:           clients.S3,
			FunctionName: NotifyFunctionName,
			Bucket:       e.Constants.BucketName,
		}),
		tasks.WithLogger(logger.Get()),
		tasks.WithIDGenerator(e.Fixtures.Gen.TaskID),
	}
	return tasks.NewHandler(e.Store, append(defaults, opts...)...)
}

func (e *TestEnvironment) newStore() tasks.Store {
	if e.TaskRepo != nil {
		return e.TaskRepo
	}
	return tasks.NewDynamoStore(e.Mocks.Clients().DynamoDB, e.Constants.TableName)
}

// BeforeEach resets recorded mock invocations and captured log entries
func (e *TestEnvironment) BeforeEach() {
	e.Mocks.ClearCalls()
	if e.Console != nil {
		e.Console.Reset()
	}
}

// AfterEach returns every mock to its standard behavior
func (e *TestEnvironment) AfterEach() {
	e.Mocks.Restore()
}

// Run runs fn as a subtest wrapped in BeforeEach and AfterEach. A panic in
// either hook fails the subtest; fn is skipped when BeforeEach panics.
func (e *TestEnvironment) Run(name string, fn func(t *testing.T)) bool {
	e.t.Helper()
	return e.t.Run(name, func(t *testing.T) {
		e.runHooked(t, func() { fn(t) })
	})
}

// hookReporter is the part of testing.T the hooks report failures through
type hookReporter interface {
	Helper()
	Errorf(format string, args ...interface{})
}

func (e *TestEnvironment) runHooked(t hookReporter, fn func()) {
	t.Helper()
	defer runHook(t, "AfterEach", e.AfterEach)
	if !runHook(t, "BeforeEach", e.BeforeEach) {
		return
	}
	fn()
}

// runHook runs hook and reports a panic as a test error
func runHook(t hookReporter, name string, hook func()) (ok bool) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("%s panicked: %v", name, r)
			ok = false
		}
	}()
	hook()
	return true
}

// Background runs fn on its own goroutine. Errors and panics are logged and
// never fail the test. Cleanup waits for fn to return.
func (e *TestEnvironment) Background(fn func(ctx context.Context) error) {
	e.background.Add(1)
	go func() {
		defer e.background.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorWithFields("Unhandled panic in background task", map[string]interface{}{
					"panic": fmt.Sprint(r),
				})
			}
		}()
		if err := fn(e.ctx); err != nil {
			logger.Get().WithError(err).Error("Unhandled error in background task")
		}
	}()
}

// StackOutputs resolves the workshop stack outputs from the CloudFormation double
func (e *TestEnvironment) StackOutputs() *stack.Outputs {
	e.t.Helper()
	out, err := stack.Describe(e.ctx, e.Mocks.Clients().CloudFormation, e.Constants.StackName)
	e.Require().NoError(err, "Failed to describe stack")
	return out
}

// Context returns the environment's context, which is automatically
// canceled when the environment is cleaned up.
func (e *TestEnvironment) Context() context.Context {
	return e.ctx
}

// Cleanup tears down the test environment, releasing all resources.
// It is safe to call more than once.
func (e *TestEnvironment) Cleanup() {
	e.cleanupOnce.Do(func() {
		if e.cancelFunc != nil {
			e.cancelFunc()
		}
		e.background.Wait()
		for i := len(e.cleanups) - 1; i >= 0; i-- {
			if e.cleanups[i] != nil {
				e.cleanups[i]()
			}
		}
	})
}

// Require returns a require.Assertions instance for this environment.
// This is a convenience method to avoid passing t around.
func (e *TestEnvironment) Require() *require.Assertions {
	return require.New(e.t)
}

// WithTimeout returns a new context with the specified timeout.
// The returned context is a child of the environment's context.
func (e *TestEnvironment) WithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(e.ctx, timeout)
}

// T returns the testing.T instance for this environment.
// This is useful for test helpers that need access to the test instance.
func (e *TestEnvironment) T() *testing.T {
	return e.t
}

func (e *TestEnvironment) addCleanup(fn func()) {
	e.cleanups = append(e.cleanups, fn)
}
