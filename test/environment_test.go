package test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshopstudio/taskapi/internal/config"
	"github.com/workshopstudio/taskapi/internal/logger"
	"github.com/workshopstudio/taskapi/test/mocks"
)

func TestNewTestEnvironment(t *testing.T) {
	env := NewTestEnvironment(t)
	defer env.Cleanup()

	// Basic environment checks
	assert.NotNil(t, env.t, "testing.T should be set")
	assert.Same(t, t, env.T())
	assert.NotNil(t, env.ctx, "context should be set")
	assert.NotNil(t, env.cancelFunc, "cancel function should be set")
	assert.NotNil(t, env.Fixtures, "fixtures should be set")
	assert.NotNil(t, env.Console, "console should be captured by default")
	assert.NotNil(t, env.Store, "store should be set")
	assert.NotNil(t, env.Handler, "handler should be set")
	assert.Nil(t, env.DB, "database is opt-in")
	assert.Nil(t, env.Server, "server is opt-in")

	deadline, ok := env.Context().Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(DefaultTestTimeout), deadline, 5*time.Second)

	for _, name := range []string{
		mocks.ServiceDynamoDB,
		mocks.ServiceDynamoDBDocument,
		mocks.ServiceLambda,
		mocks.ServiceS3,
		mocks.ServiceCloudFormation,
	} {
		assert.True(t, env.Mocks.Installed(name), name)
	}
	assert.Same(t, env.Mocks.DynamoDB(), env.Clients.DynamoDB)
}

func TestTestEnvironment_ProcessEnv(t *testing.T) {
	env := NewTestEnvironment(t)
	defer env.Cleanup()

	assert.Equal(t, "test", os.Getenv("APP_ENV"))
	assert.Equal(t, config.TestRegion, os.Getenv("AWS_REGION"))
	assert.Equal(t, config.TestTableName, os.Getenv("TABLE_NAME"))
	assert.Equal(t, config.TestAPIEndpoint, os.Getenv("API_ENDPOINT"))
	assert.Equal(t, config.TestBucketName, os.Getenv("BUCKET_NAME"))
	assert.Equal(t, config.TestStackName, os.Getenv("STACK_NAME"))
	assert.Equal(t, config.TestConstants(), config.FromEnv())
}

func TestTestEnvironment_Options(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		env := NewTestEnvironment(t, WithTimeout(time.Second))
		deadline, ok := env.Context().Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)

		ctx, cancel := env.WithTimeout(time.Millisecond)
		defer cancel()
		<-ctx.Done()
		assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
	})

	t.Run("cleanup functions run newest first", func(t *testing.T) {
		var order []int
		env := NewTestEnvironment(t,
			WithCleanupFunc(func() { order = append(order, 1) }),
			WithCleanupFunc(func() { order = append(order, 2) }),
		)
		env.Cleanup()
		env.Cleanup()
		assert.Equal(t, []int{2, 1}, order)
		assert.ErrorIs(t, env.Context().Err(), context.Canceled)
	})

	t.Run("seed", func(t *testing.T) {
		a := NewTestEnvironment(t, WithSeed(99))
		b := NewTestEnvironment(t, WithSeed(99))
		assert.Equal(t, a.Fixtures.Gen.UserID(), b.Fixtures.Gen.UserID())
	})

	t.Run("console disabled", func(t *testing.T) {
		env := NewTestEnvironment(t, WithConsole(false))
		assert.Nil(t, env.Console)
	})

	t.Run("custom mock", func(t *testing.T) {
		custom := mocks.NewMockLambda(mocks.NewStandardResponses())
		env := NewTestEnvironment(t, WithMock(mocks.ServiceLambda, custom))
		assert.Same(t, custom, env.Mocks.Lambda())
		assert.Same(t, custom, env.Clients.Lambda)
	})
}

func TestTestEnvironment_Console(t *testing.T) {
	original := logger.Get().Out

	env := NewTestEnvironment(t)
	logger.Warn("noisy")
	require.NotNil(t, env.Console.Last())
	assert.Equal(t, "noisy", env.Console.Last().Message)
	assert.Equal(t, 1, env.Console.Count(logrus.WarnLevel))

	env.BeforeEach()
	assert.Empty(t, env.Console.Entries())

	env.Cleanup()
	assert.True(t, env.Console.Restored())
	assert.Equal(t, original, logger.Get().Out)
}

func TestTestEnvironment_Hooks(t *testing.T) {
	env := NewTestEnvironment(t)
	ctx := env.Context()
	invoke := &lambda.InvokeInput{FunctionName: aws.String(NotifyFunctionName)}

	env.Run("first", func(t *testing.T) {
		env.Mocks.Lambda().SimulateThrottling()
		_, err := env.Mocks.Lambda().InvokeWithContext(ctx, invoke)
		assert.ErrorIs(t, err, mocks.ErrThrottled)
		assert.Equal(t, 1, env.Mocks.TotalCalls())
	})

	env.Run("second", func(t *testing.T) {
		assert.Zero(t, env.Mocks.TotalCalls(), "calls are cleared before each test")
		_, err := env.Mocks.Lambda().InvokeWithContext(ctx, invoke)
		assert.NoError(t, err, "overrides are restored after each test")
	})
}

// brokenDouble panics from its hooks while armed
type brokenDouble struct {
	armed bool
	calls *mocks.CallRecorder
}

func (d *brokenDouble) Name() string { return "broken" }

func (d *brokenDouble) Calls() *mocks.CallRecorder {
	if d.armed {
		panic("calls unavailable")
	}
	return d.calls
}

func (d *brokenDouble) Clear() {}

func (d *brokenDouble) ResetToStandard() {
	if d.armed {
		panic("reset unavailable")
	}
}

type errorRecorder struct {
	errors []string
}

func (r *errorRecorder) Helper() {}

func (r *errorRecorder) Errorf(format string, args ...interface{}) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func TestTestEnvironment_HookPanicsFailTheTest(t *testing.T) {
	env := NewTestEnvironment(t)
	broken := &brokenDouble{armed: true, calls: mocks.NewCallRecorder()}
	env.Mocks.Install(broken.Name(), broken)
	defer func() { broken.armed = false }()

	rec := &errorRecorder{}
	ran := false
	env.runHooked(rec, func() { ran = true })

	assert.False(t, ran, "the test body is skipped when BeforeEach fails")
	require.Len(t, rec.errors, 2)
	assert.Contains(t, rec.errors[0], "BeforeEach panicked: calls unavailable")
	assert.Contains(t, rec.errors[1], "AfterEach panicked: reset unavailable")

	rec = &errorRecorder{}
	broken.armed = false
	env.runHooked(rec, func() { ran = true })
	assert.True(t, ran)
	assert.Empty(t, rec.errors)
}

func TestTestEnvironment_BackgroundDuringRestore(t *testing.T) {
	env := NewTestEnvironment(t)
	invoke := &lambda.InvokeInput{FunctionName: aws.String(NotifyFunctionName)}
	stop := make(chan struct{})

	env.Run("background invokes outlive the test", func(t *testing.T) {
		started := make(chan struct{})
		env.Background(func(ctx context.Context) error {
			close(started)
			for {
				select {
				case <-stop:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				_, _ = env.Mocks.Lambda().InvokeWithContext(ctx, invoke)
			}
		})
		<-started
		env.Mocks.Lambda().SimulateThrottling()
	})

	env.Mocks.Lambda().SimulateNotFound()
	env.AfterEach()
	close(stop)
	env.Cleanup()

	_, err := env.Mocks.Lambda().InvokeWithContext(context.Background(), invoke)
	assert.NoError(t, err, "standard behavior is restored")
}

func TestTestEnvironment_Background(t *testing.T) {
	env := NewTestEnvironment(t)

	done := make(chan struct{})
	env.Background(func(ctx context.Context) error {
		<-ctx.Done()
		close(done)
		return errors.New("stopped")
	})
	env.Background(func(context.Context) error {
		panic("unexpected")
	})

	console := env.Console
	env.Cleanup()

	select {
	case <-done:
	default:
		t.Fatal("cleanup must wait for background work")
	}
	var messages []string
	for _, e := range console.Entries() {
		if e.Level == logrus.ErrorLevel {
			messages = append(messages, e.Message)
		}
	}
	assert.ElementsMatch(t, []string{
		"Unhandled error in background task",
		"Unhandled panic in background task",
	}, messages)
}

func TestTestEnvironment_Database(t *testing.T) {
	t.Run("default file-based database", func(t *testing.T) {
		env := NewTestEnvironment(t, WithDB(nil))
		defer env.Cleanup()

		require.NotNil(t, env.DB, "database should be initialized")
		require.NotNil(t, env.TaskRepo, "task repository should be initialized")
		assert.Same(t, env.TaskRepo, env.Store)

		task := env.Fixtures.Task()
		require.NoError(t, env.Store.Create(env.Context(), &task))
		got, err := env.TaskRepo.Get(env.Context(), task.UserID, task.TaskID)
		require.NoError(t, err)
		assert.Equal(t, task, *got)
	})

	t.Run("custom database connection", func(t *testing.T) {
		customDB, err := NewInMemoryDB()
		require.NoError(t, err, "should create custom database")

		env := NewTestEnvironment(t, WithDB(customDB))
		defer env.Cleanup()
		assert.Same(t, customDB, env.DB)
	})
}

func TestTestEnvironment_StackOutputs(t *testing.T) {
	env := NewTestEnvironment(t)
	out := env.StackOutputs()
	assert.Equal(t, config.TestAPIEndpoint, out.APIEndpoint)
	assert.Equal(t, config.TestTableName, out.TableName)
	assert.Equal(t, config.TestBucketName, out.BucketName)
}

func TestTestEnvironment_EnvOverrides(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "2s")
	t.Setenv("TEST_VERBOSE", "true")

	env := NewTestEnvironment(t)
	deadline, ok := env.Context().Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(2*time.Second), deadline, time.Second)
	assert.Nil(t, env.Console, "verbose runs leave logs on the console")
}
