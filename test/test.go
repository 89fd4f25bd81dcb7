package test

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/workshopstudio/taskapi/test/mocks"
)

// DefaultTestTimeout is the default timeout for test environments.
const DefaultTestTimeout = 30 * time.Second

// DefaultSeed seeds the random data generator unless WithSeed is given
const DefaultSeed int64 = 1

// Option represents a configuration option for the test environment.
type Option func(*TestEnvironment)

// WithTimeout returns an option that sets the test environment timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(env *TestEnvironment) {
		if env.cancelFunc != nil {
			env.cancelFunc()
		}
		env.ctx, env.cancelFunc = context.WithTimeout(context.Background(), timeout)
	}
}

// WithCleanupFunc returns an option that adds a cleanup function to be
// called when the environment is cleaned up. Later functions run first.
func WithCleanupFunc(cleanup func()) Option {
	return func(env *TestEnvironment) {
		env.addCleanup(cleanup)
	}
}

// WithSeed returns an option that seeds the random data generator
func WithSeed(seed int64) Option {
	return func(env *TestEnvironment) {
		env.seed = seed
	}
}

// WithDB returns an option that backs the task store with a database.
// If nil is provided, a new file-based sqlite database is created.
func WithDB(db *gorm.DB) Option {
	return func(env *TestEnvironment) {
		env.useDB = true
		env.DB = db
	}
}

// WithServer returns an option that serves the task API over HTTP through
// the local gateway.
func WithServer() Option {
	return func(env *TestEnvironment) {
		env.useServer = true
	}
}

// WithConsole returns an option that controls log capture. Capture is on by
// default; pass false to let log output reach stdout.
func WithConsole(capture bool) Option {
	return func(env *TestEnvironment) {
		env.captureConsole = capture
	}
}

// WithMock returns an option that substitutes double for the named service
func WithMock(name string, double mocks.Double) Option {
	return func(env *TestEnvironment) {
		env.Mocks.Install(name, double)
	}
}
