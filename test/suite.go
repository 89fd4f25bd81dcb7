package test

import (
	"github.com/stretchr/testify/suite"

	"github.com/workshopstudio/taskapi/test/mocks"
)

// Suite is a testify suite base that owns a TestEnvironment. Embed it and
// set Options before running the suite to customize the environment.
//
//	type TaskSuite struct {
//	    test.Suite
//	}
//
//	func TestTaskSuite(t *testing.T) {
//	    suite.Run(t, &TaskSuite{Suite: test.Suite{Options: []test.Option{test.WithDB(nil)}}})
//	}
type Suite struct {
	suite.Suite

	// Options are applied when the environment is built in SetupSuite
	Options []Option

	Env *TestEnvironment
}

// SetupSuite sets up the test environment
func (s *Suite) SetupSuite() {
	s.Env = NewTestEnvironment(s.T(), s.Options...)
}

// SetupTest clears recorded mock invocations before each test
func (s *Suite) SetupTest() {
	s.Env.BeforeEach()
}

// TearDownTest restores standard mock behavior after each test
func (s *Suite) TearDownTest() {
	s.Env.AfterEach()
}

// TearDownSuite tears down the test environment
func (s *Suite) TearDownSuite() {
	if s.Env != nil {
		s.Env.Cleanup()
	}
}

// Mocks returns the environment's mock registry
func (s *Suite) Mocks() *mocks.Registry {
	return s.Env.Mocks
}

// Fixtures returns the environment's fixture factories
func (s *Suite) Fixtures() *Fixtures {
	return s.Env.Fixtures
}
