package repos

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/workshopstudio/taskapi/internal/db"
	"github.com/workshopstudio/taskapi/internal/types"
)

// DBRepositoryTestSuite provides a base test suite for repository tests
type DBRepositoryTestSuite struct {
	suite.Suite
	db       *gorm.DB
	ctx      context.Context
	taskRepo *TaskRepository
	rnd      *rand.Rand
	clock    time.Time
}

func (s *DBRepositoryTestSuite) SetupTest() {
	conn, err := db.OpenSQLite(db.MemoryDSN)
	require.NoError(s.T(), err, "Failed to create in-memory database")

	s.db = conn
	s.taskRepo = NewTaskRepository(s.db)
	s.ctx = context.Background()
	s.rnd = rand.New(rand.NewSource(1))
	s.clock = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (s *DBRepositoryTestSuite) TearDownTest() {
	_ = db.Close(s.db)
}

// Helper methods for creating test data

func (s *DBRepositoryTestSuite) randomTask(userID string) types.Task {
	s.clock = s.clock.Add(time.Minute)
	return types.Task{
		TaskID:    fmt.Sprintf("task-%d", s.rnd.Int63()),
		UserID:    userID,
		Title:     fmt.Sprintf("task %d", s.rnd.Intn(1000)),
		Status:    types.TaskStatusTodo,
		Priority:  types.TaskPriorityMedium,
		Tags:      []string{"test"},
		CreatedAt: s.clock,
		UpdatedAt: s.clock,
	}
}

func (s *DBRepositoryTestSuite) createTestTask(userID string) types.Task {
	task := s.randomTask(userID)
	s.Require().NoError(s.taskRepo.Create(s.ctx, &task))
	return task
}

// TestDBRepository runs the test suite for the DBRepository to verify no panic
func TestDBRepository(t *testing.T) {
	suite.Run(t, new(DBRepositoryTestSuite))
}
