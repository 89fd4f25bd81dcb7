package test

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/workshopstudio/taskapi/internal/db"
	"github.com/workshopstudio/taskapi/internal/db/repos"
)

// NewFileBasedTestDB creates a new file-based SQLite database for testing.
// It returns the database connection and the path to the temporary directory.
func NewFileBasedTestDB() (*gorm.DB, string, error) {
	tmpDir, err := os.MkdirTemp("", "taskapi_test")
	if err != nil {
		return nil, "", fmt.Errorf("failed to create temporary directory: %w", err)
	}
	conn, err := db.OpenSQLite(filepath.Join(tmpDir, "taskapi_test.db"))
	if err != nil {
		// Try to clean up the temporary directory, but don't fail if cleanup fails
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			fmt.Printf("Warning: failed to remove temporary directory after database error: %v\n", rmErr)
		}
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}
	return conn, tmpDir, nil
}

// NewInMemoryDB creates a migrated in-memory SQLite database
func NewInMemoryDB() (*gorm.DB, error) {
	return db.OpenSQLite(db.MemoryDSN)
}

// CleanupTestDB closes the database connection and removes the temporary directory.
func CleanupTestDB(conn *gorm.DB, tmpDir string) {
	if err := db.Close(conn); err != nil {
		fmt.Printf("Error closing database connection: %v\n", err)
	}
	if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
		fmt.Printf("Error removing temporary directory: %v\n", rmErr)
	}
}

// SetupTestDB configures the environment to use the provided database connection.
// If nil is provided, a new file-based database will be created and removed
// on cleanup; a provided connection is left open.
func SetupTestDB(env *TestEnvironment, database *gorm.DB) {
	if database != nil {
		env.DB = database
		env.Require().NoError(db.Migrate(env.DB), "Failed to run database migrations")
	} else {
		conn, tmpDir, err := NewFileBasedTestDB()
		env.Require().NoError(err, "Failed to create file-based database")
		env.DB = conn
		env.addCleanup(func() {
			CleanupTestDB(conn, tmpDir)
		})
	}

	env.TaskRepo = repos.NewTaskRepository(env.DB)
}
