package test

import (
	"os"
	"testing"

	"github.com/workshopstudio/taskapi/internal/config"
	"github.com/workshopstudio/taskapi/internal/constants"
	"github.com/workshopstudio/taskapi/internal/logger"
)

// runner is the part of testing.M that Main needs
type runner interface {
	Run() int
}

// Main prepares the process for a package's tests and runs them. Call it
// from TestMain:
//
//	func TestMain(m *testing.M) {
//	    test.Main(m)
//	}
func Main(m *testing.M) {
	os.Exit(setup(m))
}

func setup(m runner) int {
	dotEnvErr := config.LoadDotEnv()
	logger.InitializeAndConfigure()
	if dotEnvErr != nil {
		logger.Warnf("Ignoring dotenv file: %v", dotEnvErr)
	}
	for k, v := range config.TestEnv() {
		if _, ok := os.LookupEnv(k); ok {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			logger.Warnf("Failed to set %s: %v", k, err)
		}
	}
	logger.InfoWithFields("Test environment setup complete", map[string]interface{}{
		"region": os.Getenv(constants.EnvAWSRegion),
		"table":  os.Getenv(constants.EnvTableName),
	})
	return m.Run()
}
