package test

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/workshopstudio/taskapi/internal/constants"
	"github.com/workshopstudio/taskapi/internal/gateway"
	"github.com/workshopstudio/taskapi/internal/logger"
)

// testClientTimeout is the timeout for test HTTP client requests
const testClientTimeout = 5 * time.Second

// SetupServer serves the environment's handler through the local gateway
func SetupServer(env *TestEnvironment) {
	env.App = gateway.New(env.Handler.Handle, gateway.Config{
		Stage: DefaultStage,
		Log:   logger.Get(),
	})

	// Create test server using adaptor to convert Fiber app to http.Handler
	env.Server = httptest.NewServer(adaptor.FiberApp(env.App))
	env.Client = &http.Client{Timeout: testClientTimeout}
	env.Constants.APIEndpoint = env.Server.URL
	env.t.Setenv(constants.EnvAPIEndpoint, env.Server.URL)

	env.addCleanup(func() {
		if env.Server != nil {
			env.Server.Close()
		}
	})
}
