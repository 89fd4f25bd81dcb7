// Package test provides the bootstrap every task API test runs under.
//
// A TestEnvironment bundles:
//
//   - Mocks: a registry of in-memory doubles for DynamoDB, S3, Lambda and
//     CloudFormation, so no test reaches AWS
//
//   - Fixtures: factories for proxy events, Lambda contexts, task records
//     and gateway responses, plus a seeded random data generator
//
//   - Console capture: log output is swallowed and recorded until the
//     environment is cleaned up
//
//   - Optional database and HTTP server for end-to-end tests
//
// Example Usage:
//
//	func TestExample(t *testing.T) {
//	    env := test.NewTestEnvironment(t)
//
//	    env.Run("lists tasks", func(t *testing.T) {
//	        resp, err := env.Handler.Handle(env.Context(), env.Fixtures.LambdaEvent(test.EventOptions{
//	            Path:    "/tasks",
//	            Headers: map[string]string{"X-User-Id": "user-123"},
//	        }))
//	        require.NoError(t, err)
//	        test.AssertValidAPIResponse(t, resp)
//	        test.AssertCORSHeaders(t, resp)
//	    })
//	}
//
// Packages that want the process-level defaults (.env.test, environment
// variables, logger configuration) call Main from TestMain.
package test
