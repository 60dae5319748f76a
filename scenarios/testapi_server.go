package scenarios

import (
	"context"

	"github.com/apichallenge/api-test-harness/config"
	"github.com/apichallenge/api-test-harness/data"
	"github.com/apichallenge/api-test-harness/framework"
	"github.com/apichallenge/api-test-harness/framework/harness"
	"github.com/apichallenge/api-test-harness/framework/runner"

	"github.com/stretchr/testify/require"
)

// APITestContext is the value returned by runner.T.Context() in every scenario.
type APITestContext struct {
	launcher      ServerLauncher
	config        config.Config
	invalidLogins []data.InvalidLogin
	employees     data.EmployeeFixtures
}

func apiContext(t *runner.T) APITestContext {
	return t.Context().(APITestContext)
}

// StartServer launches a fresh server for the current test scope and returns a client for it.
// Any setup failure terminates the test. The server is stopped and its files are removed when
// the scope exits, whatever the outcome; problems during that teardown only go to the debug log.
func StartServer(t *runner.T) *APIClient {
	t.Helper()
	ctx := apiContext(t)
	cfg := ctx.config

	logger := framework.NewProcessLogger("harness", "debug", t.DebugLogger())
	server, err := ctx.launcher.NewServer(logger)
	require.NoError(t, err)
	t.Defer(func() {
		if err := server.Close(); err != nil {
			t.Debug("Teardown problems: %s", err)
		}
	})

	t.Debug("Starting %s", server.Describe())
	launchCtx, cancel := context.WithTimeout(context.Background(), cfg.ReadyTimeout+cfg.StopTimeout+cfg.ReadyDelay)
	defer cancel()
	require.NoError(t, server.Launch(launchCtx), "server setup failed")

	return NewAPIClient(harness.NewAPIService(cfg.BaseURL(), cfg.RequestTimeout), t.DebugLogger())
}

// StartServerAndLogIn is StartServer followed by EnsureRegistered and LogIn for the configured
// user.
func StartServerAndLogIn(t *runner.T) *APIClient {
	t.Helper()
	client := StartServer(t)
	user := apiContext(t).config.User
	client.EnsureRegistered(t, user)
	client.LogIn(t, user)
	return client
}
