package scenarios

import (
	"fmt"
	"io"

	"github.com/apichallenge/api-test-harness/data"
	"github.com/apichallenge/api-test-harness/framework/runner"
)

// RunAPITestSuite runs every scenario against servers created by launcher. Progress goes to
// testLogger; a description of the filter, if any, goes to out.
func RunAPITestSuite(
	launcher ServerLauncher,
	filter runner.Filter,
	testLogger runner.TestLogger,
	out io.Writer,
) runner.Results {
	cfg := launcher.Config()
	invalidLogins, err := data.LoadInvalidLogins(cfg.User.Email)
	if err != nil {
		return fixtureFailure(err)
	}
	employees, err := data.LoadEmployeeFixtures()
	if err != nil {
		return fixtureFailure(err)
	}
	return runSuite(APITestContext{
		launcher:      launcher,
		config:        cfg,
		invalidLogins: invalidLogins,
		employees:     employees,
	}, filter, testLogger, out)
}

func fixtureFailure(err error) runner.Results {
	result := runner.TestResult{Errors: []error{fmt.Errorf("cannot load fixtures: %w", err)}}
	return runner.Results{Tests: []runner.TestResult{result}, Failures: []runner.TestResult{result}}
}

func runSuite(ctx APITestContext, filter runner.Filter, testLogger runner.TestLogger, out io.Writer) runner.Results {
	if out == nil {
		out = io.Discard
	}
	if sdf, ok := filter.(runner.SelfDescribingFilter); ok {
		sdf.Describe(out)
	}
	fmt.Fprintf(out, "Running API Challenge scenarios against %s\n\n", ctx.config.BaseURL())

	config := runner.TestConfiguration{
		Filter:     filter,
		TestLogger: testLogger,
		Context:    ctx,
	}
	return runner.Run(config, func(t *runner.T) {
		t.Run("authentication", doAuthenticationTests)
		t.Run("employees", doEmployeeTests)
	})
}
