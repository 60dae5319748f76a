package scenarios

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/apichallenge/api-test-harness/apidef"
	"github.com/apichallenge/api-test-harness/config"
	"github.com/apichallenge/api-test-harness/framework/runner"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allScenarios = []string{ //nolint:gochecknoglobals
	"authentication/register",
	"authentication/login",
	"employees/create and update employees",
	"employees/delete employee",
	"employees/get employee by query parameter",
	"employees/patch employee",
}

func freePort(t *testing.T) int {
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func mockConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.Host = "127.0.0.1"
	cfg.Port = freePort(t)
	cfg.WorkDir = "/work"
	cfg.ReadyTimeout = 5 * time.Second
	cfg.StopTimeout = 2 * time.Second
	cfg.RequestTimeout = 5 * time.Second
	return cfg
}

func testIDs(results []runner.TestResult) []string {
	ret := make([]string, 0, len(results))
	for _, r := range results {
		ret = append(ret, r.TestID.String())
	}
	return ret
}

func describeFailures(results runner.Results) string {
	var b strings.Builder
	for _, f := range results.Failures {
		b.WriteString(f.TestID.String())
		for _, err := range f.Errors {
			b.WriteString("\n  " + err.Error())
		}
		b.WriteString("\n")
	}
	return b.String()
}

func TestAllScenariosPassAgainstMockServer(t *testing.T) {
	cfg := mockConfig(t)
	fs := afero.NewMemMapFs()

	results := RunAPITestSuite(MockLauncher{ServerConfig: cfg, Fs: fs}, nil, nil, nil)

	assert.True(t, results.OK(), describeFailures(results))
	ids := testIDs(results.Tests)
	for _, id := range allScenarios {
		assert.Contains(t, ids, id)
	}
	assert.Contains(t, ids, "authentication/login/valid credentials")
	assert.Contains(t, ids, "authentication/login/invalid credentials: nonexistent user")

	for _, path := range cfg.ArtifactPaths() {
		exists, err := afero.Exists(fs, path)
		require.NoError(t, err)
		assert.False(t, exists, "%s was left behind", path)
	}
}

func TestScenarioFailureDoesNotStopTheRun(t *testing.T) {
	cfg := mockConfig(t)
	breakPatch := func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPatch {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			h.ServeHTTP(w, r)
		})
	}

	results := RunAPITestSuite(MockLauncher{ServerConfig: cfg, Fs: afero.NewMemMapFs(), WrapHandler: breakPatch},
		nil, nil, nil)

	require.Len(t, results.Failures, 1, describeFailures(results))
	assert.Equal(t, "employees/patch employee", results.Failures[0].TestID.String())
	assert.Contains(t, testIDs(results.Tests), "employees/get employee by query parameter")
}

// answerInstead replaces the server's handling of matching requests with a fixed status response.
func answerInstead(match func(*http.Request) bool, status int, success bool, message string) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !match(r) {
				h.ServeHTTP(w, r)
				return
			}
			writeStatusResponse(w, status, success, message)
		})
	}
}

func writeStatusResponse(w http.ResponseWriter, status int, success bool, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apidef.StatusResponse{Success: success, Message: message})
}

func employeesRequest(method string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		return r.Method == method && strings.HasSuffix(r.URL.Path, apidef.PathEmployees)
	}
}

func runWithWrapper(t *testing.T, wrap func(http.Handler) http.Handler) runner.Results {
	cfg := mockConfig(t)
	return RunAPITestSuite(MockLauncher{ServerConfig: cfg, Fs: afero.NewMemMapFs(), WrapHandler: wrap}, nil, nil, nil)
}

func TestDeleteThatKeepsTheEmployeeFails(t *testing.T) {
	results := runWithWrapper(t,
		answerInstead(employeesRequest(http.MethodDelete), http.StatusOK, true, apidef.MessageDeleted))

	assert.Equal(t, []string{"employees/delete employee"}, testIDs(results.Failures), describeFailures(results))
}

func TestUpdateThatIsNotPersistedFails(t *testing.T) {
	results := runWithWrapper(t,
		answerInstead(employeesRequest(http.MethodPut), http.StatusOK, true, apidef.MessageUpdated))

	assert.Equal(t, []string{"employees/create and update employees"}, testIDs(results.Failures),
		describeFailures(results))
}

func TestCreateThatAddsNoEmployeeFails(t *testing.T) {
	results := runWithWrapper(t,
		answerInstead(employeesRequest(http.MethodPost), http.StatusOK, true, apidef.FormatCreatedMessage(99)))

	failed := testIDs(results.Failures)
	assert.Contains(t, failed, "employees/create and update employees", describeFailures(results))
	assert.NotContains(t, failed, "employees/delete employee")
	assert.NotContains(t, failed, "authentication/register")
}

func TestDuplicateRegistrationThatSucceedsFails(t *testing.T) {
	// Report every registration as new, even when the server refused it.
	acceptDuplicates := func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, apidef.PathRegister) {
				h.ServeHTTP(w, r)
				return
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)
			if rec.Code == http.StatusBadRequest &&
				strings.Contains(rec.Body.String(), apidef.MessageAlreadyRegistered) {
				writeStatusResponse(w, http.StatusOK, true, apidef.MessageCreated)
				return
			}
			for k, v := range rec.Header() {
				w.Header()[k] = v
			}
			w.WriteHeader(rec.Code)
			_, _ = w.Write(rec.Body.Bytes())
		})
	}

	results := runWithWrapper(t, acceptDuplicates)

	assert.Equal(t, []string{"authentication/register"}, testIDs(results.Failures), describeFailures(results))
}

func TestInvalidLoginThatGetsATokenFails(t *testing.T) {
	cfg := mockConfig(t)
	cfg.User.Email = "qa.bot@example.org"
	// Accept any password for the harness user.
	lenientLogin := func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/login") {
				if user, _, ok := r.BasicAuth(); ok && user == cfg.User.Email {
					r.SetBasicAuth(user, cfg.User.Password)
				}
			}
			h.ServeHTTP(w, r)
		})
	}

	results := RunAPITestSuite(MockLauncher{ServerConfig: cfg, Fs: afero.NewMemMapFs(), WrapHandler: lenientLogin},
		nil, nil, nil)

	failed := testIDs(results.Failures)
	assert.Contains(t, failed, "authentication/login/invalid credentials: wrong password")
	assert.Contains(t, failed, "authentication/login/invalid credentials: empty password")
	assert.NotContains(t, failed, "authentication/login/invalid credentials: nonexistent user")
}

func TestSetupFailureFailsEachScenario(t *testing.T) {
	cfg := mockConfig(t)
	l, err := net.Listen("tcp", cfg.ListenAddress())
	require.NoError(t, err)
	defer l.Close() //nolint:errcheck
	cfg.ReadyTimeout = 500 * time.Millisecond

	results := RunAPITestSuite(MockLauncher{ServerConfig: cfg, Fs: afero.NewMemMapFs()}, nil, nil, nil)

	assert.ElementsMatch(t, allScenarios, testIDs(results.Failures))
	for _, f := range results.Failures {
		require.NotEmpty(t, f.Errors)
		assert.Contains(t, f.Errors[0].Error(), "server setup failed")
	}
}

func TestFilterSelectsScenarios(t *testing.T) {
	cfg := mockConfig(t)
	var filters runner.RegexFilters
	require.NoError(t, filters.MustMatch.Set("authentication"))
	require.NoError(t, filters.MustNotMatch.Set("authentication/login"))
	var out strings.Builder

	results := RunAPITestSuite(MockLauncher{ServerConfig: cfg, Fs: afero.NewMemMapFs()}, filters, nil, &out)

	assert.True(t, results.OK(), describeFailures(results))
	ids := testIDs(results.Tests)
	assert.Contains(t, ids, "authentication/register")
	for _, id := range ids {
		assert.False(t, strings.HasPrefix(id, "employees"), "unexpected test %s", id)
		assert.False(t, strings.HasPrefix(id, "authentication/login"), "unexpected test %s", id)
	}
	assert.Contains(t, out.String(), "skip any not matching")
	assert.Contains(t, out.String(), cfg.BaseURL())
}

func TestDeriveEmail(t *testing.T) {
	assert.Equal(t, "goncalo.ramos@email.com", DeriveEmail("Gonçalo", "Ramos", "email.com"))
	assert.Equal(t, "ronnie.radke@email.com", DeriveEmail("Ronnie", "Radke", "email.com"))
	assert.Equal(t, "çelik.x@d.org", DeriveEmail("Çelik", "X", "d.org"))
}
