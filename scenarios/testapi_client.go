package scenarios

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/apichallenge/api-test-harness/apidef"
	"github.com/apichallenge/api-test-harness/config"
	"github.com/apichallenge/api-test-harness/framework"
	"github.com/apichallenge/api-test-harness/framework/harness"
	m "github.com/apichallenge/api-test-harness/framework/matchers"
	o "github.com/apichallenge/api-test-harness/framework/opt"
	"github.com/apichallenge/api-test-harness/framework/runner"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/stretchr/testify/require"
)

// APIClient sends typed requests to the server under test. A transport failure terminates the
// test; any HTTP response is returned for the caller to make assertions on.
//
// After LogIn, the access token is sent with every employee request.
type APIClient struct {
	service *harness.APIService
	logger  framework.Logger
	token   string
}

func NewAPIClient(service *harness.APIService, logger framework.Logger) *APIClient {
	return &APIClient{service: service, logger: logger}
}

// Token returns the access token from the last successful LogIn, or "".
func (c *APIClient) Token() string {
	return c.token
}

func (c *APIClient) do(t *runner.T, req harness.APIRequest) harness.APIResponse {
	t.Helper()
	resp, err := c.service.Do(context.Background(), req, c.logger)
	require.NoError(t, err)
	return resp
}

func (c *APIClient) withToken(req harness.APIRequest) harness.APIRequest {
	req.Headers = http.Header{}
	req.Headers.Set(apidef.HeaderAccessToken, c.token)
	return req
}

func (c *APIClient) Register(t *runner.T, params apidef.RegisterParams) harness.APIResponse {
	return c.do(t, harness.APIRequest{Method: http.MethodPost, Path: apidef.PathRegister, Form: params.Form()})
}

func (c *APIClient) Login(t *runner.T, email, password string) harness.APIResponse {
	return c.do(t, harness.APIRequest{
		Method:    http.MethodPost,
		Path:      apidef.PathLogin,
		BasicAuth: o.Some(harness.BasicAuth{Username: email, Password: password}),
	})
}

// EnsureRegistered registers the user unless the server already knows it.
func (c *APIClient) EnsureRegistered(t *runner.T, user config.Credentials) {
	t.Helper()
	resp := c.Register(t, apidef.RegisterParams{Email: user.Email, Password: user.Password, Role: user.Role})
	m.RequireThat(t, resp, ResponseBody().Should(
		m.JSONProperty(apidef.KeyMessage).Should(m.AnyOf(
			m.JSONString(apidef.MessageCreated),
			m.JSONString(apidef.MessageAlreadyRegistered),
		))))
}

// LogIn logs in and keeps the token for later employee requests.
func (c *APIClient) LogIn(t *runner.T, user config.Credentials) {
	t.Helper()
	resp := c.Login(t, user.Email, user.Password)
	m.RequireThat(t, resp, m.AllOf(IsSuccessful(), HasNonEmptyToken()))
	c.token = resp.Value.GetByKey(apidef.KeyToken).StringValue()
}

func (c *APIClient) ListEmployees(t *runner.T) harness.APIResponse {
	return c.do(t, c.withToken(harness.APIRequest{Method: http.MethodGet, Path: apidef.PathAllEmployees}))
}

// Employees fetches and decodes the employee list. Failing to get it terminates the test.
func (c *APIClient) Employees(t *runner.T) []apidef.Employee {
	t.Helper()
	resp := c.ListEmployees(t)
	m.RequireThat(t, resp, m.AllOf(IsSuccessful(),
		ResponseBody().Should(m.JSONProperty(apidef.KeyEmployees).Should(m.JSONOfType(ldvalue.ArrayType)))))
	var list apidef.EmployeeList
	require.NoError(t, json.Unmarshal(resp.Body, &list), "malformed employee list")
	return list.Employees
}

func (c *APIClient) CreateEmployee(t *runner.T, params apidef.EmployeeParams) harness.APIResponse {
	return c.do(t, c.withToken(harness.APIRequest{
		Method: http.MethodPost,
		Path:   apidef.PathEmployees,
		Form:   params.Form(false),
	}))
}

func (c *APIClient) UpdateEmployee(t *runner.T, params apidef.EmployeeParams) harness.APIResponse {
	return c.do(t, c.withToken(harness.APIRequest{
		Method: http.MethodPut,
		Path:   apidef.PathEmployees,
		Form:   params.Form(true),
	}))
}

func (c *APIClient) PatchEmployee(t *runner.T, params apidef.EmployeeParams) harness.APIResponse {
	return c.do(t, c.withToken(harness.APIRequest{
		Method: http.MethodPatch,
		Path:   apidef.PathEmployees,
		Form:   params.Form(true),
	}))
}

func (c *APIClient) DeleteEmployees(t *runner.T, ids ...apidef.EmployeeID) harness.APIResponse {
	return c.do(t, c.withToken(harness.APIRequest{
		Method:   http.MethodDelete,
		Path:     apidef.PathEmployees,
		JSONBody: apidef.DeleteEmployeesParams{IDs: ids},
	}))
}

func (c *APIClient) GetEmployee(t *runner.T, id apidef.EmployeeID) harness.APIResponse {
	return c.do(t, c.withToken(harness.APIRequest{Method: http.MethodGet, Path: apidef.EmployeePath(id)}))
}

func (c *APIClient) GetEmployeeByQuery(t *runner.T, id apidef.EmployeeID) harness.APIResponse {
	return c.do(t, c.withToken(harness.APIRequest{
		Method: http.MethodGet,
		Path:   apidef.PathEmployees,
		Query:  apidef.EmployeeQuery(id),
	}))
}
