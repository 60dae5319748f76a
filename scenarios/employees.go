package scenarios

import (
	"strings"

	"github.com/apichallenge/api-test-harness/apidef"
	m "github.com/apichallenge/api-test-harness/framework/matchers"
	"github.com/apichallenge/api-test-harness/framework/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doEmployeeTests(t *runner.T) {
	t.Run("create and update employees", doCreateAndUpdateTest)
	t.Run("delete employee", doDeleteTest)
	t.Run("get employee by query parameter", doGetByQueryTest)
	t.Run("patch employee", doPatchTest)
}

// DeriveEmail builds the address that the patch scenario assigns: "first.last" with the
// cedilla folded to a plain "c", lowercased, at the given domain.
func DeriveEmail(firstName, lastName, domain string) string {
	local := strings.ReplaceAll(firstName+"."+lastName, "ç", "c")
	return strings.ToLower(local) + "@" + domain
}

func doCreateAndUpdateTest(t *runner.T) {
	client := StartServerAndLogIn(t)
	fixtures := apiContext(t).employees
	require.NotEmpty(t, fixtures.Created, "no employees to create")

	before := client.Employees(t)

	ids := make([]apidef.EmployeeID, 0, len(fixtures.Created))
	for _, e := range fixtures.Created {
		ids = append(ids, createEmployee(t, client, e.Params(0)))
	}

	after := client.Employees(t)
	assert.Len(t, after, len(before)+len(fixtures.Created), "employee count after creating")

	target := fixtures.Created[len(fixtures.Created)-1]
	targetID := ids[len(ids)-1]
	params := target.Params(targetID)
	params.LastName = fixtures.UpdatedLastName

	resp := client.UpdateEmployee(t, params)
	m.RequireThat(t, resp, m.AllOf(
		IsSuccessful(),
		HasSuccess(true),
		HasMessage(apidef.MessageUpdated),
	))

	resp = client.GetEmployee(t, targetID)
	m.AssertThat(t, resp, m.AllOf(
		IsSuccessful(),
		ResponseBody().Should(m.JSONProperty(apidef.KeyLastName).Should(m.JSONString(fixtures.UpdatedLastName))),
	))
}

func doDeleteTest(t *runner.T) {
	client := StartServerAndLogIn(t)
	before := ensureEmployees(t, client)
	id := before[0].ID

	resp := client.DeleteEmployees(t, id)
	m.RequireThat(t, resp, m.AllOf(
		IsSuccessful(),
		HasSuccess(true),
		HasMessage(apidef.MessageDeleted),
	))

	after := client.Employees(t)
	assert.Len(t, after, len(before)-1, "employee count after deleting")

	resp = client.GetEmployee(t, id)
	m.AssertThat(t, resp, m.AllOf(
		IsNotSuccessful(),
		HasSuccess(false),
		HasMessage(apidef.MessageEmployeeNotFound),
	))
}

func doGetByQueryTest(t *runner.T) {
	client := StartServerAndLogIn(t)
	employees := ensureEmployees(t, client)

	resp := client.GetEmployeeByQuery(t, employees[0].ID)
	m.AssertThat(t, resp, m.AllOf(
		IsSuccessful(),
		ResponseBody().Should(IsEmployeeRecord()),
	))
}

func doPatchTest(t *runner.T) {
	client := StartServerAndLogIn(t)
	employee := ensureEmployees(t, client)[0]

	email := DeriveEmail(employee.FirstName, employee.LastName, apiContext(t).employees.EmailDomain)
	require.NotEqual(t, employee.Email, email, "derived email must differ from the current one")

	resp := client.PatchEmployee(t, apidef.EmployeeParams{
		ID:        employee.ID,
		FirstName: employee.FirstName,
		LastName:  employee.LastName,
		Email:     email,
	})
	m.RequireThat(t, resp, m.AllOf(
		IsSuccessful(),
		HasSuccess(true),
		HasMessage(apidef.MessageUpdated),
	))

	resp = client.GetEmployee(t, employee.ID)
	m.AssertThat(t, resp, m.AllOf(
		IsSuccessful(),
		ResponseBody().Should(m.JSONProperty(apidef.KeyEmail).Should(m.JSONString(email))),
	))
}

func createEmployee(t *runner.T, client *APIClient, params apidef.EmployeeParams) apidef.EmployeeID {
	t.Helper()
	resp := client.CreateEmployee(t, params)
	m.RequireThat(t, resp, m.AllOf(
		IsSuccessful(),
		HasSuccess(true),
		HasCreatedMessage(),
	))
	id, err := apidef.ParseCreatedMessage(resp.Value.GetByKey(apidef.KeyMessage).StringValue())
	require.NoError(t, err)
	return id
}

// ensureEmployees returns the current employee list, first creating the placeholder employee if
// the server has none.
func ensureEmployees(t *runner.T, client *APIClient) []apidef.Employee {
	t.Helper()
	employees := client.Employees(t)
	if len(employees) != 0 {
		return employees
	}
	placeholder := apiContext(t).employees.Placeholder
	t.Debug("Server has no employees, creating %s %s", placeholder.FirstName, placeholder.LastName)
	createEmployee(t, client, placeholder.Params(0))
	employees = client.Employees(t)
	require.NotEmpty(t, employees, "employee list is still empty after creating one")
	return employees
}
