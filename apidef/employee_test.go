package apidef

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeIDDecodesNumberOrString(t *testing.T) {
	var e1, e2 Employee
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"first_name":"Ronnie"}`), &e1))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"7","first_name":"Ronnie"}`), &e2))
	assert.Equal(t, EmployeeID(7), e1.ID)
	assert.Equal(t, e1, e2)
}

func TestEmployeeIDRejectsOtherValues(t *testing.T) {
	for _, s := range []string{`1.5`, `"abc"`, `true`, `{}`, `[`} {
		t.Run(s, func(t *testing.T) {
			var id EmployeeID
			assert.Error(t, json.Unmarshal([]byte(`{"id":`+s+`}`), &struct {
				ID *EmployeeID `json:"id"`
			}{&id}))
		})
	}
}

func TestEmployeeIDEncodesAsNumber(t *testing.T) {
	data, err := json.Marshal(Employee{ID: 12, FirstName: "Randy", LastName: "Blythe", Email: "blythe@email.com"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":12,"first_name":"Randy","last_name":"Blythe","email":"blythe@email.com"}`, string(data))
}

func TestEmployeeIDList(t *testing.T) {
	var p DeleteEmployeesParams
	require.NoError(t, json.Unmarshal([]byte(`{"ids":4}`), &p))
	assert.Equal(t, EmployeeIDList{4}, p.IDs)

	require.NoError(t, json.Unmarshal([]byte(`{"ids":"5"}`), &p))
	assert.Equal(t, EmployeeIDList{5}, p.IDs)

	require.NoError(t, json.Unmarshal([]byte(`{"ids":[1,"2",3]}`), &p))
	assert.Equal(t, EmployeeIDList{1, 2, 3}, p.IDs)

	assert.Error(t, json.Unmarshal([]byte(`{"ids":[1,false]}`), &p))

	data, err := json.Marshal(DeleteEmployeesParams{IDs: EmployeeIDList{9}})
	require.NoError(t, err)
	assert.Equal(t, `{"ids":9}`, string(data))

	data, err = json.Marshal(DeleteEmployeesParams{IDs: EmployeeIDList{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, `{"ids":[1,2]}`, string(data))
}

func TestCreatedMessage(t *testing.T) {
	assert.Equal(t, "id=31", FormatCreatedMessage(31))

	id, err := ParseCreatedMessage("id=31")
	require.NoError(t, err)
	assert.Equal(t, EmployeeID(31), id)

	_, err = ParseCreatedMessage("created")
	assert.Error(t, err)
	_, err = ParseCreatedMessage("id=x")
	assert.Error(t, err)
}

func TestEmployeeParamsForm(t *testing.T) {
	p := EmployeeParams{ID: 3, FirstName: "Randy", LastName: "Blythe", Email: "blythe@email.com"}
	assert.Equal(t, "email=blythe%40email.com&firstname=Randy&lastname=Blythe", p.Form(false).Encode())
	assert.Equal(t, "email=blythe%40email.com&firstname=Randy&id=3&lastname=Blythe", p.Form(true).Encode())
}

func TestEmployeePaths(t *testing.T) {
	assert.Equal(t, "/employees/42", EmployeePath(42))
	assert.Equal(t, "id=42", EmployeeQuery(42).Encode())
	assert.Equal(t, []string{"id", "first_name", "last_name", "email"}, EmployeeFields())
}

func TestRegisterParamsForm(t *testing.T) {
	p := RegisterParams{Email: "rui@email.com", Password: "123456", Role: "admin"}
	assert.Equal(t, "email=rui%40email.com&password=123456&role=admin", p.Form().Encode())
}
