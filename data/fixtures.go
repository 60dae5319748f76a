package data

import (
	"errors"
	"fmt"

	"github.com/apichallenge/api-test-harness/apidef"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

const (
	invalidLoginsFile    = "invalid-logins.yaml"
	employeesFile        = "employees.yaml"
	userEmailPlaceholder = "userEmail"
)

// InvalidLogin is a credential pair that must not be given a token.
type InvalidLogin struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EmployeeFixture is an employee that a scenario creates.
type EmployeeFixture struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Params converts the fixture to request parameters for the given id.
func (e EmployeeFixture) Params(id apidef.EmployeeID) apidef.EmployeeParams {
	return apidef.EmployeeParams{ID: id, FirstName: e.FirstName, LastName: e.LastName, Email: e.Email}
}

// EmployeeFixtures is the content of employees.yaml.
type EmployeeFixtures struct {
	Created         []EmployeeFixture `json:"created"`
	UpdatedLastName string            `json:"updatedLastName"`
	Placeholder     EmployeeFixture   `json:"placeholder"`
	EmailDomain     string            `json:"emailDomain"`
}

// LoadInvalidLogins returns every credential pair in invalid-logins.yaml. Pairs that use the
// registered user's address get userEmail.
func LoadInvalidLogins(userEmail string) ([]InvalidLogin, error) {
	if userEmail == "" {
		return nil, errors.New("the registered user's email is required")
	}
	sources, err := LoadDataFileWith(invalidLoginsFile, map[string]ldvalue.Value{
		userEmailPlaceholder: ldvalue.String(userEmail),
	})
	if err != nil {
		return nil, err
	}
	ret := make([]InvalidLogin, 0, len(sources))
	for _, source := range sources {
		var login InvalidLogin
		if err := source.ParseInto(&login); err != nil {
			return nil, err
		}
		ret = append(ret, login)
	}
	return ret, nil
}

// LoadEmployeeFixtures returns the content of employees.yaml.
func LoadEmployeeFixtures() (EmployeeFixtures, error) {
	var ret EmployeeFixtures
	sources, err := LoadDataFile(employeesFile)
	if err != nil {
		return ret, err
	}
	if len(sources) != 1 {
		return ret, fmt.Errorf("%s must not be parameterized", employeesFile)
	}
	err = sources[0].ParseInto(&ret)
	return ret, err
}
