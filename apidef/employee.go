package apidef

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/launchdarkly/go-jsonstream/v3/jreader"
)

// EmployeeID is an employee identifier. The server is not consistent about whether it renders
// ids as JSON numbers or as numeric strings, so both are accepted when decoding; ids are always
// encoded as numbers.
type EmployeeID int64

func (id EmployeeID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseEmployeeID parses a decimal id such as the one embedded in a creation message.
func ParseEmployeeID(s string) (EmployeeID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid employee id %q", s)
	}
	return EmployeeID(n), nil
}

func (id EmployeeID) MarshalJSON() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *EmployeeID) UnmarshalJSON(data []byte) error {
	r := jreader.NewReader(data)
	value, err := readEmployeeID(&r)
	if err != nil {
		return err
	}
	*id = value
	return nil
}

func readEmployeeID(r *jreader.Reader) (EmployeeID, error) {
	v := r.Any()
	if err := r.Error(); err != nil {
		return 0, err
	}
	return employeeIDFromAny(v)
}

func employeeIDFromAny(v jreader.AnyValue) (EmployeeID, error) {
	switch v.Kind {
	case jreader.NumberValue:
		if v.Number != math.Trunc(v.Number) {
			return 0, fmt.Errorf("employee id must be an integer, got %v", v.Number)
		}
		return EmployeeID(int64(v.Number)), nil
	case jreader.StringValue:
		return ParseEmployeeID(v.String)
	default:
		return 0, errors.New("employee id must be a number or a numeric string")
	}
}

// EmployeeIDList is the "ids" property of a delete request. It is normally a single id, but a
// list of ids is also accepted.
type EmployeeIDList []EmployeeID

func (l EmployeeIDList) MarshalJSON() ([]byte, error) {
	if len(l) == 1 {
		return l[0].MarshalJSON()
	}
	return json.Marshal([]EmployeeID(l))
}

func (l *EmployeeIDList) UnmarshalJSON(data []byte) error {
	r := jreader.NewReader(data)
	v := r.Any()
	if err := r.Error(); err != nil {
		return err
	}
	if v.Kind != jreader.ArrayValue {
		id, err := employeeIDFromAny(v)
		if err != nil {
			return err
		}
		*l = EmployeeIDList{id}
		return nil
	}
	ids := EmployeeIDList{}
	for arr := v.Array; arr.Next(); {
		id, err := readEmployeeID(&r)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	if err := r.Error(); err != nil {
		return err
	}
	*l = ids
	return nil
}

// Employee is an employee record as returned by the server.
type Employee struct {
	ID        EmployeeID `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
}

// EmployeeParams are the form fields of a create, update, or patch request. ID is ignored on
// create.
type EmployeeParams struct {
	ID        EmployeeID
	FirstName string
	LastName  string
	Email     string
}

// Form encodes the parameters as form fields. The id is only included if includeID is true.
func (p EmployeeParams) Form(includeID bool) url.Values {
	form := url.Values{
		FieldFirstName: {p.FirstName},
		FieldLastName:  {p.LastName},
		FieldEmail:     {p.Email},
	}
	if includeID {
		form.Set(FieldID, p.ID.String())
	}
	return form
}

// EmployeeList is the body of a GET PathAllEmployees response.
type EmployeeList struct {
	Employees []Employee `json:"employees"`
}

// DeleteEmployeesParams is the JSON body of a DELETE PathEmployees request.
type DeleteEmployeesParams struct {
	IDs EmployeeIDList `json:"ids"`
}

// FormatCreatedMessage renders the message returned when an employee is created.
func FormatCreatedMessage(id EmployeeID) string {
	return CreatedMessagePrefix + id.String()
}

// ParseCreatedMessage extracts the id from a creation message such as "id=12".
func ParseCreatedMessage(message string) (EmployeeID, error) {
	if !strings.HasPrefix(message, CreatedMessagePrefix) {
		return 0, fmt.Errorf("creation message %q does not start with %q", message, CreatedMessagePrefix)
	}
	return ParseEmployeeID(strings.TrimPrefix(message, CreatedMessagePrefix))
}
