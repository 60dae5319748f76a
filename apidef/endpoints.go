package apidef

import (
	"fmt"
	"net/url"
)

const (
	PathRegister     = "/register"
	PathLogin        = "/login"
	PathEmployees    = "/employees"
	PathAllEmployees = "/employees/all"

	// HeaderAccessToken carries the token returned by login on every employee request.
	HeaderAccessToken = "accessToken"

	QueryParamID = "id"
)

// Form field names for register and for employee create/update/patch requests.
const (
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldRole      = "role"
	FieldFirstName = "firstname"
	FieldLastName  = "lastname"
	FieldID        = "id"
)

// Property names in JSON response bodies.
const (
	KeySuccess   = "success"
	KeyMessage   = "message"
	KeyToken     = "token"
	KeyEmployees = "employees"
	KeyIDs       = "ids"
	KeyID        = "id"
	KeyFirstName = "first_name"
	KeyLastName  = "last_name"
	KeyEmail     = "email"
)

// Fixed values of the "message" property.
const (
	MessageCreated           = "created"
	MessageAlreadyRegistered = "user already registered"
	MessageUpdated           = "updated"
	MessageDeleted           = "deleted"
	MessageEmployeeNotFound  = "employee not found"
	MessageInvalidToken      = "invalid token"
	MessageMissingFields     = "missing fields"
	MessageInvalidID         = "invalid id"
	CreatedMessagePrefix     = "id="
)

// EmployeeFields lists the properties of an employee record, in the order they appear on the wire.
func EmployeeFields() []string {
	return []string{KeyID, KeyFirstName, KeyLastName, KeyEmail}
}

// EmployeePath is the path of a single employee resource.
func EmployeePath(id EmployeeID) string {
	return fmt.Sprintf("%s/%s", PathEmployees, url.PathEscape(id.String()))
}

// EmployeeQuery is the query string used to fetch a single employee from PathEmployees.
func EmployeeQuery(id EmployeeID) url.Values {
	return url.Values{QueryParamID: {id.String()}}
}
