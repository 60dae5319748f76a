package apidef

import "net/url"

// RegisterParams are the form fields of a register request.
type RegisterParams struct {
	Email    string
	Password string
	Role     string
}

func (p RegisterParams) Form() url.Values {
	return url.Values{
		FieldEmail:    {p.Email},
		FieldPassword: {p.Password},
		FieldRole:     {p.Role},
	}
}

// StatusResponse is the common shape of register and employee mutation responses.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LoginResponse is the body of a login response. Token is empty when the credentials were not
// accepted; the request itself still succeeds.
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}
