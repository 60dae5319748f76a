package mockapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/apichallenge/api-test-harness/apidef"
	"github.com/apichallenge/api-test-harness/config"
	"github.com/apichallenge/api-test-harness/framework"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/spf13/afero"
)

// Options configures a Server. Empty store paths mean that nothing is written to disk.
type Options struct {
	BasePath           string
	UsersStorePath     string
	EmployeesStorePath string

	// SeedEmployees is the employee list the server starts with when there is no employees
	// store yet. If nil, DefaultEmployees is used.
	SeedEmployees []apidef.Employee
}

// OptionsFromConfig returns the Options that make a Server behave like the real one would with
// the given configuration.
func OptionsFromConfig(c config.Config) Options {
	return Options{
		BasePath:           c.BasePath,
		UsersStorePath:     c.UsersStorePath(),
		EmployeesStorePath: c.EmployeesStorePath(),
	}
}

// DefaultEmployees are the records a fresh server starts with.
func DefaultEmployees() []apidef.Employee {
	return []apidef.Employee{
		{ID: 1, FirstName: "Gonçalo", LastName: "Ramos", Email: "gramos@email.com"},
		{ID: 2, FirstName: "Ana", LastName: "Silva", Email: "asilva@email.com"},
	}
}

// Server is an http.Handler implementing the API Challenge endpoints.
type Server struct {
	users       []user
	employees   employeeTable
	tokens      map[string]string
	userStore   fileStore[user]
	empStore    fileStore[apidef.Employee]
	handler     http.Handler
	debugLogger framework.Logger
	lock        sync.Mutex
}

// NewServer creates a Server, loading any existing stores.
func NewServer(fs afero.Fs, opts Options, debugLogger framework.Logger) (*Server, error) {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	s := &Server{
		tokens:      make(map[string]string),
		userStore:   fileStore[user]{fs: fs, path: opts.UsersStorePath},
		empStore:    fileStore[apidef.Employee]{fs: fs, path: opts.EmployeesStorePath},
		debugLogger: debugLogger,
	}

	users, err := s.userStore.load()
	if err != nil {
		return nil, err
	}
	s.users = users
	employees, err := s.empStore.load()
	if err != nil {
		return nil, err
	}
	if employees == nil {
		employees = opts.SeedEmployees
		if employees == nil {
			employees = DefaultEmployees()
		}
	}
	s.employees.items = employees

	router := mux.NewRouter()
	api := router
	if opts.BasePath != "" {
		api = router.PathPrefix(opts.BasePath).Subrouter()
	}
	api.HandleFunc(apidef.PathRegister, s.register).Methods("POST")
	api.HandleFunc(apidef.PathLogin, s.login).Methods("POST")
	api.HandleFunc(apidef.PathAllEmployees, s.authorized(s.listEmployees)).Methods("GET")
	api.HandleFunc(apidef.PathEmployees+"/{id}", s.authorized(s.getEmployeeByPath)).Methods("GET")
	api.HandleFunc(apidef.PathEmployees, s.authorized(s.getEmployeeByQuery)).Methods("GET")
	api.HandleFunc(apidef.PathEmployees, s.authorized(s.createEmployee)).Methods("POST")
	api.HandleFunc(apidef.PathEmployees, s.authorized(s.updateEmployee)).Methods("PUT")
	api.HandleFunc(apidef.PathEmployees, s.authorized(s.patchEmployee)).Methods("PATCH")
	api.HandleFunc(apidef.PathEmployees, s.authorized(s.deleteEmployees)).Methods("DELETE")
	s.handler = router

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Employees returns a snapshot of the current employee list.
func (s *Server) Employees() []apidef.Employee {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.employees.all()
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeStatus(w, http.StatusBadRequest, false, apidef.MessageMissingFields)
		return
	}
	u := user{
		Email:    strings.TrimSpace(r.PostForm.Get(apidef.FieldEmail)),
		Password: r.PostForm.Get(apidef.FieldPassword),
		Role:     r.PostForm.Get(apidef.FieldRole),
	}
	if u.Email == "" || u.Password == "" {
		writeStatus(w, http.StatusBadRequest, false, apidef.MessageMissingFields)
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			writeStatus(w, http.StatusBadRequest, false, apidef.MessageAlreadyRegistered)
			return
		}
	}
	users := append(s.users, u) //nolint:gocritic
	if err := s.userStore.save(users); err != nil {
		s.storeFailure(w, err)
		return
	}
	s.users = users
	s.debugLogger.Printf("Registered user %s with role %q", u.Email, u.Role)
	writeStatus(w, http.StatusOK, true, apidef.MessageCreated)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()

	s.lock.Lock()
	defer s.lock.Unlock()
	token := ""
	if ok {
		for _, u := range s.users {
			if strings.EqualFold(u.Email, email) && u.Password == password {
				token = uuid.NewString()
				s.tokens[token] = u.Email
				break
			}
		}
	}
	writeJSON(w, http.StatusOK, apidef.LoginResponse{Success: true, Token: token})
}

func (s *Server) authorized(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(apidef.HeaderAccessToken)
		s.lock.Lock()
		_, ok := s.tokens[token]
		s.lock.Unlock()
		if token == "" || !ok {
			writeStatus(w, http.StatusUnauthorized, false, apidef.MessageInvalidToken)
			return
		}
		handler(w, r)
	}
}

func (s *Server) listEmployees(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apidef.EmployeeList{Employees: s.Employees()})
}

func (s *Server) getEmployeeByPath(w http.ResponseWriter, r *http.Request) {
	s.writeEmployee(w, mux.Vars(r)["id"])
}

func (s *Server) getEmployeeByQuery(w http.ResponseWriter, r *http.Request) {
	s.writeEmployee(w, r.URL.Query().Get(apidef.QueryParamID))
}

func (s *Server) writeEmployee(w http.ResponseWriter, rawID string) {
	id, err := apidef.ParseEmployeeID(rawID)
	if err != nil {
		writeStatus(w, http.StatusBadRequest, false, apidef.MessageInvalidID)
		return
	}
	s.lock.Lock()
	e, found := s.employees.get(id)
	s.lock.Unlock()
	if !found {
		writeStatus(w, http.StatusNotFound, false, apidef.MessageEmployeeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) createEmployee(w http.ResponseWriter, r *http.Request) {
	params, ok := readEmployeeForm(w, r, false, true)
	if !ok {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	next := s.employees.clone()
	e := next.add(apidef.Employee{FirstName: params.FirstName, LastName: params.LastName, Email: params.Email})
	if !s.commitEmployees(w, next) {
		return
	}
	s.debugLogger.Printf("Created employee %s", e.ID)
	writeStatus(w, http.StatusOK, true, apidef.FormatCreatedMessage(e.ID))
}

func (s *Server) updateEmployee(w http.ResponseWriter, r *http.Request) {
	params, ok := readEmployeeForm(w, r, true, true)
	if !ok {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	next := s.employees.clone()
	if !next.replace(apidef.Employee(params)) {
		writeStatus(w, http.StatusNotFound, false, apidef.MessageEmployeeNotFound)
		return
	}
	if !s.commitEmployees(w, next) {
		return
	}
	writeStatus(w, http.StatusOK, true, apidef.MessageUpdated)
}

func (s *Server) patchEmployee(w http.ResponseWriter, r *http.Request) {
	params, ok := readEmployeeForm(w, r, true, false)
	if !ok {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	e, found := s.employees.get(params.ID)
	if !found {
		writeStatus(w, http.StatusNotFound, false, apidef.MessageEmployeeNotFound)
		return
	}
	if params.FirstName != "" {
		e.FirstName = params.FirstName
	}
	if params.LastName != "" {
		e.LastName = params.LastName
	}
	if params.Email != "" {
		e.Email = params.Email
	}
	next := s.employees.clone()
	next.replace(e)
	if !s.commitEmployees(w, next) {
		return
	}
	writeStatus(w, http.StatusOK, true, apidef.MessageUpdated)
}

func (s *Server) deleteEmployees(w http.ResponseWriter, r *http.Request) {
	var params apidef.DeleteEmployeesParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil || len(params.IDs) == 0 {
		writeStatus(w, http.StatusBadRequest, false, apidef.MessageInvalidID)
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	next := s.employees.clone()
	if !next.remove(params.IDs) {
		writeStatus(w, http.StatusNotFound, false, apidef.MessageEmployeeNotFound)
		return
	}
	if !s.commitEmployees(w, next) {
		return
	}
	writeStatus(w, http.StatusOK, true, apidef.MessageDeleted)
}

// readEmployeeForm parses the employee form fields. If it returns false, an error response has
// already been written.
func readEmployeeForm(w http.ResponseWriter, r *http.Request, needID, needAll bool) (apidef.EmployeeParams, bool) {
	var params apidef.EmployeeParams
	if err := r.ParseForm(); err != nil {
		writeStatus(w, http.StatusBadRequest, false, apidef.MessageMissingFields)
		return params, false
	}
	params.FirstName = strings.TrimSpace(r.PostForm.Get(apidef.FieldFirstName))
	params.LastName = strings.TrimSpace(r.PostForm.Get(apidef.FieldLastName))
	params.Email = strings.TrimSpace(r.PostForm.Get(apidef.FieldEmail))
	if needID {
		id, err := apidef.ParseEmployeeID(r.PostForm.Get(apidef.FieldID))
		if err != nil {
			writeStatus(w, http.StatusBadRequest, false, apidef.MessageInvalidID)
			return params, false
		}
		params.ID = id
	}
	if needAll && (params.FirstName == "" || params.LastName == "" || params.Email == "") {
		writeStatus(w, http.StatusBadRequest, false, apidef.MessageMissingFields)
		return params, false
	}
	return params, true
}

// commitEmployees writes next to the store and makes it the live table only if the write
// succeeded. It must be called with the lock held.
func (s *Server) commitEmployees(w http.ResponseWriter, next employeeTable) bool {
	if err := s.empStore.save(next.items); err != nil {
		s.storeFailure(w, err)
		return false
	}
	s.employees = next
	return true
}

func (s *Server) storeFailure(w http.ResponseWriter, err error) {
	s.debugLogger.Printf("Store write failed: %s", err)
	writeStatus(w, http.StatusInternalServerError, false, err.Error())
}

func writeStatus(w http.ResponseWriter, status int, success bool, message string) {
	writeJSON(w, status, apidef.StatusResponse{Success: success, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	data, _ := json.Marshal(body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
