package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/apichallenge/api-test-harness/apidef"
	"github.com/apichallenge/api-test-harness/framework/helpers"

	"github.com/spf13/afero"
	"golang.org/x/exp/slices"
)

type user struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// fileStore is a JSON document kept in a single file. A missing file is an empty store.
type fileStore[V any] struct {
	fs   afero.Fs
	path string
}

func (s fileStore[V]) load() ([]V, error) {
	if s.path == "" {
		return nil, nil
	}
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var items []V
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("store %s is corrupt: %w", s.path, err)
	}
	return items, nil
}

func (s fileStore[V]) save(items []V) error {
	if s.path == "" {
		return nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return afero.WriteFile(s.fs, s.path, data, 0o600)
}

// employeeTable is changed by the server only through a clone, which replaces the live table
// once the store write has succeeded.
type employeeTable struct {
	items []apidef.Employee
}

func (t employeeTable) clone() employeeTable {
	return employeeTable{items: helpers.CopyOf(t.items)}
}

func (t *employeeTable) indexOf(id apidef.EmployeeID) int {
	return slices.IndexFunc(t.items, func(e apidef.Employee) bool { return e.ID == id })
}

func (t *employeeTable) get(id apidef.EmployeeID) (apidef.Employee, bool) {
	if i := t.indexOf(id); i >= 0 {
		return t.items[i], true
	}
	return apidef.Employee{}, false
}

func (t *employeeTable) nextID() apidef.EmployeeID {
	var highest apidef.EmployeeID
	for _, e := range t.items {
		if e.ID > highest {
			highest = e.ID
		}
	}
	return highest + 1
}

func (t *employeeTable) add(e apidef.Employee) apidef.Employee {
	e.ID = t.nextID()
	t.items = append(t.items, e)
	return e
}

func (t *employeeTable) replace(e apidef.Employee) bool {
	i := t.indexOf(e.ID)
	if i < 0 {
		return false
	}
	t.items[i] = e
	return true
}

// remove deletes all of the given employees, or none of them if any is missing. An id that is
// listed more than once is removed once.
func (t *employeeTable) remove(ids []apidef.EmployeeID) bool {
	doomed := make(map[apidef.EmployeeID]bool, len(ids))
	for _, id := range ids {
		if t.indexOf(id) < 0 {
			return false
		}
		doomed[id] = true
	}
	kept := make([]apidef.Employee, 0, len(t.items))
	for _, e := range t.items {
		if !doomed[e.ID] {
			kept = append(kept, e)
		}
	}
	t.items = kept
	return true
}

// all returns the employees in creation order.
func (t *employeeTable) all() []apidef.Employee {
	return helpers.CopyOf(t.items)
}
