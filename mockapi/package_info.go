// Package mockapi is an in-process implementation of the API Challenge server's REST contract.
//
// It exists so that the scenarios can be exercised without the real binary: the scenario unit
// tests run against it, and the harness's -mock flag uses it as a self-test. It keeps users and
// employees in memory and writes them to the same two store files the real server uses, so the
// harness's cleanup logic sees the same files either way.
package mockapi
