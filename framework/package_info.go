// Package framework contains the low-level infrastructure of the contract test harness that does
// not know anything about the API being tested. The base package contains shared types such as
// Logger; other components are in the subpackages harness and runner.
//
// The general model is:
//
// 1. The harness owns a server process. Before each test it cleans up leftovers from earlier
// runs, extracts the server binary, starts it, and waits until it accepts HTTP requests. After
// the test it stops the process and removes everything it created.
//
// 2. Tests talk to the server over plain HTTP and make assertions on status codes and JSON
// bodies.
//
// 3. There is a general notion of a test scope which is similar to Go's testing.T, allowing
// pieces of test logic to be associated with a test identifier and to accumulate success or
// failure results.
//
// The domain-specific code that knows what is being tested is responsible for the requests to
// send and the expectations about the responses.
package framework
