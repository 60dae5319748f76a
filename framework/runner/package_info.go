// Package runner contains a test runner framework that is similar to Go's testing package,
// but is run as regular Go application code rather than Go tests. It adds the things a contract
// test harness needs on top of that: name-based filtering, per-test captured debug output,
// deferred teardown that always runs, and console or JUnit result reporting.
package runner
