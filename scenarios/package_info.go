// Package scenarios contains the contract scenarios for the API Challenge server.
//
// Every scenario starts its own server through a ServerLauncher, talks to it with an APIClient,
// and tears it down when its test scope exits. The entry point is RunAPITestSuite.
package scenarios
