// Package apidef contains definitions for the REST protocol of the API Challenge server: paths,
// header and field names, fixed response messages, and the JSON payload types.
//
// The package is used by the test scenarios and by the in-process mock server, so that both
// sides agree on the same contract.
package apidef
