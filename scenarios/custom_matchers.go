package scenarios

import (
	"fmt"

	"github.com/apichallenge/api-test-harness/apidef"
	"github.com/apichallenge/api-test-harness/framework/harness"
	m "github.com/apichallenge/api-test-harness/framework/matchers"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// The functions in this file apply the matchers API to harness.APIResponse. For more
// information, see matchers.Transform.

func describeResponse(value interface{}) string {
	if r, ok := value.(harness.APIResponse); ok {
		return fmt.Sprintf("HTTP %d: %s", r.Status, string(r.Body))
	}
	return m.DefaultDescription(value)
}

// ResponseStatus transforms an APIResponse into its HTTP status code.
func ResponseStatus() m.MatcherTransform {
	return m.Transform(
		"HTTP status",
		func(value interface{}) interface{} {
			return value.(harness.APIResponse).Status
		}).
		EnsureInputValueType(harness.APIResponse{}).
		WithInputValueDescription(describeResponse)
}

// ResponseBody transforms an APIResponse into its body parsed as JSON.
func ResponseBody() m.MatcherTransform {
	return m.Transform(
		"response body",
		func(value interface{}) interface{} {
			return value.(harness.APIResponse).Value
		}).
		EnsureInputValueType(harness.APIResponse{}).
		WithInputValueDescription(describeResponse)
}

// IsSuccessful tests for a 2xx status.
func IsSuccessful() m.Matcher {
	return m.New(
		func(value interface{}) bool {
			return value.(harness.APIResponse).IsSuccessful()
		},
		func(value interface{}, desc m.DescribeValueFunc) string {
			return "successful (2xx) response"
		},
	).EnsureType(harness.APIResponse{}).WithValueDescription(describeResponse)
}

// IsNotSuccessful tests for any status other than 2xx.
func IsNotSuccessful() m.Matcher {
	return m.New(
		func(value interface{}) bool {
			return !value.(harness.APIResponse).IsSuccessful()
		},
		func(value interface{}, desc m.DescribeValueFunc) string {
			return "unsuccessful (non-2xx) response"
		},
	).EnsureType(harness.APIResponse{}).WithValueDescription(describeResponse)
}

// HasSuccess tests the "success" property of the body.
func HasSuccess(success bool) m.Matcher {
	return ResponseBody().Should(m.JSONProperty(apidef.KeySuccess).Should(m.JSONBool(success)))
}

// HasMessage tests the "message" property of the body.
func HasMessage(message string) m.Matcher {
	return ResponseBody().Should(m.JSONProperty(apidef.KeyMessage).Should(m.JSONString(message)))
}

// HasCreatedMessage tests for a "message" property like "id=12".
func HasCreatedMessage() m.Matcher {
	return ResponseBody().Should(m.JSONProperty(apidef.KeyMessage).Should(
		m.JSONStringValue().Should(createdMessage())))
}

func createdMessage() m.Matcher {
	return m.New(
		func(value interface{}) bool {
			_, err := apidef.ParseCreatedMessage(value.(string))
			return err == nil
		},
		func(value interface{}, desc m.DescribeValueFunc) string {
			return fmt.Sprintf("%q followed by an employee id", apidef.CreatedMessagePrefix)
		},
	).EnsureType("")
}

// HasNonEmptyToken tests that the body has a "token" property that is a non-empty string.
func HasNonEmptyToken() m.Matcher {
	return ResponseBody().Should(m.JSONProperty(apidef.KeyToken).Should(
		m.AllOf(m.JSONOfType(ldvalue.StringType), m.JSONNonEmpty())))
}

// HasEmptyToken tests that the body has a "token" property that is an empty string.
func HasEmptyToken() m.Matcher {
	return ResponseBody().Should(m.JSONProperty(apidef.KeyToken).Should(m.JSONString("")))
}

// IsEmployeeRecord tests that a JSON value has exactly the four employee properties, all of
// them non-empty.
func IsEmployeeRecord() m.Matcher {
	matchers := []m.Matcher{m.JSONCount(len(apidef.EmployeeFields()))}
	for _, field := range apidef.EmployeeFields() {
		matchers = append(matchers, m.JSONProperty(field).Should(m.JSONNonEmpty()))
	}
	return m.AllOf(matchers...)
}
