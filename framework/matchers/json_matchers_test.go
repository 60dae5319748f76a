package matchers

import (
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

func TestJSONProperty(t *testing.T) {
	body := ldvalue.Parse([]byte(`{"success":true,"message":"created"}`))

	assertPasses(t, body, JSONProperty("message").Should(JSONString("created")))
	assertPasses(t, body, JSONProperty("success").Should(JSONBool(true)))
	assertPasses(t, body, JSONProperty("token").Should(JSONEqual(ldvalue.Null())))

	single := ldvalue.Parse([]byte(`{"message":"created"}`))
	assertFails(t, single, JSONProperty("message").Should(JSONString("updated")),
		`expected: JSON property "message" equal to "updated"`+
			"\nactual value was: "+`{"message":"created"}`)
}

func TestJSONStringValue(t *testing.T) {
	assertPasses(t, ldvalue.String("id=3"), JSONStringValue().Should(Equal("id=3")))
	assertPasses(t, ldvalue.Int(3), JSONStringValue().Should(Equal("")))
}

func TestJSONCount(t *testing.T) {
	assertPasses(t, ldvalue.Parse([]byte(`[1,2]`)), JSONCount(2))
	assertPasses(t, ldvalue.Parse([]byte(`{"a":1,"b":2,"c":3,"d":4}`)), JSONCount(4))
	assertFails(t, ldvalue.Parse([]byte(`[1]`)), JSONCount(2),
		"expected: array or object with 2 element(s)\nactual value was: [1]")
	assertFails(t, ldvalue.String("ab"), JSONCount(2),
		"expected: array or object with 2 element(s)\nactual value was: \"ab\"")
}

func TestJSONOfType(t *testing.T) {
	assertPasses(t, ldvalue.Parse([]byte(`[]`)), JSONOfType(ldvalue.ArrayType))
	assertFails(t, ldvalue.Null(), JSONOfType(ldvalue.ArrayType),
		"expected: JSON array\nactual value was: null")
}

func TestJSONNonEmpty(t *testing.T) {
	for _, v := range []ldvalue.Value{ldvalue.Int(0), ldvalue.Bool(false), ldvalue.String("x"),
		ldvalue.Parse([]byte(`[1]`)), ldvalue.Parse([]byte(`{"a":1}`))} {
		assertPasses(t, v, JSONNonEmpty())
	}
	assertFails(t, ldvalue.Null(), JSONNonEmpty(), "expected: non-empty JSON value\nactual value was: null")
	assertFails(t, ldvalue.String(""), JSONNonEmpty(), "expected: non-empty JSON value\nactual value was: \"\"")
	assertFails(t, ldvalue.Parse([]byte(`[]`)), JSONNonEmpty(), "expected: non-empty JSON value\nactual value was: []")
}
