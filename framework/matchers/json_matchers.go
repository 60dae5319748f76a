package matchers

import (
	"fmt"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// JSONProperty transforms an ldvalue.Value object into the value of one of its properties. A
// missing property becomes ldvalue.Null().
//
//     JSONProperty("message").Should(JSONString("created")).Assert(t, responseBody)
func JSONProperty(name string) MatcherTransform {
	return Transform(
		fmt.Sprintf("JSON property %q", name),
		func(value interface{}) interface{} {
			return value.(ldvalue.Value).GetByKey(name)
		}).
		EnsureInputValueType(ldvalue.Value{}).
		WithInputValueDescription(describeJSONValue)
}

// JSONStringValue transforms an ldvalue.Value into a Go string. Non-string values become "".
func JSONStringValue() MatcherTransform {
	return Transform(
		"string value",
		func(value interface{}) interface{} {
			return value.(ldvalue.Value).StringValue()
		}).
		EnsureInputValueType(ldvalue.Value{}).
		WithInputValueDescription(describeJSONValue)
}

// JSONString tests whether an ldvalue.Value is the JSON string s.
func JSONString(s string) Matcher {
	return JSONEqual(ldvalue.String(s))
}

// JSONBool tests whether an ldvalue.Value is the JSON boolean b.
func JSONBool(b bool) Matcher {
	return JSONEqual(ldvalue.Bool(b))
}

// JSONEqual tests whether an ldvalue.Value is deeply equal to expected.
func JSONEqual(expected ldvalue.Value) Matcher {
	return New(
		func(value interface{}) bool {
			return value.(ldvalue.Value).Equal(expected)
		},
		func(value interface{}, desc DescribeValueFunc) string {
			return "equal to " + describeJSONValue(expected)
		},
	).EnsureType(ldvalue.Value{}).WithValueDescription(describeJSONValue)
}

// JSONCount tests the number of elements of an array, or the number of properties of an
// object.
func JSONCount(count int) Matcher {
	return New(
		func(value interface{}) bool {
			v := value.(ldvalue.Value)
			return (v.Type() == ldvalue.ArrayType || v.Type() == ldvalue.ObjectType) && v.Count() == count
		},
		func(value interface{}, desc DescribeValueFunc) string {
			return fmt.Sprintf("array or object with %d element(s)", count)
		},
	).EnsureType(ldvalue.Value{}).WithValueDescription(describeJSONValue)
}

// JSONOfType tests the JSON type of an ldvalue.Value.
func JSONOfType(t ldvalue.ValueType) Matcher {
	return New(
		func(value interface{}) bool {
			return value.(ldvalue.Value).Type() == t
		},
		func(value interface{}, desc DescribeValueFunc) string {
			return "JSON " + t.String()
		},
	).EnsureType(ldvalue.Value{}).WithValueDescription(describeJSONValue)
}

// JSONNonEmpty fails for a JSON null, an empty string, or an empty array or object.
func JSONNonEmpty() Matcher {
	return New(
		func(value interface{}) bool {
			v := value.(ldvalue.Value)
			switch v.Type() {
			case ldvalue.NullType:
				return false
			case ldvalue.StringType:
				return v.StringValue() != ""
			case ldvalue.ArrayType, ldvalue.ObjectType:
				return v.Count() != 0
			default:
				return true
			}
		},
		func(value interface{}, desc DescribeValueFunc) string {
			return "non-empty JSON value"
		},
	).EnsureType(ldvalue.Value{}).WithValueDescription(describeJSONValue)
}

func describeJSONValue(value interface{}) string {
	if v, ok := value.(ldvalue.Value); ok {
		return v.JSONString()
	}
	return DefaultDescription(value)
}
