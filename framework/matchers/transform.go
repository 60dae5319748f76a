package matchers

// MatcherTransform derives one value from another so that Matchers can be applied to the
// derived value, while failure messages still show the whole original value. The scenarios use
// it to reach into an API response:
//
//     status := matchers.Transform("HTTP status",
//         func(value interface{}) interface{} { return value.(harness.APIResponse).Status })
//     status.Should(matchers.Equal(200)).Assert(t, resp)
//
// A failure then reads "expected: HTTP status equal to 200", followed by the full response.
type MatcherTransform struct {
	name          string
	derive        func(interface{}) interface{}
	inputType     interface{}
	describeInput DescribeValueFunc
}

// Transform creates a MatcherTransform. The name is prefixed to the failure description of
// every Matcher passed to Should.
func Transform(name string, derive func(interface{}) interface{}) MatcherTransform {
	return MatcherTransform{name: name, derive: derive}
}

// EnsureInputValueType makes the resulting Matchers fail, rather than panic, when the original
// value is not of the same type as valueOfType.
func (mt MatcherTransform) EnsureInputValueType(valueOfType interface{}) MatcherTransform {
	mt.inputType = valueOfType
	return mt
}

// WithInputValueDescription sets how the original value is rendered in failure messages.
func (mt MatcherTransform) WithInputValueDescription(desc DescribeValueFunc) MatcherTransform {
	mt.describeInput = desc
	return mt
}

// Should returns a Matcher that derives the value and then applies matcher to it.
func (mt MatcherTransform) Should(matcher Matcher) Matcher {
	derive, name := mt.derive, mt.name
	if derive == nil {
		derive = func(value interface{}) interface{} { return value }
	}
	if name == "" {
		name = "value"
	}
	return New(
		func(value interface{}) bool {
			return matcher.test(derive(value))
		},
		func(value interface{}, desc DescribeValueFunc) string {
			return name + " " + matcher.describeFailure(derive(value), matcher.describeValue)
		},
	).EnsureType(mt.inputType).WithValueDescription(mt.describeInput)
}
