package matchers

import (
	"fmt"
	"reflect"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// Equal tests whether the value is deeply equal to expected. Two ldvalue.Values are compared
// by their JSON content.
func Equal(expected interface{}) Matcher {
	return New(
		func(value interface{}) bool {
			if ev, ok := expected.(ldvalue.Value); ok {
				if v, ok := value.(ldvalue.Value); ok {
					return v.Equal(ev)
				}
			}
			return reflect.DeepEqual(value, expected)
		},
		func(value interface{}, desc DescribeValueFunc) string {
			return fmt.Sprintf("equal to %s", desc(expected))
		},
	)
}
