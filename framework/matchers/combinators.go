package matchers

import "strings"

// AllOf passes if every one of the matchers passes. A failure lists only the matchers that
// failed, joined with "and".
func AllOf(matchers ...Matcher) Matcher {
	return combine(matchers, " and ", func(passed, total int) bool { return passed == total })
}

// AnyOf passes if at least one of the matchers passes. A failure lists every matcher, joined
// with "or". AnyOf with no matchers always fails.
func AnyOf(matchers ...Matcher) Matcher {
	return combine(matchers, " or ", func(passed, total int) bool { return passed > 0 })
}

func combine(matchers []Matcher, separator string, accept func(passed, total int) bool) Matcher {
	failures := func(value interface{}) []Matcher {
		var ret []Matcher
		for _, m := range matchers {
			if !m.test(value) {
				ret = append(ret, m)
			}
		}
		return ret
	}
	combined := New(
		func(value interface{}) bool {
			return accept(len(matchers)-len(failures(value)), len(matchers))
		},
		func(value interface{}, desc DescribeValueFunc) string {
			failed := failures(value)
			if len(failed) == 1 {
				return failed[0].describeFailure(value, failed[0].describeValue)
			}
			parts := make([]string, 0, len(failed))
			for _, m := range failed {
				parts = append(parts, "("+m.describeFailure(value, m.describeValue)+")")
			}
			return strings.Join(parts, separator)
		},
	)
	if len(matchers) != 0 {
		combined = combined.WithValueDescription(matchers[0].describeValue)
	}
	return combined
}
