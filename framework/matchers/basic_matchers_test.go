package matchers

import (
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

func TestEqual(t *testing.T) {
	assertPasses(t, 404, Equal(404))
	assertFails(t, 200, Equal(404), "expected: equal to 404\nactual value was: 200")
	assertFails(t, int64(404), Equal(404), "expected: equal to 404\nactual value was: 404")

	assertPasses(t, []string{"1", "2"}, Equal([]string{"1", "2"}))
}

func TestEqualComparesJSONContent(t *testing.T) {
	parsed := ldvalue.Parse([]byte(`{"ids":[1,2]}`))
	built := ldvalue.ObjectBuild().Set("ids", ldvalue.ArrayOf(ldvalue.Int(1), ldvalue.Int(2))).Build()

	assertPasses(t, parsed, Equal(built))
	assertFails(t, ldvalue.String("1"), Equal(ldvalue.Int(1)), "expected: equal to 1\nactual value was: \"1\"")
}
