package data

import (
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	m "github.com/launchdarkly/go-test-helpers/v2/matchers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONOrYAML(t *testing.T) {
	for _, params := range []struct {
		desc  string
		input string
	}{
		{"JSON", `{"firstName":"Randy","lastName":"Blythe","email":"blythe@email.com"}`},
		{"YAML", `---
firstName: Randy
lastName: Blythe
email: blythe@email.com
`},
	} {
		t.Run(params.desc, func(t *testing.T) {
			var out EmployeeFixture
			require.NoError(t, ParseJSONOrYAML([]byte(params.input), &out))
			assert.Equal(t, EmployeeFixture{FirstName: "Randy", LastName: "Blythe", Email: "blythe@email.com"}, out)
		})
	}
}

func TestParseJSONOrYAMLRejectsMalformedInput(t *testing.T) {
	var out EmployeeFixture
	assert.Error(t, ParseJSONOrYAML([]byte("firstName: [unclosed"), &out))
}

func TestCanUseYAMLAnchorReferences(t *testing.T) {
	input := `---
constants:
  base: &base_employee
    lastName: Radke
    email: rradke@email.com

values:
  renamed:
    <<: *base_employee
    firstName: Ronnie
`
	expected := `{"renamed": {"firstName": "Ronnie", "lastName": "Radke", "email": "rradke@email.com"}}`

	var s struct {
		Values ldvalue.Value `json:"values"`
	}
	require.NoError(t, ParseJSONOrYAML([]byte(input), &s))
	m.In(t).Assert(s.Values, m.JSONStrEqual(expected))
}

func TestParseJSONOrYAMLRejectsNonStringKeys(t *testing.T) {
	var out interface{}
	assert.Error(t, ParseJSONOrYAML([]byte("1: value\n"), &out))
}
