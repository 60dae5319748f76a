package data

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

type substitutionSet map[string]ldvalue.Value

// apply replaces each "<name>" in data. A placeholder that is a whole quoted string, such as
// "<count>", takes the JSON type of the value; anywhere else the value is interpolated as text.
func (s substitutionSet) apply(data []byte) []byte {
	str := strings.NewReplacer(`\u003c`, "<", `\u003e`, ">").Replace(string(data))
	for name, value := range s {
		typed := value.JSONString()
		text := typed
		if value.IsString() {
			text = value.StringValue()
		}
		str = strings.ReplaceAll(str, `"<`+name+`>"`, typed)
		str = strings.ReplaceAll(str, "<"+name+">", text)
	}
	return []byte(str)
}

func (s substitutionSet) merge(other substitutionSet) substitutionSet {
	ret := make(substitutionSet, len(s)+len(other))
	for k, v := range s {
		ret[k] = v
	}
	for k, v := range other {
		ret[k] = v
	}
	return ret
}

func expandSubstitutions(originalData []byte, supplied substitutionSet) ([]SourceInfo, error) {
	var header struct {
		Constants  substitutionSet   `json:"constants"`
		Parameters []json.RawMessage `json:"parameters"`
	}
	if err := ParseJSONOrYAML(originalData, &header); err != nil {
		return nil, err
	}
	withConstants := header.Constants.apply(originalData)
	paramSets, err := parameterSets(header.Parameters)
	if err != nil {
		return nil, err
	}
	if len(paramSets) == 0 {
		return []SourceInfo{{Data: supplied.apply(withConstants)}}, nil
	}
	ret := make([]SourceInfo, 0, len(paramSets))
	for _, params := range paramSets {
		// constants are applied again because a parameter value may refer to one
		data := supplied.apply(header.Constants.apply(params.apply(withConstants)))
		ret = append(ret, SourceInfo{Data: data, Params: params})
	}
	return ret, nil
}

// parameterSets accepts either a list of parameter objects, or a list of lists of them. In the
// second form the result is every combination of one object from each list.
func parameterSets(raw []json.RawMessage) ([]substitutionSet, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	allData, _ := json.Marshal(raw)
	switch ldvalue.Parse(raw[0]).Type() {
	case ldvalue.ObjectType:
		var sets []substitutionSet
		err := json.Unmarshal(allData, &sets)
		return sets, err
	case ldvalue.ArrayType:
		var lists [][]substitutionSet
		if err := json.Unmarshal(allData, &lists); err != nil {
			return nil, err
		}
		combined := []substitutionSet{{}}
		for _, list := range lists {
			next := make([]substitutionSet, 0, len(combined)*len(list))
			for _, prefix := range combined {
				for _, set := range list {
					next = append(next, prefix.merge(set))
				}
			}
			combined = next
		}
		return combined, nil
	default:
		return nil, errors.New("parameters must be an array of objects or an array of arrays")
	}
}
