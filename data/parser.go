package data

import (
	"encoding/json"
	"fmt"

	yaml "gopkg.in/yaml.v3"
)

// ParseJSONOrYAML works like json.Unmarshal, but also accepts YAML. YAML input is converted to
// JSON first, so the target's json tags apply either way.
func ParseJSONOrYAML(data []byte, target interface{}) error {
	if err := json.Unmarshal(data, target); err == nil {
		return nil
	}
	var parsed interface{}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return err
	}
	normalized, err := yamlToJSONCompatible(parsed)
	if err != nil {
		return err
	}
	jsonData, err := json.Marshal(normalized)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, target)
}

// yamlToJSONCompatible rewrites the maps produced by the YAML decoder into maps with string keys.
func yamlToJSONCompatible(value interface{}) (interface{}, error) {
	switch value := value.(type) {
	case []interface{}:
		out := make([]interface{}, 0, len(value))
		for _, item := range value {
			converted, err := yamlToJSONCompatible(item)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(value))
		for k, item := range value {
			converted, err := yamlToJSONCompatible(item)
			if err != nil {
				return nil, err
			}
			out[k] = converted
		}
		return out, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(value))
		for k, item := range value {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("YAML map keys must be strings, found %T", k)
			}
			converted, err := yamlToJSONCompatible(item)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	default:
		return value, nil
	}
}
