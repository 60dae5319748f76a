package data

import (
	"embed"
	"fmt"
	"path"

	"github.com/apichallenge/api-test-harness/framework/helpers"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"golang.org/x/exp/maps"
)

//go:embed data-files
var dataFilesRoot embed.FS

const dataBasePath = "data-files"

// SourceInfo is the content of a fixture file after constants and parameters have been
// substituted. A parameterized file produces one SourceInfo per parameter set.
type SourceInfo struct {
	FilePath string
	BaseName string
	Params   map[string]ldvalue.Value
	Data     []byte
}

func (s SourceInfo) ParseInto(target interface{}) error {
	if err := ParseJSONOrYAML(s.Data, target); err != nil {
		return fmt.Errorf("error parsing %q %s: %w", s.BaseName, s.ParamsString(), err)
	}
	return nil
}

// ParamsString describes the parameter set, with names in sorted order, such as
// "(email=x,name=y)". It is empty for a file without parameters.
func (s SourceInfo) ParamsString() string {
	if len(s.Params) == 0 {
		return ""
	}
	ps := ""
	for _, k := range helpers.Sorted(maps.Keys(s.Params)) {
		if ps != "" {
			ps += ","
		}
		ps += k + "=" + s.Params[k].String()
	}
	return "(" + ps + ")"
}

// LoadDataFile reads an embedded fixture file, relative to data/data-files, and performs the
// substitutions described in data-files/README.md.
func LoadDataFile(filePath string) ([]SourceInfo, error) {
	return LoadDataFileWith(filePath, nil)
}

// LoadDataFileWith is LoadDataFile with additional values for placeholders that the file does
// not define itself.
func LoadDataFileWith(filePath string, values map[string]ldvalue.Value) ([]SourceInfo, error) {
	data, err := dataFilesRoot.ReadFile(dataBasePath + "/" + filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", filePath, err)
	}
	sources, err := expandSubstitutions(data, values)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", filePath, err)
	}
	for i := range sources {
		sources[i].FilePath = filePath
		sources[i].BaseName = path.Base(filePath)
	}
	return sources, nil
}
