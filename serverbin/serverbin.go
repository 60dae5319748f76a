// Package serverbin embeds the API Challenge server releases that the harness extracts before
// each scenario.
package serverbin

import (
	"embed"
	"io/fs"
	"path"

	"github.com/apichallenge/api-test-harness/framework/harness"
)

//go:embed bin
var releases embed.FS

const releaseDir = "bin"

// Source returns the embedded release with the given file name.
func Source(name string) harness.BinarySource {
	return harness.EmbeddedBinary(releases, path.Join(releaseDir, name))
}

// Available lists the names of the embedded releases.
func Available() []string {
	entries, err := fs.ReadDir(releases, releaseDir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && e.Name() != "README.md" {
			names = append(names, e.Name())
		}
	}
	return names
}
