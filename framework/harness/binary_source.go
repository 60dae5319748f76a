package harness

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/afero"
)

// BinarySource provides the bytes of the server executable that is extracted before each run.
type BinarySource interface {
	Open() (io.ReadCloser, error)
	Describe() string
}

type fileBinarySource struct {
	fs   afero.Fs
	path string
}

// FileBinary reads the server executable from a path.
func FileBinary(fs afero.Fs, path string) BinarySource {
	return fileBinarySource{fs: fs, path: path}
}

func (f fileBinarySource) Open() (io.ReadCloser, error) {
	return f.fs.Open(f.path)
}

func (f fileBinarySource) Describe() string { return "file " + f.path }

type embeddedBinarySource struct {
	fsys fs.FS
	name string
}

// EmbeddedBinary reads the server executable from an embedded filesystem.
func EmbeddedBinary(fsys fs.FS, name string) BinarySource {
	return embeddedBinarySource{fsys: fsys, name: name}
}

func (e embeddedBinarySource) Open() (io.ReadCloser, error) {
	f, err := e.fsys.Open(e.name)
	if err != nil {
		return nil, fmt.Errorf("server binary %q is not embedded in this build: %w", e.name, err)
	}
	return f, nil
}

func (e embeddedBinarySource) Describe() string { return "embedded resource " + e.name }
