package scenarios

import (
	"net/http"

	"github.com/apichallenge/api-test-harness/config"
	"github.com/apichallenge/api-test-harness/framework"
	"github.com/apichallenge/api-test-harness/framework/harness"
	"github.com/apichallenge/api-test-harness/mockapi"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
)

// ServerLauncher creates a new, not yet started, server for each scenario.
type ServerLauncher interface {
	NewServer(logger hclog.Logger) (harness.Server, error)
	Config() config.Config
}

// ProcessLauncher runs the real server binary.
type ProcessLauncher struct {
	ServerConfig config.Config
	Source       harness.BinarySource
}

func (l ProcessLauncher) NewServer(logger hclog.Logger) (harness.Server, error) {
	p, err := harness.NewServerProcess(l.ServerConfig, l.Source, harness.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (l ProcessLauncher) Config() config.Config { return l.ServerConfig }

// MockLauncher serves the in-process implementation from package mockapi instead of the binary.
type MockLauncher struct {
	ServerConfig config.Config

	// Fs is where the mock server keeps its stores. It defaults to the OS filesystem.
	Fs afero.Fs

	// WrapHandler, if set, can decorate the mock server's handler.
	WrapHandler func(http.Handler) http.Handler

	// Logger receives the mock server's own debug output.
	Logger framework.Logger
}

func (l MockLauncher) NewServer(logger hclog.Logger) (harness.Server, error) {
	fs := l.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	factory := func() (http.Handler, error) {
		server, err := mockapi.NewServer(fs, mockapi.OptionsFromConfig(l.ServerConfig), l.Logger)
		if err != nil {
			return nil, err
		}
		if l.WrapHandler != nil {
			return l.WrapHandler(server), nil
		}
		return server, nil
	}
	s, err := harness.NewInProcessServer(l.ServerConfig, factory, harness.WithFilesystem(fs), harness.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (l MockLauncher) Config() config.Config { return l.ServerConfig }
