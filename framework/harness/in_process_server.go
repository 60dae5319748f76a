package harness

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/apichallenge/api-test-harness/config"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

const readHeaderTimeout = 10 * time.Second

// HandlerFactory creates the handler for an InProcessServer. It is called after the previous
// run's files have been removed, so a handler that loads its state from disk starts empty.
type HandlerFactory func() (http.Handler, error)

// InProcessServer serves an http.Handler on the configured port in place of the real server
// binary. It goes through the same cleanup and readiness steps as ServerProcess.
type InProcessServer struct {
	config   config.Config
	factory  HandlerFactory
	fs       afero.Fs
	logger   hclog.Logger
	server   *http.Server
	exited   chan struct{}
	serveErr error
	lock     sync.Mutex
}

// NewInProcessServer creates an InProcessServer. Only the WithFilesystem and WithLogger options
// have any effect.
func NewInProcessServer(cfg config.Config, factory HandlerFactory, options ...ServerOption) (*InProcessServer, error) {
	opts, err := resolveServerOptions(options)
	if err != nil {
		return nil, err
	}
	return &InProcessServer{
		config:  cfg,
		factory: factory,
		fs:      opts.fs,
		logger:  opts.logger,
	}, nil
}

func (s *InProcessServer) Describe() string {
	return fmt.Sprintf("in-process server on port %d", s.config.Port)
}

func (s *InProcessServer) Launch(ctx context.Context) error {
	s.lock.Lock()
	if s.server != nil {
		s.lock.Unlock()
		return errors.New("in-process server was already started")
	}
	s.lock.Unlock()

	if err := removeFiles(s.fs, s.config.ArtifactPaths()); err != nil {
		return err
	}
	handler, err := s.factory()
	if err != nil {
		return fmt.Errorf("cannot create in-process server: %w", err)
	}
	ln, err := net.Listen("tcp", s.config.ListenAddress())
	if err != nil {
		return fmt.Errorf("%w: %s (%s)", ErrPortInUse, s.config.ListenAddress(), err)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	exited := make(chan struct{})
	s.lock.Lock()
	s.server, s.exited = server, exited
	s.lock.Unlock()

	go func() {
		err := server.Serve(ln)
		if !errors.Is(err, http.ErrServerClosed) {
			s.lock.Lock()
			s.serveErr = err
			s.lock.Unlock()
		}
		close(exited)
	}()
	s.logger.Info("started in-process server", "address", s.config.ListenAddress())

	return waitForHTTP(ctx, s.config, exited, func() error {
		s.lock.Lock()
		defer s.lock.Unlock()
		return &ServerExitedError{ExitErr: s.serveErr}
	}, s.logger)
}

func (s *InProcessServer) Close() error {
	s.lock.Lock()
	server, exited := s.server, s.exited
	s.lock.Unlock()

	var result error
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.StopTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			result = multierror.Append(result, err)
		}
		<-exited
	}
	if err := removeFiles(s.fs, s.config.ArtifactPaths()); err != nil {
		result = multierror.Append(result, err)
	}
	return result
}
