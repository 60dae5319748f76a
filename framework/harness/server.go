package harness

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/apichallenge/api-test-harness/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

const (
	readyProbeTimeout   = 2 * time.Second
	removeRetryInterval = 100 * time.Millisecond
	removeRetries       = 20
)

// ErrPortInUse is returned by Launch when something else is already listening on the server's port.
var ErrPortInUse = errors.New("port is already in use")

// Server is anything that can play the part of the API server for one test: the real binary in
// a child process, or an in-process handler.
type Server interface {
	// Launch brings the server to the point where it accepts HTTP requests.
	Launch(ctx context.Context) error

	// Close stops the server and removes every file it created. It reports all problems it ran
	// into, but callers tearing down a test normally just log them.
	Close() error

	// Describe is a short human-readable description for log output.
	Describe() string
}

// ServerExitedError means that the server process terminated before it was stopped.
type ServerExitedError struct {
	ExitErr    error
	LastOutput string
}

func (e *ServerExitedError) Error() string {
	msg := "server process exited unexpectedly"
	if e.ExitErr != nil {
		msg += ": " + e.ExitErr.Error()
	}
	if e.LastOutput != "" {
		msg += fmt.Sprintf(" (last output: %q)", e.LastOutput)
	}
	return msg
}

func (e *ServerExitedError) Unwrap() error { return e.ExitErr }

// waitForHTTP polls serverURL with exponential backoff until any HTTP response comes back. If
// exited is closed first, the poll stops immediately with the error from exitedErr.
func waitForHTTP(
	ctx context.Context,
	cfg config.Config,
	exited <-chan struct{},
	exitedErr func() error,
	logger hclog.Logger,
) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.ReadyPollInterval
	b.MaxInterval = time.Second
	b.MaxElapsedTime = cfg.ReadyTimeout

	client := &http.Client{Timeout: readyProbeTimeout}
	url := cfg.ServerURL()
	attempts := 0
	probe := func() error {
		attempts++
		select {
		case <-exited:
			return backoff.Permanent(exitedErr())
		default:
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		return nil
	}
	notify := func(err error, next time.Duration) {
		logger.Trace("server not ready yet", "error", err, "retry_in", next)
	}

	if err := backoff.RetryNotify(probe, backoff.WithContext(b, ctx), notify); err != nil {
		var exitErr *ServerExitedError
		if errors.As(err, &exitErr) {
			return err
		}
		return fmt.Errorf("server did not become ready at %s within %s: %w", url, cfg.ReadyTimeout, err)
	}
	logger.Debug("server is ready", "url", url, "attempts", attempts)

	if cfg.ReadyDelay > 0 {
		select {
		case <-time.After(cfg.ReadyDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// waitForPortAvailable gives a port that was just released some time to become free again.
func waitForPortAvailable(ctx context.Context, addr string, timeout time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxElapsedTime = timeout
	err := backoff.Retry(func() error {
		if isPortAvailable(addr) {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrPortInUse, addr)
	}, backoff.WithContext(b, ctx))
	return err
}

func isPortAvailable(addr string) bool {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}

// removeFiles deletes every path that exists. A file that is still locked by a process that has
// just been killed is retried for a short while.
func removeFiles(fsys afero.Fs, paths []string) error {
	var result error
	for _, path := range paths {
		path := path
		remove := func() error {
			err := fsys.Remove(path)
			if err == nil || errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		b := backoff.WithMaxRetries(backoff.NewConstantBackOff(removeRetryInterval), removeRetries)
		if err := backoff.Retry(remove, b); err != nil {
			result = multierror.Append(result, fmt.Errorf("cannot remove %s: %w", path, err))
		}
	}
	return result
}

// artifactsPresent returns the artifact paths that currently exist.
func artifactsPresent(fsys afero.Fs, cfg config.Config) []string {
	var present []string
	for _, path := range cfg.ArtifactPaths() {
		if exists, _ := afero.Exists(fsys, path); exists {
			present = append(present, path)
		}
	}
	return present
}
