package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/apichallenge/api-test-harness/config"
	"github.com/apichallenge/api-test-harness/framework/helpers"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

const outputTailSize = 4096

// ServerState is the lifecycle stage of a ServerProcess.
type ServerState int

const (
	StateIdle ServerState = iota
	StateCleaned
	StateExtracted
	StateStarted
	StateReady
	StateStopped
)

func (s ServerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCleaned:
		return "cleaned"
	case StateExtracted:
		return "extracted"
	case StateStarted:
		return "started"
	case StateReady:
		return "ready"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type serverOptions struct {
	fs     afero.Fs
	logger hclog.Logger
	output io.Writer
}

// ServerOption is an optional parameter for NewServerProcess and NewInProcessServer.
type ServerOption func(*serverOptions) error

// WithFilesystem sets the filesystem that the binary, the stores and the pid file live in. The
// default is the OS filesystem; anything else only makes sense for tests that never start the
// process.
func WithFilesystem(fs afero.Fs) ServerOption {
	return func(opts *serverOptions) error {
		if fs == nil {
			return errors.New("filesystem must not be nil")
		}
		opts.fs = fs
		return nil
	}
}

// WithLogger sets the logger for lifecycle messages. Server output is logged through a child
// logger named "server".
func WithLogger(logger hclog.Logger) ServerOption {
	return func(opts *serverOptions) error {
		if logger != nil {
			opts.logger = logger
		}
		return nil
	}
}

// WithOutput sends a copy of the server's raw stdout and stderr to w.
func WithOutput(w io.Writer) ServerOption {
	return func(opts *serverOptions) error {
		opts.output = w
		return nil
	}
}

// resolveServerOptions starts from the OS filesystem and a silent logger. The first failing
// option stops it.
func resolveServerOptions(options []ServerOption) (serverOptions, error) {
	opts := serverOptions{fs: afero.NewOsFs(), logger: hclog.NewNullLogger()}
	for _, o := range options {
		if err := o(&opts); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// ServerProcess runs the API server binary as a child process and owns every file that comes
// with it. A ServerProcess is used for a single Launch/Close cycle.
type ServerProcess struct {
	config  config.Config
	source  BinarySource
	fs      afero.Fs
	logger  hclog.Logger
	output  io.Writer
	tail    *outputTail
	cmd     *exec.Cmd
	exited  chan struct{}
	exitErr error
	state   ServerState
	lock    sync.Mutex
}

// NewServerProcess creates a ServerProcess. It does not touch the filesystem or start anything.
func NewServerProcess(cfg config.Config, source BinarySource, options ...ServerOption) (*ServerProcess, error) {
	if source == nil {
		return nil, errors.New("no server binary source was specified")
	}
	opts, err := resolveServerOptions(options)
	if err != nil {
		return nil, err
	}
	return &ServerProcess{
		config: cfg,
		source: source,
		fs:     opts.fs,
		logger: opts.logger,
		output: opts.output,
		tail:   newOutputTail(outputTailSize),
	}, nil
}

func (p *ServerProcess) Describe() string {
	return fmt.Sprintf("%s from %s on port %d", p.config.BinaryName, p.source.Describe(), p.config.Port)
}

// State returns the current lifecycle stage.
func (p *ServerProcess) State() ServerState {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.state
}

func (p *ServerProcess) setState(s ServerState) {
	p.lock.Lock()
	p.state = s
	p.lock.Unlock()
}

// PID returns the process ID, or zero if the process has not been started.
func (p *ServerProcess) PID() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// LastOutput returns the most recent output of the server process.
func (p *ServerProcess) LastOutput() string {
	return p.tail.String()
}

// Launch performs the whole startup sequence: Clean, Extract, Start and WaitReady. If any step
// after Start fails, the process is stopped again before returning.
func (p *ServerProcess) Launch(ctx context.Context) error {
	if err := p.Clean(ctx); err != nil {
		return err
	}
	if err := p.Extract(); err != nil {
		return err
	}
	if err := p.Start(); err != nil {
		return err
	}
	if err := p.WaitReady(ctx); err != nil {
		if stopErr := p.Stop(); stopErr != nil {
			p.logger.Warn("could not stop server after failed startup", "error", stopErr)
		}
		return err
	}
	return nil
}

// Clean removes whatever an earlier run left behind: a server process recorded in the pid file,
// the binary, and both stores. It then waits for the port to be free.
func (p *ServerProcess) Clean(ctx context.Context) error {
	if err := p.killStaleProcess(); err != nil {
		return err
	}
	if leftovers := artifactsPresent(p.fs, p.config); len(leftovers) != 0 {
		p.logger.Debug("removing files from an earlier run", "paths", strings.Join(leftovers, ", "))
	}
	if err := removeFiles(p.fs, p.config.ArtifactPaths()); err != nil {
		return err
	}
	if err := waitForPortAvailable(ctx, p.config.ListenAddress(), p.config.StopTimeout); err != nil {
		return err
	}
	p.setState(StateCleaned)
	return nil
}

func (p *ServerProcess) killStaleProcess() error {
	pidFile := p.config.PidFilePath()
	data, err := afero.ReadFile(p.fs, pidFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("cannot read pid file %s: %w", pidFile, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		p.logger.Warn("ignoring malformed pid file", "path", pidFile)
		return nil
	}
	if !processAlive(pid) || !processMatches(pid, p.config.BinaryName) {
		return nil
	}
	p.logger.Info("killing server left over from an earlier run", "pid", pid)
	if err := killProcessGroup(pid); err != nil {
		return fmt.Errorf("cannot kill stale server process %d: %w", pid, err)
	}
	b := backoff.NewConstantBackOff(50 * time.Millisecond)
	err = backoff.Retry(func() error {
		if processAlive(pid) {
			return fmt.Errorf("process %d is still running", pid)
		}
		return nil
	}, backoff.WithMaxRetries(b, uint64(p.config.StopTimeout/(50*time.Millisecond))))
	if err != nil {
		return fmt.Errorf("stale server process did not exit: %w", err)
	}
	return nil
}

// Extract writes the server binary into the work directory and makes it executable.
func (p *ServerProcess) Extract() error {
	path := p.config.BinaryPath()
	r, err := p.source.Open()
	if err != nil {
		return fmt.Errorf("failed to extract the API server: %w", err)
	}
	defer r.Close() //nolint:errcheck

	if err := afero.WriteReader(p.fs, path, r); err != nil {
		return fmt.Errorf("failed to extract the API server to %s: %w", path, err)
	}
	if err := p.fs.Chmod(path, 0o755); err != nil { //nolint:gomnd
		return fmt.Errorf("failed to make %s executable: %w", path, err)
	}
	if exists, err := afero.Exists(p.fs, path); err != nil || !exists {
		return fmt.Errorf("failed to extract the API server: %s does not exist", path)
	}
	p.logger.Debug("extracted server binary", "source", p.source.Describe(), "path", path)
	p.setState(StateExtracted)
	return nil
}

// Start launches the extracted binary. It returns as soon as the process exists; use WaitReady
// to find out when it accepts requests.
func (p *ServerProcess) Start() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.cmd != nil {
		return errors.New("server process was already started")
	}

	cmd := exec.Command(p.config.BinaryPath(), p.config.Args...) //nolint:gosec
	cmd.Dir = p.config.WorkDir
	cmd.Env = append(os.Environ(), p.config.Env...)
	setProcGroup(cmd)

	serverLog := p.logger.Named("server").StandardWriter(&hclog.StandardLoggerOptions{InferLevels: true})
	sinks := []io.Writer{p.tail, newFilteredWriter(serverLog, []*regexp.Regexp{blankLineRegex})}
	if p.output != nil {
		sinks = append(sinks, p.output)
	}
	out := io.MultiWriter(sinks...)
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start the API server: %w", err)
	}
	p.cmd = cmd
	p.exited = make(chan struct{})
	go func() {
		err := cmd.Wait()
		p.lock.Lock()
		p.exitErr = err
		p.lock.Unlock()
		close(p.exited)
	}()

	pid := cmd.Process.Pid
	if err := afero.WriteFile(p.fs, p.config.PidFilePath(), []byte(strconv.Itoa(pid)), 0o644); err != nil { //nolint:gomnd
		p.logger.Warn("could not write pid file", "path", p.config.PidFilePath(), "error", err)
	}
	p.state = StateStarted
	p.logger.Info("started server", "pid", pid, "path", p.config.BinaryPath())
	return nil
}

// WaitReady blocks until the server answers HTTP requests. It fails early if the process exits,
// and otherwise gives up after the configured ready timeout.
func (p *ServerProcess) WaitReady(ctx context.Context) error {
	p.lock.Lock()
	exited := p.exited
	p.lock.Unlock()
	if exited == nil {
		return errors.New("server process was not started")
	}
	if err := waitForHTTP(ctx, p.config, exited, p.exitedError, p.logger); err != nil {
		return err
	}
	p.setState(StateReady)
	return nil
}

func (p *ServerProcess) exitedError() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	return &ServerExitedError{ExitErr: p.exitErr, LastOutput: p.tail.LastLine()}
}

// Exited returns a channel that is closed when the process terminates, or nil if it was never
// started.
func (p *ServerProcess) Exited() <-chan struct{} {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.exited
}

// Stop kills the server and everything it spawned, and waits for it to exit. Stopping a process
// that already exited, or was never started, is not an error.
func (p *ServerProcess) Stop() error {
	p.lock.Lock()
	cmd, exited := p.cmd, p.exited
	p.lock.Unlock()
	if cmd == nil {
		return nil
	}
	select {
	case <-exited:
		p.setState(StateStopped)
		return nil
	default:
	}

	pid := cmd.Process.Pid
	if err := killProcessGroup(pid); err != nil {
		select {
		case <-exited:
		default:
			return fmt.Errorf("cannot kill server process %d: %w", pid, err)
		}
	}
	if !helpers.TryReceive(exited, p.config.StopTimeout).IsDefined() {
		return fmt.Errorf("server process %d did not exit within %s", pid, p.config.StopTimeout)
	}
	p.setState(StateStopped)
	p.logger.Info("stopped server", "pid", pid)
	return nil
}

// Cleanup removes the binary, both stores and the pid file.
func (p *ServerProcess) Cleanup() error {
	return removeFiles(p.fs, p.config.ArtifactPaths())
}

// Close is Stop followed by Cleanup. Cleanup is attempted even if Stop fails.
func (p *ServerProcess) Close() error {
	var result error
	if err := p.Stop(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := p.Cleanup(); err != nil {
		result = multierror.Append(result, err)
	}
	if result != nil {
		p.logger.Debug("problems during teardown", "error", result)
	}
	return result
}
