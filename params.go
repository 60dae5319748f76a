package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/apichallenge/api-test-harness/config"
	"github.com/apichallenge/api-test-harness/framework/runner"
)

type commandParams struct {
	configFile     string
	binary         string
	workDir        string
	host           string
	port           int
	basePath       string
	readyTimeout   time.Duration
	readyDelay     time.Duration
	filters        runner.RegexFilters
	skipFile       string
	recordFailures string
	debug          bool
	debugAll       bool
	jUnitFile      string
	mock           bool

	// names of the flags that were given explicitly, so that only those override the config file
	setFlags map[string]bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.configFile, "config", "", "YAML file with harness settings")
	fs.StringVar(&c.binary, "binary", "", "path of a server binary to use instead of the embedded one")
	fs.StringVar(&c.workDir, "work-dir", "", "directory for the server binary and its stores (default: OS temp dir)")
	fs.StringVar(&c.host, "host", config.DefaultHost, "hostname the server is reached at")
	fs.IntVar(&c.port, "port", config.DefaultPort, "port the server listens on")
	fs.StringVar(&c.basePath, "base-path", config.DefaultBasePath, "path prefix of every API endpoint")
	fs.DurationVar(&c.readyTimeout, "ready-timeout", config.DefaultReadyTimeout,
		"how long to wait for the server to accept requests")
	fs.DurationVar(&c.readyDelay, "ready-delay", 0, "fixed extra wait after the server is ready")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.StringVar(&c.skipFile, "skip-file", "", "file containing IDs of tests not to run, one per line")
	fs.StringVar(&c.recordFailures, "record-failures", "", "write the IDs of failed tests to this file")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")
	fs.BoolVar(&c.mock, "mock", false, "run against the built-in mock server instead of the binary")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return false
	}
	c.setFlags = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { c.setFlags[f.Name] = true })
	return true
}

// applyTo overrides the settings in cfg with any flags that were given explicitly.
func (c *commandParams) applyTo(cfg *config.Config) {
	if c.setFlags["binary"] {
		cfg.BinarySource = c.binary
	}
	if c.setFlags["work-dir"] {
		cfg.WorkDir = c.workDir
	}
	if c.setFlags["host"] {
		cfg.Host = c.host
	}
	if c.setFlags["port"] {
		cfg.Port = c.port
	}
	if c.setFlags["base-path"] {
		cfg.BasePath = c.basePath
	}
	if c.setFlags["ready-timeout"] {
		cfg.ReadyTimeout = c.readyTimeout
	}
	if c.setFlags["ready-delay"] {
		cfg.ReadyDelay = c.readyDelay
	}
	if c.debugAll {
		cfg.LogLevel = "debug"
	}
}
