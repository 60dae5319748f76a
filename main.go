package main

import (
	"bufio"
	_ "embed" // this is required in order for go:embed to work
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/apichallenge/api-test-harness/config"
	"github.com/apichallenge/api-test-harness/framework"
	"github.com/apichallenge/api-test-harness/framework/harness"
	"github.com/apichallenge/api-test-harness/framework/helpers"
	"github.com/apichallenge/api-test-harness/framework/runner"
	"github.com/apichallenge/api-test-harness/scenarios"
	"github.com/apichallenge/api-test-harness/serverbin"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
)

const harnessName = "api-challenge-harness"

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

func main() {
	fmt.Printf("%s v%s\n", harnessName, strings.TrimSpace(versionString))

	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	results, err := run(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !results.OK() {
		os.Exit(1)
	}
}

func run(params commandParams) (*runner.Results, error) {
	if params.skipFile != "" {
		if err := loadSuppressions(&params); err != nil {
			return nil, err
		}
	}

	fs := afero.NewOsFs()
	cfg, err := config.Load(fs, params.configFile)
	if err != nil {
		return nil, err
	}
	params.applyTo(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	mainLogger := framework.NewProcessLogger(harnessName, cfg.LogLevel, os.Stdout)

	launcher, err := makeLauncher(params, cfg, fs, mainLogger)
	if err != nil {
		return nil, err
	}

	var testLogger runner.TestLogger
	consoleLogger := runner.ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	if params.jUnitFile == "" {
		testLogger = consoleLogger
	} else {
		testLogger = &runner.MultiTestLogger{Loggers: []runner.TestLogger{
			consoleLogger,
			runner.NewJUnitTestLogger(params.jUnitFile, suiteInfo(cfg, params), params.filters),
		}}
	}

	results := scenarios.RunAPITestSuite(launcher, params.filters, testLogger, os.Stdout)

	fmt.Println()
	if err := testLogger.EndLog(results); err != nil {
		return nil, fmt.Errorf("error writing log: %v", err)
	}

	if params.recordFailures != "" {
		if err := recordFailures(fs, params.recordFailures, results); err != nil {
			return nil, err
		}
	}

	return &results, nil
}

func makeLauncher(
	params commandParams,
	cfg config.Config,
	fs afero.Fs,
	logger hclog.Logger,
) (scenarios.ServerLauncher, error) {
	if params.mock {
		logger.Info("using the built-in mock server", "url", cfg.BaseURL())
		return scenarios.MockLauncher{
			ServerConfig: cfg,
			Fs:           fs,
			Logger:       framework.LoggerFromHCLog(logger.Named("mock"), hclog.Debug),
		}, nil
	}

	var source harness.BinarySource
	if cfg.BinarySource != "" {
		source = harness.FileBinary(fs, cfg.BinarySource)
	} else {
		available := serverbin.Available()
		if len(available) == 0 {
			return nil, errors.New("no server binary is embedded in this build; use -binary to specify one")
		}
		if !helpers.SliceContains(cfg.BinaryName, available) {
			return nil, fmt.Errorf("server binary %q is not embedded in this build (available: %s)",
				cfg.BinaryName, strings.Join(available, ", "))
		}
		source = serverbin.Source(cfg.BinaryName)
	}
	logger.Info("using server binary", "source", source.Describe(), "url", cfg.BaseURL())
	return scenarios.ProcessLauncher{ServerConfig: cfg, Source: source}, nil
}

func suiteInfo(cfg config.Config, params commandParams) runner.SuiteInfo {
	return runner.SuiteInfo{
		Name: "api-challenge-" + helpers.IfElse(params.mock, "mock", config.ServerVersion),
		Properties: map[string]string{
			"runId":         uuid.NewString(),
			"baseUrl":       cfg.BaseURL(),
			"serverVersion": config.ServerVersion,
			"harness":       harnessName + " " + strings.TrimSpace(versionString),
		},
	}
}

func recordFailures(fs afero.Fs, path string, results runner.Results) error {
	var b strings.Builder
	for _, test := range results.Failures {
		fmt.Fprintln(&b, test.TestID)
	}
	if err := afero.WriteFile(fs, path, []byte(b.String()), 0o644); err != nil { //nolint:gomnd
		return fmt.Errorf("cannot create suppression file: %v", err)
	}
	return nil
}

func loadSuppressions(params *commandParams) error {
	file, err := os.Open(params.skipFile)
	if err != nil {
		return fmt.Errorf("cannot open provided suppression file: %v", err)
	}
	defer func() { _ = file.Close() }()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		// Ignore blank lines
		if strings.TrimSpace(line) == "" {
			continue
		}
		escaped := regexp.QuoteMeta(line)
		if err := params.filters.MustNotMatch.Set(escaped); err != nil {
			return fmt.Errorf("cannot parse suppression: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("while processing suppression file: %v", err)
	}
	return nil
}
