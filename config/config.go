// Package config holds the settings for a harness run: where the server binary comes from, where
// its artifacts live, how to reach it, and which user the scenarios log in as.
//
// Values come from three layers. Built-in defaults reproduce the standard API Challenge setup; a
// YAML file can override any of them; command-line flags override both.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v3"
)

const (
	// ServerVersion is the API Challenge release the embedded binary and the defaults are for.
	ServerVersion = "3.156.0"

	DefaultHost               = "localhost"
	DefaultPort               = 5000
	DefaultBasePath           = "/api"
	DefaultUsersStore         = "authdb"
	DefaultEmployeesStore     = "employeesdb"
	DefaultReadyTimeout       = 15 * time.Second
	DefaultReadyPollInterval  = 100 * time.Millisecond
	DefaultRequestTimeout     = 30 * time.Second
	DefaultStopTimeout        = 5 * time.Second
	DefaultUserEmail          = "rui@email.com"
	DefaultUserPassword       = "123456"
	DefaultUserRole           = "admin"
	pidFileSuffix             = ".pid"
	defaultProcessLoggerLevel = "info"
)

var basePathRegex = regexp.MustCompile(`^(/[^/\s]+)*$`) //nolint:gochecknoglobals

// Credentials identify the user that scenarios register and log in as.
type Credentials struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required),
		validation.Field(&c.Role, validation.Required),
	)
}

// Config is the complete configuration for a harness run.
type Config struct {
	// BinaryName is the file name the server binary is extracted to inside WorkDir.
	BinaryName string `yaml:"binaryName"`

	// BinarySource, if set, is a path to a server binary to use instead of the embedded one.
	BinarySource string `yaml:"binarySource"`

	// WorkDir is where the binary and both stores are created. It defaults to the OS temp dir,
	// which is also where the server itself puts its stores.
	WorkDir string `yaml:"workDir"`

	UsersStore     string `yaml:"usersStore"`
	EmployeesStore string `yaml:"employeesStore"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	BasePath string `yaml:"basePath"`

	// ReadyTimeout bounds how long we wait for the server to accept HTTP after it starts.
	ReadyTimeout      time.Duration `yaml:"readyTimeout"`
	ReadyPollInterval time.Duration `yaml:"readyPollInterval"`

	// ReadyDelay is an additional fixed wait after the server is ready. It is zero by default.
	ReadyDelay time.Duration `yaml:"readyDelay"`

	RequestTimeout time.Duration `yaml:"requestTimeout"`
	StopTimeout    time.Duration `yaml:"stopTimeout"`

	// Args and Env are passed to the server process in addition to the inherited environment.
	Args []string `yaml:"args"`
	Env  []string `yaml:"env"`

	// LogLevel is the hclog level for harness-level output.
	LogLevel string `yaml:"logLevel"`

	User Credentials `yaml:"user"`
}

// DefaultBinaryName returns the name of the server release for the current platform.
func DefaultBinaryName() string {
	name := fmt.Sprintf("api_challenge-%s_%s", ServerVersion, runtime.GOOS)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return name
}

// Default returns the configuration that matches a stock API Challenge server.
func Default() Config {
	return Config{
		BinaryName:        DefaultBinaryName(),
		WorkDir:           os.TempDir(),
		UsersStore:        DefaultUsersStore,
		EmployeesStore:    DefaultEmployeesStore,
		Host:              DefaultHost,
		Port:              DefaultPort,
		BasePath:          DefaultBasePath,
		ReadyTimeout:      DefaultReadyTimeout,
		ReadyPollInterval: DefaultReadyPollInterval,
		RequestTimeout:    DefaultRequestTimeout,
		StopTimeout:       DefaultStopTimeout,
		LogLevel:          defaultProcessLoggerLevel,
		User: Credentials{
			Email:    DefaultUserEmail,
			Password: DefaultUserPassword,
			Role:     DefaultUserRole,
		},
	}
}

// Load reads a YAML configuration file on top of the defaults. An empty path returns the
// defaults. The result is not validated; call Validate after applying any other overrides.
func Load(fs afero.Fs, path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return c, fmt.Errorf("cannot read configuration file: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("malformed configuration file %q: %w", path, err)
	}
	return c, nil
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BinaryName, validation.Required),
		validation.Field(&c.WorkDir, validation.Required),
		validation.Field(&c.UsersStore, validation.Required),
		validation.Field(&c.EmployeesStore, validation.Required),
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.BasePath, validation.Match(basePathRegex)),
		validation.Field(&c.ReadyTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.ReadyPollInterval, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.ReadyDelay, validation.Min(time.Duration(0))),
		validation.Field(&c.RequestTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.StopTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.LogLevel, validation.In("trace", "debug", "info", "warn", "error", "off")),
		validation.Field(&c.User),
	)
}

// ServerURL is the root URL of the server, without the API base path.
func (c Config) ServerURL() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// BaseURL is the URL that all API paths are relative to.
func (c Config) BaseURL() string {
	return c.ServerURL() + c.BasePath
}

// ListenAddress is the local address the server is expected to bind.
func (c Config) ListenAddress() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c Config) BinaryPath() string         { return filepath.Join(c.WorkDir, c.BinaryName) }
func (c Config) UsersStorePath() string     { return filepath.Join(c.WorkDir, c.UsersStore) }
func (c Config) EmployeesStorePath() string { return filepath.Join(c.WorkDir, c.EmployeesStore) }
func (c Config) PidFilePath() string        { return c.BinaryPath() + pidFileSuffix }

// ArtifactPaths lists every file a run creates. None of them may exist before the server
// starts or after it has been torn down.
func (c Config) ArtifactPaths() []string {
	return []string{c.BinaryPath(), c.UsersStorePath(), c.EmployeesStorePath(), c.PidFilePath()}
}
