package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, "http://localhost:5000/api", c.BaseURL())
	assert.Equal(t, "http://localhost:5000", c.ServerURL())
	assert.Equal(t, ":5000", c.ListenAddress())
	assert.True(t, strings.HasPrefix(c.BinaryName, "api_challenge-3.156.0_"))
	assert.Equal(t, "rui@email.com", c.User.Email)
	assert.Equal(t, "123456", c.User.Password)
	assert.Equal(t, "admin", c.User.Role)
}

func TestArtifactPaths(t *testing.T) {
	c := Default()
	c.WorkDir = filepath.FromSlash("/tmp/run")
	c.BinaryName = "server"
	assert.Equal(t, []string{
		filepath.FromSlash("/tmp/run/server"),
		filepath.FromSlash("/tmp/run/authdb"),
		filepath.FromSlash("/tmp/run/employeesdb"),
		filepath.FromSlash("/tmp/run/server.pid"),
	}, c.ArtifactPaths())
}

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	c, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadOverridesDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/harness.yaml", []byte(`
port: 5100
basePath: /v2/api
readyTimeout: 30s
env:
  - LOG_LEVEL=debug
user:
  email: tester@email.com
  password: secret
  role: admin
`), 0o644))

	c, err := Load(fs, "/etc/harness.yaml")
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "http://localhost:5100/v2/api", c.BaseURL())
	assert.Equal(t, 30*time.Second, c.ReadyTimeout)
	assert.Equal(t, []string{"LOG_LEVEL=debug"}, c.Env)
	assert.Equal(t, "tester@email.com", c.User.Email)
	assert.Equal(t, DefaultUsersStore, c.UsersStore)
	assert.Equal(t, DefaultRequestTimeout, c.RequestTimeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/nope.yaml")
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bad.yaml", []byte("port: [1, 2"), 0o644))
	_, err := Load(fs, "/bad.yaml")
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	for name, modify := range map[string]func(*Config){
		"port zero":         func(c *Config) { c.Port = 0 },
		"port too large":    func(c *Config) { c.Port = 70000 },
		"no binary name":    func(c *Config) { c.BinaryName = "" },
		"base path slash":   func(c *Config) { c.BasePath = "api/" },
		"no ready timeout":  func(c *Config) { c.ReadyTimeout = 0 },
		"negative delay":    func(c *Config) { c.ReadyDelay = -time.Second },
		"bad email":         func(c *Config) { c.User.Email = "not-an-email" },
		"no password":       func(c *Config) { c.User.Password = "" },
		"unknown log level": func(c *Config) { c.LogLevel = "verbose" },
	} {
		t.Run(name, func(t *testing.T) {
			c := Default()
			modify(&c)
			assert.Error(t, c.Validate())
		})
	}
}
