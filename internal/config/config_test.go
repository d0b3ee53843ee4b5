package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, ProxyModeNone, cfg.ProxyMode)
	assert.Zero(t, cfg.RequestTimeout)
	assert.Equal(t, 10.0, cfg.RequestsPerSecond)
	assert.Equal(t, 20, cfg.RequestBurst)
	assert.False(t, cfg.DesktopNotifications)
	assert.NotEmpty(t, cfg.SessionPath)
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config")

	cfg := &Config{
		BaseURL:              "https://drive.example.com",
		RequestTimeout:       45 * time.Second,
		RequestsPerSecond:    2.5,
		RequestBurst:         0,
		ProxyMode:            ProxyModeBasic,
		ProxyHost:            "proxy.corp",
		ProxyPort:            3128,
		ProxyUser:            "alice",
		ProxyPassword:        "s3cret",
		NoProxy:              "localhost,10.0.0.0/8",
		ProxyWarmup:          true,
		DesktopNotifications: true,
	}

	require.NoError(t, SaveConfig(cfg, path))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")

	loaded, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.BaseURL, loaded.BaseURL)
	assert.Equal(t, cfg.RequestTimeout, loaded.RequestTimeout)
	assert.Equal(t, 2.5, loaded.RequestsPerSecond)
	assert.Zero(t, loaded.RequestBurst)
	assert.Equal(t, cfg.ProxyMode, loaded.ProxyMode)
	assert.Equal(t, cfg.ProxyHost, loaded.ProxyHost)
	assert.Equal(t, cfg.ProxyPort, loaded.ProxyPort)
	assert.Equal(t, cfg.ProxyUser, loaded.ProxyUser)
	assert.Equal(t, cfg.ProxyPassword, loaded.ProxyPassword)
	assert.Equal(t, cfg.NoProxy, loaded.NoProxy)
	assert.True(t, loaded.ProxyWarmup)
	assert.True(t, loaded.DesktopNotifications)
}

func TestLoadConfig_NonExistent(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Equal(t, NewConfig().BaseURL, cfg.BaseURL)
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("[minidrive\nbase_url"), 0600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestApplyEnvironment(t *testing.T) {
	cfg := NewConfig()
	cfg.ProxyHost = "from-file"

	t.Setenv("MINIDRIVE_BASE_URL", "http://env.example:8080")
	t.Setenv("MINIDRIVE_REQUEST_TIMEOUT", "30s")
	t.Setenv("MINIDRIVE_DESKTOP_NOTIFICATIONS", "true")

	require.NoError(t, cfg.ApplyEnvironment())

	assert.Equal(t, "http://env.example:8080", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.DesktopNotifications)
	assert.Equal(t, "from-file", cfg.ProxyHost, "unset variables must not clobber file values")
}

func TestApplyEnvironment_BadValue(t *testing.T) {
	t.Setenv("MINIDRIVE_PROXY_PORT", "not-a-number")
	assert.Error(t, NewConfig().ApplyEnvironment())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("MINIDRIVE_PROXY_HOST=dotenv-host\n"), 0600))

	// t.Setenv registers cleanup so the value loaded below is removed afterwards.
	t.Setenv("MINIDRIVE_PROXY_HOST", "")
	require.NoError(t, os.Unsetenv("MINIDRIVE_PROXY_HOST"))

	require.NoError(t, LoadDotEnv(envFile, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "dotenv-host", os.Getenv("MINIDRIVE_PROXY_HOST"))
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("MINIDRIVE_PROXY_USER=dotenv\n"), 0600))
	t.Setenv("MINIDRIVE_PROXY_USER", "shell")

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "shell", os.Getenv("MINIDRIVE_PROXY_USER"))
}

func TestMergeWithFlags(t *testing.T) {
	cfg := NewConfig()
	cfg.ProxyHost = "keep"

	cfg.MergeWithFlags("http://flag:1", ProxyModeSystem, "", 0)

	assert.Equal(t, "http://flag:1", cfg.BaseURL)
	assert.Equal(t, ProxyModeSystem, cfg.ProxyMode)
	assert.Equal(t, "keep", cfg.ProxyHost)
	assert.Zero(t, cfg.ProxyPort)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing base url", func(c *Config) { c.BaseURL = "" }, true},
		{"base url not a url", func(c *Config) { c.BaseURL = "drive" }, true},
		{"unknown proxy mode", func(c *Config) { c.ProxyMode = "socks" }, true},
		{"empty proxy mode", func(c *Config) { c.ProxyMode = "" }, false},
		{"ntlm", func(c *Config) { c.ProxyMode = ProxyModeNTLM }, false},
		{"port out of range", func(c *Config) { c.ProxyPort = 70000 }, true},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidConfig))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizedBaseURL(t *testing.T) {
	cfg := &Config{BaseURL: "http://localhost:3000//"}
	assert.Equal(t, "http://localhost:3000", cfg.NormalizedBaseURL())
}

func TestProxyActive(t *testing.T) {
	for _, k := range []string{"HTTP_PROXY", "HTTPS_PROXY", "http_proxy", "https_proxy"} {
		t.Setenv(k, "")
	}

	assert.False(t, (&Config{ProxyMode: ""}).ProxyActive())
	assert.False(t, (&Config{ProxyMode: ProxyModeNone}).ProxyActive())
	assert.False(t, (&Config{ProxyMode: ProxyModeSystem}).ProxyActive())
	assert.True(t, (&Config{ProxyMode: ProxyModeBasic}).ProxyActive())

	t.Setenv("HTTPS_PROXY", "http://proxy:8080")
	assert.True(t, (&Config{ProxyMode: ProxyModeSystem}).ProxyActive())
}

func TestNeedsProxyPassword(t *testing.T) {
	tests := []struct {
		cfg  Config
		want bool
	}{
		{Config{ProxyMode: ProxyModeBasic, ProxyUser: "u"}, true},
		{Config{ProxyMode: "NTLM", ProxyUser: "u"}, true},
		{Config{ProxyMode: ProxyModeBasic, ProxyUser: "u", ProxyPassword: "p"}, false},
		{Config{ProxyMode: ProxyModeBasic}, false},
		{Config{ProxyMode: ProxyModeSystem, ProxyUser: "u"}, false},
	}
	for _, tt := range tests {
		if got := tt.cfg.NeedsProxyPassword(); got != tt.want {
			t.Errorf("NeedsProxyPassword(%+v) = %v, want %v", tt.cfg, got, tt.want)
		}
	}
}

func TestPaths(t *testing.T) {
	assert.Equal(t, filepath.Join(ConfigDirectory(), "config"), DefaultConfigPath())
	assert.Equal(t, filepath.Join(ConfigDirectory(), "session"), DefaultSessionPath())
}
