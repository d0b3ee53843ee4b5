package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minidrive/minidrive/internal/config"
)

func TestConfigCmd(t *testing.T) {
	cmd := newConfigCmd()
	if cmd.Use != "config" {
		t.Errorf("Expected Use='config', got '%s'", cmd.Use)
	}

	expected := map[string]bool{"init": false, "show": false, "set": false, "test": false, "path": false}
	for _, sub := range cmd.Commands() {
		if _, ok := expected[sub.Name()]; ok {
			expected[sub.Name()] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("Subcommand '%s' not found", name)
		}
	}
}

func TestConfigSetAndShow(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run("", "config", "set", "proxy.mode", "basic")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ proxy.mode = basic")

	_, _, err = env.run("", "config", "set", "proxy.password", "hunter2")
	require.NoError(t, err)

	cfg, err := config.LoadConfig(env.configPath)
	require.NoError(t, err)
	assert.Equal(t, config.ProxyModeBasic, cfg.ProxyMode)
	assert.Equal(t, "hunter2", cfg.ProxyPassword)

	out, _, err = env.run("", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "basic")
	assert.Contains(t, out, "<set>")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, env.sessionPath)
}

func TestConfigSetRejectsBadValues(t *testing.T) {
	env := newCLIEnv(t)

	tests := [][]string{
		{"nope", "1"},
		{"proxy.port", "eighty"},
		{"proxy.port", "70000"},
		{"proxy.mode", "socks"},
		{"base_url", "not a url"},
		{"notifications.desktop", "maybe"},
	}
	for _, args := range tests {
		_, _, err := env.run("", append([]string{"config", "set"}, args...)...)
		assert.Error(t, err, "%v", args)
	}

	_, err := os.Stat(env.configPath)
	assert.True(t, os.IsNotExist(err), "invalid values must not be saved")
}

func TestSetConfigValue(t *testing.T) {
	cfg := config.NewConfig()
	require.NoError(t, setConfigValue(cfg, "request_timeout_seconds", "30"))
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "30", configValue(cfg, "request_timeout_seconds"))

	require.NoError(t, setConfigValue(cfg, "notifications.desktop", "true"))
	assert.True(t, cfg.DesktopNotifications)

	assert.Equal(t, "<not set>", configValue(cfg, "proxy.password"))
	assert.Equal(t, "", configValue(cfg, "missing"))
}

func TestConfigKeysSorted(t *testing.T) {
	keys := configKeys()
	require.Len(t, keys, len(configFields))
	for i := 1; i < len(keys); i++ {
		assert.Less(t, keys[i-1], keys[i])
	}
}

func TestConfigInit(t *testing.T) {
	env := newCLIEnv(t)

	answers := strings.Join([]string{
		"http://drive.example.com:3000",
		"y",
		"basic",
		"proxy.example.com",
		"",
		"alice",
		"n",
	}, "\n") + "\n"

	out, _, err := env.run(answers, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Configuration saved to: "+env.configPath)

	cfg, err := config.LoadConfig(env.configPath)
	require.NoError(t, err)
	assert.Equal(t, "http://drive.example.com:3000", cfg.BaseURL)
	assert.Equal(t, config.ProxyModeBasic, cfg.ProxyMode)
	assert.Equal(t, "proxy.example.com", cfg.ProxyHost)
	assert.Equal(t, 8080, cfg.ProxyPort)
	assert.Equal(t, "alice", cfg.ProxyUser)
	assert.False(t, cfg.DesktopNotifications)

	// A second init leaves the file alone
	out, _, err = env.run("", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
}

func TestPromptConfigDefaults(t *testing.T) {
	var out bytes.Buffer
	cfg, err := promptConfig(newPrompter(strings.NewReader("\n\n\n"), &out), &out)
	require.NoError(t, err)

	defaults := config.NewConfig()
	assert.Equal(t, defaults.BaseURL, cfg.BaseURL)
	assert.Equal(t, config.ProxyModeNone, cfg.ProxyMode)
	assert.Contains(t, out.String(), "Backend URL ["+defaults.BaseURL+"]")
}

func TestPromptConfigEOF(t *testing.T) {
	var out bytes.Buffer
	_, err := promptConfig(newPrompter(strings.NewReader(""), &out), &out)
	assert.ErrorIs(t, err, errNoInput)
}

func TestConfigPathCommand(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run("", "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, env.configPath)
	assert.Contains(t, out, "does not exist")

	_, _, err = env.run("", "config", "set", "proxy.host", "p")
	require.NoError(t, err)
	out, _, err = env.run("", "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, "File exists")
}

func TestConfigTestCommand(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run("", "config", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Connection SUCCESSFUL")

	env.login()
	out, _, err = env.run("", "config", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "saved session")
}
