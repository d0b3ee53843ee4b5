package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"

	"github.com/minidrive/minidrive/internal/constants"
)

// EnvPrefix is prepended to every environment variable name in Config.
const EnvPrefix = "MINIDRIVE_"

// Proxy modes accepted by the transport layer.
const (
	ProxyModeNone   = "no-proxy"
	ProxyModeSystem = "system"
	ProxyModeBasic  = "basic"
	ProxyModeNTLM   = "ntlm"
)

// Config is the resolved client configuration.
//
// Config file location: see DefaultConfigPath.
//
// INI format:
//
//	[minidrive]
//	base_url = http://localhost:3000
//	request_timeout_seconds = 0
//	requests_per_second = 10
//	request_burst = 20
//
//	[minidrive.proxy]
//	mode = no-proxy
//	host =
//	port = 0
//	user =
//	password =
//	no_proxy =
//
//	[minidrive.notifications]
//	desktop = false
//
// Priority (highest to lowest): flags, environment (MINIDRIVE_*), .env file,
// config file, defaults.
type Config struct {
	BaseURL        string        `env:"BASE_URL" validate:"required,url"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" validate:"gte=0"`

	// Client-side pacing of backend calls; 0 disables it
	RequestsPerSecond float64 `env:"REQUESTS_PER_SECOND" validate:"gte=0"`
	RequestBurst      int     `env:"REQUEST_BURST" validate:"gte=0"`

	// Proxy settings
	ProxyMode     string `env:"PROXY_MODE" validate:"omitempty,oneof=no-proxy system basic ntlm"`
	ProxyHost     string `env:"PROXY_HOST"`
	ProxyPort     int    `env:"PROXY_PORT" validate:"gte=0,lte=65535"`
	ProxyUser     string `env:"PROXY_USER"`
	ProxyPassword string `env:"PROXY_PASSWORD"`
	NoProxy       string `env:"NO_PROXY"` // Comma-separated hosts/CIDRs that bypass the proxy
	ProxyWarmup   bool   `env:"PROXY_WARMUP"`

	DesktopNotifications bool `env:"DESKTOP_NOTIFICATIONS"`

	// SessionPath is where the session cookie is persisted. Not stored in the INI file.
	SessionPath string `env:"SESSION_PATH"`
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:           constants.DefaultBaseURL,
		RequestsPerSecond: constants.DefaultRequestsPerSecond,
		RequestBurst:      constants.DefaultRequestBurst,
		ProxyMode:         ProxyModeNone,
		SessionPath:       DefaultSessionPath(),
	}
}

// LoadConfig loads configuration from an INI file.
// If the file doesn't exist, returns a config with default values and no error.
// If the file exists but is invalid, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		path = DefaultConfigPath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	root := iniFile.Section("minidrive")
	cfg.BaseURL = root.Key("base_url").MustString(cfg.BaseURL)
	if secs := root.Key("request_timeout_seconds").MustInt(0); secs > 0 {
		cfg.RequestTimeout = time.Duration(secs) * time.Second
	}
	cfg.RequestsPerSecond = root.Key("requests_per_second").MustFloat64(cfg.RequestsPerSecond)
	cfg.RequestBurst = root.Key("request_burst").MustInt(cfg.RequestBurst)

	proxy := iniFile.Section("minidrive.proxy")
	cfg.ProxyMode = proxy.Key("mode").MustString(cfg.ProxyMode)
	cfg.ProxyHost = proxy.Key("host").String()
	cfg.ProxyPort = proxy.Key("port").MustInt(0)
	cfg.ProxyUser = proxy.Key("user").String()
	cfg.ProxyPassword = proxy.Key("password").String()
	cfg.NoProxy = proxy.Key("no_proxy").String()
	cfg.ProxyWarmup = proxy.Key("warmup").MustBool(false)

	notify := iniFile.Section("minidrive.notifications")
	cfg.DesktopNotifications = notify.Key("desktop").MustBool(false)

	return cfg, nil
}

// SaveConfig saves configuration to an INI file.
// Creates parent directories if they don't exist. The proxy password is
// stored in the file, so the file is written with owner-only permissions.
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	root, err := iniFile.NewSection("minidrive")
	if err != nil {
		return fmt.Errorf("failed to create minidrive section: %w", err)
	}
	root.Key("base_url").SetValue(cfg.BaseURL)
	root.Key("request_timeout_seconds").SetValue(strconv.Itoa(int(cfg.RequestTimeout / time.Second)))
	root.Key("requests_per_second").SetValue(strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64))
	root.Key("request_burst").SetValue(strconv.Itoa(cfg.RequestBurst))

	proxy, err := iniFile.NewSection("minidrive.proxy")
	if err != nil {
		return fmt.Errorf("failed to create proxy section: %w", err)
	}
	proxy.Key("mode").SetValue(cfg.ProxyMode)
	proxy.Key("host").SetValue(cfg.ProxyHost)
	proxy.Key("port").SetValue(strconv.Itoa(cfg.ProxyPort))
	proxy.Key("user").SetValue(cfg.ProxyUser)
	proxy.Key("password").SetValue(cfg.ProxyPassword)
	proxy.Key("no_proxy").SetValue(cfg.NoProxy)
	proxy.Key("warmup").SetValue(strconv.FormatBool(cfg.ProxyWarmup))

	notify, err := iniFile.NewSection("minidrive.notifications")
	if err != nil {
		return fmt.Errorf("failed to create notifications section: %w", err)
	}
	notify.Key("desktop").SetValue(strconv.FormatBool(cfg.DesktopNotifications))

	// Temporary file + rename for atomicity
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Variables already set are not overridden, and missing files
// are ignored. With no arguments, ".env" in the working directory is used.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnvironment overlays MINIDRIVE_* environment variables onto cfg.
// Fields whose variable is unset keep their current value.
func (c *Config) ApplyEnvironment() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// MergeWithFlags applies command-line overrides. Empty values are ignored.
func (c *Config) MergeWithFlags(baseURL, proxyMode, proxyHost string, proxyPort int) {
	if baseURL != "" {
		c.BaseURL = baseURL
	}
	if proxyMode != "" {
		c.ProxyMode = proxyMode
	}
	if proxyHost != "" {
		c.ProxyHost = proxyHost
	}
	if proxyPort != 0 {
		c.ProxyPort = proxyPort
	}
}

// Validate checks the configuration using its struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalidConfig, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Resolve builds the effective configuration: config file, then .env,
// then environment, then validation. Flags are merged by the caller.
func Resolve(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnvironment(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NormalizedBaseURL returns BaseURL without a trailing slash.
func (c *Config) NormalizedBaseURL() string {
	return strings.TrimRight(c.BaseURL, "/")
}

// ProxyActive reports whether requests will go through a proxy.
func (c *Config) ProxyActive() bool {
	switch strings.ToLower(c.ProxyMode) {
	case ProxyModeNone, "":
		return false
	case ProxyModeSystem:
		return os.Getenv("HTTP_PROXY") != "" || os.Getenv("HTTPS_PROXY") != "" ||
			os.Getenv("http_proxy") != "" || os.Getenv("https_proxy") != ""
	default:
		return true
	}
}

// NeedsProxyPassword returns true if the proxy configuration requires a password
// but one has not been provided. Used by the CLI to decide whether to prompt.
func (c *Config) NeedsProxyPassword() bool {
	mode := strings.ToLower(c.ProxyMode)
	if mode != ProxyModeBasic && mode != ProxyModeNTLM {
		return false
	}
	return c.ProxyUser != "" && c.ProxyPassword == ""
}
