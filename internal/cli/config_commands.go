package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/minidrive/minidrive/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage minidrive configuration",
		Long: `Configuration management commands for minidrive.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  set   - Change one setting
  test  - Test the backend connection
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for minidrive.

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := configPath()

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			fmt.Fprintln(out, "Mini Drive Configuration Setup")
			fmt.Fprintln(out, "==============================")
			fmt.Fprintln(out)

			cfg, err := promptConfig(newPrompter(cmd.InOrStdin(), out), out)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.SaveConfig(cfg, path); err != nil {
				return err
			}

			GetLogger().Info().Str("path", path).Msg("Configuration saved")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "✓ Configuration saved to: %s\n", path)
			fmt.Fprintln(out, "Test your configuration with: minidrive config test")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// promptConfig asks for each setting, keeping the default on an empty answer.
func promptConfig(p *prompter, out io.Writer) (*config.Config, error) {
	cfg := config.NewConfig()

	ask := func(label, def string) (string, error) {
		v, err := p.line(fmt.Sprintf("%s [%s]: ", label, def))
		if err != nil {
			return "", err
		}
		if v == "" {
			return def, nil
		}
		return v, nil
	}

	var err error
	if cfg.BaseURL, err = ask("Backend URL", cfg.BaseURL); err != nil {
		return nil, err
	}

	fmt.Fprintln(out)
	answer, err := p.line("Configure proxy? [y/N]: ")
	if err != nil {
		return nil, err
	}
	if isYes(answer) {
		fmt.Fprintln(out, "Proxy modes: no-proxy, system, basic, ntlm")
		if cfg.ProxyMode, err = ask("Proxy mode", config.ProxyModeSystem); err != nil {
			return nil, err
		}
		if cfg.ProxyMode != config.ProxyModeNone && cfg.ProxyMode != config.ProxyModeSystem {
			if cfg.ProxyHost, err = p.required("Proxy host: "); err != nil {
				return nil, err
			}
			port, err := ask("Proxy port", "8080")
			if err != nil {
				return nil, err
			}
			if cfg.ProxyPort, err = strconv.Atoi(port); err != nil {
				return nil, fmt.Errorf("invalid proxy port %q", port)
			}
			if cfg.ProxyUser, err = p.line("Proxy user (optional): "); err != nil {
				return nil, err
			}
		}
	}

	answer, err = p.line("Desktop notifications? [y/N]: ")
	if err != nil {
		return nil, err
	}
	cfg.DesktopNotifications = isYes(answer)

	return cfg, nil
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the effective configuration.

Priority: flags > environment (MINIDRIVE_*) > .env file > config file > defaults`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(cfgFile)
			if err != nil {
				return err
			}
			cfg.MergeWithFlags(apiBaseURL, proxyMode, proxyHost, proxyPort)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Current Configuration")
			fmt.Fprintln(out, "=====================")
			fmt.Fprintln(out)
			for _, key := range configKeys() {
				fmt.Fprintf(out, "  %-26s %s\n", key, configValue(cfg, key))
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Session file:       %s\n", cfg.SessionPath)
			fmt.Fprintf(out, "Configuration file: %s\n", configPath())
			if _, err := os.Stat(configPath()); os.IsNotExist(err) {
				fmt.Fprintln(out, "  (file does not exist - using defaults)")
			}
			return nil
		},
	}
}

// newConfigSetCmd creates the 'config set' command.
func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one configuration setting",
		Long: "Change one setting in the config file. Keys:\n  " +
			strings.Join(configKeys(), "\n  "),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			cfg, err := config.LoadConfig(path)
			if err != nil {
				return err
			}
			if err := setConfigValue(cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.SaveConfig(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s = %s\n", args[0], configValue(cfg, args[0]))
			return nil
		},
	}
}

type configField struct {
	get func(*config.Config) string
	set func(*config.Config, string) error
}

var configFields = map[string]configField{
	"base_url": {
		get: func(c *config.Config) string { return c.BaseURL },
		set: func(c *config.Config, v string) error { c.BaseURL = v; return nil },
	},
	"request_timeout_seconds": {
		get: func(c *config.Config) string { return strconv.Itoa(int(c.RequestTimeout / time.Second)) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			c.RequestTimeout = time.Duration(n) * time.Second
			return nil
		},
	},
	"requests_per_second": {
		get: func(c *config.Config) string { return strconv.FormatFloat(c.RequestsPerSecond, 'f', -1, 64) },
		set: func(c *config.Config, v string) (err error) {
			c.RequestsPerSecond, err = strconv.ParseFloat(v, 64)
			return
		},
	},
	"request_burst": {
		get: func(c *config.Config) string { return strconv.Itoa(c.RequestBurst) },
		set: func(c *config.Config, v string) (err error) { c.RequestBurst, err = strconv.Atoi(v); return },
	},
	"proxy.mode": {
		get: func(c *config.Config) string { return c.ProxyMode },
		set: func(c *config.Config, v string) error { c.ProxyMode = v; return nil },
	},
	"proxy.host": {
		get: func(c *config.Config) string { return c.ProxyHost },
		set: func(c *config.Config, v string) error { c.ProxyHost = v; return nil },
	},
	"proxy.port": {
		get: func(c *config.Config) string { return strconv.Itoa(c.ProxyPort) },
		set: func(c *config.Config, v string) (err error) { c.ProxyPort, err = strconv.Atoi(v); return },
	},
	"proxy.user": {
		get: func(c *config.Config) string { return c.ProxyUser },
		set: func(c *config.Config, v string) error { c.ProxyUser = v; return nil },
	},
	"proxy.password": {
		get: func(c *config.Config) string {
			if c.ProxyPassword == "" {
				return "<not set>"
			}
			return "<set>"
		},
		set: func(c *config.Config, v string) error { c.ProxyPassword = v; return nil },
	},
	"proxy.no_proxy": {
		get: func(c *config.Config) string { return c.NoProxy },
		set: func(c *config.Config, v string) error { c.NoProxy = v; return nil },
	},
	"proxy.warmup": {
		get: func(c *config.Config) string { return strconv.FormatBool(c.ProxyWarmup) },
		set: func(c *config.Config, v string) (err error) { c.ProxyWarmup, err = strconv.ParseBool(v); return },
	},
	"notifications.desktop": {
		get: func(c *config.Config) string { return strconv.FormatBool(c.DesktopNotifications) },
		set: func(c *config.Config, v string) (err error) {
			c.DesktopNotifications, err = strconv.ParseBool(v)
			return
		},
	},
}

func configKeys() []string {
	keys := make([]string, 0, len(configFields))
	for k := range configFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func configValue(cfg *config.Config, key string) string {
	f, ok := configFields[key]
	if !ok {
		return ""
	}
	return f.get(cfg)
}

func setConfigValue(cfg *config.Config, key, value string) error {
	f, ok := configFields[key]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := f.set(cfg, value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test the backend connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			client, _, err := getAPIClient()
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Backend URL: %s\n", client.BaseURL())

			ctx, cancel := context.WithTimeout(GetContext(), 10*time.Second)
			defer cancel()

			text, err := client.Ping(ctx)
			if err != nil {
				GetLogger().Error().Err(err).Msg("Connection test failed")
				fmt.Fprintln(out, "✗ Connection FAILED")
				return fmt.Errorf("connection test failed: %w", err)
			}

			fmt.Fprintln(out, "✓ Connection SUCCESSFUL")
			fmt.Fprintf(out, "  %s\n", text)
			if client.HasSession() {
				fmt.Fprintln(out, "  A saved session is present")
			}
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := configPath()
			fmt.Fprintln(out, path)

			if info, err := os.Stat(path); err == nil {
				fmt.Fprintf(out, "Status: ✓ File exists (%d bytes, modified %s)\n",
					info.Size(), info.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Status: File does not exist")
				fmt.Fprintln(out, "Create a configuration file with: minidrive config init")
			}
			return nil
		},
	}
}
