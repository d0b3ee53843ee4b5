package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/minidrive/minidrive/internal/api"
	"github.com/minidrive/minidrive/internal/models"
)

// newPingCmd creates the 'ping' command.
func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := getAPIClient()
			if err != nil {
				return err
			}

			start := time.Now()
			body, err := client.Ping(GetContext())
			if err != nil {
				return fmt.Errorf("backend unreachable at %s: %w", client.BaseURL(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s responded in %s: %s\n",
				client.BaseURL(), time.Since(start).Round(time.Millisecond), body)
			return nil
		},
	}
}

// newSignupCmd creates the 'signup' command.
func newSignupCmd() *cobra.Command {
	var username, email string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Long: `Create a Mini Drive account. Missing values are prompted for.

Examples:
  minidrive signup
  minidrive signup --username ada --email ada@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := getAPIClient()
			if err != nil {
				return err
			}

			p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
			if username == "" {
				if username, err = p.required("Username: "); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = p.required("Email: "); err != nil {
					return err
				}
			}
			password, err := p.password("Password: ")
			if err != nil {
				return err
			}

			msg, err := client.Signup(GetContext(), models.SignupRequest{
				Username: username,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return fmt.Errorf("signup failed: %s", api.DetailOr(err, "Signup failed"))
			}
			GetLogger().Debug().Str("message", msg).Msg("signup accepted")

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Account created successfully")
			fmt.Fprintln(cmd.OutOrStdout(), "Log in with: minidrive login")
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address")

	return cmd
}

// newLoginCmd creates the 'login' command.
func newLoginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		Long: `Log in to Mini Drive. The session cookie is saved under the
configuration directory so later commands are authenticated.

Examples:
  minidrive login
  minidrive login --email ada@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, err := getAPIClient()
			if err != nil {
				return err
			}

			p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
			if email == "" {
				if email, err = p.required("Email: "); err != nil {
					return err
				}
			}
			password, err := p.password("Password: ")
			if err != nil {
				return err
			}

			if err := client.Login(GetContext(), models.Credentials{Email: email, Password: password}); err != nil {
				return fmt.Errorf("login failed: %s", api.DetailOr(err, "Login failed"))
			}
			GetLogger().Debug().Str("path", store.Path()).Msg("session saved")

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Welcome back!")
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address")

	return cmd
}

// newLogoutCmd creates the 'logout' command.
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the saved cookie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := getAPIClient()
			if err != nil {
				return err
			}
			if err := client.Logout(GetContext()); err != nil {
				// The local session is already gone
				GetLogger().Warn().Err(err).Msg("backend logout failed")
				fmt.Fprintln(cmd.OutOrStdout(), "✗ Logout failed (local session cleared)")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out successfully")
			return nil
		},
	}
}

// newWhoamiCmd creates the 'whoami' command.
func newWhoamiCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Long: `Show the account behind the saved session and when it expires.

The backend is asked to validate the session unless --offline is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, err := getAPIClient()
			if err != nil {
				return err
			}
			if err := requireSession(client); err != nil {
				return err
			}

			claims, err := store.Claims()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Username: %s\n", claims.Username)
			fmt.Fprintf(out, "Email:    %s\n", claims.Email)
			if exp := claims.Expiry(); !exp.IsZero() {
				fmt.Fprintf(out, "Expires:  %s\n", exp.Local().Format("2006-01-02 15:04"))
			}

			if offline {
				return nil
			}
			if _, err := client.Validate(GetContext()); err != nil {
				if api.IsAuthExpired(err) {
					fmt.Fprintln(out, "Session:  expired (run 'minidrive login')")
					return nil
				}
				return fmt.Errorf("failed to validate session: %w", err)
			}
			fmt.Fprintln(out, "Session:  valid")
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Only decode the saved session, do not contact the backend")

	return cmd
}
