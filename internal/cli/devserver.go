package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/minidrive/minidrive/internal/testserver"
)

// newDevServerCmd creates the hidden 'devserver' command, an in-memory
// backend for trying the client without the real service.
func newDevServerCmd() *cobra.Command {
	var addr, seedUser string

	cmd := &cobra.Command{
		Use:    "devserver",
		Short:  "Run an in-memory Mini Drive backend",
		Hidden: true,
		Long: `Serve a throwaway backend that keeps users and files in memory.

Cookies are issued with the Secure attribute, as the real service does.

Examples:
  minidrive devserver --addr :3000
  minidrive devserver --user ada@example.com:secret`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := testserver.New()

			if seedUser != "" {
				email, password, ok := strings.Cut(seedUser, ":")
				if !ok || email == "" || password == "" {
					return fmt.Errorf("--user must be email:password, got %q", seedUser)
				}
				name, _, _ := strings.Cut(email, "@")
				srv.CreateUser(name, email, password)
				GetLogger().Info().Str("email", email).Msg("seeded user")
			}

			ctx := GetContext()
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Echo.Start(addr)
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "Mini Drive dev server listening on %s\n", addr)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Echo.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":3000", "Listen address")
	cmd.Flags().StringVar(&seedUser, "user", "", "Create a user at startup (email:password)")

	return cmd
}
