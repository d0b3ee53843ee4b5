package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minidrive/minidrive/internal/api"
	"github.com/minidrive/minidrive/internal/auth"
	"github.com/minidrive/minidrive/internal/events"
	"github.com/minidrive/minidrive/internal/opener"
	"github.com/minidrive/minidrive/internal/progress"
	"github.com/minidrive/minidrive/internal/selection"
	"github.com/minidrive/minidrive/internal/session"
	"github.com/minidrive/minidrive/internal/state"
	"github.com/minidrive/minidrive/internal/util/format"
	"github.com/minidrive/minidrive/internal/util/paths"
	"github.com/minidrive/minidrive/internal/util/sanitize"
)

const shellHelp = `Commands:
  ls                 show files in the current view
  search [text]      filter by name (no text clears the filter)
  view grid|list     switch view mode
  upload <path>      upload a .jpg, .png or .pdf file (max 5MB)
  lls [dir]          list local files that can be uploaded
  rm <id>            delete a file (asks to confirm)
  get <id>           download a file
  info <id>          show file details
  refresh            reload the file list
  whoami             show the logged-in account
  logout             log out and leave
  exit               leave the shell`

// newShellCmd creates the 'shell' command.
func newShellCmd() *cobra.Command {
	var outputDir string
	var openBrowser bool

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive drive dashboard",
		Long: `Open an interactive session on your drive. The file list is loaded
once; search and view changes work on it locally. Type "help" for commands.

If the backend rejects the session, the shell ends and asks you to log in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, err := getAPIClient()
			if err != nil {
				return err
			}
			if err := requireSession(client); err != nil {
				return err
			}

			bus := events.NewEventBus(0)
			defer bus.Close()

			var o session.Opener
			var fetch *opener.Fetch
			if openBrowser {
				o = opener.NewBrowser(GetLogger())
			} else {
				dir, err := paths.ResolveAbsolute(outputDir)
				if err != nil {
					return fmt.Errorf("invalid output directory: %w", err)
				}
				fetch = opener.NewFetch(GetContext(), client, dir,
					opener.WithReporter(func(name string) progress.Reporter {
						return progress.Multi{
							progress.NewCLIProgress(cmd.ErrOrStderr()),
							progress.NewEventProgress(bus, name),
						}
					}),
					opener.WithLogger(GetLogger()))
				o = fetch
			}

			sh := &shell{
				ctrl:    newController(cmd, client, bus, o),
				fetch:   fetch,
				client:  client,
				store:   store,
				out:     cmd.OutOrStdout(),
				in:      newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
				expired: bus.Subscribe(events.EventAuthExpired),
			}
			return sh.run(GetContext())
		},
	}

	cmd.Flags().StringVarP(&outputDir, "outdir", "o", ".", "Directory for downloads")
	cmd.Flags().BoolVar(&openBrowser, "open", false, "Open downloads in the system browser instead of saving")

	return cmd
}

// errShellExit ends the read loop without an error.
var errShellExit = errors.New("exit")

type shell struct {
	ctrl    *session.Controller
	fetch   *opener.Fetch // nil when downloads open in the browser
	client  *api.Client
	store   *auth.Store
	out     io.Writer
	in      *prompter
	expired <-chan events.Event
}

func (sh *shell) run(ctx context.Context) error {
	fmt.Fprintln(sh.out, "Loading your drive...")
	if err := sh.ctrl.Mount(ctx); err == nil {
		sh.render()
	}

	for {
		if sh.sessionExpired() {
			return sh.redirect()
		}

		line, err := sh.in.line("minidrive> ")
		if errors.Is(err, errNoInput) {
			return nil
		}
		if err != nil {
			return err
		}

		err = sh.exec(ctx, sanitize.Line(line))
		if errors.Is(err, errShellExit) {
			return nil
		}
		if api.IsAuthExpired(err) {
			return sh.redirect()
		}
		if err != nil {
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (sh *shell) exec(ctx context.Context, line string) error {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "":
		return nil
	case "help", "?":
		fmt.Fprintln(sh.out, shellHelp)
	case "ls", "list":
		sh.render()
	case "search":
		sh.ctrl.SetSearch(rest)
		sh.render()
	case "view":
		mode, err := state.ParseViewMode(rest)
		if err != nil {
			return err
		}
		sh.ctrl.SetViewMode(mode)
		sh.render()
	case "upload", "up":
		return sh.upload(ctx, rest)
	case "lls":
		return sh.listLocal(rest)
	case "rm", "delete":
		return sh.remove(ctx, rest)
	case "get", "download":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		url, err := sh.ctrl.Download(id)
		if err != nil {
			return err
		}
		GetLogger().Debug().Str("url", url).Msg("download handed off")
		if sh.fetch != nil {
			if saved := sh.fetch.Saved(); len(saved) > 0 {
				fmt.Fprintf(sh.out, "✓ Saved %s\n", saved[len(saved)-1])
			}
		}
	case "info":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		meta, err := sh.client.GetFileMetadata(ctx, id)
		if err != nil {
			return err
		}
		renderMetadata(sh.out, meta, sh.client.DownloadURL(meta.ID))
	case "refresh":
		if err := sh.ctrl.Refresh(ctx); err == nil {
			sh.render()
		}
	case "whoami":
		claims, err := sh.store.Claims()
		if err != nil || claims == nil {
			return fmt.Errorf("cannot read session: %v", err)
		}
		fmt.Fprintf(sh.out, "%s <%s>\n", claims.Username, claims.Email)
	case "logout":
		if err := sh.client.Logout(ctx); err != nil {
			fmt.Fprintln(sh.out, "✗ Logout failed (local session cleared)")
		} else {
			fmt.Fprintln(sh.out, "✓ Logged out successfully")
		}
		return errShellExit
	case "exit", "quit", "q":
		return errShellExit
	default:
		return fmt.Errorf("unknown command %q (type help)", name)
	}
	return nil
}

func (sh *shell) upload(ctx context.Context, path string) error {
	if path == "" {
		return errors.New("usage: upload <path>")
	}
	file, err := selection.Pick(path)
	if err != nil {
		return err
	}
	res, err := sh.ctrl.Upload(ctx, file)
	switch {
	case res == session.UploadSkipped:
		fmt.Fprintln(sh.out, "An upload is already in progress")
	case res == session.UploadDone && err == nil:
		sh.render()
	}
	// Failures were already shown as notices
	return nil
}

func (sh *shell) listLocal(dir string) error {
	if dir == "" {
		dir = "."
	}
	found, err := selection.Candidates(dir, false)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintf(sh.out, "No .jpg, .png or .pdf files in %s\n", dir)
		return nil
	}
	for _, e := range found {
		fmt.Fprintf(sh.out, "  %-40s %s\n", e.Path, format.Size(e.Size))
	}
	return nil
}

// remove runs the two-step delete: the pending request is resolved by the
// next line the user types.
func (sh *shell) remove(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	pending, err := sh.ctrl.RequestDelete(id)
	if err != nil {
		return err
	}

	answer, err := sh.in.line(fmt.Sprintf("%s (%s) [y/N]: ", session.MsgDeleteConfirm, pending.File.OriginalName))
	if err != nil || !isYes(answer) {
		return pending.Cancel()
	}
	if err := pending.Confirm(ctx); err == nil {
		sh.render()
	}
	return nil
}

func (sh *shell) render() {
	renderFiles(sh.out, sh.ctrl.VisibleFiles(), sh.ctrl.UI().ViewMode, sh.ctrl.EmptyMessage())
}

func (sh *shell) sessionExpired() bool {
	select {
	case _, ok := <-sh.expired:
		return ok
	default:
		return false
	}
}

// redirect ends the shell after the backend rejected the session.
func (sh *shell) redirect() error {
	if err := sh.store.Clear(); err != nil {
		GetLogger().Warn().Err(err).Msg("failed to clear session")
	}
	fmt.Fprintln(sh.out, "Your session has expired. Please log in again: minidrive login")
	return fmt.Errorf("shell ended: %w", api.ErrAuthExpired)
}
