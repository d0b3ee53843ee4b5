package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/minidrive/minidrive/internal/api"
	"github.com/minidrive/minidrive/internal/events"
	"github.com/minidrive/minidrive/internal/opener"
	"github.com/minidrive/minidrive/internal/progress"
	"github.com/minidrive/minidrive/internal/selection"
	"github.com/minidrive/minidrive/internal/session"
	"github.com/minidrive/minidrive/internal/state"
	"github.com/minidrive/minidrive/internal/util/filter"
	"github.com/minidrive/minidrive/internal/util/paths"
	"github.com/minidrive/minidrive/internal/util/sanitize"
	"github.com/minidrive/minidrive/internal/validation"
)

// newFilesCmd creates the 'files' command group.
func newFilesCmd() *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "File operations (list, upload, download, delete, info)",
		Long:  `Commands for managing the files in your drive.`,
	}

	filesCmd.AddCommand(newFilesListCmd())
	filesCmd.AddCommand(newFilesUploadCmd())
	filesCmd.AddCommand(newFilesDeleteCmd())
	filesCmd.AddCommand(newFilesDownloadCmd())
	filesCmd.AddCommand(newFilesInfoCmd())

	return filesCmd
}

// newFilesListCmd creates the 'files list' command.
func newFilesListCmd() *cobra.Command {
	var search, view, include, exclude string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List files",
		Long: `List the files in your drive, in upload order.

Examples:
  minidrive files list
  minidrive files list --search report --view list
  minidrive files list --include "*.pdf" --exclude "draft*"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeList(cmd, search, view, include, exclude)
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only show names containing this text (case-insensitive)")
	cmd.Flags().StringVar(&view, "view", string(state.ViewGrid), "View mode: grid or list")
	cmd.Flags().StringVar(&include, "include", "", "Comma-separated glob patterns to include")
	cmd.Flags().StringVar(&exclude, "exclude", "", "Comma-separated glob patterns to exclude")

	return cmd
}

func executeList(cmd *cobra.Command, search, view, include, exclude string) error {
	mode, err := state.ParseViewMode(view)
	if err != nil {
		return err
	}

	client, _, err := getAPIClient()
	if err != nil {
		return err
	}
	if err := requireSession(client); err != nil {
		return err
	}

	ctrl := newController(cmd, client, nil, nil)
	if err := ctrl.Mount(GetContext()); err != nil {
		return sessionError(err)
	}

	ctrl.SetSearch(search)
	ctrl.SetViewMode(mode)

	files := ctrl.VisibleFiles()
	emptyMsg := ctrl.EmptyMessage()
	patterns := filter.Config{
		Include: filter.ParsePatternList(include),
		Exclude: filter.ParsePatternList(exclude),
	}
	if !patterns.IsEmpty() {
		files = filter.ApplyToFiles(files, patterns)
		if len(files) == 0 {
			emptyMsg = session.MsgNoMatches
		}
	}

	renderFiles(cmd.OutOrStdout(), files, ctrl.UI().ViewMode, emptyMsg)
	return nil
}

// newFilesUploadCmd creates the 'files upload' command.
func newFilesUploadCmd() *cobra.Command {
	var dir string
	var recursive bool

	cmd := &cobra.Command{
		Use:   "upload <file> [file...]",
		Short: "Upload files (.jpg, .png, .pdf up to 5MB)",
		Long: `Upload one or more files. Files are sent one at a time.

Only .jpg, .png and .pdf files can be picked, and each must be 5MB or less.
With --dir, every such file in the directory is added (hidden files are
skipped); --recursive also searches subdirectories.

Examples:
  minidrive files upload scan.pdf
  minidrive files upload photos/*.jpg
  minidrive files upload --dir ~/Scans --recursive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir != "" {
				found, err := selection.Candidates(dir, recursive)
				if err != nil {
					return err
				}
				for _, e := range found {
					args = append(args, e.Path)
				}
				if len(found) == 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "No .jpg, .png or .pdf files in %s\n", dir)
				}
			}
			if len(args) == 0 {
				return errors.New("nothing to upload: give file paths or --dir")
			}

			client, _, err := getAPIClient()
			if err != nil {
				return err
			}
			if err := requireSession(client); err != nil {
				return err
			}

			ctrl := newController(cmd, client, nil, nil)
			return executeUploads(cmd, ctrl, args)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Upload the accepted files in this directory")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "With --dir, include subdirectories")

	return cmd
}

// executeUploads uploads each path in turn. Picker rejections and local
// admission failures are reported and skipped; auth expiry stops the run.
func executeUploads(cmd *cobra.Command, ctrl *session.Controller, paths []string) error {
	var failed int
	for _, path := range paths {
		file, err := selection.Pick(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "✗ %v\n", err)
			failed++
			continue
		}

		res, err := ctrl.Upload(GetContext(), file)
		if err != nil {
			if api.IsAuthExpired(err) {
				return sessionError(err)
			}
			GetLogger().Debug().Str("result", res.String()).Err(err).Msg("upload")
			if res != session.UploadDone {
				failed++
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(paths))
	}
	return nil
}

// newFilesDeleteCmd creates the 'files delete' command.
func newFilesDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <file-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a file",
		Long: `Delete a file by ID. You are asked to confirm unless --yes is given.

Examples:
  minidrive files delete 12
  minidrive files delete 12 --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			client, _, err := getAPIClient()
			if err != nil {
				return err
			}
			if err := requireSession(client); err != nil {
				return err
			}

			ctrl := newController(cmd, client, nil, nil)
			if err := ctrl.Mount(GetContext()); err != nil {
				return sessionError(err)
			}

			var confirm session.Confirmer = newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
			if yes {
				confirm = session.ConfirmFunc(func(string) bool { return true })
			}

			if err := ctrl.DeleteFile(GetContext(), id, confirm); err != nil {
				return sessionError(err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// newFilesDownloadCmd creates the 'files download' command.
func newFilesDownloadCmd() *cobra.Command {
	var outputDir string
	var openBrowser, printURL bool

	cmd := &cobra.Command{
		Use:     "download <file-id> [file-id...]",
		Aliases: []string{"get"},
		Short:   "Download files",
		Long: `Download files by ID into a directory, or hand the download URL to
your browser with --open.

Examples:
  minidrive files download 12
  minidrive files download 12 13 -o ./downloads
  minidrive files download 12 --open
  minidrive files download 12 --print`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if openBrowser && printURL {
				return errors.New("--open and --print cannot be used together")
			}
			ids := make([]uint, 0, len(args))
			for _, a := range args {
				id, err := parseID(a)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			client, _, err := getAPIClient()
			if err != nil {
				return err
			}
			if err := requireSession(client); err != nil {
				return err
			}

			switch {
			case openBrowser:
				return executeOpen(cmd, client, opener.NewBrowser(GetLogger()), ids)
			case printURL:
				return executeOpen(cmd, client, opener.Printer{W: cmd.OutOrStdout()}, ids)
			default:
				dir, err := paths.ResolveAbsolute(outputDir)
				if err != nil {
					return fmt.Errorf("invalid output directory: %w", err)
				}
				return executeFetch(cmd, client, dir, ids)
			}
		},
	}

	cmd.Flags().StringVarP(&outputDir, "outdir", "o", ".", "Directory to save into")
	cmd.Flags().BoolVar(&openBrowser, "open", false, "Open the download URL in the system browser")
	cmd.Flags().BoolVar(&printURL, "print", false, "Print the download URL instead of downloading")

	return cmd
}

func executeOpen(cmd *cobra.Command, client *api.Client, o session.Opener, ids []uint) error {
	ctrl := newController(cmd, client, nil, o)
	for _, id := range ids {
		if _, err := ctrl.Download(id); err != nil {
			return err
		}
	}
	return nil
}

// executeFetch saves each file into dir. A single file goes through the
// controller's download trigger; several files are named from the
// collection first so duplicates get distinct local names.
func executeFetch(cmd *cobra.Command, client *api.Client, dir string, ids []uint) error {
	bus := events.NewEventBus(0)
	defer bus.Close()

	fetch := opener.NewFetch(GetContext(), client, dir,
		opener.WithReporter(func(string) progress.Reporter { return progress.NewCLIProgress(cmd.ErrOrStderr()) }),
		opener.WithLogger(GetLogger()))
	ctrl := newController(cmd, client, bus, fetch)

	if len(ids) == 1 {
		if _, err := ctrl.Download(ids[0]); err != nil {
			return sessionError(err)
		}
		reportSaved(cmd, fetch.Saved())
		return nil
	}

	if err := ctrl.Mount(GetContext()); err != nil {
		return sessionError(err)
	}
	planned := make([]paths.FileForDownload, 0, len(ids))
	for _, id := range ids {
		rec, ok := ctrl.Store().Get(id)
		if !ok {
			return fmt.Errorf("%w: %d", session.ErrUnknownFile, id)
		}
		name := rec.OriginalName
		if err := validation.ValidateFilename(name); err != nil {
			GetLogger().Warn().Err(err).Uint("id", id).Msg("unsafe file name from backend, sanitizing")
			if name = sanitize.Filename(name); name == "" {
				name = fmt.Sprintf("file-%d", id)
			}
		}
		planned = append(planned, paths.FileForDownload{
			ID:        id,
			Name:      name,
			LocalPath: filepath.Join(dir, name),
			Size:      rec.Size,
		})
	}
	planned, renamed := paths.ResolveCollisions(planned)
	if renamed > 0 {
		GetLogger().Info().Int("files", renamed).Msg("duplicate names renamed with file IDs")
	}

	for _, f := range planned {
		if _, err := fetch.SaveAs(GetContext(), client.DownloadURL(f.ID), f.LocalPath); err != nil {
			return sessionError(err)
		}
	}
	reportSaved(cmd, fetch.Saved())
	return nil
}

func reportSaved(cmd *cobra.Command, saved []string) {
	for _, p := range saved {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s\n", p)
	}
}

// newFilesInfoCmd creates the 'files info' command.
func newFilesInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file-id>",
		Short: "Show file details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, _, err := getAPIClient()
			if err != nil {
				return err
			}
			if err := requireSession(client); err != nil {
				return err
			}

			meta, err := client.GetFileMetadata(GetContext(), id)
			if err != nil {
				if api.IsNotFound(err) {
					return fmt.Errorf("file %d not found", id)
				}
				return sessionError(err)
			}
			renderMetadata(cmd.OutOrStdout(), meta, client.DownloadURL(meta.ID))
			return nil
		},
	}
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid file ID %q", s)
	}
	return uint(id), nil
}

// sessionError turns an auth failure into the login hint.
func sessionError(err error) error {
	if api.IsAuthExpired(err) {
		return fmt.Errorf("session expired or invalid; run 'minidrive login' (%w)", err)
	}
	return err
}
