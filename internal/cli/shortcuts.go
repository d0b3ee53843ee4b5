package cli

import (
	"github.com/spf13/cobra"
)

// AddShortcuts adds top-level aliases for the common file commands.
func AddShortcuts(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newUploadShortcut())
	rootCmd.AddCommand(newDownloadShortcut())
	rootCmd.AddCommand(newLsShortcut())
	rootCmd.AddCommand(newRmShortcut())
}

// shortcut reuses a files subcommand under a new top-level name.
func shortcut(cmd *cobra.Command, use, target, examples string) *cobra.Command {
	cmd.Use = use
	cmd.Aliases = nil
	cmd.Short += " (shortcut for 'files " + target + "')"
	cmd.Long = "Equivalent to: minidrive files " + target + "\n\nExamples:\n" + examples
	return cmd
}

func newUploadShortcut() *cobra.Command {
	return shortcut(newFilesUploadCmd(), "upload <file> [file...]", "upload",
		"  minidrive upload scan.pdf\n  minidrive upload a.jpg b.png")
}

func newDownloadShortcut() *cobra.Command {
	return shortcut(newFilesDownloadCmd(), "download <file-id> [file-id...]", "download",
		"  minidrive download 12\n  minidrive download 12 13 --outdir ./downloads")
}

func newLsShortcut() *cobra.Command {
	return shortcut(newFilesListCmd(), "ls", "list",
		"  minidrive ls\n  minidrive ls --search report --view list")
}

func newRmShortcut() *cobra.Command {
	return shortcut(newFilesDeleteCmd(), "rm <file-id>", "delete",
		"  minidrive rm 12\n  minidrive rm 12 --yes")
}
