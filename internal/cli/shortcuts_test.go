package cli

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestShortcutCommands(t *testing.T) {
	shortcuts := []struct {
		name     string
		createFn func() *cobra.Command
		flags    []string
	}{
		{"upload", newUploadShortcut, nil},
		{"download", newDownloadShortcut, []string{"outdir", "open", "print"}},
		{"ls", newLsShortcut, []string{"search", "view", "include", "exclude"}},
		{"rm", newRmShortcut, []string{"yes"}},
	}

	for _, sc := range shortcuts {
		t.Run(sc.name, func(t *testing.T) {
			cmd := sc.createFn()
			if cmd.Name() != sc.name {
				t.Errorf("Expected name '%s', got '%s'", sc.name, cmd.Name())
			}
			if cmd.RunE == nil {
				t.Errorf("Shortcut command '%s' has no RunE function", sc.name)
			}
			if !strings.Contains(cmd.Short, "shortcut for 'files") {
				t.Errorf("Shortcut command '%s' Short does not name its target: %q", sc.name, cmd.Short)
			}
			if !strings.HasPrefix(cmd.Long, "Equivalent to: minidrive files") {
				t.Errorf("Shortcut command '%s' has unexpected Long: %q", sc.name, cmd.Long)
			}
			if len(cmd.Aliases) != 0 {
				t.Errorf("Shortcut command '%s' should not carry aliases, got %v", sc.name, cmd.Aliases)
			}
			for _, f := range sc.flags {
				if cmd.Flags().Lookup(f) == nil {
					t.Errorf("--%s flag not found on '%s'", f, sc.name)
				}
			}
		})
	}
}

func TestAddShortcuts(t *testing.T) {
	rootCmd := NewRootCmd()
	AddShortcuts(rootCmd)

	found := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		found[cmd.Name()] = true
	}
	for _, expected := range []string{"upload", "download", "ls", "rm"} {
		if !found[expected] {
			t.Errorf("Shortcut command '%s' not found in root command", expected)
		}
	}
}

// The files group keeps its own aliases after the shortcuts reuse its builders.
func TestShortcutsLeaveFilesAliases(t *testing.T) {
	rootCmd := NewRootCmd()
	AddCommands(rootCmd)

	filesCmd, _, err := rootCmd.Find([]string{"files", "ls"})
	if err != nil {
		t.Fatalf("files ls not found: %v", err)
	}
	if filesCmd.Name() != "list" {
		t.Errorf("Expected 'files ls' to resolve to list, got %s", filesCmd.Name())
	}
}
