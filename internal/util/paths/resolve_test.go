package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveAbsoluteEmpty(t *testing.T) {
	got, err := ResolveAbsolute("")
	if err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if got != wd {
		t.Errorf("got %q, want working directory %q", got, wd)
	}
}

func TestResolveAbsoluteMissingTail(t *testing.T) {
	base, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	got, err := ResolveAbsolute(filepath.Join(base, "new", "dir"))
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(base, "new", "dir"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveAbsoluteSymlink(t *testing.T) {
	base, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(base, "real")
	if err := os.Mkdir(target, 0755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(base, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got, err := ResolveAbsolute(filepath.Join(link, "downloads"))
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(target, "downloads"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveAbsoluteHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ResolveAbsolute("~/minidrive-test-missing")
	if err != nil {
		t.Fatal(err)
	}
	resolvedHome, err := filepath.EvalSymlinks(home)
	if err != nil {
		resolvedHome = home
	}
	if want := filepath.Join(resolvedHome, "minidrive-test-missing"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
