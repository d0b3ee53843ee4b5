package diskspace

import (
	"fmt"
	"path/filepath"
	"testing"
)

func TestCheck(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a.pdf")

	t.Run("SmallFile", func(t *testing.T) {
		if err := Check(target, 1024, DefaultMargin); err != nil {
			t.Errorf("Expected no error for small file, got: %v", err)
		}
	})

	t.Run("UnknownSize", func(t *testing.T) {
		if err := Check(target, -1, DefaultMargin); err != nil {
			t.Errorf("Expected unknown size to pass, got: %v", err)
		}
	})

	t.Run("TooLarge", func(t *testing.T) {
		available, ok := Available(target)
		if !ok {
			t.Skip("Could not determine available space")
		}
		err := Check(target, available+1, 1.0)
		if !IsInsufficientSpace(err) {
			t.Fatalf("Expected InsufficientSpaceError, got: %v", err)
		}
		if !IsInsufficientSpace(fmt.Errorf("wrapped: %w", err)) {
			t.Error("Wrapped error should still be detected")
		}
	})

	t.Run("MissingDirectory", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "nope", "deeper", "a.pdf")
		if err := Check(missing, 1<<60, 1.0); err != nil {
			t.Errorf("Unqueryable filesystem should pass, got: %v", err)
		}
	})
}

func TestInsufficientSpaceErrorMessage(t *testing.T) {
	err := &InsufficientSpaceError{Path: "/tmp/a.pdf", RequiredBytes: 2048, AvailableBytes: 1024}
	want := "insufficient disk space for /tmp/a.pdf: need 2 KB, have 1 KB available"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
