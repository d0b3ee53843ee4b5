package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/minidrive/minidrive/internal/constants"
	"github.com/minidrive/minidrive/internal/models"
	"github.com/minidrive/minidrive/internal/state"
	"github.com/minidrive/minidrive/internal/util/format"
	ustrings "github.com/minidrive/minidrive/internal/util/strings"
)

// renderFiles writes files in the given view mode. An empty slice prints
// emptyMsg instead.
func renderFiles(w io.Writer, files []models.FileRecord, mode state.ViewMode, emptyMsg string) {
	if len(files) == 0 {
		fmt.Fprintln(w, emptyMsg)
		return
	}
	if mode == state.ViewList {
		renderList(w, files)
	} else {
		renderGrid(w, files)
	}
	fmt.Fprintf(w, "\n%d %s\n", len(files), ustrings.Pluralize("file", int64(len(files))))
}

func renderList(w io.Writer, files []models.FileRecord) {
	fmt.Fprintf(w, "%-6s %-40s %-10s %-18s %s\n", "ID", "NAME", "SIZE", "TYPE", "UPLOADED")
	for _, f := range files {
		uploaded := "-"
		if !f.CreatedAt.IsZero() {
			uploaded = f.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%-6d %-40s %-10s %-18s %s\n",
			f.ID,
			ustrings.Truncate(f.OriginalName, 40),
			format.Size(f.Size),
			ustrings.Truncate(orDash(f.ContentType), 18),
			uploaded)
	}
}

// renderGrid lays files out in fixed-width cells, GridColumns per row.
// Each cell shows the name on one line and "#id  size" below it.
func renderGrid(w io.Writer, files []models.FileRecord) {
	width := constants.GridCellWidth
	for start := 0; start < len(files); start += constants.GridColumns {
		end := min(start+constants.GridColumns, len(files))
		row := files[start:end]

		var names, details []string
		for _, f := range row {
			names = append(names, pad(ustrings.Truncate(f.OriginalName, width-2), width))
			details = append(details, pad(fmt.Sprintf("#%d  %s", f.ID, format.Size(f.Size)), width))
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(names, ""), " "))
		fmt.Fprintln(w, strings.TrimRight(strings.Join(details, ""), " "))
		if end < len(files) {
			fmt.Fprintln(w)
		}
	}
}

func renderMetadata(w io.Writer, meta *models.FileMetadata, downloadURL string) {
	fmt.Fprintf(w, "ID:       %d\n", meta.ID)
	fmt.Fprintf(w, "Name:     %s\n", meta.Name)
	fmt.Fprintf(w, "Size:     %s (%d bytes)\n", format.Size(meta.Size), meta.Size)
	fmt.Fprintf(w, "Type:     %s\n", orDash(meta.Type))
	if !meta.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Uploaded: %s\n", meta.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(w, "Download: %s\n", downloadURL)
}

// pad right-pads s with spaces to width runes.
func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
