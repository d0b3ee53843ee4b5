package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minidrive/minidrive/internal/constants"
	"github.com/minidrive/minidrive/internal/models"
	"github.com/minidrive/minidrive/internal/state"
)

func sampleFiles(n int) []models.FileRecord {
	files := make([]models.FileRecord, n)
	for i := range files {
		files[i] = models.FileRecord{
			ID:           uint(i + 1),
			OriginalName: "file" + string(rune('a'+i)) + ".pdf",
			Size:         int64(1024 * (i + 1)),
			ContentType:  "application/pdf",
		}
	}
	return files
}

func TestRenderFilesEmpty(t *testing.T) {
	var buf bytes.Buffer
	renderFiles(&buf, nil, state.ViewGrid, "No files yet")
	assert.Equal(t, "No files yet\n", buf.String())
}

func TestRenderList(t *testing.T) {
	var buf bytes.Buffer
	renderFiles(&buf, sampleFiles(2), state.ViewList, "")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "filea.pdf")
	assert.Contains(t, lines[1], "application/pdf")
	assert.True(t, strings.HasSuffix(lines[1], " -"))
	assert.Contains(t, lines[2], "fileb.pdf")
	assert.Equal(t, "2 files", lines[len(lines)-1])
}

func TestRenderGridRows(t *testing.T) {
	var buf bytes.Buffer
	n := constants.GridColumns + 1
	renderFiles(&buf, sampleFiles(n), state.ViewGrid, "")

	out := buf.String()
	first := strings.Split(out, "\n")[0]
	for i := 0; i < constants.GridColumns; i++ {
		assert.Contains(t, first, sampleFiles(n)[i].OriginalName)
	}
	assert.NotContains(t, first, sampleFiles(n)[n-1].OriginalName)
	assert.Contains(t, out, "#1  1 KB")
	assert.True(t, strings.HasSuffix(out, "\n4 files\n"))
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab  ", pad("ab", 4))
	assert.Equal(t, "abcdef", pad("abcdef", 4))
	assert.Equal(t, "é ", pad("é", 2))
}
