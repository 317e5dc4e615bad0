package pdftext

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_NotAPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf at all"), 0o644))

	e := NewExtractor(zerolog.Nop())
	assert.Equal(t, "", e.ExtractText(context.Background(), path))

	_, ok := e.PageCount(path)
	assert.False(t, ok)
}

func TestExtractor_MissingFile(t *testing.T) {
	e := NewExtractor(zerolog.Nop())
	missing := filepath.Join(t.TempDir(), "missing.pdf")

	assert.Equal(t, "", e.ExtractText(context.Background(), missing))
	_, ok := e.PageCount(missing)
	assert.False(t, ok)
}

const threePages = "testdata/three_pages.pdf"

func TestExtractor_PagesInOrder(t *testing.T) {
	e := NewExtractor(zerolog.Nop())

	text := e.ExtractText(context.Background(), threePages)
	pages := strings.Split(text, "\n")
	require.Len(t, pages, 3, "text %q", text)
	assert.Equal(t, "Alpha page one", strings.TrimSpace(pages[0]))
	assert.Equal(t, "Bravo page two", strings.TrimSpace(pages[1]))
	assert.Equal(t, "Charlie page three", strings.TrimSpace(pages[2]))
}

func TestExtractor_PageCount(t *testing.T) {
	e := NewExtractor(zerolog.Nop())

	n, ok := e.PageCount(threePages)
	require.True(t, ok)
	assert.Equal(t, 3, n)

	n, err := readerPageCount(threePages)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestExtractor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, "", NewExtractor(zerolog.Nop()).ExtractText(ctx, threePages))
}
