package fingerprint

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

type stubExtractor struct {
	texts map[string]string
	pages map[string]int
}

func (s *stubExtractor) ExtractText(ctx context.Context, path string) string {
	return s.texts[filepath.Base(path)]
}

func (s *stubExtractor) PageCount(path string) (int, bool) {
	n, ok := s.pages[filepath.Base(path)]
	return n, ok
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"hello   world", "hello world"},
		{"  line one\nline\ttwo  ", "line one line two"},
		{"JohnSmith met MaryJones", "John Smith met Mary Jones"},
		{"aBcD", "a Bc D"},
		{"ABC def", "ABC def"},
		{"iPhone", "i Phone"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "input %q", tt.in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"  JohnSmith\n\n met  MaryJones  ",
		"aBcDeFgH",
		"already normal text",
		"tabs\tand\nnewlines\r\nmixedCase",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestShingles(t *testing.T) {
	assert.Nil(t, Shingles("", 3))
	assert.Nil(t, Shingles("   ", 3))
	assert.Equal(t, []string{"one two"}, Shingles("one two", 3))
	assert.Equal(t, []string{"a b c"}, Shingles("a b c", 3))
	assert.Equal(t, []string{"a b c", "b c d", "c d e"}, Shingles("a b c d e", 3))
}

func TestMinHasher_Deterministic(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"

	h1 := NewMinHasher(128, 1)
	h2 := NewMinHasher(128, 1)

	s1 := h1.Signature(text)
	s2 := h2.Signature(text)

	require.Len(t, s1, 128)
	assert.Equal(t, s1, s2)
	assert.Equal(t, s1, h1.Signature(text))

	other := NewMinHasher(128, 2).Signature(text)
	assert.NotEqual(t, s1, other)
}

func TestMinHasher_EmptyText(t *testing.T) {
	h := NewMinHasher(64, 1)
	sig := h.Signature("")
	require.Len(t, sig, 64)
	assert.Equal(t, sig, h.Signature("   "))
	for _, v := range sig {
		assert.LessOrEqual(t, v, maxHash)
	}
}

func TestMinHasher_Similarity(t *testing.T) {
	h := NewMinHasher(128, 1)
	base := strings.Repeat("alpha beta gamma delta epsilon zeta eta theta iota kappa ", 20)
	a := h.Signature(base)
	b := h.Signature(base + " lambda")
	c := h.Signature(strings.Repeat("completely unrelated words appear in this other document ", 20))

	assert.Equal(t, 1.0, Jaccard(a, a))
	assert.Greater(t, Jaccard(a, b), 0.7)
	assert.Less(t, Jaccard(a, c), 0.2)
	assert.Equal(t, 0.0, Jaccard(a, a[:10]))
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "abc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	hash, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", hash)

	_, err = HashFile(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func TestFindPDFs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub", "deeper"), 0o755))
	for _, name := range []string{"b.pdf", "a.pdf", "notes.txt", "sub/c.pdf", "sub/deeper/d.pdf", "upper.PDF"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "folder.pdf"), 0o755))

	paths, err := FindPDFs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.pdf"),
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "sub", "c.pdf"),
		filepath.Join(dir, "sub", "deeper", "d.pdf"),
	}, paths)
}

func TestFindPDFs_MissingRoot(t *testing.T) {
	_, err := FindPDFs(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrRootNotFound)
}

func TestFingerprintAll(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	empty := filepath.Join(dir, "empty.pdf")
	missing := filepath.Join(dir, "missing.pdf")
	require.NoError(t, os.WriteFile(a, []byte("same bytes"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("same bytes"), 0o644))
	require.NoError(t, os.WriteFile(empty, []byte("not a pdf"), 0o644))

	ext := &stubExtractor{
		texts: map[string]string{"a.pdf": "JohnSmith  wrote\nthis", "b.pdf": "JohnSmith  wrote\nthis"},
		pages: map[string]int{"a.pdf": 2, "b.pdf": 2},
	}
	fp := NewFingerprinter(ext, NewMinHasher(32, 1), 3, zerolog.Nop())

	recs, err := fp.FingerprintAll(context.Background(), []string{a, b, empty, missing})
	require.NoError(t, err)
	require.Len(t, recs, 4)

	assert.Equal(t, a, recs[0].Path)
	assert.Equal(t, "a.pdf", recs[0].Name)
	assert.True(t, recs[0].Available)
	assert.Equal(t, int64(len("same bytes")), recs[0].Size)
	assert.Equal(t, recs[0].ExactHash, recs[1].ExactHash)
	assert.Equal(t, "John Smith wrote this", recs[0].Text)
	require.NotNil(t, recs[0].Pages)
	assert.Equal(t, 2, *recs[0].Pages)
	assert.Equal(t, recs[0].Signature, recs[1].Signature)

	assert.True(t, recs[2].Available)
	assert.NotEmpty(t, recs[2].ExactHash)
	assert.Equal(t, "", recs[2].Text)
	assert.Nil(t, recs[2].Pages)
	assert.Len(t, recs[2].Signature, 32)

	assert.False(t, recs[3].Available)
	assert.Equal(t, int64(0), recs[3].Size)
	assert.Equal(t, "", recs[3].ExactHash)
	assert.Nil(t, recs[3].Pages)
	assert.Len(t, recs[3].Signature, 32)
}

func TestFingerprintAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fp := NewFingerprinter(&stubExtractor{}, NewMinHasher(8, 1), 1, zerolog.Nop())
	_, err := fp.FingerprintAll(ctx, []string{"x.pdf"})
	assert.ErrorIs(t, err, context.Canceled)
}
