package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/docket/internal/core/model"
)

func testIndex() *Index {
	return NewIndex([]model.Identity{
		{ID: "p_smith", Names: []string{"John Smith", "J. Smith"}},
		{ID: "p_jones", Names: []string{"Mary Jones"}},
		{ID: "", Names: []string{"Nobody"}},
		{ID: "p_empty"},
	})
}

func TestNewIndex_DropsInvalid(t *testing.T) {
	assert.Equal(t, 2, testIndex().Len())
}

func TestFindInText(t *testing.T) {
	idx := testIndex()
	hits := idx.FindInText("Meeting notes: JOHN SMITH and j. smith met mary jones.")
	assert.Equal(t, []string{"John Smith", "Mary Jones"}, hits)
	assert.Empty(t, idx.FindInText("nothing relevant"))
}

func TestBest(t *testing.T) {
	idx := testIndex()

	id, score, ok := idx.Best("John Smith")
	require.True(t, ok)
	assert.Equal(t, "p_smith", id.ID)
	assert.Equal(t, 1.0, score)

	id, _, ok = idx.Best("Mary Jone")
	require.True(t, ok)
	assert.Equal(t, "p_jones", id.ID)

	_, _, ok = NewIndex(nil).Best("John Smith")
	assert.False(t, ok)
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"p1","names":["Ann Lee","A. Lee"]}]`), 0o644))

	ids, err := LoadJSON(path)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, "p1", ids[0].ID)
	assert.Equal(t, []string{"Ann Lee", "A. Lee"}, ids[0].Names)

	_, err = LoadJSON(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{not json`), 0o644))
	_, err = LoadJSON(bad)
	assert.Error(t, err)
}
