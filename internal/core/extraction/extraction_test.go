package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/docket/internal/core/identity"
	"github.com/agenthands/docket/internal/core/model"
)

func testExtractor(ids ...model.Identity) *Extractor {
	return NewExtractor(identity.NewIndex(ids), nil, DefaultOptions())
}

func TestStripMiddleInitial(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"John A. Smith", "John Smith"},
		{"Mary B Smith", "Mary Smith"},
		{"Jane Smith", "Jane Smith"},
		{"Anna Maria Smith", "Anna Maria Smith"},
		{"John a. Smith", "John a. Smith"},
		{"A B C D", "A B C D"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripMiddleInitial(tt.in), "input %q", tt.in)
	}
}

func TestFindPeople(t *testing.T) {
	text := "report by John Smith and Jane A. Doe; trip to North Carolina; the Peter Parker Street office; John Smith again"
	assert.Equal(t, []string{"Jane A. Doe", "John Smith", "Parker Street"}, FindPeople(text))
	assert.Nil(t, FindPeople("nothing capitalized here"))
}

func TestFindOrganizations(t *testing.T) {
	text := "Acme Inc and the Gates Foundation met; Acme Inc again. acme Inc is not matched."
	assert.Equal(t, []string{"Acme Inc", "Gates Foundation"}, FindOrganizations(text))
}

func TestFindEmailsAndURLs(t *testing.T) {
	text := "write c-d@mail.example.org. or a.b@example.com, see https://x.org/a?b=1 and http://y.com"
	assert.Equal(t, []string{"a.b@example.com", "c-d@mail.example.org"}, FindEmails(text))
	assert.Equal(t, []string{"http://y.com", "https://x.org/a?b=1"}, FindURLs(text))
}

func TestNameFilter(t *testing.T) {
	f := newNameFilter([]string{"Palm Beach", "united states"}, []string{"Court"})
	got := f.clean([]string{"Palm Beach", "United States", "Supreme Court", "John Q. Public", "Mary Jones"})
	assert.Equal(t, []string{"John Public", "Mary Jones"}, got)
}

func TestCanonicalize_Threshold(t *testing.T) {
	e := testExtractor(model.Identity{ID: "p1", Names: []string{"Abcdefghijklmnopqrst"}})

	// 17 of 20 characters in a single matching block: 2*17/40 = 0.85
	p, ok := e.Canonicalize("Abcdefghijklmnopqxyz")
	require.True(t, ok)
	assert.Equal(t, "p1", p.IdentityID)
	assert.Equal(t, 0.85, p.Confidence)
	assert.Equal(t, "Abcdefghijklmnopqxyz", p.MatchedText)

	// 16 of 20: 0.80
	_, ok = e.Canonicalize("Abcdefghijklmnopwxyz")
	assert.False(t, ok)
}

func TestCanonicalize_StripsMiddleInitial(t *testing.T) {
	e := testExtractor(model.Identity{ID: "p_smith", Names: []string{"John Smith"}})

	p, ok := e.Canonicalize("John A. Smith")
	require.True(t, ok)
	assert.Equal(t, "p_smith", p.IdentityID)
	assert.Equal(t, 1.0, p.Confidence)
	assert.Equal(t, "John A. Smith", p.MatchedText)
}

func TestCanonicalize_FirstBestWins(t *testing.T) {
	e := testExtractor(
		model.Identity{ID: "first", Names: []string{"Jane Roe"}},
		model.Identity{ID: "second", Names: []string{"Jane Roe"}},
	)
	p, ok := e.Canonicalize("Jane Roe")
	require.True(t, ok)
	assert.Equal(t, "first", p.IdentityID)
}

func TestBuildEdges(t *testing.T) {
	edges := BuildEdges([]string{"A", "B", "C"})
	assert.Equal(t, []model.Edge{
		{Source: "A", Target: "B", Relationship: "co_mentioned", Weight: 1},
		{Source: "A", Target: "C", Relationship: "co_mentioned", Weight: 1},
		{Source: "B", Target: "C", Relationship: "co_mentioned", Weight: 1},
	}, edges)

	assert.Empty(t, BuildEdges([]string{"A"}))
	assert.Empty(t, BuildEdges(nil))
}

func TestExtract(t *testing.T) {
	e := testExtractor(
		model.Identity{ID: "p_a", Names: []string{"John Smith"}},
		model.Identity{ID: "p_b", Names: []string{"Mary Jones"}},
		model.Identity{ID: "p_c", Names: []string{"Peter Brown"}},
	)
	text := "john said John A. Smith met Mary Jones and Peter Brown; later Johnny Smith, " +
		"Robert Walker and Robert Walk left. mail a@b.com via Acme Inc."

	ents := e.Extract(text)

	require.Len(t, ents.Resolved, 4)
	assert.Equal(t, []string{"p_a", "p_b", "p_c"}, ents.IdentityIDs())
	assert.Equal(t, []model.UnresolvedCluster{{"Robert Walk", "Robert Walker"}}, ents.Unresolved)
	assert.Equal(t, []string{"Acme Inc"}, ents.Organizations)
	assert.Equal(t, []string{"a@b.com"}, ents.Emails)
	assert.Empty(t, ents.URLs)

	require.Len(t, ents.Edges, 3)
	assert.Equal(t, model.Edge{Source: "p_a", Target: "p_b", Relationship: "co_mentioned", Weight: 1}, ents.Edges[0])
	assert.Equal(t, model.Edge{Source: "p_a", Target: "p_c", Relationship: "co_mentioned", Weight: 1}, ents.Edges[1])
	assert.Equal(t, model.Edge{Source: "p_b", Target: "p_c", Relationship: "co_mentioned", Weight: 1}, ents.Edges[2])
}

func TestExtract_DirectIndexHits(t *testing.T) {
	e := testExtractor(model.Identity{ID: "p_x", Names: []string{"madonna", "Madonna Ciccone"}})

	ents := e.Extract("a photo of madonna on stage")
	require.Len(t, ents.Resolved, 1)
	assert.Equal(t, "p_x", ents.Resolved[0].IdentityID)
	assert.Equal(t, "madonna", ents.Resolved[0].MatchedText)
	assert.Empty(t, ents.Edges)
}

func TestExtract_EmptyText(t *testing.T) {
	ents := testExtractor().Extract("")
	assert.Empty(t, ents.Resolved)
	assert.Empty(t, ents.Unresolved)
	assert.Empty(t, ents.Organizations)
	assert.Empty(t, ents.Edges)
}
