package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/docket/internal/core/cluster"
	"github.com/agenthands/docket/internal/core/extraction"
	"github.com/agenthands/docket/internal/core/fingerprint"
	"github.com/agenthands/docket/internal/core/identity"
	"github.com/agenthands/docket/internal/core/model"
	"github.com/agenthands/docket/internal/emit"
)

var corpusTexts = map[string]string{
	"a.pdf": "John Smith met Jane Doe at Acme Inc. to discuss the merger.",
	"b.pdf": "John Smith met Jane Doe at Acme Inc. to discuss the merger.",
	"c.pdf": "Quarterly totals were reviewed by the committee in closed session.",
	"d.pdf": "Weather forecast shows sunny skies expected tomorrow morning downtown.",
}

func newCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	contents := map[string]string{"a.pdf": "same bytes", "b.pdf": "same bytes", "c.pdf": "c bytes", "d.pdf": "d bytes"}
	for name, body := range contents {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(body), 0o644))
	}
	return root
}

func newTestPipeline() *Pipeline {
	logger := zerolog.Nop()
	fp := fingerprint.NewFingerprinter(&stubExtractor{texts: corpusTexts}, fingerprint.NewMinHasher(fingerprint.DefaultNumPerm, fingerprint.DefaultSeed), 2, logger)
	index := identity.NewIndex([]model.Identity{
		{ID: "js", Names: []string{"John Smith"}},
		{ID: "jd", Names: []string{"Jane Doe"}},
	})
	p := NewPipeline(fp, cluster.NewBuilder(cluster.DefaultOptions(), logger), extraction.NewExtractor(index, nil, extraction.DefaultOptions()), logger)
	p.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return p
}

func TestScan(t *testing.T) {
	root := newCorpus(t)
	out := t.TempDir()
	p := newTestPipeline()
	store := &MockStore{}
	graph := &MockGraph{}
	p.Store = store
	p.Graph = graph

	res, err := p.Scan(context.Background(), ScanOptions{
		Root:         root,
		Dataset:      "Set",
		ReportPath:   filepath.Join(out, "report.json"),
		FragmentsDir: filepath.Join(out, "docs"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Report.RunID)
	assert.Equal(t, model.ReportSummary{TotalFiles: 4, Scanned: 4, ExactGroups: 1, Singletons: 2}, res.Report.Summary)
	assert.FileExists(t, filepath.Join(out, "report.json"))

	require.Len(t, res.Documents, 3)
	first := res.Documents[0]
	assert.Equal(t, "doc_Set_a", first.Fragments.Doc.ID)
	assert.Equal(t, model.GroupExact, first.Fragments.Doc.GroupKind)
	assert.ElementsMatch(t, []string{"js", "jd"}, first.Fragments.Doc.Mentions)
	assert.Equal(t, []string{"Acme Inc"}, first.Entities.Organizations)
	require.Len(t, first.Entities.Edges, 1)
	assert.FileExists(t, filepath.Join(first.Folder, "people.json"))

	assert.Equal(t, "doc_Set_c", res.Documents[1].Fragments.Doc.ID)
	assert.Empty(t, res.Documents[1].Entities.Resolved)

	require.Len(t, store.Saved, 3)
	assert.Equal(t, corpusTexts["a.pdf"], store.Saved[0].Text)
	require.Len(t, graph.Saved, 3)
	assert.Len(t, graph.Saved[0].Edges, 1)
	assert.Empty(t, res.Actions)
}

func TestScan_Organize(t *testing.T) {
	root := newCorpus(t)
	p := newTestPipeline()

	res, err := p.Scan(context.Background(), ScanOptions{
		Root:     root,
		Dataset:  "Set",
		Organize: &emit.OrganizeOptions{DryRun: true},
	})
	require.NoError(t, err)
	require.Len(t, res.Actions, 4)
	assert.Equal(t, filepath.Join(root, "exact_group_1", "a.pdf"), res.Actions[0].Dst)
	assert.Equal(t, filepath.Join(root, "singletons", "d.pdf"), res.Actions[3].Dst)
	assert.FileExists(t, filepath.Join(root, "a.pdf"))
}

func TestScan_MissingRoot(t *testing.T) {
	_, err := newTestPipeline().Scan(context.Background(), ScanOptions{Root: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorIs(t, err, fingerprint.ErrRootNotFound)
}

func TestScan_StoreError(t *testing.T) {
	p := newTestPipeline()
	p.Store = &MockStore{Err: errors.New("disk full")}

	_, err := p.Scan(context.Background(), ScanOptions{Root: newCorpus(t), Dataset: "Set"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestScan_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPipeline().Scan(ctx, ScanOptions{Root: newCorpus(t), Dataset: "Set"})
	assert.ErrorIs(t, err, context.Canceled)
}
