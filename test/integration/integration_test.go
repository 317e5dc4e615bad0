//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/docket/internal/consolidate"
	"github.com/agenthands/docket/internal/core"
	"github.com/agenthands/docket/internal/core/cluster"
	"github.com/agenthands/docket/internal/core/extraction"
	"github.com/agenthands/docket/internal/core/fingerprint"
	"github.com/agenthands/docket/internal/core/identity"
	"github.com/agenthands/docket/internal/core/model"
	"github.com/agenthands/docket/internal/driver"
	"github.com/agenthands/docket/internal/store"
)

type textByName map[string]string

func (m textByName) ExtractText(ctx context.Context, path string) string {
	return m[filepath.Base(path)]
}

func (m textByName) PageCount(path string) (int, bool) {
	return 1, true
}

var texts = textByName{
	"EFTA001.pdf": "Memo from John Smith to Jane Doe regarding the Acme Inc account.",
	"EFTA002.pdf": "Memo from John Smith to Jane Doe regarding the Acme Inc account.",
	"EFTA003.pdf": "Flight log listing Jane Doe and Robert Walker as passengers.",
}

var identities = []model.Identity{
	{ID: "john_smith", Names: []string{"John Smith"}},
	{ID: "jane_doe", Names: []string{"Jane Doe"}},
}

func writeCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	contents := map[string]string{"EFTA001.pdf": "one", "EFTA002.pdf": "one", "EFTA003.pdf": "three"}
	for name, body := range contents {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(body), 0o644))
	}
	return root
}

func newPipeline(ids []model.Identity) *core.Pipeline {
	logger := zerolog.Nop()
	fp := fingerprint.NewFingerprinter(texts, fingerprint.NewMinHasher(fingerprint.DefaultNumPerm, fingerprint.DefaultSeed), 2, logger)
	ex := extraction.NewExtractor(identity.NewIndex(ids), nil, extraction.DefaultOptions())
	return core.NewPipeline(fp, cluster.NewBuilder(cluster.DefaultOptions(), logger), ex, logger)
}

func TestScanStoreAndConsolidate(t *testing.T) {
	ctx := context.Background()
	work := t.TempDir()

	st, err := store.Open(filepath.Join(work, "docket.db"), zerolog.Nop())
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.SaveIdentities(ctx, identities))

	known, err := st.LoadIdentities(ctx)
	require.NoError(t, err)

	p := newPipeline(known)
	p.Store = st
	opts := core.ScanOptions{
		Root:         writeCorpus(t),
		Dataset:      "Dataset12",
		ReportPath:   filepath.Join(work, "report.json"),
		FragmentsDir: filepath.Join(work, "documents"),
	}

	res, err := p.Scan(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Report.Summary.ExactGroups)
	require.Len(t, res.Documents, 2)

	// a second scan must not duplicate rows
	_, err = p.Scan(ctx, opts)
	require.NoError(t, err)

	n, err := st.Count(ctx, "documents")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = st.Count(ctx, "document_people")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = st.Count(ctx, "unresolved_people")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	c, err := consolidate.NewConsolidator(consolidate.Options{
		SourceDir:    opts.FragmentsDir,
		OutputDir:    filepath.Join(work, "data"),
		FolderPrefix: "EFTA",
	}, zerolog.Nop())
	require.NoError(t, err)

	summary, err := c.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, consolidate.Summary{
		Folders:       2,
		Documents:     2,
		People:        2,
		Edges:         1,
		Organizations: 1,
		Communities:   1,
	}, summary)
}

func TestGraphSink_Memgraph(t *testing.T) {
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("MEMGRAPH_URI")
	if uri == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}
	ctx := context.Background()

	d, err := driver.NewMemgraphDriver(ctx, uri, os.Getenv("MEMGRAPH_USER"), os.Getenv("MEMGRAPH_PASSWORD"), zerolog.Nop())
	require.NoError(t, err)
	defer d.Close(ctx)

	sink := driver.NewGraphSink(d, zerolog.Nop())
	require.NoError(t, sink.BuildIndices(ctx))

	suffix := uuid.New().String()
	doc := model.DocFragment{ID: "doc_it_" + suffix, Title: "it", FilePath: "/tmp/it.pdf"}
	people := []model.PersonRecord{
		{ID: "a_" + suffix, Name: "alice", Confidence: 1},
		{ID: "b_" + suffix, Name: "bob", Confidence: 0.9},
	}
	edges := []model.Edge{{Source: people[0].ID, Target: people[1].ID, Relationship: model.RelationshipCoMentioned, Weight: 1}}

	for i := 0; i < 2; i++ {
		require.NoError(t, sink.SaveDocument(ctx, doc, people, nil, edges))
	}

	ids, err := sink.Mentions(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{people[0].ID, people[1].ID}, ids)
}
