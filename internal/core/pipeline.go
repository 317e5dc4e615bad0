// Package core wires fingerprinting, clustering, entity extraction and the
// output sinks into one scan.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agenthands/docket/internal/core/cluster"
	"github.com/agenthands/docket/internal/core/extraction"
	"github.com/agenthands/docket/internal/core/fingerprint"
	"github.com/agenthands/docket/internal/core/model"
	"github.com/agenthands/docket/internal/emit"
)

// DocumentStore persists one canonical document with its entities.
type DocumentStore interface {
	SaveDocument(ctx context.Context, doc model.DocFragment, text string, ents model.Entities) error
}

// GraphStore mirrors one canonical document into a property graph.
type GraphStore interface {
	SaveDocument(ctx context.Context, doc model.DocFragment, people []model.PersonRecord, orgs []model.OrgRecord, edges []model.Edge) error
}

type ScanOptions struct {
	Root    string
	Dataset string
	// ReportPath and FragmentsDir are skipped when empty.
	ReportPath   string
	FragmentsDir string
	IncludeText  bool
	// Organize is nil when files stay where they are. An empty TargetRoot
	// means the scan root.
	Organize *emit.OrganizeOptions
}

// CanonicalDocument is the extraction output for one canonical record.
type CanonicalDocument struct {
	Index     int            `json:"index"`
	Fragments emit.Fragments `json:"fragments"`
	Entities  model.Entities `json:"entities"`
	Folder    string         `json:"folder,omitempty"`
}

type ScanResult struct {
	Report    model.Report        `json:"report"`
	Clusters  model.ClusterResult `json:"-"`
	Documents []CanonicalDocument `json:"documents"`
	Actions   []emit.Action       `json:"actions,omitempty"`
}

type Pipeline struct {
	Fingerprinter *fingerprint.Fingerprinter
	Builder       *cluster.Builder
	Extractor     *extraction.Extractor
	Store         DocumentStore
	Graph         GraphStore
	Logger        zerolog.Logger
	Now           func() time.Time
}

func NewPipeline(fp *fingerprint.Fingerprinter, builder *cluster.Builder, extractor *extraction.Extractor, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		Fingerprinter: fp,
		Builder:       builder,
		Extractor:     extractor,
		Logger:        logger,
		Now:           time.Now,
	}
}

// Scan fingerprints every PDF under opts.Root, groups duplicates, extracts
// entities from each canonical document and hands the results to the
// configured sinks. Nothing is emitted until clustering has finished.
func (p *Pipeline) Scan(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	paths, err := fingerprint.FindPDFs(opts.Root)
	if err != nil {
		return nil, err
	}
	p.Logger.Info().Str("root", opts.Root).Int("files", len(paths)).Msg("scanning PDFs")

	records, err := p.Fingerprinter.FingerprintAll(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint: %w", err)
	}

	clusters, err := p.Builder.Build(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to cluster: %w", err)
	}

	out := &ScanResult{
		Report:   emit.BuildReport(clusters, len(paths), opts.IncludeText, uuid.New().String(), p.Now()),
		Clusters: clusters,
	}
	if opts.ReportPath != "" {
		if err := emit.WriteReport(opts.ReportPath, out.Report); err != nil {
			return nil, err
		}
		p.Logger.Info().Str("path", opts.ReportPath).Msg("report written")
	}

	for _, idx := range clusters.Canonicals() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := p.emitCanonical(ctx, opts, clusters, idx)
		if err != nil {
			return nil, err
		}
		out.Documents = append(out.Documents, doc)
	}

	if opts.Organize != nil {
		o := *opts.Organize
		if o.TargetRoot == "" {
			o.TargetRoot = opts.Root
		}
		actions, err := emit.NewOrganizer(o, p.Logger).Organize(clusters)
		if err != nil {
			return nil, fmt.Errorf("failed to organize files: %w", err)
		}
		out.Actions = actions
	}

	s := out.Report.Summary
	p.Logger.Info().
		Str("run_id", out.Report.RunID).
		Int("scanned", s.Scanned).
		Int("exact_groups", s.ExactGroups).
		Int("near_groups", s.NearGroups).
		Int("partial_groups", s.PartialGroups).
		Int("singletons", s.Singletons).
		Msg("scan complete")
	return out, nil
}

func (p *Pipeline) emitCanonical(ctx context.Context, opts ScanOptions, clusters model.ClusterResult, idx int) (CanonicalDocument, error) {
	rec := clusters.Records[idx]
	ents := p.Extractor.Extract(rec.Text)
	frags := emit.BuildFragments(opts.Dataset, clusters, idx, ents, opts.IncludeText)
	doc := CanonicalDocument{Index: idx, Fragments: frags, Entities: ents}

	log := p.Logger.With().Str("document_id", frags.Doc.ID).Logger()
	log.Debug().
		Int("resolved", len(ents.Resolved)).
		Int("unresolved", len(ents.Unresolved)).
		Int("organizations", len(ents.Organizations)).
		Msg("entities extracted")

	if opts.FragmentsDir != "" {
		folder, err := emit.WriteFragments(opts.FragmentsDir, frags)
		if err != nil {
			return doc, err
		}
		doc.Folder = folder
	}
	if p.Store != nil {
		if err := p.Store.SaveDocument(ctx, frags.Doc, rec.Text, ents); err != nil {
			return doc, fmt.Errorf("failed to store %s: %w", frags.Doc.ID, err)
		}
	}
	if p.Graph != nil {
		if err := p.Graph.SaveDocument(ctx, frags.Doc, frags.People.People, frags.Orgs.Organizations, ents.Edges); err != nil {
			return doc, fmt.Errorf("failed to write %s to graph: %w", frags.Doc.ID, err)
		}
	}
	return doc, nil
}
