package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agenthands/docket/internal/config"
	"github.com/agenthands/docket/internal/core"
	"github.com/agenthands/docket/internal/core/cluster"
	"github.com/agenthands/docket/internal/core/dedupe"
	"github.com/agenthands/docket/internal/core/extraction"
	"github.com/agenthands/docket/internal/core/fingerprint"
	"github.com/agenthands/docket/internal/core/identity"
	"github.com/agenthands/docket/internal/core/model"
	"github.com/agenthands/docket/internal/driver"
	"github.com/agenthands/docket/internal/emit"
	"github.com/agenthands/docket/internal/pdftext"
	"github.com/agenthands/docket/internal/store"
)

// app holds the pipeline and the resources that must be released when the
// command finishes.
type app struct {
	pipeline *core.Pipeline
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{}

	var identities []model.Identity
	if cfg.Extraction.IdentitiesPath != "" {
		ids, err := identity.LoadJSON(cfg.Extraction.IdentitiesPath)
		if err != nil {
			return nil, err
		}
		identities = append(identities, ids...)
	}

	var st *store.Store
	if cfg.Store.SQLitePath != "" {
		var err error
		st, err = store.Open(cfg.Store.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { st.Close() })

		ids, err := st.LoadIdentities(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		identities = append(identities, ids...)
	}
	logger.Info().Int("identities", len(identities)).Msg("loaded known identities")

	policy, err := dedupe.ParsePolicy(cfg.Extraction.UnresolvedClustering)
	if err != nil {
		a.Close()
		return nil, err
	}

	hasher := fingerprint.NewMinHasher(cfg.Dedupe.NumPerm, cfg.Dedupe.Seed)
	hasher.ShingleSize = cfg.Dedupe.ShingleSize
	fp := fingerprint.NewFingerprinter(pdftext.NewExtractor(logger), hasher, cfg.Scan.Workers, logger)

	builder := cluster.NewBuilder(cluster.Options{
		NearThreshold:    cfg.Dedupe.NearThreshold,
		PartialThreshold: cfg.Dedupe.PartialThreshold,
		LSHThreshold:     cfg.Dedupe.LSHThreshold,
		NumPerm:          cfg.Dedupe.NumPerm,
		MinPages:         cfg.Scan.MinPages,
	}, logger)

	opts := extraction.DefaultOptions()
	opts.MatchThreshold = cfg.Extraction.MatchThreshold
	if len(cfg.Extraction.StopTerms) > 0 {
		opts.StopTerms = cfg.Extraction.StopTerms
	}
	if len(cfg.Extraction.BadLastNames) > 0 {
		opts.BadLastNames = cfg.Extraction.BadLastNames
	}
	extractor := extraction.NewExtractor(
		identity.NewIndex(identities),
		dedupe.NewDeduplicator(cfg.Extraction.ClusterThreshold, policy),
		opts,
	)

	a.pipeline = core.NewPipeline(fp, builder, extractor, logger)
	if st != nil {
		a.pipeline.Store = st
	}

	if cfg.Memgraph.URI != "" {
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to Memgraph: %w", err)
		}
		a.closers = append(a.closers, func() { d.Close(context.Background()) })

		sink := driver.NewGraphSink(d, logger)
		if err := sink.BuildIndices(ctx); err != nil {
			a.Close()
			return nil, err
		}
		a.pipeline.Graph = sink
	}

	return a, nil
}

// scanOptions maps the configuration onto pipeline options.
func scanOptions(cfg *config.Config) core.ScanOptions {
	opts := core.ScanOptions{
		Root:         cfg.Scan.Root,
		Dataset:      cfg.Output.Dataset,
		FragmentsDir: cfg.Output.FragmentsDir,
		IncludeText:  cfg.Output.IncludeText,
	}
	if !cfg.Output.SkipReport {
		opts.ReportPath = cfg.Output.ReportPath
	}
	if cfg.Organize.Enabled {
		opts.Organize = &emit.OrganizeOptions{
			Move:           cfg.Organize.Move,
			DryRun:         cfg.Organize.DryRun,
			TargetRoot:     cfg.Organize.TargetRoot,
			SingletonsOnly: cfg.Organize.SingletonsOnly,
		}
	}
	return opts
}
