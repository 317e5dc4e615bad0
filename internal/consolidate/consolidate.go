// Package consolidate merges the per-document fragment folders written by a
// scan into corpus-wide documents, people, edges, organizations and cases
// files, and detects communities in the merged co-mention graph.
package consolidate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agenthands/docket/internal/core/common"
	"github.com/agenthands/docket/internal/core/community"
	"github.com/agenthands/docket/internal/core/model"
)

var ErrSourceNotFound = errors.New("fragment source directory not found")

type Options struct {
	SourceDir string
	OutputDir string
	// FolderPrefix restricts consolidation to folders whose name starts
	// with it. Empty accepts every folder.
	FolderPrefix string
	Communities  string
}

type Summary struct {
	Folders       int `json:"folders"`
	Documents     int `json:"documents"`
	People        int `json:"people"`
	Edges         int `json:"edges"`
	Organizations int `json:"organizations"`
	Cases         int `json:"cases"`
	Communities   int `json:"communities"`
}

// Result is the merged corpus.
type Result struct {
	Documents     []map[string]any
	People        []map[string]any
	Edges         []Edge
	Organizations []map[string]any
	Cases         []map[string]any
	Communities   []community.Community
}

func (r Result) Summary(folders int) Summary {
	return Summary{
		Folders:       folders,
		Documents:     len(r.Documents),
		People:        len(r.People),
		Edges:         len(r.Edges),
		Organizations: len(r.Organizations),
		Cases:         len(r.Cases),
		Communities:   len(r.Communities),
	}
}

type Consolidator struct {
	opts     Options
	detector community.Detector
	loader   *loader
	logger   zerolog.Logger
}

func NewConsolidator(opts Options, logger zerolog.Logger) (*Consolidator, error) {
	detector, err := community.NewDetector(opts.Communities)
	if err != nil {
		return nil, err
	}
	l, err := newLoader(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load fragment schema: %w", err)
	}
	return &Consolidator{opts: opts, detector: detector, loader: l, logger: logger}, nil
}

// Run merges every matching folder under SourceDir and writes the merged
// files into OutputDir. When no folder matches nothing is written.
func (c *Consolidator) Run(ctx context.Context) (Summary, error) {
	folders, err := c.folders()
	if err != nil {
		return Summary{}, err
	}
	if len(folders) == 0 {
		c.logger.Warn().Str("source", c.opts.SourceDir).Str("prefix", c.opts.FolderPrefix).Msg("no fragment folders found")
		return Summary{}, nil
	}

	res, err := c.Merge(ctx, folders)
	if err != nil {
		return Summary{}, err
	}

	outputs := []struct {
		name string
		v    any
	}{
		{"documents.json", nonNilMaps(res.Documents)},
		{"people.json", nonNilMaps(res.People)},
		{"edges.json", nonNilEdges(res.Edges)},
		{"organizations.json", nonNilMaps(res.Organizations)},
		{"cases.json", nonNilMaps(res.Cases)},
		{"communities.json", res.Communities},
	}
	for _, o := range outputs {
		path := filepath.Join(c.opts.OutputDir, o.name)
		if err := common.WriteJSON(path, o.v); err != nil {
			return Summary{}, err
		}
		c.logger.Info().Str("path", path).Msg("wrote consolidated file")
	}

	summary := res.Summary(len(folders))
	c.logger.Info().
		Int("folders", summary.Folders).
		Int("documents", summary.Documents).
		Int("people", summary.People).
		Int("edges", summary.Edges).
		Int("organizations", summary.Organizations).
		Int("cases", summary.Cases).
		Int("communities", summary.Communities).
		Msg("consolidation complete")
	return summary, nil
}

func (c *Consolidator) folders() ([]string, error) {
	entries, err := os.ReadDir(c.opts.SourceDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, c.opts.SourceDir)
		}
		return nil, fmt.Errorf("failed to list %s: %w", c.opts.SourceDir, err)
	}

	var folders []string
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), c.opts.FolderPrefix) {
			continue
		}
		folders = append(folders, filepath.Join(c.opts.SourceDir, e.Name()))
	}
	sort.Strings(folders)
	return folders, nil
}

// Merge loads the given folders in order and merges their fragments.
func (c *Consolidator) Merge(ctx context.Context, folders []string) (Result, error) {
	var docs, people, edges, orgs, cases []map[string]any

	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		c.logger.Debug().Str("folder", folder).Msg("loading fragments")

		if doc, ok := c.loader.load(filepath.Join(folder, kindDoc.File), kindDoc).(map[string]any); ok && truthy(doc["id"]) {
			docs = append(docs, doc)
		}
		people = append(people, objects(c.loader.load(filepath.Join(folder, kindPeople.File), kindPeople), "people")...)
		edges = append(edges, objects(c.loader.load(filepath.Join(folder, kindEdges.File), kindEdges), "edges", "edge")...)
		orgs = append(orgs, objects(c.loader.load(filepath.Join(folder, kindOrgs.File), kindOrgs), "organizations")...)
		cases = append(cases, objects(c.loader.load(filepath.Join(folder, kindRefs.File), kindRefs), "cases")...)
	}

	res := Result{
		Documents:     mergeByID(docs),
		People:        mergePeople(people),
		Edges:         mergeEdges(edges),
		Organizations: mergeByID(orgs),
		Cases:         mergeByID(cases),
	}

	communities, err := c.communities(res)
	if err != nil {
		return Result{}, err
	}
	res.Communities = communities
	return res, nil
}

// communities runs the detector over people ids and edge endpoints, using
// the average weight of each merged edge.
func (c *Consolidator) communities(res Result) ([]community.Community, error) {
	var nodes []string
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			nodes = append(nodes, id)
		}
	}
	for _, p := range res.People {
		add(stringOf(p["id"]))
	}

	graph := make([]model.Edge, 0, len(res.Edges))
	for _, e := range res.Edges {
		add(e.Source)
		add(e.Target)
		graph = append(graph, model.Edge{
			Source:       e.Source,
			Target:       e.Target,
			Relationship: model.RelationshipCoMentioned,
			Weight:       e.AvgWeight,
		})
	}

	groups, err := c.detector.Detect(nodes, graph)
	if err != nil {
		return nil, fmt.Errorf("failed to detect communities: %w", err)
	}
	return community.Label(groups), nil
}

func nonNilMaps(v []map[string]any) []map[string]any {
	if v == nil {
		return []map[string]any{}
	}
	return v
}

func nonNilEdges(v []Edge) []Edge {
	if v == nil {
		return []Edge{}
	}
	return v
}
