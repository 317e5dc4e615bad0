// Package cluster partitions fingerprinted documents into exact, near and
// partial duplicate groups plus singletons.
package cluster

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/agenthands/docket/internal/core/lsh"
	"github.com/agenthands/docket/internal/core/model"
	"github.com/agenthands/docket/internal/core/similarity"
)

const (
	DefaultNearThreshold    = 0.90
	DefaultPartialThreshold = 0.60
	DefaultLSHThreshold     = 0.8
	DefaultNumPerm          = 128
)

type Options struct {
	NearThreshold    float64
	PartialThreshold float64
	LSHThreshold     float64
	NumPerm          int
	MinPages         int
}

func DefaultOptions() Options {
	return Options{
		NearThreshold:    DefaultNearThreshold,
		PartialThreshold: DefaultPartialThreshold,
		LSHThreshold:     DefaultLSHThreshold,
		NumPerm:          DefaultNumPerm,
	}
}

type Builder struct {
	Options    Options
	Similarity func(a, b string) float64
	Logger     zerolog.Logger
}

func NewBuilder(opts Options, logger zerolog.Logger) *Builder {
	return &Builder{
		Options:    opts,
		Similarity: similarity.Ratio,
		Logger:     logger,
	}
}

// Build runs the page filter, the exact pass and the candidate pass over
// records, which must be in scan order. It never reorders records.
func (b *Builder) Build(ctx context.Context, records []model.DocumentRecord) (model.ClusterResult, error) {
	kept := b.filterPages(records)
	res := model.ClusterResult{Records: kept}

	consumed := make([]bool, len(kept))
	res.Groups = exactPass(kept, consumed)

	near, err := b.candidatePass(ctx, kept, consumed)
	if err != nil {
		return model.ClusterResult{}, err
	}
	res.Groups = append(res.Groups, near...)

	for i := range kept {
		if !consumed[i] {
			res.Singletons = append(res.Singletons, i)
		}
	}

	b.Logger.Info().
		Int("scanned", len(kept)).
		Int("groups", len(res.Groups)).
		Int("singletons", len(res.Singletons)).
		Msg("clustering complete")
	return res, nil
}

func (b *Builder) filterPages(records []model.DocumentRecord) []model.DocumentRecord {
	if b.Options.MinPages <= 0 {
		return records
	}
	kept := make([]model.DocumentRecord, 0, len(records))
	for _, r := range records {
		if r.PageCount() >= b.Options.MinPages {
			kept = append(kept, r)
		}
	}
	b.Logger.Info().
		Int("min_pages", b.Options.MinPages).
		Int("before", len(records)).
		Int("after", len(kept)).
		Msg("filtered by page count")
	return kept
}

// exactPass groups records sharing a content hash, in order of first
// appearance. Records without a hash never group.
func exactPass(records []model.DocumentRecord, consumed []bool) []model.DuplicateGroup {
	byHash := make(map[string][]int)
	var order []string
	for i, r := range records {
		if r.ExactHash == "" {
			continue
		}
		if _, ok := byHash[r.ExactHash]; !ok {
			order = append(order, r.ExactHash)
		}
		byHash[r.ExactHash] = append(byHash[r.ExactHash], i)
	}

	var groups []model.DuplicateGroup
	for _, h := range order {
		members := byHash[h]
		if len(members) < 2 {
			continue
		}
		for _, m := range members {
			consumed[m] = true
		}
		groups = append(groups, model.DuplicateGroup{
			Kind:      model.GroupExact,
			ExactHash: h,
			Members:   members,
		})
	}
	return groups
}

func (b *Builder) candidatePass(ctx context.Context, records []model.DocumentRecord, consumed []bool) ([]model.DuplicateGroup, error) {
	var remaining []int
	for i := range records {
		if !consumed[i] {
			remaining = append(remaining, i)
		}
	}
	if len(remaining) < 2 {
		return nil, nil
	}

	index, err := lsh.New(b.Options.LSHThreshold, b.Options.NumPerm)
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate index: %w", err)
	}
	for _, i := range remaining {
		if err := index.Insert(strconv.Itoa(i), records[i].Signature); err != nil {
			return nil, fmt.Errorf("failed to index %s: %w", records[i].Path, err)
		}
	}
	b.Logger.Debug().Int("indexed", index.Len()).Int("bands", index.Bands).Int("rows", index.Rows).Msg("candidate index built")

	sim := newScorer(records, b.Similarity)
	var groups []model.DuplicateGroup

	for _, i := range remaining {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if consumed[i] {
			continue
		}

		items := candidates(i, index.Query(records[i].Signature), consumed)
		if len(items) <= 1 {
			continue
		}

		members := refine(items, sim, b.Options.PartialThreshold)
		if len(members) < 2 {
			continue
		}

		kind := model.GroupPartial
		if maxPairwise(members, sim) >= b.Options.NearThreshold {
			kind = model.GroupNear
		}
		for _, m := range members {
			consumed[m] = true
		}
		groups = append(groups, model.DuplicateGroup{Kind: kind, Members: members})
	}
	return groups, nil
}

// candidates returns anchor plus every unconsumed hit, in scan order. Index
// keys are record indices, so the cost follows the hit count, not the corpus.
func candidates(anchor int, keys []string, consumed []bool) []int {
	items := []int{anchor}
	for _, key := range keys {
		n, err := strconv.Atoi(key)
		if err != nil || n == anchor || n < 0 || n >= len(consumed) || consumed[n] {
			continue
		}
		items = append(items, n)
	}
	sort.Ints(items)
	return items
}

// refine admits every candidate scoring at least threshold against the
// anchor (items[0]). Rejected candidates are left for later anchors.
func refine(items []int, sim *scorer, threshold float64) []int {
	anchor := items[0]
	members := []int{anchor}
	for _, c := range items[1:] {
		if sim.score(anchor, c) >= threshold {
			members = append(members, c)
		}
	}
	return members
}

func maxPairwise(members []int, sim *scorer) float64 {
	best := 0.0
	for _, a := range members {
		for _, c := range members {
			if a == c {
				continue
			}
			if s := sim.score(a, c); s > best {
				best = s
			}
		}
	}
	return best
}

// scorer memoizes similarity over ordered record pairs.
type scorer struct {
	records []model.DocumentRecord
	fn      func(a, b string) float64
	cache   map[[2]int]float64
}

func newScorer(records []model.DocumentRecord, fn func(a, b string) float64) *scorer {
	if fn == nil {
		fn = similarity.Ratio
	}
	return &scorer{records: records, fn: fn, cache: make(map[[2]int]float64)}
}

func (s *scorer) score(a, b int) float64 {
	k := [2]int{a, b}
	if v, ok := s.cache[k]; ok {
		return v
	}
	v := s.fn(s.records[a].Text, s.records[b].Text)
	s.cache[k] = v
	return v
}
