// Package emit turns clustering and extraction results into files: the
// duplicates report, per-document fragments and organized folders.
package emit

import (
	"time"

	"github.com/agenthands/docket/internal/core/common"
	"github.com/agenthands/docket/internal/core/model"
)

func FileMetaOf(r model.DocumentRecord, includeText bool) model.FileMeta {
	meta := model.FileMeta{
		Path:   r.Path,
		Name:   r.Name,
		Size:   r.Size,
		SHA256: r.ExactHash,
		Pages:  r.Pages,
	}
	if includeText {
		meta.Text = r.Text
	}
	return meta
}

// BuildReport summarizes res. totalFiles is the number of files found before
// the page filter.
func BuildReport(res model.ClusterResult, totalFiles int, includeText bool, runID string, now time.Time) model.Report {
	rep := model.Report{
		RunID:       runID,
		GeneratedAt: now.UTC(),
		Summary: model.ReportSummary{
			TotalFiles: totalFiles,
			Scanned:    len(res.Records),
			Singletons: len(res.Singletons),
		},
		Groups:     make([]model.ReportGroup, 0, len(res.Groups)),
		Singletons: make([]model.FileMeta, 0, len(res.Singletons)),
	}

	for _, g := range res.Groups {
		switch g.Kind {
		case model.GroupExact:
			rep.Summary.ExactGroups++
		case model.GroupNear:
			rep.Summary.NearGroups++
		case model.GroupPartial:
			rep.Summary.PartialGroups++
		}

		rg := model.ReportGroup{Kind: g.Kind, SHA256: g.ExactHash}
		for _, m := range g.Members {
			rg.Files = append(rg.Files, FileMetaOf(res.Records[m], includeText))
		}
		rep.Groups = append(rep.Groups, rg)
	}

	for _, s := range res.Singletons {
		rep.Singletons = append(rep.Singletons, FileMetaOf(res.Records[s], includeText))
	}
	return rep
}

func WriteReport(path string, rep model.Report) error {
	return common.WriteJSON(path, rep)
}
