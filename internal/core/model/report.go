package model

import "time"

type FileMeta struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
	Pages  *int   `json:"pages"`
	Text   string `json:"text,omitempty"`
}

type ReportSummary struct {
	TotalFiles    int `json:"total_files"`
	Scanned       int `json:"scanned"`
	ExactGroups   int `json:"exact_groups"`
	NearGroups    int `json:"near_groups"`
	PartialGroups int `json:"partial_groups"`
	Singletons    int `json:"singletons"`
}

type ReportGroup struct {
	Kind   GroupKind  `json:"kind"`
	SHA256 string     `json:"sha256,omitempty"`
	Files  []FileMeta `json:"files"`
}

type Report struct {
	RunID       string        `json:"run_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Summary     ReportSummary `json:"summary"`
	Groups      []ReportGroup `json:"groups"`
	Singletons  []FileMeta    `json:"singletons"`
}
