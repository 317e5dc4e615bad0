package model

// DocFragment is the per-document doc.json written next to the extracted
// people, organizations and edges of a canonical document.
type DocFragment struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Date         *string    `json:"date"`
	Source       string     `json:"source"`
	FilePath     string     `json:"filePath"`
	Mentions     []string   `json:"mentions"`
	SHA256       string     `json:"sha256"`
	GroupKind    GroupKind  `json:"group_kind,omitempty"`
	GroupedFiles []FileMeta `json:"grouped_files"`
	Emails       []string   `json:"emails,omitempty"`
	URLs         []string   `json:"urls,omitempty"`
}

type PeopleFragment struct {
	DocumentID string         `json:"document_id"`
	People     []PersonRecord `json:"people"`
}

type OrgFragment struct {
	DocumentID    string      `json:"document_id"`
	Organizations []OrgRecord `json:"organizations"`
}

type EdgesFragment struct {
	DocumentID string       `json:"document_id"`
	Edges      []EdgeRecord `json:"edges"`
}
