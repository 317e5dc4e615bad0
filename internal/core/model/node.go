package model

// DocumentRecord is the fingerprint of one scanned PDF. It is built once by the
// fingerprint engine and never modified afterwards.
type DocumentRecord struct {
	Path      string   `json:"path"`
	Name      string   `json:"name"`
	Size      int64    `json:"size"`
	Available bool     `json:"-"`
	ExactHash string   `json:"sha256"`
	Pages     *int     `json:"pages"`
	Text      string   `json:"text"`
	Signature []uint64 `json:"-"`
}

// PageCount returns the page count, treating unknown as zero.
func (r DocumentRecord) PageCount() int {
	if r.Pages == nil {
		return 0
	}
	return *r.Pages
}

// Identity is a known person with one or more aliases.
type Identity struct {
	ID    string   `json:"id"`
	Names []string `json:"names"`
}

type PersonRecord struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Aliases    []string `json:"aliases"`
	Roles      []string `json:"roles"`
	Tags       []string `json:"tags"`
	Confidence float64  `json:"confidence"`
}

type OrgRecord struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
	Tags    []string `json:"tags"`
}
