package extraction

import "strings"

var DefaultStopTerms = []string{
	"United States",
	"Grand Jury",
	"Supreme Court",
	"District Court",
	"Palm Beach",
	"Los Angeles",
	"San Francisco",
	"Las Vegas",
	"Santa Fe",
	"Dear Sir",
	"Best Regards",
	"Kind Regards",
	"Attorney General",
	"Federal Bureau",
	"Prime Minister",
}

var DefaultBadLastNames = []string{
	"court",
	"beach",
	"island",
	"airport",
	"hotel",
	"department",
	"bureau",
	"office",
	"police",
	"university",
	"college",
	"hospital",
	"attorney",
	"jury",
	"page",
	"street",
	"avenue",
	"road",
	"inc",
	"llc",
	"corp",
	"foundation",
	"institute",
	"agency",
}

// StripMiddleInitial turns "John A. Smith" and "Mary B Smith" into
// "John Smith" / "Mary Smith". Any other shape is returned unchanged.
func StripMiddleInitial(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 3 && middlePart.MatchString(parts[1]) {
		return parts[0] + " " + parts[2]
	}
	return name
}

type nameFilter struct {
	stop    map[string]bool
	badLast map[string]bool
}

func newNameFilter(stopTerms, badLastNames []string) nameFilter {
	f := nameFilter{
		stop:    make(map[string]bool, len(stopTerms)),
		badLast: make(map[string]bool, len(badLastNames)),
	}
	for _, s := range stopTerms {
		f.stop[strings.ToLower(strings.TrimSpace(s))] = true
	}
	for _, s := range badLastNames {
		f.badLast[strings.ToLower(strings.TrimSpace(s))] = true
	}
	return f
}

// clean strips middle initials and drops stop terms and names ending in a
// known non-surname.
func (f nameFilter) clean(names []string) []string {
	var out []string
	for _, n := range names {
		n = StripMiddleInitial(n)
		if f.stop[strings.ToLower(n)] {
			continue
		}
		parts := strings.Fields(n)
		if len(parts) == 0 || f.badLast[strings.ToLower(parts[len(parts)-1])] {
			continue
		}
		out = append(out, n)
	}
	return out
}
