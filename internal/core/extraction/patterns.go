package extraction

import (
	"regexp"
	"sort"
	"time"

	"github.com/dlclark/regexp2"
)

// Person names use negative lookaheads to exclude
// place prefixes and street or region suffixes, which RE2 cannot express.
var personPattern = func() *regexp2.Regexp {
	re := regexp2.MustCompile(
		`\b(?!New\b|North\b|South\b|East\b|West\b)`+
			`([A-Z][a-z]+ (?:[A-Z]\.? )?[A-Z][a-z]+)`+
			`\b(?!\s+(?:Street|St|Avenue|Ave|Road|Rd|Lane|Ln|Drive|Dr|Boulevard|Blvd|City|County|Province|State|privileged|district|region|States))`,
		regexp2.None)
	re.MatchTimeout = 30 * time.Second
	return re
}()

var (
	orgPattern   = regexp.MustCompile(`\b([A-Z][A-Za-z]+ (Inc|LLC|Corp|Foundation|Institute|Agency))\b`)
	emailPattern = regexp.MustCompile(`\b[\w\.-]+@[\w\.-]+\.\w+\b`)
	urlPattern   = regexp.MustCompile(`https?://\S+`)
	middlePart   = regexp.MustCompile(`^[A-Z]\.?$`)
)

// FindPeople returns the distinct person-like spans of text, sorted.
func FindPeople(text string) []string {
	seen := make(map[string]bool)
	m, err := personPattern.FindStringMatch(text)
	for err == nil && m != nil {
		if g := m.GroupByNumber(1); g != nil && g.Length > 0 {
			seen[g.String()] = true
		}
		m, err = personPattern.FindNextMatch(m)
	}
	return sortedKeys(seen)
}

// FindOrganizations returns distinct "<Name> <Suffix>" spans such as
// "Acme Inc" or "Gates Foundation", sorted.
func FindOrganizations(text string) []string {
	seen := make(map[string]bool)
	for _, m := range orgPattern.FindAllStringSubmatch(text, -1) {
		seen[m[1]] = true
	}
	return sortedKeys(seen)
}

func FindEmails(text string) []string {
	return unique(emailPattern.FindAllString(text, -1))
}

func FindURLs(text string) []string {
	return unique(urlPattern.FindAllString(text, -1))
}

func unique(items []string) []string {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		seen[it] = true
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
