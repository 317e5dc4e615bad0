package fingerprint

import "strings"

// Normalize collapses whitespace runs to a single space, splits words that
// were glued together by OCR at a lowercase/uppercase boundary, and trims.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	collapsed := strings.Join(strings.Fields(s), " ")

	var b strings.Builder
	b.Grow(len(collapsed) + 8)
	var prev rune
	for _, r := range collapsed {
		if prev >= 'a' && prev <= 'z' && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return strings.TrimSpace(b.String())
}

// Shingles returns the k-word sliding windows of text. Texts with fewer than
// k words yield a single shingle of the whole text, empty texts yield none.
func Shingles(text string, k int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if k < 1 || len(words) < k {
		return []string{strings.Join(words, " ")}
	}

	out := make([]string, 0, len(words)-k+1)
	for i := 0; i+k <= len(words); i++ {
		out = append(out, strings.Join(words[i:i+k], " "))
	}
	return out
}
