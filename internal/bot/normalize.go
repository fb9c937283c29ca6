// ABOUTME: Name normalization for deriving email addresses
// ABOUTME: Deterministic and idempotent: fold diacritics, strip non-word runes, lowercase

package bot

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var nonWordRe = regexp.MustCompile(`\W`)

// normalizeName turns a free-text name part into an address-safe token.
// Accented letters are folded to their base form (ö -> o), everything
// outside [0-9A-Za-z_] is stripped, and the rest is lowercased. Running
// it on already-normalized input yields the same string.
func normalizeName(s string) string {
	decomposed := norm.NFD.String(s)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue // drop combining marks left over from decomposition
		}
		b.WriteRune(r)
	}

	return strings.ToLower(nonWordRe.ReplaceAllString(b.String(), ""))
}

// candidateEmail derives the address proposal from two normalized name
// parts and the configured email domain.
func candidateEmail(first, last, emailDomain string) string {
	return first + "." + last + "@" + emailDomain
}
