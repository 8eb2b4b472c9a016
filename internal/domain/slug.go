package domain

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// randomToken produces the last-resort slug; replaced in tests
var randomToken = func() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// NormalizeSlug turns s into a URL-safe token: accents are folded, letters
// lowercased, every run of other characters becomes a single hyphen and
// leading/trailing hyphens are trimmed. The result may be empty.
func NormalizeSlug(s string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		s,
	)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// DeriveSlug returns the normalized name, else the normalized fallback
// (typically the external id), else a random token. Never empty.
func DeriveSlug(name, fallback string) string {
	if slug := NormalizeSlug(name); slug != "" {
		return slug
	}
	if slug := NormalizeSlug(fallback); slug != "" {
		return slug
	}
	return randomToken()
}
