package solution

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxSlugBase  = 60
	fallbackSlug = "solution"
	tokenBytes   = 3
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// BaseSlug lowercases title, folds accented letters to ASCII, collapses runs
// of other characters into single hyphens and trims hyphens from both ends.
func BaseSlug(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}

	base := nonAlphanumeric.ReplaceAllString(strings.ToLower(folded), "-")
	base = strings.Trim(base, "-")
	if len(base) > maxSlugBase {
		base = strings.TrimRight(base[:maxSlugBase], "-")
	}
	if base == "" {
		return fallbackSlug
	}
	return base
}

// NewSlug returns BaseSlug(title) suffixed with a short random hex token.
func NewSlug(title string) (string, error) {
	token := make([]byte, tokenBytes)
	if _, err := rand.Read(token); err != nil {
		return "", err
	}
	return BaseSlug(title) + "-" + hex.EncodeToString(token), nil
}
