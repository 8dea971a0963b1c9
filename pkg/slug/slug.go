package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from name. Accents are stripped
// ("Crème Brûlée" becomes "creme-brulee") and runs of other characters
// collapse into a single hyphen.
func Generate(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	s := nonAlnum.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(s, "-")
}
