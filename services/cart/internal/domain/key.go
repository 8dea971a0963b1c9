package domain

import (
	"slices"
	"strings"
)

var keyEscaper = strings.NewReplacer(`\`, `\\`, `:`, `\:`, `|`, `\|`)

// LineKey derives the identity of a cart line:
//
//	productID + "_" + join(sorted "name:value" pairs, "|")
//
// Pairs are sorted by name and pairs with an empty name or value are
// skipped, so the key does not depend on how the map was built. Separator
// characters inside names and values are backslash-escaped, which keeps
// distinct selections from producing the same key.
func LineKey(productID string, selected map[string]string) string {
	names := make([]string, 0, len(selected))
	for name, value := range selected {
		if name != "" && value != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	var b strings.Builder
	b.WriteString(productID)
	b.WriteByte('_')
	for i, name := range names {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(keyEscaper.Replace(name))
		b.WriteByte(':')
		b.WriteString(keyEscaper.Replace(selected[name]))
	}
	return b.String()
}
