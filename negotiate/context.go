package negotiate

import (
	"strings"

	"github.com/gs1resolver/resolver/gs1"
)

// matchContext implements spec.md §4.7.2: an entry matches iff any value
// in its Context list equals (case-insensitively) the requested context.
// An empty requested context is "no constraint" (mirrors the default
// shortcut's treatment of an empty context) and passes every entry
// through unfiltered.
func matchContext(entries []gs1.LinksetEntry, context string) []gs1.LinksetEntry {
	if context == "" {
		return append([]gs1.LinksetEntry(nil), entries...)
	}
	return filterEntries(entries, func(e gs1.LinksetEntry) bool {
		return containsFold(e.Context, context)
	})
}

// hasUndHreflang implements the §4.7 rule 7 fallback: entries whose
// hreflang list contains "und".
func hasUndHreflang(entries []gs1.LinksetEntry) []gs1.LinksetEntry {
	return filterEntries(entries, func(e gs1.LinksetEntry) bool {
		return containsFold(e.Hreflang, "und")
	})
}

// hasUndType implements the §4.7 rule 9 fallback: entries whose type
// contains "und" (as a substring, matching the source's loose check).
func hasUndType(entries []gs1.LinksetEntry) []gs1.LinksetEntry {
	return filterEntries(entries, func(e gs1.LinksetEntry) bool {
		return strings.Contains(strings.ToLower(e.Type), "und")
	})
}
