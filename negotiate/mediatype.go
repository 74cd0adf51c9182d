package negotiate

import (
	"strings"

	"github.com/gs1resolver/resolver/gs1"
)

// isDefaultMediaRange reports whether a cleaned Accept value is one of
// the "accept anything" ranges spec.md §4.7's default shortcut treats as
// no-op: "*/*", "text/*", "application/*".
func isDefaultMediaRange(v string) bool {
	switch v {
	case "*/*", "text/*", "application/*":
		return true
	default:
		return false
	}
}

// matchMediaType implements spec.md §4.7.3: an entry's Type matches a
// requested range when it equals any requested type, the request is
// "*/*", or the request is "family/*" and the entry's type starts with
// "family/". No requested media types is "no constraint" and passes
// every entry through unfiltered, mirroring matchContext.
func matchMediaType(entries []gs1.LinksetEntry, mediaTypes []string) []gs1.LinksetEntry {
	if len(mediaTypes) == 0 {
		return append([]gs1.LinksetEntry(nil), entries...)
	}
	return filterEntries(entries, func(e gs1.LinksetEntry) bool {
		if e.Type == "" {
			return false
		}
		for _, want := range mediaTypes {
			if mediaTypeMatches(e.Type, want) {
				return true
			}
		}
		return false
	})
}

func mediaTypeMatches(entryType, requested string) bool {
	if requested == "*/*" {
		return true
	}
	if strings.EqualFold(entryType, requested) {
		return true
	}
	if strings.HasSuffix(requested, "/*") {
		family := strings.TrimSuffix(requested, "*")
		return strings.HasPrefix(strings.ToLower(entryType), strings.ToLower(family))
	}
	return false
}
