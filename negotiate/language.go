package negotiate

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/gs1resolver/resolver/gs1"
)

// ParseAcceptLanguage parses a raw Accept-Language header value into a
// priority-ordered list of BCP-47 tag strings (highest q-value first),
// using golang.org/x/text/language's weighted-tag parser so callers
// don't have to hand-roll q-value sorting.
func ParseAcceptLanguage(header string) []string {
	if header == "" {
		return []string{"und"}
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return []string{"und"}
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.String())
	}
	return out
}

// matchLanguage implements spec.md §4.7.1: a more specific tag always
// outranks a generic one regardless of where it falls in the
// Accept-Language priority order, so exact hreflang matches are tried
// across the whole acceptLanguages list — in priority order — before
// any tag falls back to a prefix match. Without this two-pass split, a
// generic tag (e.g. "en") sitting ahead of a more specific one in the
// q-value order (e.g. "en-GB") would prefix-match every regional
// variant and return more than one entry where a single exact match
// exists further down the list.
func matchLanguage(entries []gs1.LinksetEntry, acceptLanguages []string) []gs1.LinksetEntry {
	for _, tag := range acceptLanguages {
		if exact := filterEntries(entries, func(e gs1.LinksetEntry) bool {
			return containsFold(e.Hreflang, tag)
		}); len(exact) > 0 {
			return exact
		}
	}
	for _, tag := range acceptLanguages {
		prefix := tag + "-"
		if pref := filterEntries(entries, func(e gs1.LinksetEntry) bool {
			return anyHasPrefixFold(e.Hreflang, prefix)
		}); len(pref) > 0 {
			return pref
		}
	}
	return nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func anyHasPrefixFold(list []string, prefix string) bool {
	for _, v := range list {
		if len(v) >= len(prefix) && strings.EqualFold(v[:len(prefix)], prefix) {
			return true
		}
	}
	return false
}

func filterEntries(entries []gs1.LinksetEntry, pred func(gs1.LinksetEntry) bool) []gs1.LinksetEntry {
	var out []gs1.LinksetEntry
	for _, e := range entries {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}
