package negotiate

import "github.com/gs1resolver/resolver/gs1"

// Request bundles the criteria content negotiation runs over (spec.md
// §4.7 inputs).
type Request struct {
	AcceptLanguages     []string
	Context             string
	MediaTypes          []string
	HasExplicitLinktype bool
}

// Negotiate runs the hierarchical cascade of spec.md §4.7 over entries
// and returns the first non-empty result, preserving the input order of
// whichever entries pass (invariant I8: monotone in input order).
func Negotiate(entries []gs1.LinksetEntry, req Request) []gs1.LinksetEntry {
	if len(entries) == 0 {
		return nil
	}

	languages := req.AcceptLanguages
	if len(languages) == 0 {
		languages = []string{"und"}
	}

	if !req.HasExplicitLinktype && isDefault(languages, req.Context, req.MediaTypes) {
		return entries[:1]
	}

	type filter func([]gs1.LinksetEntry) []gs1.LinksetEntry

	lang := func(es []gs1.LinksetEntry) []gs1.LinksetEntry { return matchLanguage(es, languages) }
	ctx := func(es []gs1.LinksetEntry) []gs1.LinksetEntry { return matchContext(es, req.Context) }
	media := func(es []gs1.LinksetEntry) []gs1.LinksetEntry { return matchMediaType(es, req.MediaTypes) }

	rules := []filter{
		// 1. language AND context AND media type
		func(es []gs1.LinksetEntry) []gs1.LinksetEntry { return media(ctx(lang(es))) },
		// 2. language AND context
		func(es []gs1.LinksetEntry) []gs1.LinksetEntry { return ctx(lang(es)) },
		// 3. language AND media type
		func(es []gs1.LinksetEntry) []gs1.LinksetEntry { return media(lang(es)) },
		// 4. context AND media type
		func(es []gs1.LinksetEntry) []gs1.LinksetEntry { return media(ctx(es)) },
		// 5. language only
		lang,
		// 6. context only
		ctx,
		// 7. hreflang contains "und"
		hasUndHreflang,
		// 8. media type only
		media,
		// 9. type contains "und"
		hasUndType,
	}

	for _, rule := range rules {
		if result := rule(entries); len(result) > 0 {
			return result
		}
	}

	return entries[:1]
}

// isDefault reports whether all three negotiation criteria are at their
// no-op default: languages is exactly [und], context is empty, and
// mediaTypes is empty or consists only of wildcard ranges.
func isDefault(languages []string, context string, mediaTypes []string) bool {
	if len(languages) != 1 || languages[0] != "und" {
		return false
	}
	if context != "" {
		return false
	}
	for _, m := range mediaTypes {
		if !isDefaultMediaRange(m) {
			return false
		}
	}
	return true
}
