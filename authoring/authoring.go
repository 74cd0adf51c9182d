// Package authoring converts submitted gs1.Entry records into storage-form
// gs1.ResolverDocument values, implementing spec.md §4.3: link-key
// normalization, grouping by linktype, default-link key ordering, and
// cross-entry grouping by document id.
package authoring

import (
	"fmt"

	"github.com/gs1resolver/resolver/gs1"
	"github.com/gs1resolver/resolver/gtin"
)

// VocBase is the GS1 vocabulary namespace link keys are expanded into.
const VocBase = "https://gs1.org/voc/"

const (
	defaultLinkKey      = VocBase + "defaultLink"
	defaultLinkMultiKey = VocBase + "defaultLinkMulti"
)

// Error is a validation failure raised while authoring one entry. It
// carries the offending entry's anchor (if known) for per-entry batch
// reporting at the HTTP boundary.
type Error struct {
	Anchor string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("authoring %q: %s", e.Anchor, e.Reason)
}

// NormalizeLinkKey expands a submitted linktype into its fully-qualified
// IRI form (spec.md §4.3 step 3 / §4.5.2): "gs1:X" -> VocBase+"X"; an
// "http"-prefixed value is kept verbatim; anything else is treated as a
// bare term and prefixed with VocBase.
func NormalizeLinkKey(linktype string) string {
	switch {
	case len(linktype) >= 4 && linktype[:4] == "gs1:":
		return VocBase + linktype[4:]
	case len(linktype) >= 4 && linktype[:4] == "http":
		return linktype
	default:
		return VocBase + linktype
	}
}

// Author converts a single Entry into a ResolverDocument holding exactly
// one DataItem, per spec.md §4.3 steps 1-7.
func Author(entry gs1.Entry) (gs1.ResolverDocument, error) {
	id, err := gtin.PathToID(entry.Anchor)
	if err != nil {
		return gs1.ResolverDocument{}, &Error{Anchor: entry.Anchor, Reason: "anchor must be a non-empty path"}
	}
	if len(entry.Links) == 0 {
		return gs1.ResolverDocument{}, &Error{Anchor: entry.Anchor, Reason: "links must not be empty"}
	}

	linkTypes := make(map[string][]gs1.LinksetEntry)
	var order []string
	seenDefaultLink := false

	for _, link := range entry.Links {
		key := NormalizeLinkKey(link.Linktype)

		if key == defaultLinkKey && seenDefaultLink {
			// truncated to a single entry — the first encountered (step 5)
			continue
		}
		if key == defaultLinkKey {
			seenDefaultLink = true
		}

		if _, ok := linkTypes[key]; !ok {
			order = append(order, key)
		}
		linkTypes[key] = append(linkTypes[key], gs1.LinksetEntry{
			Href:     link.Href,
			Title:    link.Title,
			Type:     link.Type,
			Hreflang: link.Hreflang,
			Context:  link.Context,
		})
	}

	orderedKeys := reorderDefaultLinksFirst(order)

	item := gs1.DataItem{
		Qualifiers: entry.Qualifiers,
		Linkset: gs1.Linkset{
			ItemDescription: entry.ItemDescription,
			LinkTypes:       linkTypes,
		},
	}
	if item.Qualifiers == nil {
		item.Qualifiers = []gs1.Qualifier{}
	}
	item.Linkset.SetLinkTypeOrder(orderedKeys)

	return gs1.ResolverDocument{
		ID:              id,
		DefaultLinktype: entry.DefaultLinktype,
		Data:            []gs1.DataItem{item},
	}, nil
}

// reorderDefaultLinksFirst places defaultLink before defaultLinkMulti
// before all remaining keys in their first-seen order (spec.md §4.3 step
// 5 / invariant I5).
func reorderDefaultLinksFirst(firstSeen []string) []string {
	var ordered []string
	if contains(firstSeen, defaultLinkKey) {
		ordered = append(ordered, defaultLinkKey)
	}
	if contains(firstSeen, defaultLinkMultiKey) {
		ordered = append(ordered, defaultLinkMultiKey)
	}
	for _, k := range firstSeen {
		if k == defaultLinkKey || k == defaultLinkMultiKey {
			continue
		}
		ordered = append(ordered, k)
	}
	return ordered
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// AuthorBatch authors every entry, then groups the results by document id:
// concatenating their Data arrays in submission order and preserving the
// first non-empty DefaultLinktype seen (spec.md §4.3, "Across entries").
// Validation failures for individual entries are returned alongside
// successfully authored documents so batch callers (POST /new) can report
// partial failure per spec.md §7.
func AuthorBatch(entries []gs1.Entry) ([]gs1.ResolverDocument, []error) {
	byID := make(map[string]*gs1.ResolverDocument)
	var order []string
	var errs []error

	for _, e := range entries {
		doc, err := Author(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		existing, ok := byID[doc.ID]
		if !ok {
			d := doc
			byID[d.ID] = &d
			order = append(order, d.ID)
			continue
		}
		existing.Data = append(existing.Data, doc.Data...)
		if existing.DefaultLinktype == "" {
			existing.DefaultLinktype = doc.DefaultLinktype
		}
	}

	docs := make([]gs1.ResolverDocument, 0, len(order))
	for _, id := range order {
		docs = append(docs, *byID[id])
	}
	return docs, errs
}
