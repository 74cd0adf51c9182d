// Package merge implements the Merge/Upsert Engine of spec.md §4.4:
// qualifier-set-equality matching between a newly authored document and
// any existing one, href-deduplicated linkset merging, and the upsert
// status-code rule (201 for a brand new document, 200 otherwise).
package merge

import (
	"sort"
	"strings"

	"github.com/gs1resolver/resolver/gs1"
)

// Merge combines a newly-authored document N into an existing document E
// (which may be nil). It returns the resulting document and whether the
// document was newly created (true => no prior document existed, caller
// should report 201; false => caller should report 200).
func Merge(existing *gs1.ResolverDocument, incoming gs1.ResolverDocument) (gs1.ResolverDocument, bool) {
	if existing == nil {
		return incoming, true
	}

	result := *existing
	result.Data = append([]gs1.DataItem(nil), existing.Data...)

	for _, newItem := range incoming.Data {
		idx := findMatch(result.Data, newItem.Qualifiers)
		if idx < 0 {
			result.Data = append(result.Data, newItem)
			continue
		}
		result.Data[idx] = mergeItem(result.Data[idx], newItem)
	}

	if incoming.DefaultLinktype != "" {
		result.DefaultLinktype = incoming.DefaultLinktype
	}

	return result, false
}

// findMatch returns the index of the DataItem in items whose qualifier
// list is multiset-equal to qualifiers, or -1 if none matches.
func findMatch(items []gs1.DataItem, qualifiers []gs1.Qualifier) int {
	for i, item := range items {
		if qualifiersEqual(item.Qualifiers, qualifiers) {
			return i
		}
	}
	return -1
}

// qualifiersEqual implements the multiset-equality rule of spec.md §4.4:
// two qualifier lists match only if they have the same length and every
// entry in one can be paired bijectively with an equal entry in the
// other. Since each Qualifier is a single-key map, this reduces to
// comparing the sorted "key=value" multisets.
func qualifiersEqual(a, b []gs1.Qualifier) bool {
	if len(a) != len(b) {
		return false
	}
	return strings.Join(sortedKVSlice(a), "\x00") == strings.Join(sortedKVSlice(b), "\x00")
}

func sortedKVSlice(qs []gs1.Qualifier) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		for k, v := range q {
			out = append(out, k+"="+v)
		}
	}
	sort.Strings(out)
	return out
}

// mergeItem merges newItem into match: itemDescription falls back to the
// existing value when the new one is empty; for each linktype key in
// newItem, entries whose href is not already present under that key are
// appended (invariant I4: href values stay unique within a key).
func mergeItem(match, newItem gs1.DataItem) gs1.DataItem {
	if newItem.Linkset.ItemDescription != "" {
		match.Linkset.ItemDescription = newItem.Linkset.ItemDescription
	}

	if match.Linkset.LinkTypes == nil {
		match.Linkset.LinkTypes = make(map[string][]gs1.LinksetEntry)
	}
	order := match.Linkset.LinkTypeOrder()
	orderSet := make(map[string]bool, len(order))
	for _, k := range order {
		orderSet[k] = true
	}

	for _, key := range newItem.Linkset.LinkTypeOrder() {
		entries := newItem.Linkset.LinkTypes[key]
		existingEntries := match.Linkset.LinkTypes[key]

		seenHrefs := make(map[string]bool, len(existingEntries))
		for _, e := range existingEntries {
			seenHrefs[e.Href] = true
		}

		if !orderSet[key] {
			order = append(order, key)
			orderSet[key] = true
		}

		for _, e := range entries {
			if seenHrefs[e.Href] {
				continue
			}
			seenHrefs[e.Href] = true
			existingEntries = append(existingEntries, e)
		}
		match.Linkset.LinkTypes[key] = existingEntries
	}

	match.Linkset.SetLinkTypeOrder(order)
	return match
}
