package merge

import (
	"testing"

	"github.com/gs1resolver/resolver/gs1"
)

func pipLinkset(href, title string) gs1.Linkset {
	ls := gs1.Linkset{
		LinkTypes: map[string][]gs1.LinksetEntry{
			"https://gs1.org/voc/pip": {{Href: href, Title: title}},
		},
	}
	ls.SetLinkTypeOrder([]string{"https://gs1.org/voc/pip"})
	return ls
}

func TestMerge_NoExisting_CreatesAndReturns201Signal(t *testing.T) {
	incoming := gs1.ResolverDocument{ID: "01_123", Data: []gs1.DataItem{{Linkset: pipLinkset("https://x/1", "t")}}}
	result, created := Merge(nil, incoming)
	if !created {
		t.Fatal("expected created=true")
	}
	if result.ID != "01_123" {
		t.Errorf("unexpected id: %q", result.ID)
	}
}

func TestMerge_MatchingQualifiers_AppendsUniqueHrefs(t *testing.T) {
	existing := gs1.ResolverDocument{
		ID: "01_123",
		Data: []gs1.DataItem{{
			Qualifiers: []gs1.Qualifier{{"10": "LOT01"}},
			Linkset:    pipLinkset("https://x/1", "existing"),
		}},
	}
	incoming := gs1.ResolverDocument{
		ID: "01_123",
		Data: []gs1.DataItem{{
			Qualifiers: []gs1.Qualifier{{"10": "LOT01"}},
			Linkset:    pipLinkset("https://x/2", "new"),
		}},
	}

	result, created := Merge(&existing, incoming)
	if created {
		t.Fatal("expected created=false")
	}
	if len(result.Data) != 1 {
		t.Fatalf("expected 1 data item (matched), got %d", len(result.Data))
	}
	entries := result.Data[0].Linkset.LinkTypes["https://gs1.org/voc/pip"]
	if len(entries) != 2 {
		t.Fatalf("expected 2 merged entries, got %d: %+v", len(entries), entries)
	}
}

func TestMerge_IdempotentUpsert_NoDuplicateHrefs(t *testing.T) {
	existing := gs1.ResolverDocument{
		ID:   "01_123",
		Data: []gs1.DataItem{{Linkset: pipLinkset("https://x/1", "t")}},
	}
	incoming := gs1.ResolverDocument{
		ID:   "01_123",
		Data: []gs1.DataItem{{Linkset: pipLinkset("https://x/1", "t")}},
	}

	result, _ := Merge(&existing, incoming)
	entries := result.Data[0].Linkset.LinkTypes["https://gs1.org/voc/pip"]
	if len(entries) != 1 {
		t.Fatalf("expected no duplicate href, got %d entries: %+v", len(entries), entries)
	}
}

func TestMerge_UnmatchedQualifiers_Appended(t *testing.T) {
	existing := gs1.ResolverDocument{
		ID: "01_123",
		Data: []gs1.DataItem{{
			Qualifiers: []gs1.Qualifier{{"10": "LOT01"}},
			Linkset:    pipLinkset("https://x/1", "t"),
		}},
	}
	incoming := gs1.ResolverDocument{
		ID: "01_123",
		Data: []gs1.DataItem{{
			Qualifiers: []gs1.Qualifier{{"10": "LOT02"}},
			Linkset:    pipLinkset("https://x/2", "t2"),
		}},
	}

	result, _ := Merge(&existing, incoming)
	if len(result.Data) != 2 {
		t.Fatalf("expected 2 data items (no match), got %d", len(result.Data))
	}
}

func TestMerge_QualifierMultisetOrderInsensitive(t *testing.T) {
	existing := gs1.ResolverDocument{
		ID: "01_123",
		Data: []gs1.DataItem{{
			Qualifiers: []gs1.Qualifier{{"10": "LOT01"}, {"21": "SER1"}},
			Linkset:    pipLinkset("https://x/1", "t"),
		}},
	}
	incoming := gs1.ResolverDocument{
		ID: "01_123",
		Data: []gs1.DataItem{{
			Qualifiers: []gs1.Qualifier{{"21": "SER1"}, {"10": "LOT01"}},
			Linkset:    pipLinkset("https://x/2", "t2"),
		}},
	}

	result, _ := Merge(&existing, incoming)
	if len(result.Data) != 1 {
		t.Fatalf("expected qualifier-order-insensitive match, got %d items", len(result.Data))
	}
}

func TestMerge_DefaultLinktypeFallback(t *testing.T) {
	existing := gs1.ResolverDocument{ID: "01_123", DefaultLinktype: "gs1:pip", Data: []gs1.DataItem{{Linkset: pipLinkset("https://x/1", "t")}}}
	incoming := gs1.ResolverDocument{ID: "01_123", Data: []gs1.DataItem{{Linkset: pipLinkset("https://x/2", "t2")}}}

	result, _ := Merge(&existing, incoming)
	if result.DefaultLinktype != "gs1:pip" {
		t.Errorf("expected existing default linktype preserved, got %q", result.DefaultLinktype)
	}
}

func TestMerge_ItemDescriptionFallback(t *testing.T) {
	existing := gs1.ResolverDocument{
		ID: "01_123",
		Data: []gs1.DataItem{{
			Linkset: func() gs1.Linkset {
				ls := pipLinkset("https://x/1", "t")
				ls.ItemDescription = "Existing description"
				return ls
			}(),
		}},
	}
	incoming := gs1.ResolverDocument{
		ID:   "01_123",
		Data: []gs1.DataItem{{Linkset: pipLinkset("https://x/1", "t")}},
	}

	result, _ := Merge(&existing, incoming)
	if result.Data[0].Linkset.ItemDescription != "Existing description" {
		t.Errorf("expected fallback to existing description, got %q", result.Data[0].Linkset.ItemDescription)
	}
}
