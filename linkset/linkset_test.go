package linkset

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/gs1resolver/resolver/gs1"
)

func TestHeaderValue_Shape(t *testing.T) {
	got := HeaderValue("example.com", "/01/09506000134376")
	if !strings.Contains(got, `rel="application/linkset"`) {
		t.Fatalf("missing rel: %s", got)
	}
	if !strings.Contains(got, "https://example.com/01/09506000134376?linkType=linkset") {
		t.Fatalf("missing target: %s", got)
	}
	if !strings.Contains(got, `rel="http://www.w3.org/ns/json-ld#context"`) {
		t.Fatalf("missing JSON-LD context link entry: %s", got)
	}
}

func TestEscapeNonLatin1(t *testing.T) {
	got := EscapeNonLatin1("café 中文")
	if strings.Contains(got, "中") {
		t.Fatalf("expected non-Latin-1 rune escaped, got %q", got)
	}
	if !strings.Contains(got, "café") {
		t.Fatalf("expected Latin-1 rune preserved, got %q", got)
	}
	if !strings.Contains(got, `\`+"u4E2D") {
		t.Fatalf("expected \\uXXXX escape, got %q", got)
	}
}

func TestBuild_GTINContextAndUndFiltering(t *testing.T) {
	linkTypes := map[string][]gs1.LinksetEntry{
		"https://gs1.org/voc/pip": {
			{Href: "/a", Title: "A", Hreflang: []string{"en", "und"}},
			{Href: "https://other.example/b", Title: "B"},
		},
	}
	doc := Build("example.com", "/01/09506000134376", "09506000134376", []string{"https://gs1.org/voc/pip"}, linkTypes)

	if doc.GTIN != "09506000134376" {
		t.Fatalf("expected gtin set, got %q", doc.GTIN)
	}
	if _, ok := doc.Context["gtin"]; !ok {
		t.Fatalf("expected @context to carry gtin entry: %+v", doc.Context)
	}
	if len(doc.Linkset) != 1 {
		t.Fatalf("expected one group, got %d", len(doc.Linkset))
	}

	raw, err := json.Marshal(doc.Linkset[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string][]entry
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	entries := decoded["https://gs1.org/voc/pip"]
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Href != "https://example.com/a" {
		t.Fatalf("expected relative href normalized, got %q", entries[0].Href)
	}
	if len(entries[0].Hreflang) != 1 || entries[0].Hreflang[0] != "en" {
		t.Fatalf("expected und hreflang filtered out, got %v", entries[0].Hreflang)
	}
	if entries[1].Href != "https://other.example/b" {
		t.Fatalf("expected absolute href preserved, got %q", entries[1].Href)
	}
}

func TestBuild_NoGTINWhenNotAI01(t *testing.T) {
	doc := Build("example.com", "/10/LOT01", "", nil, map[string][]gs1.LinksetEntry{})
	if doc.GTIN != "" {
		t.Fatalf("expected no gtin, got %q", doc.GTIN)
	}
	if _, ok := doc.Context["gtin"]; ok {
		t.Fatalf("expected no gtin context entry")
	}
}
