// Package migrate implements the V2->V3 Migrator of spec.md §4.10: a
// one-shot, non-persisting projection of legacy v2 resolver records into
// the gs1.Entry shape the Authoring Engine expects.
package migrate

import (
	"strings"

	"github.com/gs1resolver/resolver/gs1"
	"github.com/gs1resolver/resolver/gtin"
)

// V2Response is one legacy v2 response record attached to a key/qualifier.
type V2Response struct {
	Linktype        string `json:"linkType"`
	Href            string `json:"targetUrl"`
	Title           string `json:"title"`
	Type            string `json:"mimeType,omitempty"`
	IanaLanguage    string `json:"ianaLanguage,omitempty"`
	Context         string `json:"context,omitempty"`
	DefaultLinkType bool   `json:"defaultLinkType,omitempty"`
	Active          bool   `json:"active"`
}

// V2Entry is one legacy v2 record: a key, an optional qualifier path,
// and its responses.
type V2Entry struct {
	KeyType       string       `json:"keyType"`
	Key           string       `json:"key"`
	QualifierPath string       `json:"qualifierPath,omitempty"`
	Responses     []V2Response `json:"responses"`
}

// BuildAnchor constructs the v3 anchor path for a v2 key/qualifier pair
// (spec.md §4.10): "/{keyType}/{key}{qualifierPath?}".
func BuildAnchor(keyType, key, qualifierPath string) string {
	return "/" + keyType + "/" + key + qualifierPath
}

// Entry projects one V2Entry into a gs1.Entry, applying only its active
// responses. The first response flagged DefaultLinkType sets the
// resulting entry's DefaultLinktype.
func Entry(v2 V2Entry) gs1.Entry {
	anchor := BuildAnchor(v2.KeyType, v2.Key, v2.QualifierPath)

	var qualifiers []gs1.Qualifier
	for _, pair := range gtin.ParseQualifierPath(v2.QualifierPath) {
		qualifiers = append(qualifiers, gs1.Qualifier{pair.AI: pair.Value})
	}

	var links []gs1.LinkV3
	var defaultLinktype string
	for _, r := range v2.Responses {
		if !r.Active {
			continue
		}
		link := gs1.LinkV3{
			Linktype: normalizeLegacyLinktype(r.Linktype),
			Href:     r.Href,
			Title:    r.Title,
			Type:     r.Type,
		}
		if r.IanaLanguage != "" {
			link.Hreflang = []string{r.IanaLanguage}
		}
		if r.Context != "" {
			link.Context = []string{r.Context}
		}
		links = append(links, link)

		if r.DefaultLinkType && defaultLinktype == "" {
			defaultLinktype = link.Linktype
		}
	}

	return gs1.Entry{
		Anchor:          anchor,
		DefaultLinktype: defaultLinktype,
		Qualifiers:      qualifiers,
		Links:           links,
	}
}

// Batch projects every V2Entry into a gs1.Entry, in order. The v2->v3
// migration endpoint does not persist its output — callers that want
// the converted entries stored still go through authoring.AuthorBatch
// and merge.ApplyToStore themselves.
func Batch(entries []V2Entry) []gs1.Entry {
	out := make([]gs1.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, Entry(e))
	}
	return out
}

// normalizeLegacyLinktype adds the "gs1:" prefix to a bare legacy
// linktype term when it doesn't already carry a "gs1:" or "http" prefix
// (spec.md §4.10).
func normalizeLegacyLinktype(linktype string) string {
	if strings.HasPrefix(linktype, "gs1:") || strings.HasPrefix(linktype, "http") {
		return linktype
	}
	return "gs1:" + linktype
}
