// Package linkset formats a resolved set of gs1.LinksetEntry values into
// the Link response header and the JSON-LD linkset body required by
// spec.md §4.6.
package linkset

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gs1resolver/resolver/gs1"
)

const (
	gs1VocBase    = "https://gs1.org/voc/"
	schemaVocBase = "https://schema.org/"
	linksetNS     = "https://www.w3.org/ns/linkset#"
)

// HeaderValue builds the Link header value for the JSON-LD linkset
// representation of identifier at fqdn (spec.md §4.6): a rel pointing
// back at the resolve request with linkType=linkset, plus the mandatory
// JSON-LD context link entry, with any character outside Latin-1
// escaped as \uXXXX.
func HeaderValue(fqdn, identifier string) string {
	target := fmt.Sprintf("https://%s%s?linkType=linkset", fqdn, identifier)
	linksetLink := fmt.Sprintf(`<%s>; rel="application/linkset"; type="application/linkset+json"; title="Linkset for %s"`, target, identifier)
	contextLink := fmt.Sprintf(`<%s>; rel="http://www.w3.org/ns/json-ld#context"; type="application/ld+json"`, linksetNS)
	value := linksetLink + ", " + contextLink
	return EscapeNonLatin1(value)
}

// EscapeNonLatin1 rewrites every rune above U+00FF as a \uXXXX escape,
// leaving Latin-1 characters (and ASCII) untouched.
func EscapeNonLatin1(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r > 0xFF {
			fmt.Fprintf(&b, `\u%04X`, r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// entry is the wire shape of one linkset member: empty fields are
// omitted and an "und" hreflang is never emitted (spec.md §4.6).
type entry struct {
	Href     string   `json:"href"`
	Title    string   `json:"title,omitempty"`
	Type     string   `json:"type,omitempty"`
	Hreflang []string `json:"hreflang,omitempty"`
	Context  []string `json:"context,omitempty"`
}

// group is one element of the "linkset" array: a single link-type IRI
// mapped to its ordered entries. It marshals as a bare one-key object.
type group struct {
	key     string
	entries []entry
}

func (g group) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]entry{g.key: g.entries})
}

// Document is the JSON-LD linkset body of spec.md §4.6.
type Document struct {
	Context        map[string]interface{} `json:"@context"`
	ID             string                  `json:"@id"`
	Type           string                  `json:"@type"`
	ElementStrings []string                `json:"gs1:elementStrings"`
	GTIN           string                  `json:"gtin,omitempty"`
	Linkset        []group                 `json:"linkset"`
}

// Build assembles the JSON-LD linkset document for identifier at fqdn,
// given the normalized key order and the entries stored under each key.
// gtinValue is the AI-01 value to surface as "gtin" (empty if the
// identifier's AI is not 01).
func Build(fqdn, identifier, gtinValue string, order []string, linkTypes map[string][]gs1.LinksetEntry) Document {
	context := map[string]interface{}{
		"gs1":     gs1VocBase,
		"schema":  schemaVocBase,
		"linkset": linksetNS,
	}
	if gtinValue != "" {
		context["gtin"] = map[string]string{"@id": "gs1:gtin", "@type": "@id"}
	}

	groups := make([]group, 0, len(order))
	for _, key := range order {
		entries := normalizeEntries(fqdn, linkTypes[key])
		if len(entries) == 0 {
			continue
		}
		groups = append(groups, group{key: key, entries: entries})
	}

	return Document{
		Context:        context,
		ID:             fmt.Sprintf("https://%s%s", fqdn, identifier),
		Type:           "gs1:DigitalLink",
		ElementStrings: []string{identifier},
		GTIN:           gtinValue,
		Linkset:        groups,
	}
}

// normalizeEntries converts stored entries to wire form: href is made
// absolute against fqdn when it isn't already, and "und" hreflang tags
// are dropped (spec.md §4.6).
func normalizeEntries(fqdn string, entries []gs1.LinksetEntry) []entry {
	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		hreflang := filterUnd(e.Hreflang)
		out = append(out, entry{
			Href:     normalizeHref(fqdn, e.Href),
			Title:    e.Title,
			Type:     e.Type,
			Hreflang: hreflang,
			Context:  e.Context,
		})
	}
	return out
}

func normalizeHref(fqdn, href string) string {
	if strings.Contains(href, "://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return "https://" + fqdn + href
	}
	return "https://" + fqdn + "/" + href
}

func filterUnd(hreflang []string) []string {
	if len(hreflang) == 0 {
		return nil
	}
	out := make([]string, 0, len(hreflang))
	for _, h := range hreflang {
		if strings.EqualFold(h, "und") {
			continue
		}
		out = append(out, h)
	}
	return out
}
