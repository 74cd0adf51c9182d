// Package resolver implements the Resolver Pipeline of spec.md §4.5: the
// orchestration that turns an anchor path and a set of negotiation
// criteria into a redirect, a multi-choice linkset, or a failure,
// wiring together the gtin, toolkit, docstore, authoring, and negotiate
// packages that each model one step of the pipeline.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/gs1resolver/resolver/authoring"
	"github.com/gs1resolver/resolver/docstore"
	"github.com/gs1resolver/resolver/gs1"
	"github.com/gs1resolver/resolver/gtin"
	"github.com/gs1resolver/resolver/linkset"
	"github.com/gs1resolver/resolver/negotiate"
	"github.com/gs1resolver/resolver/resolvererr"
	"github.com/gs1resolver/resolver/toolkit"
)

// Request carries the negotiation criteria of spec.md §4.5's ctx
// parameter, plus the raw query string needed for §4.5.3.
type Request struct {
	Linktype         string
	Context          string
	AcceptLanguages  []string
	MediaTypes       []string
	LinksetRequested bool
	RawQuery         url.Values
}

// Result is the pipeline's response shape, translated to HTTP at the
// boundary (cmd/resolver never re-derives status codes).
type Result struct {
	Status      int
	Location    string
	LinkHeader  string
	ContentType string
	Body        interface{}
}

// Pipeline holds the collaborators the resolve algorithm orchestrates.
// LinktypeFallback gates the unnormalized-retry-with-substring-match
// behavior of step 10 (spec.md §9 open question: kept for compatibility,
// off by default).
type Pipeline struct {
	Store            *docstore.Store
	Toolkit          toolkit.Adapter
	FQDN             string
	LinktypeFallback bool
}

// New builds a Pipeline over store and toolkit adapter tk, serving
// responses under fqdn.
func New(store *docstore.Store, tk toolkit.Adapter, fqdn string, linktypeFallback bool) *Pipeline {
	return &Pipeline{Store: store, Toolkit: tk, FQDN: fqdn, LinktypeFallback: linktypeFallback}
}

// Resolve runs the full pipeline of spec.md §4.5 for identifier (an
// "/ai/value" anchor, already GTIN-13-normalizable) and an optional
// qualifierPath ("/ai/value/ai/value...").
func (p *Pipeline) Resolve(ctx context.Context, identifier, qualifierPath string, req Request) (Result, error) {
	identifier = gtin.NormalizeGTIN13(identifier)

	ok, err := p.Toolkit.TestSyntax(ctx, identifier+qualifierPath)
	if err != nil {
		return Result{}, resolvererr.Internal("toolkit syntax check failed", err)
	}
	if !ok {
		return Result{}, resolvererr.Validation("invalid syntax", nil)
	}

	doc, effectiveIdentifier, bindings, err := p.lookup(ctx, identifier)
	if err != nil {
		return Result{}, err
	}

	items, itemBindings, err := filterQualifiers(doc.Data, qualifierPath)
	if err != nil {
		return Result{}, err
	}
	for k, v := range itemBindings {
		bindings[k] = v
	}

	if len(bindings) > 0 {
		items = substituteTemplates(items, bindings)
	}

	order, combined := combineLinkTypes(items)
	linkHeader := linkset.HeaderValue(p.FQDN, effectiveIdentifier+qualifierPath)

	if req.LinksetRequested || isLinksetWildcard(req.Linktype) {
		gtinValue := ""
		if gtin.AICode(effectiveIdentifier) == "01" {
			gtinValue = gtin.ParseQualifierPath(effectiveIdentifier)[0].Value
		}
		doc := linkset.Build(p.FQDN, effectiveIdentifier+qualifierPath, gtinValue, order, combined)
		return Result{Status: 200, LinkHeader: linkHeader, ContentType: "application/linkset+json", Body: doc}, nil
	}

	entries, err := p.selectLinktype(req.Linktype, doc.DefaultLinktype, order, combined)
	if err != nil {
		return Result{}, err
	}

	negotiated := negotiate.Negotiate(entries, negotiate.Request{
		AcceptLanguages:     req.AcceptLanguages,
		Context:             req.Context,
		MediaTypes:          req.MediaTypes,
		HasExplicitLinktype: req.Linktype != "",
	})
	if len(negotiated) == 0 {
		return Result{}, resolvererr.NotFound("no entries for linktype", nil)
	}

	if len(negotiated) == 1 {
		location := preserveQuery(negotiated[0].Href, req.RawQuery)
		return Result{Status: 307, Location: location, LinkHeader: linkHeader}, nil
	}

	return Result{
		Status:      300,
		LinkHeader:  linkHeader,
		ContentType: "application/json",
		Body:        map[string]interface{}{"linkset": choiceBody(negotiated)},
	}, nil
}

// lookup resolves identifier to a stored document, falling back to the
// serialized-identifier partial match of spec.md §4.5 step 4. It returns
// the document, the effective (possibly shortened) identifier, and any
// template bindings the partial match produced.
func (p *Pipeline) lookup(ctx context.Context, identifier string) (gs1.ResolverDocument, string, map[string]string, error) {
	id, err := gtin.PathToID(identifier)
	if err != nil {
		return gs1.ResolverDocument{}, "", nil, resolvererr.Validation("malformed identifier", err)
	}

	doc, _, err := p.Store.Get(ctx, id)
	if err == nil {
		return *doc, identifier, map[string]string{}, nil
	}
	if !errors.Is(err, resolvererr.ErrDocumentNotFound) {
		return gs1.ResolverDocument{}, "", nil, resolvererr.Unavailable("reading document", err)
	}

	aiCode := gtin.AICode(identifier)
	if !gtin.IsSerializedAI(aiCode) {
		return gs1.ResolverDocument{}, "", nil, resolvererr.NotFound("document not found", nil)
	}

	pairs := gtin.ParseQualifierPath(identifier)
	if len(pairs) == 0 {
		return gs1.ResolverDocument{}, "", nil, resolvererr.NotFound("document not found", nil)
	}
	value := pairs[0].Value

	for length := len(value) - 1; length >= 1; length-- {
		prefix := value[:length]
		suffix := value[length:]
		candidate := fmt.Sprintf("/%s/%s", aiCode, prefix)
		candidateID, err := gtin.PathToID(candidate)
		if err != nil {
			continue
		}
		doc, _, err := p.Store.Get(ctx, candidateID)
		if err != nil {
			continue
		}

		bindings := map[string]string{}
		text := documentText(*doc)
		if strings.Contains(text, "{0}") {
			bindings["0"] = suffix
		}
		if strings.Contains(text, "{1}") {
			bindings["1"] = suffix
		}
		return *doc, candidate, bindings, nil
	}

	return gs1.ResolverDocument{}, "", nil, resolvererr.NotFound("document not found", nil)
}

// isLinksetWildcard reports whether linktype requests the linkset
// branch directly (spec.md §4.5 step 9/"wildcards collapse into step 9").
func isLinksetWildcard(linktype string) bool {
	switch strings.ToLower(linktype) {
	case "all", "linkset", "*":
		return true
	default:
		return false
	}
}

// selectLinktype implements spec.md §4.5 step 10: normalize lt, collect
// matching entries, and — when Pipeline.LinktypeFallback is set — retry
// with the unnormalized value and a looser substring/suffix match.
func (p *Pipeline) selectLinktype(requested, defaultLinktype string, order []string, combined map[string][]gs1.LinksetEntry) ([]gs1.LinksetEntry, error) {
	lt := requested
	if lt == "" {
		lt = defaultLinktype
	}
	if lt == "" {
		lt = "gs1:pip"
	}
	normalized := authoring.NormalizeLinkKey(lt)

	var entries []gs1.LinksetEntry
	for _, key := range order {
		if strings.EqualFold(key, normalized) {
			entries = append(entries, combined[key]...)
		}
	}
	if len(entries) > 0 {
		return entries, nil
	}

	if p.LinktypeFallback {
		for _, key := range order {
			if strings.EqualFold(key, lt) || strings.Contains(key, lt) || strings.HasSuffix(key, "/"+lt) {
				entries = append(entries, combined[key]...)
			}
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}

	return nil, resolvererr.NotFound("no entries for linktype", nil)
}

// combineLinkTypes merges every filtered item's linkTypes into one
// ordered map, preserving first-seen key order across items.
func combineLinkTypes(items []gs1.DataItem) ([]string, map[string][]gs1.LinksetEntry) {
	combined := make(map[string][]gs1.LinksetEntry)
	var order []string
	seen := make(map[string]bool)
	for _, item := range items {
		for _, key := range item.Linkset.LinkTypeOrder() {
			if !seen[key] {
				seen[key] = true
				order = append(order, key)
			}
			combined[key] = append(combined[key], item.Linkset.LinkTypes[key]...)
		}
	}
	return order, combined
}

// choiceBody projects negotiated entries into the compact shape step 12
// emits on a 300 response.
func choiceBody(entries []gs1.LinksetEntry) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		m := map[string]interface{}{"href": e.Href}
		if e.Type != "" {
			m["type"] = e.Type
		}
		if len(e.Hreflang) > 0 {
			m["hreflang"] = e.Hreflang
		}
		if e.Title != "" {
			m["title"] = e.Title
		}
		out = append(out, m)
	}
	return out
}

// documentText serializes the stored document's data as text (spec.md
// §4.5 step 4) for the purpose of detecting bound template tokens; a
// token can appear in any field an author filled in, not just href.
func documentText(doc gs1.ResolverDocument) string {
	raw, err := json.Marshal(doc.Data)
	if err != nil {
		return ""
	}
	return string(raw)
}

// logTemplateFallback records a non-fatal template substitution failure
// (spec.md §4.5 step 7: "errors here are non-fatal... and log").
func logTemplateFallback(err error) {
	slog.Warn("template substitution failed, serving unsubstituted items", "error", err)
}
