package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gs1resolver/resolver/gtin"
	"github.com/gs1resolver/resolver/negotiate"
	"github.com/gs1resolver/resolver/resolver"
	"github.com/gs1resolver/resolver/resolvererr"
	"github.com/gs1resolver/resolver/toolkit"
)

type handler struct {
	pipeline *resolver.Pipeline
}

func newHandler(p *resolver.Pipeline) *handler {
	return &handler{pipeline: p}
}

// GET/HEAD/OPTIONS /{ai}/{value} and /{ai}/{value}/{qualifiers...}
func (h *handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	ai := r.PathValue("ai")
	value := r.PathValue("value")
	qualifiers := r.PathValue("qualifiers")

	identifier := "/" + ai + "/" + value
	qualifierPath := ""
	if qualifiers != "" {
		qualifierPath = "/" + qualifiers
	}

	req := buildRequest(r)

	if r.URL.Query().Get("compress") == "true" {
		result, err := h.pipeline.CompressLink(r.Context(), identifier, qualifierPath)
		h.writeResult(w, r, result, err)
		return
	}

	result, err := h.pipeline.Resolve(r.Context(), identifier, qualifierPath, req)
	h.writeResult(w, r, result, err)
}

// GET /{segment} — any single segment that is not a 2-4 digit AI code is
// treated as a compressed Digital Link (spec.md §4.9).
func (h *handler) handleCompressedOrReject(w http.ResponseWriter, r *http.Request) {
	segment := r.PathValue("segment")
	if gtin.IsAICode(segment) {
		writeProblem(w, r, resolvererr.Validation("missing value path segment", nil))
		return
	}

	result, err := h.pipeline.ResolveCompressed(r.Context(), segment, buildRequest(r))
	h.writeResult(w, r, result, err)
}

// GET /.well-known/gs1resolver
func (h *handler) handleWellKnown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"resolverRoot":         "https://" + h.pipeline.FQDN,
		"supportedPrimaryKeys": toolkit.SupportedPrimaryKeys(),
		"active":               true,
	})
}

// GET /healthz
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// buildRequest translates the incoming HTTP request into a
// resolver.Request, parsing Accept/Accept-Language and the
// linktype/context/linkset query parameters.
func buildRequest(r *http.Request) resolver.Request {
	q := r.URL.Query()

	var linksetRequested bool
	linktype := q.Get("linktype")
	if strings.EqualFold(linktype, "linkset") {
		linksetRequested = true
	}

	accept := negotiate.CleanList(strings.Split(r.Header.Get("Accept"), ","))
	if len(accept) == 1 && accept[0] == "" {
		accept = nil
	}

	return resolver.Request{
		Linktype:         linktype,
		Context:          q.Get("context"),
		AcceptLanguages:  negotiate.ParseAcceptLanguage(r.Header.Get("Accept-Language")),
		MediaTypes:       accept,
		LinksetRequested: linksetRequested,
		RawQuery:         q,
	}
}

func (h *handler) writeResult(w http.ResponseWriter, r *http.Request, result resolver.Result, err error) {
	if err != nil {
		writeProblem(w, r, err)
		return
	}

	if result.LinkHeader != "" {
		w.Header().Set("Link", result.LinkHeader)
	}
	if result.Location != "" {
		w.Header().Set("Location", result.Location)
	}
	if result.ContentType != "" {
		w.Header().Set("Content-Type", result.ContentType)
	}

	if result.Body == nil {
		w.WriteHeader(result.Status)
		return
	}

	w.WriteHeader(result.Status)
	if r.Method != http.MethodHead {
		json.NewEncoder(w).Encode(result.Body)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, r *http.Request, err error) {
	requestID := r.Header.Get("X-Request-Id")
	problem := resolvererr.ProblemFor(err, requestID)
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	json.NewEncoder(w).Encode(problem)
}
