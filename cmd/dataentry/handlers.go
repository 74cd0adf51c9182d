package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gs1resolver/resolver/authoring"
	"github.com/gs1resolver/resolver/docstore"
	"github.com/gs1resolver/resolver/gs1"
	"github.com/gs1resolver/resolver/gtin"
	"github.com/gs1resolver/resolver/merge"
	"github.com/gs1resolver/resolver/migrate"
	"github.com/gs1resolver/resolver/resolvererr"
)

type handler struct {
	store *docstore.Store
}

func newHandler(store *docstore.Store) *handler {
	return &handler{store: store}
}

type entryResult struct {
	ID      string `json:"id"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// POST /api/new
func (h *handler) handleNew(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()

	var entries []gs1.Entry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		writeProblem(w, requestID, resolvererr.Validation("invalid JSON body", err))
		return
	}

	docs, authorErrs := authoring.AuthorBatch(entries)

	results := make([]entryResult, 0, len(entries)+len(authorErrs))
	anySucceeded := false

	for _, doc := range docs {
		_, status, err := merge.ApplyToStore(r.Context(), h.store, doc)
		if err != nil {
			slog.Error("applying authored document", "request_id", requestID, "document_id", doc.ID, "error", err)
			results = append(results, entryResult{ID: doc.ID, Status: resolvererr.KindOf(err).Status(), Message: resolvererr.DetailOf(err)})
			continue
		}
		anySucceeded = true
		results = append(results, entryResult{ID: doc.ID, Status: status, Message: "ok"})
	}
	for _, aerr := range authorErrs {
		var anchor string
		if ae, ok := aerr.(*authoring.Error); ok {
			anchor = ae.Anchor
		}
		results = append(results, entryResult{ID: anchor, Status: http.StatusBadRequest, Message: aerr.Error()})
	}

	status := http.StatusCreated
	if !anySucceeded && len(results) > 0 {
		status = http.StatusBadRequest
	}

	slog.Info("batch entry write", "request_id", requestID, "count", len(entries), "succeeded", anySucceeded)
	writeJSON(w, status, results)
}

// POST /api/new/single
func (h *handler) handleNewSingle(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()

	var entry gs1.Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeProblem(w, requestID, resolvererr.Validation("invalid JSON body", err))
		return
	}

	doc, err := authoring.Author(entry)
	if err != nil {
		writeProblem(w, requestID, resolvererr.Validation("invalid entry", err))
		return
	}

	merged, status, err := merge.ApplyToStore(r.Context(), h.store, doc)
	if err != nil {
		slog.Error("applying authored document", "request_id", requestID, "document_id", doc.ID, "error", err)
		writeProblem(w, requestID, err)
		return
	}

	slog.Info("single entry write", "request_id", requestID, "document_id", merged.ID, "status", status)
	writeJSON(w, status, merged)
}

// PUT /api/{ai}/{value} — every entry's anchor must start with
// /{ai}/{value} (trailing-slash-insensitive; qualifiers allowed after).
func (h *handler) handlePut(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	ai := r.PathValue("ai")
	value := r.PathValue("value")
	prefix := "/" + ai + "/" + value

	var entries []gs1.Entry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		writeProblem(w, requestID, resolvererr.Validation("invalid JSON body", err))
		return
	}

	for _, e := range entries {
		anchor := strings.TrimSuffix(e.Anchor, "/")
		if anchor != prefix && !strings.HasPrefix(anchor, prefix+"/") {
			writeProblem(w, requestID, resolvererr.Validation(fmt.Sprintf("anchor %q does not match path %q", e.Anchor, prefix), nil))
			return
		}
	}

	docs, authorErrs := authoring.AuthorBatch(entries)
	if len(authorErrs) > 0 {
		writeProblem(w, requestID, resolvererr.Validation(authorErrs[0].Error(), authorErrs[0]))
		return
	}

	results := make([]entryResult, 0, len(docs))
	anySucceeded := false
	for _, doc := range docs {
		_, status, err := merge.ApplyToStore(r.Context(), h.store, doc)
		if err != nil {
			slog.Error("applying put document", "request_id", requestID, "document_id", doc.ID, "error", err)
			results = append(results, entryResult{ID: doc.ID, Status: resolvererr.KindOf(err).Status(), Message: resolvererr.DetailOf(err)})
			continue
		}
		anySucceeded = true
		results = append(results, entryResult{ID: doc.ID, Status: status, Message: "ok"})
	}

	status := http.StatusCreated
	if !anySucceeded && len(results) > 0 {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, results)
}

// GET /api/{ai}/{value}[/{qualifiers...}]
func (h *handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	ai := r.PathValue("ai")
	value := r.PathValue("value")
	qualifiers := r.PathValue("qualifiers")

	path := "/" + ai + "/" + value
	if qualifiers != "" {
		path += "/" + qualifiers
	}

	id, err := gtin.PathToID(path)
	if err != nil {
		writeProblem(w, requestID, resolvererr.Validation("malformed anchor", err))
		return
	}

	doc, _, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeProblem(w, requestID, resolvererr.NotFound("document not found", err))
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// GET /api/index
func (h *handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	ids, err := h.store.ListIDs(r.Context())
	if err != nil {
		writeProblem(w, requestID, resolvererr.Unavailable("listing documents", err))
		return
	}

	anchors := make([]string, 0, len(ids))
	for _, id := range ids {
		anchors = append(anchors, gtin.IDToPath(id))
	}
	writeJSON(w, http.StatusOK, anchors)
}

// DELETE /api/{ai}/{value}
func (h *handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	ai := r.PathValue("ai")
	value := r.PathValue("value")

	id, err := gtin.PathToID("/" + ai + "/" + value)
	if err != nil {
		writeProblem(w, requestID, resolvererr.Validation("malformed anchor", err))
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		writeProblem(w, requestID, resolvererr.NotFound("document not found", err))
		return
	}

	slog.Info("document deleted", "request_id", requestID, "document_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// POST /api/migrate-v2 — v2 -> v3 conversion; no persistence.
func (h *handler) handleMigrateV2(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()

	var v2entries []migrate.V2Entry
	if err := json.NewDecoder(r.Body).Decode(&v2entries); err != nil {
		writeProblem(w, requestID, resolvererr.Validation("invalid JSON body", err))
		return
	}

	converted := migrate.Batch(v2entries)
	writeJSON(w, http.StatusOK, converted)
}

// GET /healthz
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, requestID string, err error) {
	problem := resolvererr.ProblemFor(err, requestID)
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	json.NewEncoder(w).Encode(problem)
}
