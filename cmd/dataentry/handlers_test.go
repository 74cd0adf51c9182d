//go:build cgo

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gs1resolver/resolver/docstore"
)

func newTestMux(t *testing.T) (http.Handler, *docstore.Store) {
	t.Helper()
	store, err := docstore.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	h := newHandler(store)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("POST /api/new", h.handleNew)
	mux.HandleFunc("POST /api/new/single", h.handleNewSingle)
	mux.HandleFunc("PUT /api/{ai}/{value}", h.handlePut)
	mux.HandleFunc("GET /api/{ai}/{value}", h.handleGet)
	mux.HandleFunc("GET /api/index", h.handleIndex)
	mux.HandleFunc("DELETE /api/{ai}/{value}", h.handleDelete)
	mux.HandleFunc("POST /api/migrate-v2", h.handleMigrateV2)
	return mux, store
}

func TestHandleNewSingle_CreatesDocument(t *testing.T) {
	mux, _ := newTestMux(t)

	body := `{"anchor":"/01/09506000134376","links":[{"linktype":"gs1:pip","href":"https://x/pip"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/new/single", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body=%s)", rr.Code, rr.Body.String())
	}
}

func TestHandleNew_BatchPartialFailure(t *testing.T) {
	mux, _ := newTestMux(t)

	body := `[
		{"anchor":"/01/09506000134377","links":[{"linktype":"gs1:pip","href":"https://x/a"}]},
		{"anchor":"","links":[]}
	]`
	req := httptest.NewRequest(http.MethodPost, "/api/new", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 since one entry succeeded, got %d (body=%s)", rr.Code, rr.Body.String())
	}

	var results []entryResult
	if err := json.Unmarshal(rr.Body.Bytes(), &results); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestHandleGetThenDelete(t *testing.T) {
	mux, _ := newTestMux(t)

	putBody := `{"anchor":"/01/09506000134378","links":[{"linktype":"gs1:pip","href":"https://x/c"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/new/single", bytes.NewBufferString(putBody))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("setup write failed: %d", rr.Code)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/01/09506000134378", nil)
	getRR := httptest.NewRecorder()
	mux.ServeHTTP(getRR, getReq)
	if getRR.Code != http.StatusOK {
		t.Fatalf("expected 200 on read, got %d", getRR.Code)
	}

	delReq := httptest.NewRequest(http.MethodDelete, "/api/01/09506000134378", nil)
	delRR := httptest.NewRecorder()
	mux.ServeHTTP(delRR, delReq)
	if delRR.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", delRR.Code)
	}

	getAgainRR := httptest.NewRecorder()
	mux.ServeHTTP(getAgainRR, httptest.NewRequest(http.MethodGet, "/api/01/09506000134378", nil))
	if getAgainRR.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", getAgainRR.Code)
	}
}

func TestHandleIndex_ListsAnchors(t *testing.T) {
	mux, _ := newTestMux(t)

	body := `{"anchor":"/01/09506000134379","links":[{"linktype":"gs1:pip","href":"https://x/d"}]}`
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/new/single", bytes.NewBufferString(body)))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/index", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var anchors []string
	if err := json.Unmarshal(rr.Body.Bytes(), &anchors); err != nil {
		t.Fatalf("decoding index: %v", err)
	}
	found := false
	for _, a := range anchors {
		if a == "/01/09506000134379" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected anchor in index, got %v", anchors)
	}
}

func TestHandleMigrateV2_ConvertsWithoutPersisting(t *testing.T) {
	mux, store := newTestMux(t)

	body := `[{"keyType":"01","key":"09506000134380","responses":[{"linkType":"pip","targetUrl":"https://x/e","active":true}]}]`
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/migrate-v2", bytes.NewBufferString(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body=%s)", rr.Code, rr.Body.String())
	}

	ids, err := store.ListIDs(t.Context())
	if err != nil {
		t.Fatalf("listing ids: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected migrate-v2 to not persist anything, got %v", ids)
	}
}
