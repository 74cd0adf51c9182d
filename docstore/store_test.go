//go:build cgo

package docstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gs1resolver/resolver/gs1"
	"github.com/gs1resolver/resolver/resolvererr"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleDoc(id string) gs1.ResolverDocument {
	return gs1.ResolverDocument{
		ID: id,
		Data: []gs1.DataItem{{
			Qualifiers: []gs1.Qualifier{},
			Linkset: gs1.Linkset{
				LinkTypes: map[string][]gs1.LinksetEntry{
					"https://gs1.org/voc/pip": {{Href: "https://example.com/pip", Title: "t"}},
				},
			},
		}},
	}
}

func TestStore_UpsertCreatesThenUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := sampleDoc("01_123")
	doc.Data[0].Linkset.SetLinkTypeOrder([]string{"https://gs1.org/voc/pip"})

	v, created, err := s.Upsert(ctx, doc, 0)
	if err != nil || !created || v != 1 {
		t.Fatalf("expected create v=1, got v=%d created=%v err=%v", v, created, err)
	}

	v, created, err = s.Upsert(ctx, doc, 1)
	if err != nil || created || v != 2 {
		t.Fatalf("expected update v=2, got v=%d created=%v err=%v", v, created, err)
	}
}

func TestStore_UpsertVersionConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := sampleDoc("01_123")
	if _, _, err := s.Upsert(ctx, doc, 0); err != nil {
		t.Fatalf("initial upsert: %v", err)
	}

	_, _, err := s.Upsert(ctx, doc, 99)
	if err != resolvererr.ErrVersionConflict {
		t.Fatalf("expected version conflict, got %v", err)
	}
}

func TestStore_GetNotFound(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.Get(context.Background(), "missing")
	if err != resolvererr.ErrDocumentNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStore_GetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	doc := sampleDoc("01_123")
	doc.Data[0].Linkset.SetLinkTypeOrder([]string{"https://gs1.org/voc/pip"})

	if _, _, err := s.Upsert(ctx, doc, 0); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, version, err := s.Get(ctx, "01_123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if version != 1 {
		t.Errorf("expected version 1, got %d", version)
	}
	if got.ID != "01_123" {
		t.Errorf("unexpected id %q", got.ID)
	}
	entries := got.Data[0].Linkset.LinkTypes["https://gs1.org/voc/pip"]
	if len(entries) != 1 || entries[0].Href != "https://example.com/pip" {
		t.Errorf("unexpected linkset entries: %+v", entries)
	}
}

func TestStore_DeleteAndListIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"01_123", "01_456"} {
		if _, _, err := s.Upsert(ctx, sampleDoc(id), 0); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	ids, err := s.ListIDs(ctx)
	if err != nil || len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v err=%v", ids, err)
	}

	if err := s.Delete(ctx, "01_123"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "01_123"); err != resolvererr.ErrDocumentNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}

	ids, err = s.ListIDs(ctx)
	if err != nil || len(ids) != 1 || ids[0] != "01_456" {
		t.Fatalf("unexpected ids after delete: %v err=%v", ids, err)
	}
}
