package merge

import (
	"context"
	"errors"

	"github.com/gs1resolver/resolver/docstore"
	"github.com/gs1resolver/resolver/gs1"
	"github.com/gs1resolver/resolver/resolvererr"
)

// MaxRetries bounds the optimistic-concurrency retry loop of spec.md
// §4.4/§5 (suggested value: 3).
const MaxRetries = 3

// ApplyToStore reads the existing document for incoming.ID (if any),
// merges incoming into it, and writes the result back. On an optimistic-
// concurrency conflict it re-reads and retries up to MaxRetries times,
// surfacing resolvererr.Conflict on exhaustion (spec.md §4.4
// Concurrency). It returns the resulting document and the HTTP status
// the caller should report: 201 when no prior document existed, 200
// otherwise.
func ApplyToStore(ctx context.Context, store *docstore.Store, incoming gs1.ResolverDocument) (gs1.ResolverDocument, int, error) {
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		existing, version, err := store.Get(ctx, incoming.ID)
		switch {
		case errors.Is(err, resolvererr.ErrDocumentNotFound):
			existing, version = nil, 0
		case err != nil:
			return gs1.ResolverDocument{}, 0, resolvererr.Unavailable("reading existing document", err)
		}

		merged, created := Merge(existing, incoming)

		_, _, err = store.Upsert(ctx, merged, version)
		switch {
		case err == nil:
			status := 200
			if created {
				status = 201
			}
			return merged, status, nil
		case errors.Is(err, resolvererr.ErrVersionConflict):
			continue
		default:
			return gs1.ResolverDocument{}, 0, resolvererr.Unavailable("writing merged document", err)
		}
	}
	return gs1.ResolverDocument{}, 0, resolvererr.Conflict("exhausted retries on concurrent write", resolvererr.ErrVersionConflict)
}
