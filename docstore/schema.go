package docstore

// schemaSQL is the DDL for the documents table: one row per
// gs1.ResolverDocument, keyed by its DocumentId, with an optimistic
// concurrency version column consumed by the merge engine's bounded
// retry loop (spec.md §4.4/§5).
const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    body JSON NOT NULL,
    version INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    last_request_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_documents_updated_at ON documents(updated_at);
`
