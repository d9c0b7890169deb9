package db

const (
	// SchemaV1 defines version 1 of the recordsdb schema.
	//
	// The records table is the single logical table of the Primary Record
	// Store: one row per (date, category, subcategory) address. Content is
	// stored as serialized JSON and kept opaque. Tags live in a join table so
	// tag search stays a plain SQL join.
	SchemaV1 = `
CREATE TABLE IF NOT EXISTS daybook_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS records (
    id UUID PRIMARY KEY,
    date TEXT NOT NULL,
    category TEXT NOT NULL,
    subcategory TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '{}',
    user_id TEXT NOT NULL DEFAULT 'default-user',
    version INTEGER NOT NULL DEFAULT 1,
    created_at REAL DEFAULT (unixepoch()),
    updated_at REAL DEFAULT (unixepoch()),
    UNIQUE (date, category, subcategory)
);

CREATE INDEX IF NOT EXISTS idx_records_date ON records(date);
CREATE INDEX IF NOT EXISTS idx_records_category ON records(category);
CREATE INDEX IF NOT EXISTS idx_records_date_category ON records(date, category);

CREATE TABLE IF NOT EXISTS tags (
    tag VARCHAR(256) PRIMARY KEY,
    created_at REAL DEFAULT (unixepoch()),
    updated_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS record_tags (
    record_id UUID NOT NULL REFERENCES records(id) ON DELETE CASCADE,
    tag VARCHAR(256) NOT NULL REFERENCES tags(tag) ON DELETE CASCADE,
    position INTEGER NOT NULL DEFAULT 0,
    created_at REAL DEFAULT (unixepoch()),
    PRIMARY KEY (record_id, tag)
);
`
)
