package cache

const schema = `
CREATE TABLE IF NOT EXISTS entries (
    key        TEXT PRIMARY KEY,
    payload    TEXT NOT NULL DEFAULT '{}',
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at);
`
