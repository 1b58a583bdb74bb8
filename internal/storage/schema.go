package storage

const schemaSQL = `
-- Periodic stats checkpoints. Each row is one full snapshot; the
-- newest row supersedes older ones.
CREATE TABLE IF NOT EXISTS stats_snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    taken_at DATETIME NOT NULL,
    unique_pages INTEGER NOT NULL,
    longest_url TEXT,
    longest_words INTEGER,
    payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_taken ON stats_snapshots(taken_at);

-- Trap-pattern occurrence counters, persisted so a resumed crawl keeps
-- its memory of repeating path shapes.
CREATE TABLE IF NOT EXISTS pattern_counts (
    pattern TEXT PRIMARY KEY NOT NULL,
    count INTEGER NOT NULL
);

-- Crawl meta table stores metadata as key-value pairs
CREATE TABLE IF NOT EXISTS crawl_meta (
    key TEXT PRIMARY KEY NOT NULL,
    value TEXT NOT NULL
);
`
