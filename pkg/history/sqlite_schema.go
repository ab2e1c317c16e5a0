package history

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the history store schema.
const Schema = `
-- History entries table (append-only, per state id)
CREATE TABLE IF NOT EXISTS history_entries (
    execution_id TEXT PRIMARY KEY,
    state_id TEXT NOT NULL,

    -- Mutation descriptors (JSON)
    intent TEXT NOT NULL,
    context TEXT NOT NULL,
    changes TEXT,
    side_effects TEXT,

    -- Timing
    timestamp TIMESTAMP NOT NULL,
    execution_time_ns INTEGER NOT NULL,

    -- Hash chain
    previous_hash TEXT,
    new_hash TEXT NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_history_state_id ON history_entries(state_id);
CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history_entries(state_id, timestamp);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
