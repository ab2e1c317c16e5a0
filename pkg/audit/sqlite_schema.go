package audit

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit ledger schema.
const Schema = `
-- Audit ledger table (append-only)
CREATE TABLE IF NOT EXISTS audit_entries (
    execution_id TEXT PRIMARY KEY,
    state_id TEXT,
    state_type TEXT NOT NULL,

    -- Mutation descriptors (JSON)
    intent TEXT NOT NULL,
    context TEXT NOT NULL,
    changes TEXT,
    policy_decisions TEXT,

    -- Outcome
    is_success BOOLEAN NOT NULL,
    error_message TEXT,

    -- Timing
    timestamp TIMESTAMP NOT NULL,
    duration_ns INTEGER NOT NULL,

    -- Caller info
    source_ip TEXT,
    user_agent TEXT,

    -- Additional attributes (JSON)
    metadata TEXT
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_audit_state_id ON audit_entries(state_id);
CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_entries(timestamp);
CREATE INDEX IF NOT EXISTS idx_audit_is_success ON audit_entries(is_success);
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
