package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/ganymede/pkg/mutation"
)

// SQLiteConfig contains configuration for the SQLite ledger backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite ledger configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteLedger implements Ledger using SQLite. Entries are inserted once and
// never updated; insertion order is preserved through rowid ordering.
type SQLiteLedger struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteLedger creates a SQLite-backed ledger. It initializes the schema
// and enables WAL mode if configured.
func NewSQLiteLedger(config *SQLiteConfig) (*SQLiteLedger, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "audit.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	l := &SQLiteLedger{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := l.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite audit ledger initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return l, nil
}

// initialize sets up the database schema and enables WAL mode.
func (l *SQLiteLedger) initialize() error {
	if l.config.WALMode {
		if _, err := l.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
		l.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := l.config.BusyTimeout.Milliseconds()
	if _, err := l.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := l.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := l.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := l.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Record appends an entry to the ledger.
func (l *SQLiteLedger) Record(ctx context.Context, e *Entry) error {
	intent, _ := json.Marshal(e.Intent)
	mctx, _ := json.Marshal(e.Context)
	changes, _ := json.Marshal(e.Changes)
	decisions, _ := json.Marshal(e.PolicyDecisions)
	metadata, _ := json.Marshal(e.Metadata)

	query := `
		INSERT INTO audit_entries (
			execution_id, state_id, state_type,
			intent, context, changes, policy_decisions,
			is_success, error_message,
			timestamp, duration_ns,
			source_ip, user_agent,
			metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errorMessage any
	if e.ErrorMessage != "" {
		errorMessage = e.ErrorMessage
	}

	_, err := l.db.ExecContext(ctx, query,
		e.ExecutionID, e.StateID, e.StateType,
		string(intent), string(mctx), string(changes), string(decisions),
		e.IsSuccess, errorMessage,
		e.Timestamp, e.Duration.Nanoseconds(),
		e.SourceIP, e.UserAgent,
		string(metadata),
	)
	if err != nil {
		return NewStorageError("sqlite", "record", err)
	}

	l.logger.Debug("audit entry recorded",
		"execution_id", e.ExecutionID,
		"state_id", e.StateID,
		"is_success", e.IsSuccess,
	)

	return nil
}

// Query returns the entries matching the query in insertion order.
func (l *SQLiteLedger) Query(ctx context.Context, q Query) ([]*Entry, error) {
	query := `
		SELECT execution_id, state_id, state_type,
		       intent, context, changes, policy_decisions,
		       is_success, error_message,
		       timestamp, duration_ns,
		       source_ip, user_agent,
		       metadata
		FROM audit_entries
		WHERE state_id = ?
	`
	args := []any{q.StateID}

	// Inclusive bounds on both ends
	if q.From != nil {
		query += " AND timestamp >= ?"
		args = append(args, *q.From)
	}
	if q.To != nil {
		query += " AND timestamp <= ?"
		args = append(args, *q.To)
	}

	query += " ORDER BY rowid ASC"

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "iterate", err)
	}

	return out, nil
}

// scanEntry decodes a single ledger row.
func scanEntry(rows *sql.Rows) (*Entry, error) {
	var (
		e            Entry
		stateID      sql.NullString
		intent       string
		mctx         string
		changes      sql.NullString
		decisions    sql.NullString
		errorMessage sql.NullString
		durationNs   int64
		sourceIP     sql.NullString
		userAgent    sql.NullString
		metadata     sql.NullString
	)

	err := rows.Scan(
		&e.ExecutionID, &stateID, &e.StateType,
		&intent, &mctx, &changes, &decisions,
		&e.IsSuccess, &errorMessage,
		&e.Timestamp, &durationNs,
		&sourceIP, &userAgent,
		&metadata,
	)
	if err != nil {
		return nil, err
	}

	e.StateID = stateID.String
	e.ErrorMessage = errorMessage.String
	e.Duration = time.Duration(durationNs)
	e.SourceIP = sourceIP.String
	e.UserAgent = userAgent.String

	if err := json.Unmarshal([]byte(intent), &e.Intent); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(mctx), &e.Context); err != nil {
		return nil, err
	}
	if changes.Valid && changes.String != "" && changes.String != "null" {
		e.Changes = mutation.NewChangeSet()
		if err := json.Unmarshal([]byte(changes.String), e.Changes); err != nil {
			return nil, err
		}
	}
	if decisions.Valid && decisions.String != "" && decisions.String != "null" {
		if err := json.Unmarshal([]byte(decisions.String), &e.PolicyDecisions); err != nil {
			return nil, err
		}
	}
	if metadata.Valid && metadata.String != "" && metadata.String != "null" {
		if err := json.Unmarshal([]byte(metadata.String), &e.Metadata); err != nil {
			return nil, err
		}
	}

	return &e, nil
}

// Close closes the underlying database.
func (l *SQLiteLedger) Close() error {
	l.logger.Info("closing SQLite audit ledger")
	return l.db.Close()
}
