package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"mercator-hq/ganymede/pkg/mutation"
)

// SQLiteConfig contains configuration for the SQLite history backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite history configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/history.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements Store using SQLite (pure-Go driver). Appends run
// in a transaction so hash-chain linking is atomic per state id.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore creates a SQLite-backed history store and initializes the
// schema.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "history.sqlite")

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		config.Path, config.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite history store initialized",
		"path", config.Path,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema.
func (s *SQLiteStore) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Append records an entry, linking it into the state's hash chain.
func (s *SQLiteStore) Append(ctx context.Context, e *Entry) error {
	if e.StateID == "" {
		return ErrStateIDRequired
	}

	entryCopy := *e
	if entryCopy.Timestamp.IsZero() {
		entryCopy.Timestamp = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NewStorageError("sqlite", "begin", err)
	}
	defer tx.Rollback()

	// Link against the most recently appended entry for this state.
	var previousHash sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT new_hash FROM history_entries WHERE state_id = ? ORDER BY rowid DESC LIMIT 1`,
		e.StateID,
	).Scan(&previousHash)
	if err != nil && err != sql.ErrNoRows {
		return NewStorageError("sqlite", "read_chain_head", err)
	}

	entryCopy.PreviousHash = previousHash.String
	entryCopy.NewHash = ChainHash(entryCopy.PreviousHash, &entryCopy)

	intent, _ := json.Marshal(entryCopy.Intent)
	mctx, _ := json.Marshal(entryCopy.Context)
	changes, _ := json.Marshal(entryCopy.Changes)
	sideEffects, _ := json.Marshal(entryCopy.SideEffects)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO history_entries (
			execution_id, state_id,
			intent, context, changes, side_effects,
			timestamp, execution_time_ns,
			previous_hash, new_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entryCopy.ExecutionID, entryCopy.StateID,
		string(intent), string(mctx), string(changes), string(sideEffects),
		entryCopy.Timestamp, entryCopy.ExecutionTime.Nanoseconds(),
		entryCopy.PreviousHash, entryCopy.NewHash,
	)
	if err != nil {
		return NewStorageError("sqlite", "append", err)
	}

	if err := tx.Commit(); err != nil {
		return NewStorageError("sqlite", "commit", err)
	}

	e.PreviousHash = entryCopy.PreviousHash
	e.NewHash = entryCopy.NewHash
	e.Timestamp = entryCopy.Timestamp

	s.logger.Debug("history entry appended",
		"execution_id", e.ExecutionID,
		"state_id", e.StateID,
	)

	return nil
}

// Get returns the full chronological history for a state id.
func (s *SQLiteStore) Get(ctx context.Context, stateID string) (*History, error) {
	entries, err := s.query(ctx,
		`SELECT execution_id, state_id, intent, context, changes, side_effects,
		        timestamp, execution_time_ns, previous_hash, new_hash
		 FROM history_entries WHERE state_id = ?
		 ORDER BY timestamp ASC, rowid ASC`,
		stateID,
	)
	if err != nil {
		return nil, err
	}
	return &History{StateID: stateID, Entries: entries}, nil
}

// GetRange returns the entries within [from, to] inclusive, ascending.
func (s *SQLiteStore) GetRange(ctx context.Context, stateID string, from, to time.Time) ([]*Entry, error) {
	return s.query(ctx,
		`SELECT execution_id, state_id, intent, context, changes, side_effects,
		        timestamp, execution_time_ns, previous_hash, new_hash
		 FROM history_entries WHERE state_id = ? AND timestamp >= ? AND timestamp <= ?
		 ORDER BY timestamp ASC, rowid ASC`,
		stateID, from, to,
	)
}

// GetRecent returns at most n entries, descending by timestamp.
func (s *SQLiteStore) GetRecent(ctx context.Context, stateID string, n int) ([]*Entry, error) {
	if n < 0 {
		n = 0
	}
	return s.query(ctx,
		`SELECT execution_id, state_id, intent, context, changes, side_effects,
		        timestamp, execution_time_ns, previous_hash, new_hash
		 FROM history_entries WHERE state_id = ?
		 ORDER BY timestamp DESC, rowid DESC LIMIT ?`,
		stateID, n,
	)
}

// query runs a history select and decodes the rows.
func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var (
			e               Entry
			intent          string
			mctx            string
			changes         sql.NullString
			sideEffects     sql.NullString
			executionTimeNs int64
			previousHash    sql.NullString
		)

		err := rows.Scan(
			&e.ExecutionID, &e.StateID, &intent, &mctx, &changes, &sideEffects,
			&e.Timestamp, &executionTimeNs, &previousHash, &e.NewHash,
		)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}

		e.ExecutionTime = time.Duration(executionTimeNs)
		e.PreviousHash = previousHash.String

		if err := json.Unmarshal([]byte(intent), &e.Intent); err != nil {
			return nil, NewStorageError("sqlite", "decode_intent", err)
		}
		if err := json.Unmarshal([]byte(mctx), &e.Context); err != nil {
			return nil, NewStorageError("sqlite", "decode_context", err)
		}
		if changes.Valid && changes.String != "" && changes.String != "null" {
			e.Changes = mutation.NewChangeSet()
			if err := json.Unmarshal([]byte(changes.String), e.Changes); err != nil {
				return nil, NewStorageError("sqlite", "decode_changes", err)
			}
		}
		if sideEffects.Valid && sideEffects.String != "" && sideEffects.String != "null" {
			if err := json.Unmarshal([]byte(sideEffects.String), &e.SideEffects); err != nil {
				return nil, NewStorageError("sqlite", "decode_side_effects", err)
			}
		}

		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "iterate", err)
	}

	return out, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite history store")
	return s.db.Close()
}
