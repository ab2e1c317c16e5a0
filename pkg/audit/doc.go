// Package audit provides the append-only ledger of attempted mutations.
//
// Every call to the engine's ExecuteSingle produces exactly one ledger entry
// regardless of outcome: success, validation failure, policy denial, or
// execution error. The ledger is invariant to mutation mode: simulate and
// validate runs are recorded too, with the mode reflected in the embedded
// context. Entries are never updated or deleted.
//
// Two backends are provided behind the same Ledger contract: an in-memory
// ledger guarded by a single lock, and a durable SQLite ledger with WAL mode
// and schema versioning. Both preserve the order of Record calls as
// observed from any single goroutine.
package audit
