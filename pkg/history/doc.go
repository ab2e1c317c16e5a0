// Package history provides the per-entity chronological log of successful
// committed mutations, with replay and timeline queries.
//
// A history entry is appended only for a successful execution in commit
// mode; simulate and validate runs never reach the store. Entries are
// hash-chained: each append links to the previous entry's hash and records
// its own, so a history can be verified for gaps or tampering.
//
// Queries re-materialize from the store on each call; they are finite,
// chronologically ordered sequences, not restartable streams.
//
// Two backends are provided behind the same Store contract: an in-memory
// store and a durable SQLite store.
package history
