// Package store persists canonical media records in SQLite.
//
// Records are keyed by the catalog-assigned id and only ever merge
// additively: an upsert fills absent fields and refreshes present ones, but
// never clears a previously populated field. That monotone merge is what
// lets concurrent enrichment of the same id interleave safely without
// per-record locking.
//
// The database uses WAL mode with a busy timeout; a flock-guarded lock file
// keeps concurrent CLI processes from racing schema creation.
package store
