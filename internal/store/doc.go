// Package store persists the user's confirmed anime list and the manual
// review queue in SQLite.
//
// The database lives at <data_dir>/animatch.db and uses WAL mode with a
// busy timeout plus a short retry loop for SQLITE_BUSY. Confirmed entries
// are unique by catalog id; adding a duplicate returns the existing row
// instead of an error. Review items hold the raw line, the phrase that was
// searched and the scored candidates as JSON so a user can accept one
// later without another catalog round trip.
//
// The schema is versioned. A database written by a different version is
// rejected with ErrSchemaMismatch rather than migrated in place.
package store
