// Package repository defines the data access interface for saved graphs.
//
// A saved graph is a named graph description wrapped in a record whose
// metadata.data field holds the description itself. The editing core
// never persists anything; the service layer hands descriptions to a
// Repository and loads them back.
//
// # SQLite Implementation
//
// The sqlite subpackage stores records in a single saved_graphs table
// using the pure-Go modernc.org/sqlite driver with WAL mode. Names are
// unique: saving under an existing name replaces that record's data and
// keeps its ID.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
