// Package credentials persists the bearer credential of the client.
//
// # Overview
//
// The package defines a Repository contract with three operations (Save,
// Load, Delete) and ships three implementations:
//
//   - SQLiteRepository   durable, survives restarts; backed by dbx.WithTx
//   - MemoryRepository   process-local; used with -d "" or when the database cannot be opened
//   - Unavailable        always fails with ErrStorageUnavailable
//
// At most one credential exists at a time: Save replaces whatever was
// stored before inside a single transaction.
//
// Expiry is not enforced here; tokenstore.Store decides whether a loaded
// credential is still usable.
package credentials
