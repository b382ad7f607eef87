// Package sqlite provides the embedded SQLite backend for the repository
// contracts in internal/store, using the pure Go modernc.org/sqlite driver.
// It suits single-device deployments and tests that need real SQL semantics
// without an external server.
package sqlite
