// Package postgres provides the PostgreSQL backend for the repository
// contracts defined in the internal/store package. It opens connections
// through the pgx stdlib driver, maps PostgreSQL error codes to store
// sentinels, and owns the embedded schema migrations.
package postgres
