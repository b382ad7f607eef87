// Package testdb connects integration tests to a real PostgreSQL database.
//
// Tests call Postgres to obtain a migrated connection and Reset before each
// case. When no database URL is configured the test is skipped, so the
// suites can live next to the unit tests:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.Postgres(t)
//	    testdb.Reset(t, db)
//	    repo := postgres.NewRepository(db, nil)
//	    ...
//	}
//
// Environment Variables:
//
//   - SCRY_TEST_DB_URL: connection string for a disposable test database
//   - DATABASE_URL: fallback connection string
package testdb
