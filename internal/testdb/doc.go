//go:build integration

// Package testdb provides helpers for database integration tests.
//
// Tests obtain a migrated connection with GetTestDBWithT, which skips the test
// when no database URL is configured, and isolate their writes with WithTx:
//
//	db := testdb.GetTestDBWithT(t)
//	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	    stores := postgres.NewStores(tx, nil)
//	    // ... exercise stores ...
//	})
//
// Every transaction is rolled back when fn returns, so tests never see each
// other's rows and may run in parallel.
package testdb
