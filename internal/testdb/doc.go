//go:build integration

// Package testdb provides helpers for tests that run against a real
// PostgreSQL database.
//
// Tests run inside a transaction that is rolled back when the test ends, so
// they can share one database and run in parallel. The schema is brought up
// to date from the embedded migrations the first time a connection is
// requested.
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        userID := testdb.CreateTestUser(t, tx)
//	        taskStore := postgres.NewPostgresTaskStore(tx, nil)
//	        ...
//	    })
//	}
//
// Set DEVTRACKER_TEST_DB_URL (or DATABASE_URL) to enable these tests. When
// neither is set the tests are skipped.
package testdb
