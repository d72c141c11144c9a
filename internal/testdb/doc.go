//go:build integration

// Package testdb provides utilities for PostgreSQL integration tests.
//
// Each test runs in its own transaction, which is rolled back when the test
// completes, so tests can run in parallel against one database without
// cleanup.
//
//	func TestMyFeature(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        users := postgres.NewPostgresUserStore(tx, nil)
//	        require.NoError(t, users.Ensure(ctx, userID))
//	    })
//	}
//
// Tests are skipped unless DATABASE_URL or KIOKU_TEST_DB_URL is set.
package testdb
