// Package chain sequences dependent database operations as an immutable,
// typed pipeline. Each step receives the shared handle (a DB connection,
// pool, or ORM session) and may consume the results of all prior steps; the
// whole sequence can run inside one transaction through an Adapter.
//
// Build a pipeline with Use (sequential) or Transaction (transactional),
// append steps with Chain and ChainResults, and execute with Invoke:
//
//	result, err := chain.Use(db, sqltx.Adapter{}).
//		Chain(getUser(1), nil).
//		ChainResults(chain.Prior(1, booksForUser), nil).
//		Invoke(ctx)
//
// Every builder call returns a new pipeline value; forks share nothing
// mutable, so a pipeline can be used as a template. Invoke returns the last
// step's value. Steps run strictly in order: step N+1 never starts before
// step N's result is recorded in the accumulator (Results, keyed "result of
// step 1", "result of step 2", …).
//
// There are two step shapes, kept as distinct types so no runtime
// disambiguation is needed: Step (direct, handle only) and ResultStep
// (receives the accumulator first, returns the Step to run).
//
// Per-step policies come from the policy package: pass *policy.Options to
// Chain/ChainResults for retries, per-attempt timeouts, and non-throwing
// error capture. A captured failure is recorded as a policy.Capture and
// does not abort the remaining steps; any other failure does, and in a
// transactional pipeline the adapter rolls everything back.
//
// Adapters for database/sql, pgx, sqlx, and GORM live in the sqltx, pgxtx,
// sqlxtx, and gormtx packages.
package chain
