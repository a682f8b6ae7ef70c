// Package pipeline drives the release sequence: credentials, build, upload,
// then webhook triggers, strictly in order with fail-fast semantics.
//
// The Runner holds the single-run flock, assigns each run a UUID, persists
// per-stage outcomes to the history store, and publishes operator
// notifications. Stages implement a small Handler contract; a stage that
// acquires resources (the scoped credentials file) additionally implements
// Cleanup, which the runner invokes on every exit path. There is no retry and
// no rollback: a failing stage aborts the run and completed side effects
// stand.
package pipeline
