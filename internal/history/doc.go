// Package history persists release runs and their per-stage outcomes in SQLite.
//
// Every `capstan release` invocation records one release row plus one row per
// pipeline stage, including timings, webhook counts, and failure text. The
// ledger backs the `capstan history` command and gives operators an audit
// trail of what was published and which downstream rebuilds were triggered.
package history
