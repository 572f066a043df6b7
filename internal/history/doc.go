// Package history persists finished rip sessions in a SQLite database.
//
// Each record captures the device, extracted metadata, final album path,
// outcome, exit code, and timing for one workflow run. The store is
// best-effort from the workflow's point of view: persistence failures are
// logged and never alter the rip outcome.
package history
