// Package workflow orchestrates one rip-to-upload pipeline per disc
// insertion.
//
// A run moves through probe gate, ripping, relocation, optional upload
// trigger, and notification. The session scratch directory is removed on
// every exit path once created, and the tray is ejected whenever a rip was
// attempted. Only ripper-originated failures and missing rip output affect
// the exit code; notifications, history recording, and the upload trigger
// are best-effort.
package workflow
