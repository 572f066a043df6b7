// Package services defines the shared error taxonomy for external tool
// integrations.
//
// Stage code wraps failures with sentinel markers (ErrExternalTool,
// ErrValidation, ...) via Wrap so callers can classify outcomes without
// string matching, and ExitCodeError preserves an external tool's exit
// status all the way out to the process exit code.
package services
