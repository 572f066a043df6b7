// Package uploader triggers the copyparty upload for completed albums.
//
// The album path is escaped with systemd-escape into a transport-safe
// identifier, then the per-path upload unit is started via systemctl.
// Failures here are reported to the workflow but never change the rip
// outcome.
package uploader
