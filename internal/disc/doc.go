// Package disc interfaces with physical optical drives.
//
// It provides the CDROM_DRIVE_STATUS probe used to gate rips, the outcome
// classification for each raw status code, and ejector helpers so the
// workflow can release discs. Device quirks stay isolated here, away from
// higher-level workflow code.
package disc
