package disc

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// ioctlCDROMDriveStatus is the Linux ioctl number for CDROM_DRIVE_STATUS.
const ioctlCDROMDriveStatus = 0x5326

// DriveStatus represents the result of a CDROM_DRIVE_STATUS ioctl call.
type DriveStatus int

const (
	DriveStatusNoInfo   DriveStatus = 0
	DriveStatusNoDisc   DriveStatus = 1
	DriveStatusTrayOpen DriveStatus = 2
	DriveStatusNotReady DriveStatus = 3
	DriveStatusDiscOK   DriveStatus = 4
)

// String returns a human-readable label for the drive status.
func (s DriveStatus) String() string {
	switch s {
	case DriveStatusNoInfo:
		return "no_info"
	case DriveStatusNoDisc:
		return "no_disc"
	case DriveStatusTrayOpen:
		return "tray_open"
	case DriveStatusNotReady:
		return "not_ready"
	case DriveStatusDiscOK:
		return "disc_ok"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// DevicePath resolves a device short name such as sr0 to its /dev node.
// Absolute paths pass through unchanged.
func DevicePath(device string) string {
	device = strings.TrimSpace(device)
	if device == "" {
		return ""
	}
	if filepath.IsAbs(device) {
		return filepath.Clean(device)
	}
	return "/dev/" + device
}

// ProbeResult classifies a single drive-status query.
type ProbeResult struct {
	// Status is the raw drive status; DriveStatusNoInfo when the probe failed.
	Status DriveStatus
	// Reason is a human-readable label for the outcome.
	Reason string
	// Ready reports whether the workflow should proceed with a rip. Probe
	// failures set Ready so the ripper can surface its own, more specific
	// error instead of a silent abort.
	Ready bool
	// Failed reports that the probe itself could not complete.
	Failed bool
	// Err holds the probe failure, if any.
	Err error
}

// CheckDriveStatus queries the drive state using the CDROM_DRIVE_STATUS ioctl.
// Returns an error if the device cannot be opened or the ioctl fails.
func CheckDriveStatus(devicePath string) (DriveStatus, error) {
	devicePath = strings.TrimSpace(devicePath)
	if devicePath == "" {
		return DriveStatusNoInfo, fmt.Errorf("empty device path")
	}

	fd, err := unix.Open(devicePath, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return DriveStatusNoInfo, fmt.Errorf("open %s: %w", devicePath, err)
	}
	defer unix.Close(fd) //nolint:errcheck

	status, err := unix.IoctlRetInt(fd, ioctlCDROMDriveStatus)
	if err != nil {
		return DriveStatusNoInfo, fmt.Errorf("ioctl CDROM_DRIVE_STATUS on %s: %w", devicePath, err)
	}

	return DriveStatus(status), nil
}

// Probe runs a single drive-status query and classifies the outcome. A probe
// failure is fail-open: the result reports Ready with Failed set so callers
// can log the degraded check and continue.
func Probe(devicePath string) ProbeResult {
	status, err := CheckDriveStatus(devicePath)
	if err != nil {
		return ProbeResult{Status: DriveStatusNoInfo, Reason: "Check Failed", Ready: true, Failed: true, Err: err}
	}
	return Classify(status)
}

// Classify maps a raw drive status to its workflow outcome.
func Classify(status DriveStatus) ProbeResult {
	switch status {
	case DriveStatusDiscOK:
		return ProbeResult{Status: status, Reason: "Disc Present", Ready: true}
	case DriveStatusTrayOpen:
		return ProbeResult{Status: status, Reason: "Tray Open"}
	case DriveStatusNoDisc:
		return ProbeResult{Status: status, Reason: "No Disc"}
	case DriveStatusNotReady:
		return ProbeResult{Status: status, Reason: "Drive Not Ready"}
	default:
		return ProbeResult{Status: status, Reason: fmt.Sprintf("Unknown Status (%d)", int(status))}
	}
}
