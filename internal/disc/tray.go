package disc

import (
	"context"
	"fmt"
	"strings"
	"time"

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

func openDevice(devicePath string) (int, error) {
	devicePath = strings.TrimSpace(devicePath)
	if devicePath == "" {
		return -1, fmt.Errorf("empty device path")
	}
	fd, err := unix.Open(devicePath, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return -1, fmt.Errorf("open %s: %w", devicePath, err)
	}
	return fd, nil
}

// CheckDriveStatus queries the drive state using the CDROM_DRIVE_STATUS ioctl.
func CheckDriveStatus(devicePath string) (DriveStatus, error) {
	fd, err := openDevice(devicePath)
	if err != nil {
		return DriveStatusNoInfo, err
	}
	defer unix.Close(fd) //nolint:errcheck

	return driveStatus(fd, devicePath)
}

func driveStatus(fd int, devicePath string) (DriveStatus, error) {
	status, err := unix.IoctlRetInt(fd, ioctlCDROMDriveStatus)
	if err != nil {
		return DriveStatusNoInfo, fmt.Errorf("ioctl CDROM_DRIVE_STATUS on %s: %w", devicePath, err)
	}
	return DriveStatus(status), nil
}

// WaitForReady polls the drive until it reports DriveStatusDiscOK, the drive
// reports no disc, or maxWait elapses.
func WaitForReady(ctx context.Context, devicePath string, maxWait time.Duration) (DriveStatus, error) {
	const pollInterval = time.Second

	deadline := time.Now().Add(maxWait)
	var lastStatus DriveStatus
	for {
		status, err := CheckDriveStatus(devicePath)
		if err != nil {
			return status, err
		}
		lastStatus = status
		if status == DriveStatusDiscOK || status == DriveStatusNoDisc {
			return status, nil
		}
		if !time.Now().Before(deadline) {
			return lastStatus, fmt.Errorf("drive %s not ready after %s (last status: %s)", devicePath, maxWait, lastStatus)
		}

		select {
		case <-ctx.Done():
			return lastStatus, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
