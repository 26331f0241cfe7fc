package preflight

import (
	"context"
	"fmt"

	"disclabel/internal/disc"
)

// DriveProbe reports the tray state of one optical drive.
type DriveProbe struct {
	Device string
	Status disc.DriveStatus
	Err    error
}

// Detail renders a display-friendly summary for doctor output.
func (p DriveProbe) Detail() string {
	if p.Err != nil {
		return fmt.Sprintf("%s (error: %v)", p.Device, p.Err)
	}
	switch p.Status {
	case disc.DriveStatusDiscOK:
		return p.Device + " (disc loaded)"
	case disc.DriveStatusNoDisc:
		return p.Device + " (empty)"
	case disc.DriveStatusTrayOpen:
		return p.Device + " (tray open)"
	default:
		return fmt.Sprintf("%s (%s)", p.Device, p.Status)
	}
}

// Result converts the probe into a preflight result.
func (p DriveProbe) Result() Result {
	return Result{Name: "Drive", Passed: p.Err == nil, Detail: p.Detail()}
}

// ProbeDrives reports the status of every drive returned by list.
func ProbeDrives(ctx context.Context, list func(context.Context) ([]string, error), status func(string) (disc.DriveStatus, error)) ([]DriveProbe, error) {
	if status == nil {
		status = disc.CheckDriveStatus
	}
	devices, err := list(ctx)
	if err != nil {
		return nil, err
	}
	probes := make([]DriveProbe, 0, len(devices))
	for _, device := range devices {
		st, err := status(device)
		probes = append(probes, DriveProbe{Device: device, Status: st, Err: err})
	}
	return probes, nil
}
