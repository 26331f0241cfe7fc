package disc

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"

	"disclabel/internal/services"
)

// Reader reads the table of contents of the disc in a drive.
type Reader interface {
	ReadDisc(ctx context.Context, device string) (Disc, error)
}

type deviceReader struct{}

// NewReader returns a Reader backed by the Linux CDROM ioctls.
func NewReader() Reader {
	return deviceReader{}
}

// ReadDisc returns services.ErrNoDisc when the tray is empty, open, or holds
// an unreadable disc.
func (deviceReader) ReadDisc(ctx context.Context, device string) (Disc, error) {
	if err := ctx.Err(); err != nil {
		return Disc{}, err
	}
	device = NormalizeDevice(device)
	fd, err := openDevice(device)
	if err != nil {
		return Disc{}, services.Wrap(services.ErrNoDisc, "disc", "open", "cannot open drive", err)
	}
	defer unix.Close(fd) //nolint:errcheck

	status, err := driveStatus(fd, device)
	if err != nil {
		return Disc{}, services.Wrap(services.ErrNoDisc, "disc", "status", "drive status unavailable", err)
	}
	if status != DriveStatusDiscOK {
		return Disc{}, services.Wrap(services.ErrNoDisc, "disc", "status", fmt.Sprintf("drive %s", device), fmt.Errorf("status %s", status))
	}

	records, leadOut, err := readTOC(fd)
	if err != nil {
		return Disc{}, services.Wrap(services.ErrNoDisc, "disc", "read toc", "unreadable table of contents", err)
	}
	first, offsets, adjustedLeadOut, err := audioLayout(records, leadOut)
	if err != nil {
		return Disc{}, services.Wrap(services.ErrNoDisc, "disc", "read toc", "no audio session", err)
	}
	d, err := NewDisc(device, first, adjustedLeadOut, offsets)
	if err != nil {
		return Disc{}, services.Wrap(services.ErrNoDisc, "disc", "disc id", "invalid table of contents", err)
	}
	return d, nil
}
