package disc

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"golang.org/x/sys/unix"
)

const ioctlCDROMEject = 0x5309

// Ejector defines disc eject operations.
type Ejector interface {
	Eject(ctx context.Context, device string) error
}

type commandEjector struct {
	binary string
}

// NewEjector creates an ejector that shells out to the eject utility and
// falls back to the CDROMEJECT ioctl when the utility is missing.
func NewEjector() Ejector {
	return commandEjector{binary: "eject"}
}

func (e commandEjector) Eject(ctx context.Context, device string) error {
	device = NormalizeDevice(device)
	var cmd *exec.Cmd
	if device == "" {
		cmd = exec.CommandContext(ctx, e.binary)
	} else {
		cmd = exec.CommandContext(ctx, e.binary, device)
	}
	err := cmd.Run()
	if err == nil {
		return nil
	}
	if errors.Is(err, exec.ErrNotFound) && device != "" {
		if ioctlErr := ejectIoctl(device); ioctlErr != nil {
			return fmt.Errorf("eject %s: %w", device, ioctlErr)
		}
		return nil
	}
	return fmt.Errorf("eject %s: %w", device, err)
}

func ejectIoctl(device string) error {
	fd, err := openDevice(device)
	if err != nil {
		return err
	}
	defer unix.Close(fd) //nolint:errcheck
	if _, err := unix.IoctlRetInt(fd, ioctlCDROMEject); err != nil {
		return fmt.Errorf("ioctl CDROMEJECT: %w", err)
	}
	return nil
}

// EjectAsync ejects in the background and reports failures to onError.
func EjectAsync(ctx context.Context, ejector Ejector, device string, onError func(error)) {
	if ejector == nil {
		return
	}
	go func() {
		if err := ejector.Eject(context.WithoutCancel(ctx), device); err != nil && onError != nil {
			onError(err)
		}
	}()
}
