package label

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"disclabel/internal/services"
)

// Printer spools a rendered label image.
type Printer interface {
	Print(ctx context.Context, imagePath string) error
}

// NewPrinter returns a printer spooling to the named CUPS queue with lp.
func NewPrinter(queue string) Printer {
	return &lpPrinter{binary: "lp", queue: strings.TrimSpace(queue)}
}

type lpPrinter struct {
	binary string
	queue  string
}

func (p *lpPrinter) Print(ctx context.Context, imagePath string) error {
	if p.queue == "" {
		return services.Wrap(services.ErrPrinterUnavailable, "label", "print", "no printer queue configured", nil)
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.binary, "-d", p.queue, imagePath)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return services.Wrap(services.ErrPrinterUnavailable, "label", "print", p.binary+" not installed", err)
		}
		msg := fmt.Sprintf("spool to %s failed", p.queue)
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			msg += ": " + detail
		}
		return services.Wrap(services.ErrPrinterUnavailable, "label", "print", msg, err)
	}
	return nil
}
