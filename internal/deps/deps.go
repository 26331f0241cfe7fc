package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"disclabel/internal/config"
)

// Requirement defines an external binary disclabel shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Satisfied reports whether the dependency is present or not needed.
func (s Status) Satisfied() bool {
	return s.Available || s.Optional
}

// Requirements lists the binaries the given configuration relies on.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{
			Name:        "eject",
			Command:     "eject",
			Description: "Opens the drive tray; the CDROMEJECT ioctl is used when missing",
			Optional:    true,
		},
	}
	if cfg == nil {
		return reqs
	}
	reqs = append(reqs, Requirement{
		Name:        "lsblk",
		Command:     "lsblk",
		Description: "Enumerates optical drives when drives.devices is empty",
		Optional:    len(cfg.Drives.Devices) > 0,
	})
	if cfg.Output.WritesLabels() && cfg.Label.Print {
		reqs = append(reqs, Requirement{
			Name:        "lp",
			Command:     "lp",
			Description: fmt.Sprintf("Sends labels to the %q CUPS queue", cfg.Label.Printer),
		})
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
