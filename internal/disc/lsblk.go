package disc

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Enumerate lists optical drives reported by lsblk, in lsblk order.
func Enumerate(ctx context.Context) ([]string, error) {
	output, err := exec.CommandContext(ctx, "lsblk", "-P", "-d", "-o", "NAME,TYPE").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run lsblk: %w", err)
	}
	return ParseOpticalDrives(string(output)), nil
}

// Drives returns configured devices when present, otherwise enumerates.
func Drives(ctx context.Context, configured []string) ([]string, error) {
	if len(configured) > 0 {
		devices := make([]string, 0, len(configured))
		for _, device := range configured {
			if normalized := NormalizeDevice(device); normalized != "" {
				devices = append(devices, normalized)
			}
		}
		return devices, nil
	}
	return Enumerate(ctx)
}

// ParseOpticalDrives extracts rom devices from lsblk -P output.
func ParseOpticalDrives(output string) []string {
	var devices []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		data := parseLSBLKKeyValueLine(line)
		if data["TYPE"] != "rom" || data["NAME"] == "" {
			continue
		}
		devices = append(devices, NormalizeDevice(data["NAME"]))
	}
	return devices
}

// NormalizeDevice turns "sr0" or "dev:/dev/sr0" into "/dev/sr0".
func NormalizeDevice(device string) string {
	trimmed := strings.TrimSpace(device)
	trimmed = strings.TrimPrefix(trimmed, "dev:")
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "/") {
		return trimmed
	}
	return "/dev/" + trimmed
}

func parseLSBLKKeyValueLine(line string) map[string]string {
	result := make(map[string]string)
	fields := strings.Fields(line)
	for _, field := range fields {
		parts := strings.SplitN(field, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, "\"")
		result[key] = value
	}
	return result
}
