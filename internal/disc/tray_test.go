package disc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"disclabel/internal/services"
	"disclabel/internal/testsupport"
)

func TestDriveStatusString(t *testing.T) {
	tests := []struct {
		status DriveStatus
		want   string
	}{
		{DriveStatusNoInfo, "no_info"},
		{DriveStatusNoDisc, "no_disc"},
		{DriveStatusTrayOpen, "tray_open"},
		{DriveStatusNotReady, "not_ready"},
		{DriveStatusDiscOK, "disc_ok"},
		{DriveStatus(99), "unknown(99)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.status.String()
			if got != tt.want {
				t.Errorf("DriveStatus(%d).String() = %q, want %q", int(tt.status), got, tt.want)
			}
		})
	}
}

func TestCheckDriveStatusEmptyPath(t *testing.T) {
	_, err := CheckDriveStatus("")
	if err == nil {
		t.Fatal("expected error for empty device path")
	}
}

func TestCheckDriveStatusInvalidPath(t *testing.T) {
	_, err := CheckDriveStatus("/dev/nonexistent_device_12345")
	if err == nil {
		t.Fatal("expected error for nonexistent device")
	}
}

func TestWaitForReadyInvalidDevice(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WaitForReady(ctx, "/dev/nonexistent_device_12345", time.Second)
	if err == nil {
		t.Fatal("expected error for cancelled context or invalid device")
	}
}

func TestReadDiscMissingDeviceIsNoDisc(t *testing.T) {
	_, err := NewReader().ReadDisc(context.Background(), "/dev/nonexistent_device_12345")
	if !errors.Is(err, services.ErrNoDisc) {
		t.Fatalf("expected ErrNoDisc, got %v", err)
	}
}

func TestParseOpticalDrives(t *testing.T) {
	output := `NAME="sda" TYPE="disk"
NAME="sr0" TYPE="rom"

NAME="sr1" TYPE="rom"
`
	got := ParseOpticalDrives(output)
	if len(got) != 2 || got[0] != "/dev/sr0" || got[1] != "/dev/sr1" {
		t.Fatalf("unexpected drives %v", got)
	}
}

func TestNormalizeDevice(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/dev/sr0", "/dev/sr0"},
		{"dev:/dev/sr0", "/dev/sr0"},
		{"sr1", "/dev/sr1"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeDevice(tt.input); got != tt.want {
			t.Errorf("NormalizeDevice(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDrivesPrefersConfiguredDevices(t *testing.T) {
	got, err := Drives(context.Background(), []string{"sr2", "", "/dev/sr0"})
	if err != nil {
		t.Fatalf("Drives returned error: %v", err)
	}
	if len(got) != 2 || got[0] != "/dev/sr2" || got[1] != "/dev/sr0" {
		t.Fatalf("unexpected drives %v", got)
	}
}

func TestEjectorRunsEjectBinary(t *testing.T) {
	dir := t.TempDir()
	argsFile := testsupport.StubScript(t, dir, "eject", "exit 0")
	testsupport.PrependPath(t, dir)

	if err := NewEjector().Eject(context.Background(), "sr0"); err != nil {
		t.Fatalf("Eject returned error: %v", err)
	}
	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	if strings.TrimSpace(string(data)) != "/dev/sr0" {
		t.Fatalf("eject args = %q", data)
	}
}

func TestEjectorReportsFailure(t *testing.T) {
	dir := t.TempDir()
	testsupport.StubScript(t, dir, "eject", "exit 3")
	testsupport.PrependPath(t, dir)

	if err := NewEjector().Eject(context.Background(), "/dev/sr0"); err == nil {
		t.Fatal("expected error from failing eject")
	}
}

func TestEjectAsyncReportsErrors(t *testing.T) {
	dir := t.TempDir()
	testsupport.StubScript(t, dir, "eject", "exit 1")
	testsupport.PrependPath(t, dir)

	errs := make(chan error, 1)
	EjectAsync(context.Background(), NewEjector(), filepath.Join("/dev", "sr0"), func(err error) { errs <- err })
	select {
	case err := <-errs:
		if err == nil {
			t.Fatal("expected non-nil error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for eject error")
	}
}
