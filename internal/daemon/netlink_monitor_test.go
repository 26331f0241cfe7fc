package daemon

import (
	"context"
	"testing"

	"github.com/pilebones/go-udev/netlink"

	"disclabel/internal/config"
)

func monitorConfig(devices ...string) *config.Config {
	cfg := &config.Config{}
	cfg.Drives.Devices = devices
	return cfg
}

func TestNewNetlinkMonitor(t *testing.T) {
	t.Run("nil config returns nil", func(t *testing.T) {
		if m := newNetlinkMonitor(nil, nil, nil); m != nil {
			t.Error("expected nil monitor for nil config")
		}
	})

	t.Run("normalizes configured devices", func(t *testing.T) {
		m := newNetlinkMonitor(monitorConfig("sr0", "/dev/sr1", " "), nil, nil)
		if m == nil {
			t.Fatal("expected non-nil monitor")
		}
		if len(m.devices) != 2 {
			t.Fatalf("expected 2 device filters, got %v", m.devices)
		}
		if !m.accepts("/dev/sr0") || !m.accepts("/dev/sr1") || m.accepts("/dev/sr2") {
			t.Fatalf("unexpected device filter %v", m.devices)
		}
	})

	t.Run("empty device list accepts any drive", func(t *testing.T) {
		m := newNetlinkMonitor(monitorConfig(), nil, nil)
		if !m.accepts("/dev/sr7") {
			t.Fatal("expected any device to be accepted")
		}
	})
}

func TestNetlinkMonitorRunning(t *testing.T) {
	t.Run("nil monitor returns false", func(t *testing.T) {
		var m *netlinkMonitor
		if m.Running() {
			t.Error("expected Running() to return false for nil monitor")
		}
	})

	t.Run("unstarted monitor returns false", func(t *testing.T) {
		m := newNetlinkMonitor(monitorConfig("/dev/sr0"), nil, nil)
		if m.Running() {
			t.Error("expected Running() to return false for unstarted monitor")
		}
	})
}

func TestNetlinkMonitorStopStartIdempotency(t *testing.T) {
	t.Run("stop on nil monitor is safe", func(t *testing.T) {
		var m *netlinkMonitor
		m.Stop()
	})

	t.Run("start on nil monitor is safe", func(t *testing.T) {
		var m *netlinkMonitor
		if err := m.Start(context.Background()); err != nil {
			t.Fatalf("Start on nil monitor should return nil, got: %v", err)
		}
	})

	t.Run("double stop is safe", func(t *testing.T) {
		m := newNetlinkMonitor(monitorConfig("/dev/sr0"), nil, nil)
		m.Stop()
		m.Stop()
		if m.Running() {
			t.Error("expected Running() to return false after Stop on unstarted monitor")
		}
	})

	t.Run("start without netlink privileges is non-fatal", func(t *testing.T) {
		m := newNetlinkMonitor(monitorConfig("/dev/sr0"), nil, nil)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := m.Start(ctx); err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
		m.Stop()
	})
}

func TestBuildMatcher(t *testing.T) {
	m := newNetlinkMonitor(monitorConfig("/dev/sr0"), nil, nil)
	matcher := m.buildMatcher()
	if matcher == nil {
		t.Fatal("expected non-nil matcher")
	}

	discEnv := map[string]string{
		"SUBSYSTEM":      "block",
		"ID_CDROM":       "1",
		"ID_CDROM_MEDIA": "1",
	}
	cases := []struct {
		name  string
		event netlink.UEvent
		want  bool
	}{
		{"change with media", netlink.UEvent{Action: netlink.CHANGE, Env: discEnv}, true},
		{"add with media", netlink.UEvent{Action: netlink.ADD, Env: discEnv}, true},
		{"remove ignored", netlink.UEvent{Action: netlink.REMOVE, Env: discEnv}, false},
		{"missing media flag", netlink.UEvent{Action: netlink.CHANGE, Env: map[string]string{
			"SUBSYSTEM": "block",
			"ID_CDROM":  "1",
		}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := matcher.Evaluate(tc.event); got != tc.want {
				t.Fatalf("Evaluate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHandleEventWakesLoop(t *testing.T) {
	newMonitor := func(devices ...string) (*netlinkMonitor, *int) {
		wakes := 0
		return newNetlinkMonitor(monitorConfig(devices...), nil, func() { wakes++ }), &wakes
	}

	t.Run("ignores event without device name", func(t *testing.T) {
		m, wakes := newMonitor("/dev/sr0")
		m.handleEvent(netlink.UEvent{Action: netlink.CHANGE, Env: map[string]string{}})
		if *wakes != 0 {
			t.Error("wake should not fire for event without device name")
		}
	})

	t.Run("ignores non-configured device", func(t *testing.T) {
		m, wakes := newMonitor("/dev/sr0")
		m.handleEvent(netlink.UEvent{Action: netlink.CHANGE, Env: map[string]string{"DEVNAME": "/dev/sr1"}})
		if *wakes != 0 {
			t.Error("wake should not fire for non-configured device")
		}
	})

	t.Run("wakes for configured device", func(t *testing.T) {
		m, wakes := newMonitor("/dev/sr0")
		m.handleEvent(netlink.UEvent{Action: netlink.CHANGE, Env: map[string]string{"DEVNAME": "/dev/sr0"}})
		if *wakes != 1 {
			t.Errorf("expected 1 wake, got %d", *wakes)
		}
	})

	t.Run("extracts device from DEVPATH when DEVNAME missing", func(t *testing.T) {
		m, wakes := newMonitor("/dev/sr0")
		m.handleEvent(netlink.UEvent{
			Action: netlink.CHANGE,
			Env: map[string]string{
				"DEVPATH": "/devices/pci0000:00/0000:00:1f.2/ata1/host0/target0:0:0/0:0:0:0/block/sr0",
			},
		})
		if *wakes != 1 {
			t.Errorf("expected wake from DEVPATH device, got %d", *wakes)
		}
	})
}
