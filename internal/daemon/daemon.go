package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"disclabel/internal/config"
	"disclabel/internal/logging"
)

// Daemon owns the watcher lifecycle and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	monitor *discMonitor
	netlink *netlinkMonitor

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	LockFilePath  string
	NetlinkActive bool
}

// New constructs a daemon around the given monitor collaborators.
func New(cfg *config.Config, deps MonitorDeps, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	monitor, err := newDiscMonitor(cfg, deps, logger)
	if err != nil {
		return nil, err
	}
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		monitor:  monitor,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	if cfg.Drives.Netlink {
		d.netlink = newNetlinkMonitor(cfg, logger, monitor.Wake)
	}
	return d, nil
}

// Start acquires the lock and launches the poll loop in the background.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another disclabel watcher instance is already running")
	}

	logging.CleanupOldLogs(d.logger, d.cfg.Logging.RetentionDays, logging.RetentionTarget{
		Dir:     d.cfg.Paths.LogDir,
		Pattern: "disclabel*.log",
		Exclude: []string{filepath.Join(d.cfg.Paths.LogDir, logging.LogFileName)},
	})

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	if err := d.netlink.Start(runCtx); err != nil {
		d.logger.Warn("netlink monitor unavailable", logging.Error(err))
	}

	done := d.done
	go func() {
		defer close(done)
		d.monitor.run(runCtx)
	}()

	d.running.Store(true)
	d.logger.Info("disclabel watcher started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// Stop cancels the poll loop, waits for it, and releases the lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}
	d.netlink.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.done != nil {
		<-d.done
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("disclabel watcher stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Run starts the daemon and blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()
	<-done
	d.Stop()
	return nil
}

// Status reports the daemon state.
func (d *Daemon) Status() Status {
	return Status{
		Running:       d.running.Load(),
		LockFilePath:  d.lockPath,
		NetlinkActive: d.netlink.Running(),
	}
}

// LockHeld reports whether another process holds the watcher lock at lockPath.
func LockHeld(lockPath string) (bool, error) {
	if _, err := os.Stat(lockPath); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	probe := flock.New(lockPath)
	ok, err := probe.TryLock()
	if err != nil {
		return false, fmt.Errorf("probe lock: %w", err)
	}
	if !ok {
		return true, nil
	}
	return false, probe.Unlock()
}
