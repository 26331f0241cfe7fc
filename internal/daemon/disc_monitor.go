package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"disclabel/internal/config"
	"disclabel/internal/disc"
	"disclabel/internal/discidcache"
	"disclabel/internal/identification"
	"disclabel/internal/logging"
	"disclabel/internal/metadata"
	"disclabel/internal/notifications"
	"disclabel/internal/services"
)

// DiscResolver turns a disc fingerprint into a canonical record.
type DiscResolver interface {
	ResolveDisc(ctx context.Context, fingerprint string, drive identification.DriveContext) (metadata.Record, error)
}

// DriveLister returns the drives to poll, in order.
type DriveLister func(ctx context.Context) ([]string, error)

// MonitorDeps are the collaborators of a disc monitor.
type MonitorDeps struct {
	Drives   DriveLister
	Reader   disc.Reader
	Resolver DiscResolver
	Sink     Sink
	Ejector  disc.Ejector
	Cache    *discidcache.Cache
	Notifier notifications.Service
}

// discMonitor polls every drive once per tick, processing at most one disc at
// a time. All state is owned by the loop goroutine.
type discMonitor struct {
	logger   *slog.Logger
	drives   DriveLister
	reader   disc.Reader
	resolver DiscResolver
	sink     Sink
	ejector  disc.Ejector
	cache    *discidcache.Cache
	notifier notifications.Service

	ejectAfter   bool
	pollInterval time.Duration
	settleDelay  time.Duration
	errorBackoff time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
	newEventID   func() string

	lastSeen map[string]string
	wake     chan struct{}
}

func newDiscMonitor(cfg *config.Config, deps MonitorDeps, logger *slog.Logger) (*discMonitor, error) {
	if cfg == nil {
		return nil, errors.New("disc monitor requires config")
	}
	if deps.Reader == nil || deps.Resolver == nil || deps.Sink == nil {
		return nil, errors.New("disc monitor requires reader, resolver, and sink")
	}
	if deps.Drives == nil {
		configured := cfg.Drives.Devices
		deps.Drives = func(ctx context.Context) ([]string, error) {
			return disc.Drives(ctx, configured)
		}
	}
	if deps.Ejector == nil {
		deps.Ejector = disc.NewEjector()
	}
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewService(nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &discMonitor{
		logger:       logging.NewComponentLogger(logger, "disc-monitor"),
		drives:       deps.Drives,
		reader:       deps.Reader,
		resolver:     deps.Resolver,
		sink:         deps.Sink,
		ejector:      deps.Ejector,
		cache:        deps.Cache,
		notifier:     deps.Notifier,
		ejectAfter:   cfg.Output.EjectAfter,
		pollInterval: cfg.Drives.PollInterval(),
		settleDelay:  cfg.Drives.SettleDelay(),
		errorBackoff: cfg.Drives.ErrorBackoff(),
		sleep:        sleepContext,
		newEventID:   uuid.NewString,
		lastSeen:     make(map[string]string),
		wake:         make(chan struct{}, 1),
	}, nil
}

// Wake makes the loop poll immediately. Safe from any goroutine.
func (m *discMonitor) Wake() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// run polls until ctx is cancelled. A failing tick is logged and followed by
// the error back-off; it never stops the loop.
func (m *discMonitor) run(ctx context.Context) {
	m.logger.Info("watching optical drives",
		logging.String(logging.FieldEventType, "watcher_started"),
		logging.Duration("poll_interval", m.pollInterval),
		logging.Duration("settle_delay", m.settleDelay),
	)
	for {
		if err := m.safeTick(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			logging.ErrorWithContext(m.logger, "watcher tick failed; backing off", "watcher_tick_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorKind, services.Classify(err)),
				logging.Duration("backoff", m.errorBackoff),
				logging.String(logging.FieldErrorHint, "check drive permissions and network connectivity"),
			)
			m.publish(ctx, notifications.EventError, notifications.Payload{"context": "watcher", "error": err.Error()})
			if m.sleep(ctx, m.errorBackoff) != nil {
				break
			}
			continue
		}
		if m.idle(ctx) != nil {
			break
		}
	}
	m.logger.Info("watcher stopped", logging.String(logging.FieldEventType, "watcher_stopped"))
}

// idle waits one poll interval or until woken.
func (m *discMonitor) idle(ctx context.Context) error {
	timer := time.NewTimer(m.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.wake:
		return nil
	case <-timer.C:
		return nil
	}
}

func (m *discMonitor) safeTick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("watcher tick panicked",
				logging.String(logging.FieldEventType, "watcher_panic"),
				logging.String("panic", fmt.Sprint(r)),
				logging.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("watcher panic: %v", r)
		}
	}()
	return m.tick(ctx)
}

func (m *discMonitor) tick(ctx context.Context) error {
	drives, err := m.drives(ctx)
	if err != nil {
		return fmt.Errorf("list drives: %w", err)
	}
	for _, device := range drives {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.checkDrive(ctx, device); err != nil {
			return err
		}
	}
	return nil
}

// checkDrive handles a drive whose fingerprint differs from the last one seen.
// Empty drives and unreadable discs are not events.
func (m *discMonitor) checkDrive(ctx context.Context, device string) error {
	current, err := m.reader.ReadDisc(ctx, device)
	if err != nil {
		m.logger.Debug("no readable disc", logging.String(logging.FieldDrive, device), logging.Error(err))
		return nil
	}
	if current.Fingerprint == "" || current.Fingerprint == m.lastSeen[device] {
		return nil
	}

	ctx = services.WithEventID(ctx, m.newEventID())
	ctx = services.WithDrive(ctx, device)
	logger := logging.WithContext(ctx, m.logger)
	logger.Info("disc detected",
		logging.String(logging.FieldEventType, "disc_detected"),
		logging.String(logging.FieldFingerprint, current.Fingerprint),
		logging.Int("track_count", len(current.Tracks)),
	)

	if err := m.sleep(ctx, m.settleDelay); err != nil {
		return err
	}
	settled, err := m.reader.ReadDisc(ctx, device)
	if err != nil {
		logging.WarnWithContext(logger, "disc unreadable after settle delay", "disc_settle_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "disc will be retried on the next poll"),
			logging.String(logging.FieldErrorHint, "clean the disc or check the drive"),
		)
		return nil
	}

	return m.handleDisc(ctx, logger, device, settled)
}

func (m *discMonitor) handleDisc(ctx context.Context, logger *slog.Logger, device string, current disc.Disc) error {
	fingerprint := current.Fingerprint

	record, cached := m.cache.Lookup(fingerprint)
	if cached {
		logger.Info("disc found in cache",
			logging.String(logging.FieldEventType, "decision_summary"),
			logging.String(logging.FieldDecisionType, "discid_cache"),
			logging.String("decision_result", "hit"),
			logging.String("decision_reason", "fingerprint cached"),
		)
	} else {
		var err error
		record, err = m.resolver.ResolveDisc(ctx, fingerprint, identification.DriveContext{
			Device:  device,
			Tracks:  current.Tracks,
			Ejector: m.ejector,
		})
		if err != nil {
			return err
		}
	}
	m.lastSeen[device] = fingerprint

	if !record.Resolved() {
		logger.Info("disc left unresolved",
			logging.String(logging.FieldEventType, "disc_unresolved"),
			logging.String(logging.FieldFingerprint, fingerprint),
		)
		m.publish(ctx, notifications.EventDiscUnresolved, notifications.Payload{"drive": device})
		return nil
	}

	logger.Info("disc identified",
		logging.String(logging.FieldEventType, "disc_identified"),
		logging.String(logging.FieldSource, string(record.Source)),
		logging.String("artist", record.Primary),
		logging.String("album", record.Secondary),
		logging.String("year", record.Year),
		logging.String("genre", record.Genre),
	)
	m.publish(ctx, notifications.EventDiscIdentified, notifications.Payload{
		"artist": record.Primary,
		"album":  record.Secondary,
		"year":   record.Year,
		"genre":  record.Genre,
		"source": string(record.Source),
		"drive":  device,
	})

	if err := m.sink.Handle(ctx, device, record); err != nil {
		logging.ErrorWithContext(logger, "disc output failed", "sink_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorKind, services.Classify(err)),
			logging.String(logging.FieldErrorHint, "check the printer queue and output paths"),
		)
		m.publish(ctx, notifications.EventError, notifications.Payload{
			"context": record.Primary + " - " + record.Secondary,
			"error":   err.Error(),
		})
	}

	if !cached {
		if err := m.cache.Store(fingerprint, record); err != nil {
			logging.WarnWithContext(logger, "failed to cache disc", "discidcache_store_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "disc will be looked up again next time"),
			)
		}
	}

	// Discs that missed the direct lookup were ejected by the resolver.
	if m.ejectAfter && (cached || record.Source == metadata.SourceDiscID) {
		if err := m.ejector.Eject(ctx, device); err != nil {
			logging.WarnWithContext(logger, "eject failed", "eject_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "eject the disc by hand"),
			)
		}
	}
	return nil
}

func (m *discMonitor) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := m.notifier.Publish(ctx, event, payload); err != nil {
		m.logger.Debug("notification failed",
			logging.String("notification_event", string(event)),
			logging.Error(err),
		)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
