package daemon

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"disclabel/internal/catalog"
	"disclabel/internal/config"
	"disclabel/internal/label"
	"disclabel/internal/logging"
	"disclabel/internal/metadata"
	"disclabel/internal/notifications"
	"disclabel/internal/services"
)

// Sink consumes a resolved record read from drive.
type Sink interface {
	Handle(ctx context.Context, drive string, record metadata.Record) error
}

// LabelProducer renders and optionally prints a label.
type LabelProducer interface {
	Produce(ctx context.Context, record metadata.Record) (label.Result, error)
}

// SinkOption configures NewSink.
type SinkOption func(*sinkSettings)

type sinkSettings struct {
	logger *slog.Logger
}

// WithSinkLogger sets the logger used for best-effort failures.
func WithSinkLogger(logger *slog.Logger) SinkOption {
	return func(s *sinkSettings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSink builds the sink selected by output.mode.
func NewSink(cfg *config.Config, labels LabelProducer, notifier notifications.Service, opts ...SinkOption) (Sink, error) {
	settings := sinkSettings{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&settings)
	}
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "daemon", "sink", "config is required", nil)
	}
	if notifier == nil {
		notifier = notifications.NewService(nil)
	}
	var sinks multiSink
	if cfg.Output.WritesLabels() {
		if labels == nil {
			return nil, services.Wrap(services.ErrConfiguration, "daemon", "sink", "label output requires a label service", nil)
		}
		sinks = append(sinks, &labelSink{labels: labels, notifier: notifier, logger: settings.logger})
	}
	if cfg.Output.WritesCSV() {
		sinks = append(sinks, &csvSink{path: cfg.Paths.CSVPath})
	}
	if len(sinks) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "daemon", "sink", "output.mode selects no output", nil)
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sinks, nil
}

type labelSink struct {
	labels   LabelProducer
	notifier notifications.Service
	logger   *slog.Logger
}

func (s *labelSink) Handle(ctx context.Context, _ string, record metadata.Record) error {
	result, err := s.labels.Produce(ctx, record)
	if err != nil {
		return err
	}
	if result.Printed {
		name := strings.TrimSuffix(record.Primary+" - "+record.Secondary, " - ")
		if err := s.notifier.Publish(ctx, notifications.EventLabelPrinted, notifications.Payload{"label": name}); err != nil {
			s.logger.Debug("notification failed",
				logging.String("notification_event", string(notifications.EventLabelPrinted)),
				logging.Error(err),
			)
		}
	}
	return nil
}

type csvSink struct {
	path string
}

func (s *csvSink) Handle(_ context.Context, drive string, record metadata.Record) error {
	return catalog.Append(s.path, catalog.FromRecord(drive, record))
}

// multiSink runs every sink; one failing does not skip the rest.
type multiSink []Sink

func (m multiSink) Handle(ctx context.Context, drive string, record metadata.Record) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Handle(ctx, drive, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
