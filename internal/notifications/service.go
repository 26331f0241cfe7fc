package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"disclabel/internal/config"
)

const userAgent = "disclabel/1.0"

// Event names a notification-worthy watcher milestone.
type Event string

const (
	EventDiscIdentified  Event = "disc_identified"
	EventDiscUnresolved  Event = "disc_unresolved"
	EventMovieIdentified Event = "movie_identified"
	EventLabelPrinted    Event = "label_printed"
	EventError           Event = "error"
	EventTest            Event = "test"
)

// Payload carries event fields. Known keys: artist, album, year, genre,
// source, drive, title, label, context, error.
type Payload map[string]string

// Service defines the notification surface exposed to the watcher and CLI.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled: map[Event]bool{
			EventDiscIdentified:  cfg.Notifications.Identified,
			EventMovieIdentified: cfg.Notifications.Identified,
			EventDiscUnresolved:  cfg.Notifications.Unresolved,
			EventLabelPrinted:    cfg.Notifications.LabelPrinted,
			EventError:           cfg.Notifications.Errors,
			EventTest:            true,
		},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  map[Event]bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, fields Payload) error {
	if !n.enabled[event] {
		return nil
	}
	data, ok := format(event, fields)
	if !ok {
		return nil
	}
	return n.send(ctx, data)
}

func format(event Event, fields Payload) (payload, bool) {
	get := func(key string) string { return strings.TrimSpace(fields[key]) }
	switch event {
	case EventDiscIdentified:
		message := fmt.Sprintf("💿 Identified: %s - %s", get("artist"), get("album"))
		if year := get("year"); year != "" {
			message += fmt.Sprintf(" (%s)", year)
		}
		if genre := get("genre"); genre != "" {
			message += fmt.Sprintf(" [%s]", genre)
		}
		tags := []string{"disclabel", "identify"}
		if source := get("source"); source != "" {
			tags = append(tags, source)
		}
		return payload{title: "disclabel - Identified", message: message, tags: tags}, true
	case EventMovieIdentified:
		message := fmt.Sprintf("🎬 Identified: %s", get("title"))
		if year := get("year"); year != "" {
			message += fmt.Sprintf(" (%s)", year)
		}
		return payload{title: "disclabel - Identified", message: message, tags: []string{"disclabel", "identify", "movie"}}, true
	case EventDiscUnresolved:
		drive := get("drive")
		if drive == "" {
			drive = "unknown drive"
		}
		return payload{
			title:   "disclabel - Unidentified Disc",
			message: fmt.Sprintf("Could not identify the disc in %s\nManual labeling required", drive),
			tags:    []string{"disclabel", "unidentified", "review"},
		}, true
	case EventLabelPrinted:
		return payload{
			title:   "disclabel - Label Printed",
			message: fmt.Sprintf("🏷️ Label printed: %s", get("label")),
			tags:    []string{"disclabel", "label", "printed"},
		}, true
	case EventError:
		var builder strings.Builder
		builder.WriteString("❌ Error")
		if contextLabel := get("context"); contextLabel != "" {
			builder.WriteString(" with ")
			builder.WriteString(contextLabel)
		}
		builder.WriteString(": ")
		if errText := get("error"); errText != "" {
			builder.WriteString(errText)
		} else {
			builder.WriteString("unknown")
		}
		return payload{title: "disclabel - Error", message: builder.String(), tags: []string{"disclabel", "error", "alert"}, priority: "high"}, true
	case EventTest:
		return payload{title: "disclabel - Test", message: "🧪 Notification system test", tags: []string{"disclabel", "test"}, priority: "low"}, true
	default:
		return payload{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
