// Package notify sends desktop and webhook notifications about command
// results.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gen2brain/beeep"
)

// EventType classifies a notification event.
type EventType string

const (
	EventFailed    EventType = "command_failed"
	EventSucceeded EventType = "command_succeeded"
)

// Event describes a finished command run.
type Event struct {
	CommandID   string
	CommandName string
	Type        EventType
	ExitCode    int
	Message     string
	Timestamp   time.Time
}

// Config controls which channels a dispatcher uses.
type Config struct {
	// Desktop enables desktop notifications via system APIs.
	Desktop bool
	// WebhookURL is an optional URL to POST events to.
	WebhookURL string
}

// Dispatcher sends notification events to the configured channels.
type Dispatcher struct {
	cfg    Config
	client *http.Client
}

// NewDispatcher creates a Dispatcher with sensible defaults.
func NewDispatcher(cfg Config) *Dispatcher {
	return &Dispatcher{
		cfg: cfg,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Dispatch sends one event. Failures are swallowed: notifications must never
// disturb the run itself.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	title := strings.TrimSpace(event.CommandName)
	if title == "" {
		title = "fnug"
	}
	message := strings.TrimSpace(event.Message)
	if message == "" {
		message = string(event.Type)
	}
	if len(message) > 800 {
		message = message[:800] + "..."
	}

	if d.cfg.Desktop {
		_ = beeep.Notify(title, message, "")
	}

	if d.cfg.WebhookURL != "" {
		payload := map[string]any{
			"command":   event.CommandName,
			"commandId": event.CommandID,
			"event":     event.Type,
			"exitCode":  event.ExitCode,
			"message":   message,
			"timestamp": event.Timestamp.Unix(),
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.WebhookURL, bytes.NewReader(body))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := d.client.Do(req)
		if err != nil {
			return
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}
