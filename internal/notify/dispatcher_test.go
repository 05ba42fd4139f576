package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDispatchPostsWebhook(t *testing.T) {
	received := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		received <- payload
	}))
	defer srv.Close()

	d := NewDispatcher(Config{WebhookURL: srv.URL})
	d.Dispatch(context.Background(), Event{
		CommandID:   "lint",
		CommandName: "lint",
		Type:        EventFailed,
		ExitCode:    2,
		Message:     "exit code 2",
		Timestamp:   time.Now(),
	})

	select {
	case payload := <-received:
		if payload["commandId"] != "lint" {
			t.Errorf("commandId = %v", payload["commandId"])
		}
		if payload["event"] != string(EventFailed) {
			t.Errorf("event = %v", payload["event"])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("webhook not called")
	}
}

func TestDispatchNoChannelsIsNoop(t *testing.T) {
	d := NewDispatcher(Config{})
	d.Dispatch(context.Background(), Event{CommandName: "x", Type: EventSucceeded})
}
