package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestNotify_Success(t *testing.T) {
	var received AgentNotification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode notification: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	notifier := NewNotifierWithURL(srv.URL, zaptest.NewLogger(t))
	err := notifier.Notify(context.Background(), AgentNotification{
		OrderID:       "1001",
		CustomerName:  "John Smith",
		CustomerPhone: "+358403640854",
		Description:   "Whole Grain Bread: out of stock",
		IssueCount:    1,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if received.CustomerPhone != "+358403640854" {
		t.Errorf("Expected phone forwarded, got %q", received.CustomerPhone)
	}
	if received.IssueCount != 1 {
		t.Errorf("Expected issue count 1, got %d", received.IssueCount)
	}
}

func TestNotify_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	notifier := NewNotifierWithURL(srv.URL, zaptest.NewLogger(t))
	if err := notifier.Notify(context.Background(), AgentNotification{OrderID: "1001"}); err == nil {
		t.Fatal("Expected error on 500 response")
	}
}

func TestNotify_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	notifier := NewNotifierWithURL(srv.URL, zaptest.NewLogger(t))
	for i := 0; i < 10; i++ {
		notifier.Notify(context.Background(), AgentNotification{OrderID: "1001"})
	}
	// Breaker trips at 5 consecutive failures, so the server must not
	// have seen all 10 attempts.
	if calls >= 10 {
		t.Errorf("Expected circuit breaker to stop calls, server saw %d", calls)
	}
}
