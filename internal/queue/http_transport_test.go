package queue_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pieceflow/dealbridge/internal/queue"
)

func TestHTTPTransport_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messageId":"gw-42"}`))
	}))
	defer srv.Close()

	tr := queue.NewHTTPTransport(time.Second)
	resp, err := tr.Send(context.Background(), queue.SendRequest{QueueURL: srv.URL, Body: "{}", GroupID: "g1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK || resp.MessageID != "gw-42" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if got["body"] != "{}" || got["groupId"] != "g1" {
		t.Fatalf("unexpected request body %v", got)
	}
}

func TestHTTPTransport_OmitsEmptyGroup(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
	}))
	defer srv.Close()

	if _, err := queue.NewHTTPTransport(time.Second).Send(context.Background(), queue.SendRequest{QueueURL: srv.URL, Body: "{}"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["groupId"]; ok {
		t.Fatalf("expected no groupId, got %v", raw)
	}
}

func TestHTTPTransport_NonAcceptedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	resp, err := queue.NewHTTPTransport(time.Second).Send(context.Background(), queue.SendRequest{QueueURL: srv.URL, Body: "{}"})
	if err == nil || !strings.Contains(err.Error(), "code 500") {
		t.Fatalf("expected status error with code, got %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.StatusCode)
	}
}

func TestHTTPTransport_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	if _, err := queue.NewHTTPTransport(20*time.Millisecond).Send(context.Background(), queue.SendRequest{QueueURL: srv.URL, Body: "{}"}); err == nil {
		t.Fatal("expected timeout error")
	}
}
