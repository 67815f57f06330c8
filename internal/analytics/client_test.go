package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestVisitEventsDecodesStream(t *testing.T) {
	var gotQuery map[string]string
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{
			"project":  r.URL.Query().Get("project"),
			"event":    r.URL.Query().Get("event"),
			"category": r.URL.Query().Get("category"),
			"from":     r.URL.Query().Get("from"),
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Write([]byte(`{"gameName":"Orbit","timestamp":"2026-08-01T10:00:00Z"}` + "\n"))
		w.Write([]byte(`{"gameName":"Orbit","timestamp":"2026-08-02T11:30:00Z"}` + "\n"))
		w.Write([]byte("\n"))
		w.Write([]byte(`{"gameName":"Maze Runner","timestamp":"2026-08-03T09:15:00Z"}` + "\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "games-catalog", "secret", zerolog.Nop())
	since := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

	events, err := client.VisitEvents(context.Background(), "game", since)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].GameName != "Orbit" || events[2].GameName != "Maze Runner" {
		t.Errorf("unexpected event names: %+v", events)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotQuery["event"] != "Visit" || gotQuery["category"] != "game" {
		t.Errorf("unexpected query params: %v", gotQuery)
	}
	if gotQuery["from"] != "2026-07-30T00:00:00Z" {
		t.Errorf("expected RFC3339 from param, got %q", gotQuery["from"])
	}
}

func TestVisitEventsRejectsNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "games-catalog", "secret", zerolog.Nop())
	_, err := client.VisitEvents(context.Background(), "game", time.Now())
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestVisitEventsRejectsMalformedLine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"gameName":"Orbit","timestamp":"2026-08-01T10:00:00Z"}` + "\n"))
		w.Write([]byte("not json\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "games-catalog", "secret", zerolog.Nop())
	_, err := client.VisitEvents(context.Background(), "game", time.Now())
	if err == nil {
		t.Fatal("expected error for malformed event line")
	}
}
