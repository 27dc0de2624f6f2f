package calendar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//stint//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:standup@test\r\n" +
	"DTSTAMP:20260201T000000Z\r\n" +
	"SUMMARY:Standup\r\n" +
	"DTSTART:20260220T093000Z\r\n" +
	"DTEND:20260220T094500Z\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:review@test\r\n" +
	"DTSTAMP:20260201T000000Z\r\n" +
	"SUMMARY:Design review\r\n" +
	"DTSTART:20260221T140000Z\r\n" +
	"DURATION:PT1H30M\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:old@test\r\n" +
	"DTSTAMP:20260201T000000Z\r\n" +
	"SUMMARY:Last month\r\n" +
	"DTSTART:20260115T100000Z\r\n" +
	"DTEND:20260115T110000Z\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:broken@test\r\n" +
	"DTSTAMP:20260201T000000Z\r\n" +
	"SUMMARY:No start\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

var (
	windowStart = time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
)

func TestDecode(t *testing.T) {
	constraints, err := Decode(strings.NewReader(testICS), windowStart, windowEnd)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if len(constraints) != 2 {
		t.Fatalf("got %d constraints, want 2", len(constraints))
	}

	standup := constraints[0]
	if standup.Label != "Standup" {
		t.Errorf("label = %q, want Standup", standup.Label)
	}
	if !standup.Start.Equal(time.Date(2026, 2, 20, 9, 30, 0, 0, time.UTC)) {
		t.Errorf("start = %v", standup.Start)
	}
	if standup.Minutes() != 15 {
		t.Errorf("minutes = %d, want 15", standup.Minutes())
	}

	review := constraints[1]
	if review.Minutes() != 90 {
		t.Errorf("review minutes = %d, want 90 (from DURATION)", review.Minutes())
	}
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode(strings.NewReader("BEGIN:VCALENDAR\r\nthis is not ical\r\n"), windowStart, windowEnd)
	if err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "work.ics")
	if err := os.WriteFile(path, []byte(testICS), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	constraints, err := Load(context.Background(), path, windowStart, windowEnd)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(constraints) != 2 {
		t.Errorf("got %d constraints, want 2", len(constraints))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.ics"), windowStart, windowEnd)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestLoad_EmptySource(t *testing.T) {
	_, err := Load(context.Background(), "  ", windowStart, windowEnd)
	if !errors.Is(err, ErrEmptySource) {
		t.Errorf("expected ErrEmptySource, got %v", err)
	}
}

func TestLoad_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cal.ics" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(testICS))
	}))
	defer srv.Close()

	constraints, err := Load(context.Background(), srv.URL+"/cal.ics", windowStart, windowEnd)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(constraints) != 2 {
		t.Errorf("got %d constraints, want 2", len(constraints))
	}

	_, err = Load(context.Background(), srv.URL+"/missing.ics", windowStart, windowEnd)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status error, got %v", err)
	}
}
