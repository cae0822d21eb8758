package logging

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

type recordingHandler struct {
	level    slog.Level
	messages []string
}

func (h *recordingHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *recordingHandler) Handle(_ context.Context, record slog.Record) error {
	h.messages = append(h.messages, record.Message)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestMultiHandlerFansOutByLevel(t *testing.T) {
	stdout := &recordingHandler{level: slog.LevelInfo}
	persisted := &recordingHandler{level: slog.LevelError}
	logger := slog.New(NewMultiHandler(stdout, persisted))

	logger.Info("request served")
	logger.Error("request failed")

	if len(stdout.messages) != 2 {
		t.Fatalf("expected stdout handler to see both records, got %v", stdout.messages)
	}
	if len(persisted.messages) != 1 || persisted.messages[0] != "request failed" {
		t.Fatalf("expected the ERROR-only handler to see one record, got %v", persisted.messages)
	}
}

func TestMultiHandlerEnabled(t *testing.T) {
	m := NewMultiHandler(&recordingHandler{level: slog.LevelError})

	if m.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("INFO must be disabled when every target wants ERROR+")
	}
	if !m.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("ERROR must be enabled")
	}
}

func TestDBHandlerOnlyAcceptsErrors(t *testing.T) {
	h := &DBHandler{} // level gating needs no database
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("INFO records must not reach the database")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("ERROR records must reach the database")
	}
}

func TestDBHandlerExtractsKnownAttrs(t *testing.T) {
	h := &DBHandler{}
	record := slog.NewRecord(time.Now(), slog.LevelError, "request failed", 0)
	record.AddAttrs(
		slog.String("request_id", "req-1"),
		slog.String("route", "/api/orders"),
		slog.String("error", "boom"),
		slog.String("action", "CreateOrder"),
	)

	if err := h.Handle(context.Background(), record); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(h.buffer) != 1 {
		t.Fatalf("expected one buffered entry, got %d", len(h.buffer))
	}
	entry := h.buffer[0]
	if entry.RequestID != "req-1" || entry.Route != "/api/orders" || entry.Error != "boom" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if len(entry.Extra) == 0 {
		t.Fatal("unrecognized attrs must land in the extra column")
	}
}
