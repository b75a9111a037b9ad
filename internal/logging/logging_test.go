package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	level   slog.Level
	records []slog.Record
}

func (h *recordingHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestMultiHandler_RespectsEachLevel(t *testing.T) {
	var buf bytes.Buffer
	stdout := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	errorsOnly := &recordingHandler{level: slog.LevelError}

	logger := slog.New(NewMultiHandler(stdout, errorsOnly))
	logger.Info("booking created", "booking_id", "b-1")
	logger.Error("payout failed", "booking_id", "b-2")

	assert.Len(t, errorsOnly.records, 1)
	assert.Equal(t, "payout failed", errorsOnly.records[0].Message)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var first map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	assert.Equal(t, "b-1", first["booking_id"])
}

func TestMultiHandler_Enabled(t *testing.T) {
	h := NewMultiHandler(&recordingHandler{level: slog.LevelError})
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

type failingHandler struct{}

func (failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("db down") }
func (h failingHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h failingHandler) WithGroup(string) slog.Handler           { return h }

func TestMultiHandler_FailureDoesNotStopOthers(t *testing.T) {
	rec := &recordingHandler{level: slog.LevelInfo}
	h := NewMultiHandler(failingHandler{}, rec)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "webhook rejected", 0))
	assert.EqualError(t, err, "db down")
	assert.Len(t, rec.records, 1)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestPGHandler_OnlyErrors(t *testing.T) {
	h := &PGHandler{}
	assert.False(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestPGHandler_LiftsKnownAttrs(t *testing.T) {
	h := &PGHandler{}
	logger := slog.New(h).With("request_id", "req-9")
	logger.Error("refund failed", "booking_id", "b-7", "action", "refund", "error", "boom", "amount", 10)

	require.Len(t, h.buffer, 1)
	entry := h.buffer[0]
	assert.Equal(t, "req-9", entry.RequestID)
	require.NotNil(t, entry.BookingID)
	assert.Equal(t, "b-7", *entry.BookingID)
	assert.Equal(t, "refund", entry.Action)
	assert.Equal(t, "boom", entry.Error)
	assert.JSONEq(t, `{"amount":10}`, string(entry.Extra))
}
