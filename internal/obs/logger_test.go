package obs

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	dev := NewLogger("dev")
	assert.True(t, dev.Enabled(context.Background(), slog.LevelDebug))

	prod := NewLogger("production")
	assert.False(t, prod.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, prod.Enabled(context.Background(), slog.LevelInfo))
}

func TestOperation_PrefersContextLogger(t *testing.T) {
	var records []slog.Record
	handler := &captureHandler{records: &records}
	scoped := slog.New(handler).With("request_id", "abc")

	ctx := ContextWithLogger(context.Background(), scoped)
	Operation(ctx, slog.Default(), "BookingService", "CreateBooking").Info("done")

	assert.Len(t, records, 1)
	assert.Nil(t, FromContext(context.Background()))
}

type captureHandler struct {
	records *[]slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	*h.records = append(*h.records, r)
	return nil
}
func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }
