package framego

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	l := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	l.WithTable("events").LogLoad(ctx, "events", 12, time.Millisecond, nil)
	assert.Contains(t, buf.String(), "level=INFO")
	assert.Contains(t, buf.String(), "table=events")
	assert.Contains(t, buf.String(), "rows=12")

	buf.Reset()
	l.LogStore(ctx, "events", 0, errors.New("disk full"))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), `error="disk full"`)

	buf.Reset()
	l.LogIndexRepair(ctx, "_index_id", true, nil)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "derived=_index_id")

	buf.Reset()
	l.WithColumn("value").WithCount(3).LogMutation(ctx, 3, nil)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "column=value")
	assert.Contains(t, buf.String(), "count=3")

	buf.Reset()
	l.LogTensorWrite(ctx, "input__0", 4, nil)
	assert.Contains(t, buf.String(), "tensor=input__0")
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
	l.LogLoad(context.Background(), "x", 0, 0, errors.New("ignored"))
}
