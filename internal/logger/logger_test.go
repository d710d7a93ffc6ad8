package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestSlog_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "debug", Service: "crs-transform"}, &buf)
	log := NewSlog(&zl)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithComponent(ctx, "api")
	ctx = WithCRSPair(ctx, "EPSG:28992", "EPSG:4326")
	log.InfoContext(ctx, "transformed", "points", 3)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	want := map[string]any{
		"msg":        "transformed",
		"level":      "info",
		"service":    "crs-transform",
		"request_id": "req-1",
		"component":  "api",
		"crs_pair":   "EPSG:28992>EPSG:4326",
		"points":     float64(3),
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("%s=%v want %v (line %s)", k, got[k], v, buf.String())
		}
	}
	if _, ok := got["timestamp"]; !ok {
		t.Fatal("timestamp missing")
	}
}

func TestWithCRSPair_Empty(t *testing.T) {
	ctx := context.Background()
	if WithCRSPair(ctx, "", "") != ctx {
		t.Fatal("expected the context unchanged for an empty pair")
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if len(a) != 36 || a == b {
		t.Fatalf("ids %q %q", a, b)
	}
}

func TestSlog_LevelAndGroups(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "warn"}, &buf)
	log := NewSlog(&zl)
	t.Cleanup(func() { Build(Config{Level: "info"}, &bytes.Buffer{}) })

	if log.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info enabled on a warn logger")
	}
	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("unexpected output %q", buf.String())
	}

	log.WithGroup("cache").Warn("flush failed", "keys", 2)
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if got["level"] != "warn" || got["cache.keys"] != float64(2) {
		t.Fatalf("line %s", buf.String())
	}
}
