package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFatHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "op-123",
			level:   slog.LevelInfo,
			message: "file created",
			want:    "2024-06-15T14:30:45Z\tINFO\top-123\tfile created\n",
		},
		{
			name:    "warn level",
			opID:    "op-456",
			level:   slog.LevelWarn,
			message: "chain traversal stopped",
			want:    "2024-06-15T14:30:45Z\tWARN\top-456\tchain traversal stopped\n",
		},
		{
			name:    "with record attrs",
			opID:    "op-789",
			level:   slog.LevelInfo,
			message: "permission changed",
			attrs:   []slog.Attr{slog.String("name", "notes"), slog.Bool("grant", true)},
			want:    "2024-06-15T14:30:45Z\tINFO\top-789\tpermission changed\tname=notes\tgrant=true\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &fatHandler{w: &buf, opID: tt.opID, level: slog.LevelDebug}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			r.AddAttrs(tt.attrs...)

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestFatHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &fatHandler{w: &buf, opID: "op-1"}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "catalog")}).(*fatHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "file trashed", 0)
	r.AddAttrs(slog.String("name", "abc"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=catalog") {
		t.Errorf("expected pre-set attr component=catalog, got: %q", got)
	}
	if !strings.Contains(got, "name=abc") {
		t.Errorf("expected record attr name=abc, got: %q", got)
	}
	if len(h.attrs) != 0 {
		t.Errorf("original handler attrs modified: got %d, want 0", len(h.attrs))
	}
}

func TestFatHandler_Enabled(t *testing.T) {
	h := &fatHandler{level: slog.LevelWarn}

	tests := []struct {
		level slog.Level
		want  bool
	}{
		{level: slog.LevelDebug, want: false},
		{level: slog.LevelInfo, want: false},
		{level: slog.LevelWarn, want: true},
		{level: slog.LevelError, want: true},
	}
	for _, tt := range tests {
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "", want: slog.LevelInfo},
		{in: "verbose", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTeeHandler(t *testing.T) {
	var all, warn bytes.Buffer
	h := &teeHandler{handlers: []slog.Handler{
		&fatHandler{w: &all, opID: "op", level: slog.LevelDebug},
		&fatHandler{w: &warn, opID: "op", level: slog.LevelWarn},
	}}
	logger := slog.New(h).With("component", "blocks")

	logger.Debug("chain written")
	logger.Warn("chain traversal stopped")

	if got := strings.Count(all.String(), "\n"); got != 2 {
		t.Errorf("debug sink got %d lines, want 2", got)
	}
	if got := warn.String(); strings.Count(got, "\n") != 1 || !strings.Contains(got, "component=blocks") {
		t.Errorf("warn sink = %q, want one tagged warning", got)
	}
}

func TestNewLogger(t *testing.T) {
	dir := t.TempDir()

	logger, f, err := newLogger(dir, "test-op", "debug")
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	logger.Debug("hello", "k", "v")

	data, err := os.ReadFile(filepath.Join(dir, "fat.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "\tDEBUG\ttest-op\thello\tk=v") {
		t.Errorf("log file = %q, want the debug line", data)
	}
}
