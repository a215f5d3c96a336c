package logging

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error: got %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToJournalKey(t *testing.T) {
	tests := map[string]string{
		"event":      "EVENT",
		"relay.code": "RELAY_CODE",
		"slot-2":     "SLOT_2",
		"MQTT":       "MQTT",
	}
	for in, want := range tests {
		if got := toJournalKey(in); got != want {
			t.Errorf("toJournalKey(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestCgroupIsService(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"0::/system.slice/ir-relay.service\n", true},
		{"0::/system.slice/ir-relay.service/child\n", true},
		{"0::/user.slice/user-1000.slice/session-2.scope\n", false},
		{"", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		if got := cgroupIsService(tt.content); got != tt.want {
			t.Errorf("cgroupIsService(%q): got %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestNewWritesText(t *testing.T) {
	if isSystemdService() {
		t.Skip("text handler is disabled under systemd")
	}

	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo)
	logger.Info("relay 1 ON", "event", "RELAY")
	logger.Debug("hidden")

	out := buf.String()
	if !bytes.Contains([]byte(out), []byte("relay 1 ON")) {
		t.Errorf("expected message in output, got %q", out)
	}
	if bytes.Contains([]byte(out), []byte("hidden")) {
		t.Errorf("debug should be filtered at info level, got %q", out)
	}
}
