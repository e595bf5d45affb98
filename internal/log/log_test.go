package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if tt.in != "bogus" && tt.in != "" && !ValidLevel(tt.in) {
			t.Errorf("ValidLevel(%q) = false", tt.in)
		}
	}
	if ValidLevel("verbose") {
		t.Error(`ValidLevel("verbose") = true`)
	}
}

func decodeLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("not JSON: %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", true)
	l.Info().Msg("dropped")
	l.Warn().Str("txid", "abc").Msg("kept")

	lines := decodeLines(t, buf.Bytes())
	if len(lines) != 1 {
		t.Fatalf("got %d entries, want 1", len(lines))
	}
	if m := lines[0]; m["message"] != "kept" || m["txid"] != "abc" || m["level"] != "warn" {
		t.Errorf("entry = %v", m)
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug", false)
	l.Debug().Msg("pretty")
	if s := buf.String(); !strings.Contains(s, "pretty") || strings.HasPrefix(s, "{") {
		t.Errorf("console output = %q", s)
	}
}

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zecsend.log")
	if err := Init(Options{Level: "debug", JSON: true, File: path, Network: "testnet"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = Init(Options{Level: "info"}) })

	Send.Debug().Msg("written to file")
	Tx.Info().Msg("tx event")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := decodeLines(t, data)
	if len(lines) != 2 {
		t.Fatalf("got %d entries, want 2: %s", len(lines), data)
	}
	for i, want := range []string{"send", "tx"} {
		if lines[i]["component"] != want || lines[i]["network"] != "testnet" {
			t.Errorf("entry %d = %v", i, lines[i])
		}
	}
}

func TestInitBadFile(t *testing.T) {
	err := Init(Options{File: filepath.Join(t.TempDir(), "missing", "x.log")})
	if err == nil {
		t.Error("expected error for unwritable log path")
	}
}
