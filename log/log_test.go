package log_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"log/slog"

	"github.com/ardnew/opdef/log"
)

// TestParseLevel verifies level names parse case-insensitively and unknown
// names fall back to the default.
func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  log.Level
	}{
		{"trace", log.LevelTrace},
		{"TRACE", log.LevelTrace},
		{"debug", log.LevelDebug},
		{"info", log.LevelInfo},
		{"Warn", log.LevelWarn},
		{"error", log.LevelError},
		{"bogus", log.DefaultLevel},
		{"", log.DefaultLevel},
	}

	for _, tt := range tests {
		if got := log.ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// TestLevel_String verifies trace renders by name, not as a debug offset.
func TestLevel_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level log.Level
		want  string
	}{
		{log.LevelTrace, "trace"},
		{log.LevelDebug, "debug"},
		{log.LevelInfo, "info"},
		{log.LevelWarn, "warn"},
		{log.LevelError, "error"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q",
				tt.level, got, tt.want)
		}
	}
}

// TestParseFormat verifies format parsing with fallback.
func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  log.Format
	}{
		{"json", log.FormatJSON},
		{"text", log.FormatText},
		{" TEXT ", log.FormatText},
		{"xml", log.DefaultFormat},
	}

	for _, tt := range tests {
		if got := log.ParseFormat(tt.input); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// logLine unmarshals a single JSON log line.
func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("no log output")
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, line)
	}

	return record
}

// TestLogger_JSONOutput verifies the JSON format and attribute passthrough.
func TestLogger_JSONOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := log.Make(&buf,
		log.WithFormat(log.FormatJSON),
		log.WithTimeLayout("none"),
	)

	l.Info("hello", slog.String("key", "value"), slog.Int("n", 7))

	record := logLine(t, &buf)

	if record["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", record["msg"])
	}

	if record["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", record["level"])
	}

	if record["key"] != "value" {
		t.Errorf("key = %v, want value", record["key"])
	}

	if record["n"] != float64(7) {
		t.Errorf("n = %v, want 7", record["n"])
	}

	if _, present := record["time"]; present {
		t.Error("time present despite disabled timestamps")
	}
}

// TestLogger_TraceLevel verifies the level below debug renders as TRACE and
// is filtered by default.
func TestLogger_TraceLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := log.Make(&buf, log.WithTimeLayout("none"))

	l.Trace("hidden")

	if buf.Len() != 0 {
		t.Fatalf("trace message logged at default level: %s", buf.String())
	}

	l = l.Wrap(log.WithLevel(log.LevelTrace))

	l.Trace("visible")

	record := logLine(t, &buf)
	if record["level"] != "TRACE" {
		t.Errorf("level = %v, want TRACE", record["level"])
	}
}

// TestLogger_LevelFilter verifies messages below the configured level are
// discarded.
func TestLogger_LevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := log.Make(&buf,
		log.WithLevel(log.LevelWarn),
		log.WithTimeLayout("none"),
	)

	l.Debug("no")
	l.Info("no")

	if buf.Len() != 0 {
		t.Fatalf("messages below warn were logged: %s", buf.String())
	}

	l.Warn("yes")

	if record := logLine(t, &buf); record["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", record["level"])
	}

	if l.Level() != log.LevelWarn {
		t.Errorf("Level() = %v, want %v", l.Level(), log.LevelWarn)
	}
}

// TestLogger_With verifies bound attributes appear in subsequent messages.
func TestLogger_With(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := log.Make(&buf, log.WithTimeLayout("none")).
		With(slog.String("component", "grammar"))

	l.Info("parsing")

	if record := logLine(t, &buf); record["component"] != "grammar" {
		t.Errorf("component = %v, want grammar", record["component"])
	}
}

// TestLogger_ZeroValue verifies the zero logger discards without panicking.
func TestLogger_ZeroValue(t *testing.T) {
	t.Parallel()

	var l log.Logger

	l.Trace("discard")
	l.Debug("discard")
	l.Info("discard")
	l.Warn("discard")
	l.Error("discard")

	if l.Level() != log.DefaultLevel {
		t.Errorf("Level() = %v, want %v", l.Level(), log.DefaultLevel)
	}
}

// TestLogger_PrettyText verifies pretty text output carries the message and
// uppercase level name with color escapes.
func TestLogger_PrettyText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := log.Make(&buf,
		log.WithFormat(log.FormatText),
		log.WithPretty(true),
		log.WithTimeLayout("none"),
	)

	l.Info("ready", slog.Bool("ok", true))

	out := buf.String()

	for _, fragment := range []string{"INFO", "ready", "true", "\033["} {
		if !strings.Contains(out, fragment) {
			t.Errorf("pretty output missing %q:\n%q", fragment, out)
		}
	}
}

// TestLogger_PlainText verifies non-pretty text uses the standard slog text
// handler.
func TestLogger_PlainText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := log.Make(&buf,
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout("none"),
	)

	l.Info("plain")

	out := buf.String()

	if !strings.Contains(out, "msg=plain") {
		t.Errorf("text output missing msg: %q", out)
	}

	if strings.Contains(out, "\033[") {
		t.Errorf("plain text output contains color escapes: %q", out)
	}
}
