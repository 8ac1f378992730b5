package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestHelpersBeforeInitAreNoops(t *testing.T) {
	Close()
	Info("nobody listening")
	Warn("nobody listening")
	if WithPrefix("x") != nil {
		t.Error("WithPrefix should be nil before Init")
	}
}

func TestSetOutputRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, log.WarnLevel)
	defer Close()

	Info("hidden message")
	Warn("fetch slow", "count", 20)

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Errorf("info should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "fetch slow") || !strings.Contains(out, "count=20") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestInitCreatesDatedFile(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir, log.DebugLevel); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	Debug("hello from test")
	Close()

	matches, err := filepath.Glob(filepath.Join(dir, "logs", "nexttogo-*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one log file, got %v (%v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing message: %q", data)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != log.DebugLevel {
		t.Error("debug not parsed")
	}
	if ParseLevel("nonsense") != log.InfoLevel {
		t.Error("unknown level should default to info")
	}
}
