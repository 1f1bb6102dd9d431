package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestPreInitLoggerUsesConfiguredHandler(t *testing.T) {
	logger := L("scanner")

	var buf bytes.Buffer
	Init("text", "info", &buf)

	logger.Info("scan complete", "root", "/volume1/photos")

	out := buf.String()
	if strings.Contains(out, `msg="INFO scan complete`) {
		t.Fatalf("unexpected nested severity prefix in message: %s", out)
	}
	if !strings.Contains(out, "msg=\"scan complete\"") {
		t.Fatalf("expected plain message, got: %s", out)
	}
	if !strings.Contains(out, "component=scanner") {
		t.Fatalf("expected component field, got: %s", out)
	}
	if !strings.Contains(out, "root=/volume1/photos") {
		t.Fatalf("expected root field, got: %s", out)
	}
}

func TestPreInitLoggerRespectsConfiguredLevel(t *testing.T) {
	logger := L("duplicate")

	var buf bytes.Buffer
	Init("text", "warn", &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info log should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn log should be emitted: %s", out)
	}
}

func TestWithRootAddsField(t *testing.T) {
	var buf bytes.Buffer
	Init("text", "info", &buf)

	logger := WithRoot(L("orphan"), "/volume1/photos")
	logger.Info("found orphan")

	if !strings.Contains(buf.String(), "root=/volume1/photos") {
		t.Fatalf("expected root field in output: %s", buf.String())
	}
}
