package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Richard-GOZAN/imdb-analytics-platform/logger"
)

func TestLoggerServiceFieldAndLevels(t *testing.T) {
	log := logger.NewLogger("test-service", "debug", false)
	buf := bytes.NewBufferString("")
	log.SetOutput(buf)
	log.Info("hello")
	out := buf.String()
	if !strings.Contains(out, "test-service") {
		t.Fatal("expected service name in log output, got: ", out)
	}
	if !strings.Contains(out, "level=info") {
		t.Fatal("expected info level in log output, got: ", out)
	}
	buf.Reset()
	log.Warn("careful")
	if !strings.Contains(buf.String(), "level=warn") {
		t.Fatal("expected warning level in log output, got: ", buf.String())
	}
	buf.Reset()
	log.Debug("detail")
	if !strings.Contains(buf.String(), "level=debug") {
		t.Fatal("expected debug level in log output, got: ", buf.String())
	}
}

func TestLoggerErrorWithStackDump(t *testing.T) {
	log := logger.NewLogger("test-service", "info", true)
	buf := bytes.NewBufferString("")
	log.SetOutput(buf)
	log.Error("boom")
	if !strings.Contains(buf.String(), "stackTrace") {
		t.Fatal("expected a stack trace field in log output, got: ", buf.String())
	}
}
