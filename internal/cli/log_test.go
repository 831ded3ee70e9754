package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("expected the default logger without one attached")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), l)
	if loggerFromContext(ctx) != l {
		t.Error("expected the attached logger")
	}

	slogFromContext(ctx).Info("conversion complete", "nodes", 9)
	if !strings.Contains(buf.String(), "conversion complete") || !strings.Contains(buf.String(), "nodes=9") {
		t.Errorf("slog output = %q", buf.String())
	}
}

func TestVerboseFlag(t *testing.T) {
	design := writeTemp(t, "landing.json", landingJSON)
	_, stderr, err := run(t, "-v", "convert", design, "-o", writeTemp(t, "out.html", ""))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr, "parsed design file") {
		t.Errorf("verbose run should log debug lines:\n%s", stderr)
	}
}
