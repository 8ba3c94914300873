package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{ServiceName: "shoplite-test", Level: zerolog.InfoLevel, Output: &buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithUserID(ctx, "user-456")
	ctx = log.WithActorRole(ctx, "owner")
	log.Info(ctx, "movement recorded")

	out := buf.String()
	for _, want := range []string{`"request_id":"req-123"`, `"user_id":"user-456"`, `"actor_role":"owner"`, `"service":"shoplite-test"`, "movement recorded"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}

func TestScopedLoggerDoesNotLeakAcrossContexts(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{ServiceName: "shoplite-test", Output: &buf})

	_ = log.WithProductID(context.Background(), "prod-1")
	log.Info(context.Background(), "plain")

	if strings.Contains(buf.String(), "prod-1") {
		t.Errorf("field from another context leaked: %s", buf.String())
	}
}

func TestErrorIncludesStack(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{ServiceName: "shoplite-test", Output: &buf})

	log.Error(context.Background(), "boom", context.DeadlineExceeded)

	out := buf.String()
	if !strings.Contains(out, `"stack"`) {
		t.Errorf("error log missing stack: %s", out)
	}
	if !strings.Contains(out, "context deadline exceeded") {
		t.Errorf("error log missing wrapped error: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":  zerolog.DebugLevel,
		"WARN":   zerolog.WarnLevel,
		"":       zerolog.InfoLevel,
		"bogus":  zerolog.InfoLevel,
		" error": zerolog.ErrorLevel,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
