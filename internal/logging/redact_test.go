package logging

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/issuepilot/internal/config"
)

func newRedactingJSONEncoder(t *testing.T, cfg RedactionConfig) *RedactingEncoder {
	t.Helper()
	enc, err := NewRedactingEncoder(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), cfg)
	if err != nil {
		t.Fatalf("NewRedactingEncoder failed: %v", err)
	}
	return enc
}

func TestRedactingEncoder_FieldNameRedaction(t *testing.T) {
	enc := newRedactingJSONEncoder(t, NewDefaultConfig().Redaction)

	clone := enc.Clone().(*RedactingEncoder)
	clone.AddString("token", "ghp_abcdefghijklmnopqrstuv")
	clone.AddString("repo", "octocat/hello")

	buf, err := clone.EncodeEntry(zapcore.Entry{Message: "m"}, nil)
	if err != nil {
		t.Fatalf("EncodeEntry failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "[REDACTED]") {
		t.Errorf("token value not redacted: %s", out)
	}
	if strings.Contains(out, "ghp_abcdefghijklmnopqrstuv") {
		t.Errorf("raw token leaked: %s", out)
	}
	if !strings.Contains(out, "octocat/hello") {
		t.Errorf("benign field dropped: %s", out)
	}
}

func TestRedactingEncoder_PatternRedaction(t *testing.T) {
	enc := newRedactingJSONEncoder(t, NewDefaultConfig().Redaction)

	clone := enc.Clone().(*RedactingEncoder)
	clone.AddString("header", "Bearer abc123token")

	buf, err := clone.EncodeEntry(zapcore.Entry{Message: "m"}, nil)
	if err != nil {
		t.Fatalf("EncodeEntry failed: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "abc123token") {
		t.Errorf("bearer token leaked: %s", out)
	}
	if !strings.Contains(out, "[REDACTED:pattern]") {
		t.Errorf("pattern redaction marker missing: %s", out)
	}
}

func TestRedactingEncoder_DisabledPassesThrough(t *testing.T) {
	enc := newRedactingJSONEncoder(t, RedactionConfig{Enabled: false})

	clone := enc.Clone().(*RedactingEncoder)
	clone.AddString("token", "visible")

	buf, err := clone.EncodeEntry(zapcore.Entry{Message: "m"}, nil)
	if err != nil {
		t.Fatalf("EncodeEntry failed: %v", err)
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("disabled redaction still redacted: %s", buf.String())
	}
}

func TestRedactingEncoder_InvalidPattern(t *testing.T) {
	cfg := RedactionConfig{
		Enabled:  true,
		Patterns: []string{"("},
	}
	if _, err := NewRedactingEncoder(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), cfg); err != nil {
		return
	}
	t.Error("expected error for invalid pattern")
}

func TestSecretField_DoesNotLeak(t *testing.T) {
	tl := NewTestLogger()
	tl.Info(context.Background(), "configured", Secret("github_token", config.Secret("ghp_secret")))

	entries := tl.FilterMessage("configured").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	for _, f := range entries[0].Context {
		if f.Type == zapcore.StringType && strings.Contains(f.String, "ghp_secret") {
			t.Errorf("secret leaked in field %q", f.Key)
		}
	}
}

func TestRedactedString(t *testing.T) {
	f := RedactedString("api_key", "abcd1234")
	if f.String != "[REDACTED:8]" {
		t.Errorf("RedactedString: got %q, want [REDACTED:8]", f.String)
	}
}
