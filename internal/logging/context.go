package logging

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 6)

	// Trace correlation (from OpenTelemetry)
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	if runID := RunIDFromContext(ctx); runID != "" {
		fields = append(fields, zap.String("run.id", runID))
	}

	if issue := IssueFromContext(ctx); issue != "" {
		fields = append(fields, zap.String("issue", issue))
	}

	if capability := CapabilityFromContext(ctx); capability != "" {
		fields = append(fields, zap.String("capability", capability))
	}

	return fields
}

// Context key types
type runIDCtxKey struct{}
type issueCtxKey struct{}
type capabilityCtxKey struct{}

const maxIDLen = 128

// idPattern allows alphanumeric, hyphen, underscore.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateID validates a run ID.
func validateID(id, name string) error {
	if id == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("%s contains invalid UTF-8", name)
	}
	if len(id) > maxIDLen {
		return fmt.Errorf("%s exceeds max length %d", name, maxIDLen)
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (must be alphanumeric, hyphen, underscore)", name)
	}
	return nil
}

// RunIDFromContext extracts the run ID from context.
func RunIDFromContext(ctx context.Context) string {
	if r, ok := ctx.Value(runIDCtxKey{}).(string); ok {
		return r
	}
	return ""
}

// WithRunID adds a run ID to context.
// Panics if runID is empty or contains invalid characters.
func WithRunID(ctx context.Context, runID string) context.Context {
	if err := validateID(runID, "runID"); err != nil {
		panic(fmt.Sprintf("logging: %v", err))
	}
	return context.WithValue(ctx, runIDCtxKey{}, runID)
}

// IssueFromContext extracts the issue reference ("owner/repo#123") from context.
func IssueFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(issueCtxKey{}).(string); ok {
		return s
	}
	return ""
}

// WithIssue adds an issue reference to context.
func WithIssue(ctx context.Context, issue string) context.Context {
	return context.WithValue(ctx, issueCtxKey{}, issue)
}

// CapabilityFromContext extracts the in-flight capability name from context.
func CapabilityFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(capabilityCtxKey{}).(string); ok {
		return s
	}
	return ""
}

// WithCapability adds the in-flight capability name to context.
func WithCapability(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, capabilityCtxKey{}, name)
}

// loggerCtxKey is the context key for Logger.
type loggerCtxKey struct{}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves logger from context.
// Returns a nop logger if not found.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return &Logger{zap: zap.NewNop(), config: NewDefaultConfig()}
}
