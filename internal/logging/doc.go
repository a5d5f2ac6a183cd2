// Package logging provides structured logging for issuepilot built on Zap.
//
// The Logger wraps *zap.Logger with context-aware methods that automatically
// attach correlation fields (run ID, issue reference, capability name, trace
// IDs) extracted from the context.Context flowing through the pipeline.
//
// Output goes to stdout as JSON or console format, optionally teed to an
// OpenTelemetry log exporter via the otelzap bridge. Sensitive values (API
// tokens, bearer headers) are redacted at the encoder level so a stray
// zap.String("token", ...) cannot leak credentials.
//
// Typical setup:
//
//	cfg := logging.NewDefaultConfig()
//	cfg.Level = zapcore.DebugLevel
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil { ... }
//	defer logger.Sync()
//
//	ctx = logging.WithRunID(ctx, runID)
//	logger.Info(ctx, "starting pipeline", zap.String("repo", repo))
//
// For tests, NewTestLogger wraps a zaptest observer with assertion helpers.
package logging
