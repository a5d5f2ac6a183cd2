package logging

import "go.uber.org/zap/zapcore"

// TraceLevel sits below Debug (-2 where Debug is -1). It carries prompt and
// response dumps and other wire-level detail that stays filtered out of
// normal runs.
const TraceLevel = zapcore.Level(-2)

// LevelFromString parses a level name, accepting "trace" on top of the
// names zap knows.
func LevelFromString(level string) (zapcore.Level, error) {
	if level == "trace" {
		return TraceLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}
