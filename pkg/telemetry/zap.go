package telemetry

import (
	"context"
	"maps"
	"slices"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Zap logs every event as a structured entry.
type Zap struct {
	logger *zap.Logger
	level  zapcore.Level
}

// NewZap logs events at Info.
func NewZap(logger *zap.Logger) *Zap {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Zap{logger: logger.Named("telemetry"), level: zapcore.InfoLevel}
}

// WithLevel returns a copy that logs at level.
func (z *Zap) WithLevel(level zapcore.Level) *Zap {
	clone := *z
	clone.level = level
	return &clone
}

// Record implements dashboard.Telemetry.
func (z *Zap) Record(_ context.Context, event string, payload map[string]any) {
	ce := z.logger.Check(z.level, event)
	if ce == nil {
		return
	}
	fields := make([]zap.Field, 0, len(payload))
	for _, key := range slices.Sorted(maps.Keys(payload)) {
		fields = append(fields, zap.Any(key, payload[key]))
	}
	ce.Write(fields...)
}
