// Package telemetry provides dashboard.Telemetry sinks backed by zap and
// Prometheus.
package telemetry

import (
	"context"
	"strings"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// Multi fans one event out to several sinks. Nil sinks and blank event names
// are skipped.
type Multi []dashboard.Telemetry

// Record implements dashboard.Telemetry.
func (m Multi) Record(ctx context.Context, event string, payload map[string]any) {
	event = strings.TrimSpace(event)
	if event == "" {
		return
	}
	for _, sink := range m {
		if sink == nil {
			continue
		}
		sink.Record(ctx, event, clonePayload(payload))
	}
}

func clonePayload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = v
	}
	return out
}
