package commands

import (
	"context"

	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// Telemetry allows commands to emit structured events.
type Telemetry = dashboard.Telemetry

// Command telemetry events.
const (
	EventImport = "dashboard.command.import"
	EventSeed   = "dashboard.command.seed"
	EventAction = "dashboard.command.builder_action"
)

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// Actor identifies who issued a command.
type Actor struct {
	ActorID   string `json:"actor_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

func (a Actor) bind(ctx context.Context) context.Context {
	if a.ActorID == "" && a.SessionID == "" {
		return ctx
	}
	return dashboard.ContextWithActivity(ctx, dashboard.ActivityContext{
		ActorID:   a.ActorID,
		SessionID: a.SessionID,
	})
}
