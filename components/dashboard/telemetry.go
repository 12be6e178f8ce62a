package dashboard

import "context"

// Telemetry event names recorded by the service and builder.
const (
	EventConfigSave       = "dashboard.config.save"
	EventConfigDelete     = "dashboard.config.delete"
	EventConfigSetDefault = "dashboard.config.set_default"
	EventConfigPreview    = "dashboard.config.preview"
	EventChartRender      = "dashboard.chart.render"

	EventBuilderSave       = "dashboard.builder.save"
	EventBuilderSetDefault = "dashboard.builder.set_default"
	EventBuilderDelete     = "dashboard.builder.delete"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// TelemetryFunc adapts a function to Telemetry.
type TelemetryFunc func(ctx context.Context, event string, payload map[string]any)

// Record calls f.
func (f TelemetryFunc) Record(ctx context.Context, event string, payload map[string]any) {
	f(ctx, event, payload)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
