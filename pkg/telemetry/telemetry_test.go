package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/commands"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogsEventWithPayload(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewZap(zap.New(core))

	sink.Record(context.Background(), dashboard.EventConfigSave, map[string]any{"config_id": "dashboard-1", "items": 2})

	entries := logs.FilterMessage(dashboard.EventConfigSave).All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "telemetry", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	assert.Equal(t, "dashboard-1", fields["config_id"])
	assert.EqualValues(t, 2, fields["items"])
}

func TestZapRespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := NewZap(zap.New(core)).WithLevel(zapcore.DebugLevel)
	sink.Record(context.Background(), dashboard.EventConfigPreview, nil)
	assert.Zero(t, logs.Len())
}

func TestPrometheusCountsEvents(t *testing.T) {
	sink := NewPrometheus("")
	ctx := context.Background()

	sink.Record(ctx, dashboard.EventConfigSave, map[string]any{"items": 3})
	sink.Record(ctx, dashboard.EventConfigSave, map[string]any{"items": 1})
	sink.Record(ctx, commands.EventImport, map[string]any{"configs": 4})

	families, err := sink.Registry().Gather()
	require.NoError(t, err)
	byName := map[string]*dto.MetricFamily{}
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}
	require.Contains(t, byName, "dashboard_events_total")
	var saves float64
	for _, m := range byName["dashboard_events_total"].GetMetric() {
		if m.GetLabel()[0].GetValue() == dashboard.EventConfigSave {
			saves = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, saves)
	assert.Equal(t, 4.0, byName["dashboard_imported_configs_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, uint64(2), byName["dashboard_saved_items"].GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestPrometheusHandlerExposesMetrics(t *testing.T) {
	sink := NewPrometheus("crm")
	sink.Record(context.Background(), dashboard.EventChartRender, nil)

	rec := httptest.NewRecorder()
	sink.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `crm_events_total{event="dashboard.chart.render"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMultiFansOutAndSkipsBlankEvents(t *testing.T) {
	var got []string
	recorder := dashboard.TelemetryFunc(func(_ context.Context, event string, payload map[string]any) {
		payload["seen"] = true
		got = append(got, event)
	})
	payload := map[string]any{"config_id": "dashboard-1"}
	multi := Multi{recorder, nil, recorder}

	multi.Record(context.Background(), "  ", payload)
	multi.Record(context.Background(), " dashboard.config.delete ", payload)

	assert.Equal(t, []string{dashboard.EventConfigDelete, dashboard.EventConfigDelete}, got)
	assert.NotContains(t, payload, "seen")
}
