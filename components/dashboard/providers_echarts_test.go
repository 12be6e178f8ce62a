package dashboard

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChartData() ChartData {
	return ChartData{
		Labels: []string{"Champions", "Loyal", "At Risk"},
		Series: []ChartSeries{{
			Name: "Customers",
			Points: []ChartPoint{
				{Label: "Champions", Value: 120},
				{Label: "Loyal", Value: 340},
				{Label: "At Risk", Value: 75},
			},
		}},
	}
}

func TestChartRendererKinds(t *testing.T) {
	for _, kind := range []VisualizationType{VisualizationBar, VisualizationLine, VisualizationArea, VisualizationPie} {
		t.Run(string(kind), func(t *testing.T) {
			data := &staticData{data: sampleChartData()}
			renderer := NewChartRenderer(data, WithChartCache(nil))
			html, err := renderer.RenderHTML(context.Background(), "dashboard-1", ChartSpec{
				ItemID: "i1", Title: "Segments", Kind: kind, Available: true,
			})
			require.NoError(t, err)
			assert.Contains(t, html, "echarts")
			assert.Contains(t, html, "Segments")
			assert.Equal(t, 1, data.calls)
		})
	}
}

func TestChartRendererAreaStyle(t *testing.T) {
	renderer := NewChartRenderer(&staticData{data: sampleChartData()}, WithChartCache(nil))
	html, err := renderer.RenderHTML(context.Background(), "dashboard-1", ChartSpec{ItemID: "i1", Kind: VisualizationArea, Available: true})
	require.NoError(t, err)
	assert.Contains(t, html, "areaStyle")
}

func TestChartRendererTable(t *testing.T) {
	data := sampleChartData()
	data.Labels[0] = "<Champions>"
	renderer := NewChartRenderer(&staticData{data: data})
	html, err := renderer.RenderHTML(context.Background(), "dashboard-1", ChartSpec{
		ItemID: "rfm", Title: "RFM", Kind: VisualizationTable, Available: true,
	})
	require.NoError(t, err)
	assert.Contains(t, html, `class="dashboard-table" data-item="rfm"`)
	assert.Contains(t, html, "&lt;Champions&gt;")
	assert.Contains(t, html, "<td>340</td>")
}

func TestChartRendererPlaceholderSkipsData(t *testing.T) {
	data := &staticData{err: errBackendDown}
	renderer := NewChartRenderer(data)
	html, err := renderer.RenderHTML(context.Background(), "dashboard-1", ChartSpec{
		ItemID: "legacy", Title: "Old", Placeholder: PreviewUnavailable,
	})
	require.NoError(t, err)
	assert.Contains(t, html, PreviewUnavailable)
	assert.Zero(t, data.calls)
}

func TestChartRendererPlaceholderEscapesTitle(t *testing.T) {
	renderer := NewChartRenderer(&staticData{})
	html, err := renderer.RenderHTML(context.Background(), "dashboard-1", ChartSpec{
		ItemID: "legacy", Title: "<script>x</script>",
	})
	require.NoError(t, err)
	assert.Contains(t, html, `class="chart-placeholder"`)
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<script>x")
}

func TestChartRendererUsesInjectedTemplates(t *testing.T) {
	templates := &recordingTemplates{}
	renderer := NewChartRenderer(&staticData{data: sampleChartData()}, WithChartTemplates(templates), WithChartCache(nil))
	ctx := context.Background()

	_, err := renderer.RenderHTML(ctx, "dashboard-1", ChartSpec{ItemID: "rfm", Title: "RFM", Kind: VisualizationTable, Available: true})
	require.NoError(t, err)
	_, err = renderer.RenderHTML(ctx, "dashboard-1", ChartSpec{ItemID: "old", Title: "Old"})
	require.NoError(t, err)

	require.Equal(t, []string{TemplateChartTable, TemplateChartPlaceholder}, templates.names)
	rows := templates.data[0].(map[string]any)["rows"].([]map[string]any)
	require.Len(t, rows, 3)
	assert.Equal(t, "Loyal", rows[1]["label"])
	assert.Equal(t, []string{"340"}, rows[1]["cells"])
	assert.Equal(t, PreviewUnavailable, templates.data[1].(map[string]any)["message"])
}

func TestChartRendererTemplateFailure(t *testing.T) {
	renderer := NewChartRenderer(&staticData{}, WithChartTemplates(&recordingTemplates{err: errBackendDown}))
	_, err := renderer.RenderHTML(context.Background(), "dashboard-1", ChartSpec{ItemID: "i1", Kind: VisualizationBar, Available: true})
	assert.ErrorIs(t, err, errBackendDown)
}

func TestChartRendererEmptySeries(t *testing.T) {
	renderer := NewChartRenderer(&staticData{})
	html, err := renderer.RenderHTML(context.Background(), "dashboard-1", ChartSpec{ItemID: "i1", Kind: VisualizationBar, Available: true})
	require.NoError(t, err)
	assert.Contains(t, html, "chart-empty")
}

func TestChartRendererErrors(t *testing.T) {
	spec := ChartSpec{ItemID: "i1", Kind: VisualizationBar, Available: true}

	_, err := NewChartRenderer(nil).RenderHTML(context.Background(), "dashboard-1", spec)
	assert.ErrorIs(t, err, errMissingDataProvider)

	_, err = NewChartRenderer(&staticData{err: errBackendDown}).RenderHTML(context.Background(), "dashboard-1", spec)
	assert.ErrorIs(t, err, errBackendDown)
}

func TestChartRendererCachesPerConfig(t *testing.T) {
	data := &staticData{data: sampleChartData()}
	renderer := NewChartRenderer(data, WithChartCache(NewChartCache(time.Minute)), WithChartTheme("dark"), WithChartAssetsHost("https://cdn.example.com/echarts/"))
	spec := ChartSpec{ItemID: "i1", Title: "Cached", Kind: VisualizationPie, Available: true}
	ctx := context.Background()

	first, err := renderer.RenderHTML(ctx, "dashboard-1", spec)
	require.NoError(t, err)
	second, err := renderer.RenderHTML(ctx, "dashboard-1", spec)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, data.calls)
	assert.Contains(t, first, "https://cdn.example.com/echarts/")

	renderer.Cache().Invalidate("dashboard-1")
	_, err = renderer.RenderHTML(ctx, "dashboard-1", spec)
	require.NoError(t, err)
	assert.Equal(t, 2, data.calls)
}

type recordingTemplates struct {
	names []string
	data  []any
	err   error
}

func (r *recordingTemplates) Render(name string, data any, out ...io.Writer) (string, error) {
	r.names = append(r.names, name)
	r.data = append(r.data, data)
	if r.err != nil {
		return "", r.err
	}
	if len(out) > 0 && out[0] != nil {
		_, _ = io.WriteString(out[0], "<"+name+">")
	}
	return "<" + name + ">", nil
}
