package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryDefaults(t *testing.T) {
	reg := NewRegistry()

	sources := reg.DataSources()
	ids := make([]string, len(sources))
	for i, src := range sources {
		ids[i] = src.ID
	}
	assert.Equal(t, []string{"demographic", "rfm", "preference", "revenue", "sales", "marketing"}, ids)

	rfm, ok := reg.DataSource("rfm")
	require.True(t, ok)
	assert.Equal(t, ServiceSegmentation, rfm.Service)
	assert.True(t, rfm.Allows(VisualizationTable))

	marketing, ok := reg.DataSource("marketing")
	require.True(t, ok)
	assert.Equal(t, []VisualizationType{VisualizationLine, VisualizationBar, VisualizationPie}, marketing.Visualizations)

	assert.Len(t, reg.Templates(), 3)
	_, ok = reg.Template("customer-value-analysis")
	assert.True(t, ok)
}

func TestRegistryValidatesDataSources(t *testing.T) {
	reg := NewEmptyRegistry()
	assert.Error(t, reg.RegisterDataSource(DataSource{Name: "no id", Visualizations: []VisualizationType{VisualizationPie}}))
	assert.Error(t, reg.RegisterDataSource(DataSource{ID: "x", Visualizations: []VisualizationType{VisualizationPie}}))
	assert.Error(t, reg.RegisterDataSource(DataSource{ID: "x", Name: "X"}))
	assert.Empty(t, reg.DataSources())
}

func TestRegistryReplacesKeepingOrder(t *testing.T) {
	reg := NewEmptyRegistry()
	require.NoError(t, reg.RegisterTemplate(Template{Name: "First"}))
	require.NoError(t, reg.RegisterTemplate(Template{Name: "Second"}))
	require.NoError(t, reg.RegisterTemplate(Template{Name: "First", Description: "updated"}))

	templates := reg.Templates()
	require.Len(t, templates, 2)
	assert.Equal(t, "first", templates[0].Code)
	assert.Equal(t, "updated", templates[0].Description)
}

func TestDefaultDataSourcesReturnsCopy(t *testing.T) {
	sources := DefaultDataSources()
	sources[0].Visualizations[0] = VisualizationLine
	assert.Equal(t, VisualizationPie, DefaultDataSources()[0].Visualizations[0])
}

func TestRegistryHooks(t *testing.T) {
	reg := NewEmptyRegistry()
	hook := func(r *Registry) error {
		return r.RegisterDataSource(DataSource{ID: "loyalty", Name: "Loyalty Points", Service: "loyalty", Visualizations: []VisualizationType{VisualizationBar}})
	}
	globalHookMu.Lock()
	saved := globalHooks
	globalHooks = []RegistryHook{hook}
	globalHookMu.Unlock()
	t.Cleanup(func() {
		globalHookMu.Lock()
		globalHooks = saved
		globalHookMu.Unlock()
	})

	require.NoError(t, reg.ApplyHooks())
	_, ok := reg.DataSource("loyalty")
	assert.True(t, ok)
	assert.Equal(t, "customer-value-analysis", TemplateCode("  Customer Value Analysis "))
}
