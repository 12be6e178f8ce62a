package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultManifestTemplates(t *testing.T) {
	doc, err := DefaultManifest()
	require.NoError(t, err)
	require.Len(t, doc.Templates, 3)
	assert.Equal(t, "embedded:"+defaultManifestPath, doc.Source)

	codes := make([]string, 0, len(doc.Templates))
	for _, tpl := range doc.Templates {
		codes = append(codes, tpl.Code)
		assert.Equal(t, LayoutGrid, tpl.Layout)
		assert.NoError(t, ValidateItems(tpl.Items))
	}
	assert.Equal(t, []string{"customer-value-analysis", "product-preference-dashboard", "demographic-insights"}, codes)

	value := doc.Templates[0]
	require.Len(t, value.Items, 2)
	assert.Equal(t, "At-Risk Customers", value.Items[1].Title)
	assert.Equal(t, VisualizationBar, value.Items[1].VisualizationType)
	assert.Equal(t, "At Risk (High Value)", value.Items[1].Filters[0].Value)

	preference := doc.Templates[1]
	assert.Equal(t, []Filter{}, preference.Items[0].Filters)
	assert.Equal(t, ItemCombined, preference.Items[1].Type)
	assert.Len(t, preference.Items[1].Segments, 2)
}

func TestDecodeManifestAppliesDefaults(t *testing.T) {
	const payload = `
version: "1"
name: regional-pack
dataSources:
  - id: stores
    name: Store Footfall
    service: revenue
    visualizations: [bar, line]
templates:
  - name: Regional Sales
    items:
      - type: trend
        title: Weekly trend
      - type: data-source
        title: Footfall
        visualizationType: bar
        sourceId: stores
        service: revenue
`
	doc, err := DecodeManifest(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, doc.Templates, 1)
	tpl := doc.Templates[0]
	assert.Equal(t, "regional-sales", tpl.Code)
	assert.Equal(t, "regional-sales-1", tpl.Items[0].ID)
	assert.Equal(t, VisualizationPie, tpl.Items[0].VisualizationType)
	assert.Nil(t, tpl.Items[1].Filters)
	require.Len(t, doc.DataSources, 1)

	reg := NewEmptyRegistry()
	require.NoError(t, reg.LoadManifestDocument(doc))
	src, ok := reg.DataSource("stores")
	require.True(t, ok)
	assert.True(t, src.Allows(VisualizationLine))
	assert.False(t, src.Allows(VisualizationPie))
}

func TestDecodeManifestRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":           ``,
		"unknown field":   "version: \"1\"\nwidgets: []\n",
		"bad version":     "version: \"9\"\n",
		"missing name":    "version: \"1\"\ntemplates:\n  - items: []\n",
		"duplicate code":  "version: \"1\"\ntemplates:\n  - name: A\n  - name: A\n",
		"duplicate items": "version: \"1\"\ntemplates:\n  - name: A\n    items:\n      - {id: x, type: trend}\n      - {id: x, type: trend}\n",
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeManifest(strings.NewReader(payload))
			assert.Error(t, err)
		})
	}
}

func TestRegistryLoadManifestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1\"\ntemplates:\n  - name: Churn Watch\n    items:\n      - type: segment\n        title: At risk\n"), 0o600))

	reg := NewEmptyRegistry()
	doc, err := reg.LoadManifestFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)

	tpl, ok := reg.Template("churn-watch")
	require.True(t, ok)
	assert.Equal(t, "At risk", tpl.Items[0].Title)

	_, err = reg.LoadManifestFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRegistryRejectsUnknownItemTypes(t *testing.T) {
	reg := NewEmptyRegistry()
	err := reg.RegisterTemplate(Template{Name: "Legacy", Items: []DashboardItem{{ID: "x", Type: "gauge"}}})
	assert.Error(t, err)
	_, ok := reg.Template("legacy")
	assert.False(t, ok)
}
