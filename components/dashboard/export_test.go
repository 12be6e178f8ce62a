package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportRoundTrip(t *testing.T) {
	store, _ := newTestStore()
	saved, err := store.Save(t.Context(), DashboardConfig{
		Name:      "Exported",
		IsDefault: true,
		Items: []DashboardItem{
			{ID: "i1", Type: ItemSegment, Title: "Champions", VisualizationType: VisualizationPie,
				Filters: []Filter{{ID: "f1", Type: "segment", Value: "Champions", Operator: "is"}}},
		},
	})
	require.NoError(t, err)

	for _, format := range []string{FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			data, err := EncodeExport([]DashboardConfig{saved}, format)
			require.NoError(t, err)
			configs, err := DecodeExport(data)
			require.NoError(t, err)
			require.Len(t, configs, 1)
			assert.Equal(t, saved.ID, configs[0].ID)
			assert.Equal(t, saved.Name, configs[0].Name)
			assert.True(t, saved.CreatedAt.Equal(configs[0].CreatedAt))
			assert.Equal(t, "Champions", configs[0].Items[0].Filters[0].Value)
		})
	}
}

func TestDecodeExportAcceptsPersistedCollection(t *testing.T) {
	configs, err := DecodeExport([]byte(`[{"id":"dashboard-1","name":"Raw","description":"","layout":"grid","isDefault":false,"items":[]}]`))
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "dashboard-1", configs[0].ID)
}

func TestDecodeExportRejectsBadInput(t *testing.T) {
	for name, payload := range map[string]string{
		"empty":   "  ",
		"json":    `{"configs": [}`,
		"yaml":    "configs: [\n",
		"version": `{"version":"7","configs":[]}`,
		"field":   "version: \"1\"\nwidgets: []\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeExport([]byte(payload))
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	_, err := EncodeExport(nil, "xml")
	assert.Error(t, err)
}
