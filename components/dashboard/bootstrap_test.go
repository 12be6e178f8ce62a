package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedStarterDashboards(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	saved, err := SeedStarterDashboards(ctx, f.service, SeedOptions{})
	require.NoError(t, err)
	require.Len(t, saved, 3)
	assert.Equal(t, "Customer Value Analysis", saved[0].Name)
	assert.True(t, saved[0].IsDefault)
	assert.False(t, saved[1].IsDefault)

	seen := map[string]bool{}
	for _, cfg := range saved {
		for _, item := range cfg.Items {
			assert.False(t, seen[item.ID], "item id %s reused", item.ID)
			seen[item.ID] = true
		}
	}

	again, err := SeedStarterDashboards(ctx, f.service, SeedOptions{})
	require.NoError(t, err)
	assert.Empty(t, again)
	configs, err := f.service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, configs, 3)
}

func TestSeedStarterDashboardsForceAndDefault(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	_, err := f.service.Save(ctx, DashboardConfig{Name: "Existing", IsDefault: true})
	require.NoError(t, err)

	saved, err := SeedStarterDashboards(ctx, f.service, SeedOptions{Force: true, DefaultTemplate: "demographic-insights"})
	require.NoError(t, err)
	require.Len(t, saved, 3)

	def, ok, err := f.service.GetDefault(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Demographic Insights", def.Name)
}

func TestSeedStarterDashboardsReportsWriteFailures(t *testing.T) {
	f := newServiceFixture(t)
	f.kv.setErr = errBackendDown
	saved, err := SeedStarterDashboards(context.Background(), f.service, SeedOptions{})
	require.ErrorIs(t, err, ErrStorageWrite)
	assert.Empty(t, saved)

	_, err = SeedStarterDashboards(context.Background(), nil, SeedOptions{})
	assert.Error(t, err)
}
