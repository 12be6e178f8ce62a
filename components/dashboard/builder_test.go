package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(t *testing.T) (*Builder, *CollectionStore, *memKV) {
	t.Helper()
	store, kv := newTestStore()
	builder := NewBuilder(BuilderOptions{Store: store})
	require.NoError(t, builder.Refresh(context.Background()))
	return builder, store, kv
}

func TestBuilderAddItemDefaults(t *testing.T) {
	builder, _, _ := newTestBuilder(t)
	assert.Equal(t, StateEmpty, builder.State())

	item := builder.AddItem(ItemSegment)

	current := builder.Current()
	require.Len(t, current.Items, 1)
	assert.Equal(t, ItemSegment, current.Items[0].Type)
	assert.Equal(t, "New Segment Visualization", current.Items[0].Title)
	assert.Equal(t, VisualizationPie, current.Items[0].VisualizationType)
	assert.Empty(t, current.Items[0].Filters)
	assert.Empty(t, current.Items[0].Segments)
	assert.Equal(t, item.ID, current.Items[0].ID)
	assert.Equal(t, StateEditing, builder.State())
}

func TestBuilderAddItemTitlesPerType(t *testing.T) {
	builder, _, _ := newTestBuilder(t)
	assert.Equal(t, "Combined Segments", builder.AddItem(ItemCombined).Title)
	assert.Equal(t, "Trend Analysis", builder.AddItem(ItemTrend).Title)
}

func TestBuilderItemIDsStayUnique(t *testing.T) {
	builder, _, _ := newTestBuilder(t)
	for i := 0; i < 20; i++ {
		builder.AddItem(ItemSegment)
	}
	require.NoError(t, builder.RemoveItem(3))
	builder.AddItem(ItemTrend)
	require.NoError(t, builder.MoveItem(0, 10))
	assert.NoError(t, ValidateItems(builder.Current().Items))
}

func TestBuilderRemoveItem(t *testing.T) {
	builder, _, _ := newTestBuilder(t)
	builder.AddItem(ItemSegment)

	require.NoError(t, builder.RemoveItem(0))
	assert.Empty(t, builder.Current().Items)

	err := builder.RemoveItem(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	err = builder.RemoveItem(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestBuilderUpdateItem(t *testing.T) {
	builder, _, _ := newTestBuilder(t)
	first := builder.AddItem(ItemSegment)
	second := builder.AddItem(ItemSegment)

	updated := first
	updated.ID = ""
	updated.Title = "Champions"
	updated.VisualizationType = VisualizationBar
	updated.Filters = []Filter{{ID: "f1", Type: "segment", Value: "Champions", Operator: "is"}}
	require.NoError(t, builder.UpdateItem(0, updated))

	got := builder.Current().Items[0]
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "Champions", got.Title)
	assert.Equal(t, VisualizationBar, got.VisualizationType)
	require.Len(t, got.Filters, 1)

	clash := first
	clash.ID = second.ID
	err := builder.UpdateItem(0, clash)
	assert.ErrorIs(t, err, ErrValidation)

	assert.ErrorIs(t, builder.UpdateItem(5, first), ErrIndexOutOfRange)
}

func TestBuilderMoveItem(t *testing.T) {
	builder, _, _ := newTestBuilder(t)
	a := builder.AddItem(ItemSegment)
	b := builder.AddItem(ItemCombined)
	c := builder.AddItem(ItemTrend)

	require.NoError(t, builder.MoveItem(0, 2))
	ids := itemIDs(builder.Current().Items)
	assert.Equal(t, []string{b.ID, c.ID, a.ID}, ids)

	require.NoError(t, builder.MoveItem(2, 0))
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, itemIDs(builder.Current().Items))

	assert.ErrorIs(t, builder.MoveItem(0, 3), ErrIndexOutOfRange)
}

func TestBuilderSaveRequiresName(t *testing.T) {
	builder, _, kv := newTestBuilder(t)
	builder.AddItem(ItemSegment)

	_, err := builder.Save(context.Background())
	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
	assert.Equal(t, 0, kv.sets)
	assert.Len(t, builder.Current().Items, 1)
	assert.Equal(t, StateEditing, builder.State())
}

func TestBuilderSaveMergesAndResets(t *testing.T) {
	builder, store, _ := newTestBuilder(t)
	ctx := context.Background()
	builder.SetName("Sales Overview")
	builder.SetDescription("monthly")
	builder.SetLayout(LayoutList)
	builder.AddItem(ItemSegment)

	saved, err := builder.Save(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, LayoutList, saved.Layout)

	assert.Equal(t, StateSaved, builder.State())
	assert.Equal(t, emptyConfig(), builder.Current())
	configs := builder.Configs()
	require.Len(t, configs, 1)
	assert.Equal(t, saved, configs[0])

	require.NoError(t, builder.LoadForEdit(ctx, saved.ID))
	assert.Equal(t, StateEditing, builder.State())
	builder.SetName("Sales Overview v2")
	resaved, err := builder.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, resaved.ID)
	assert.Equal(t, saved.CreatedAt, resaved.CreatedAt)

	configs = builder.Configs()
	require.Len(t, configs, 1)
	assert.Equal(t, "Sales Overview v2", configs[0].Name)

	stored, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, configs, stored)
}

func TestBuilderSaveFailureKeepsEditState(t *testing.T) {
	builder, _, kv := newTestBuilder(t)
	builder.SetName("Unsaved")
	builder.AddItem(ItemTrend)
	before := builder.Current()

	kv.setErr = errBackendDown
	_, err := builder.Save(context.Background())
	require.ErrorIs(t, err, ErrStorageWrite)
	assert.Equal(t, before, builder.Current())
	assert.Equal(t, StateEditing, builder.State())
	assert.Empty(t, builder.Configs())
}

func TestBuilderLoadForEditMissing(t *testing.T) {
	builder, _, _ := newTestBuilder(t)
	builder.SetName("In progress")
	builder.AddItem(ItemSegment)
	before := builder.Current()
	state := builder.State()

	err := builder.LoadForEdit(context.Background(), "dashboard-does-not-exist")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, builder.Current())
	assert.Equal(t, state, builder.State())
}

func TestBuilderDeletedConfigCannotBeReopened(t *testing.T) {
	builder, store, _ := newTestBuilder(t)
	ctx := context.Background()
	builder.SetName("Temp")
	saved, err := builder.Save(ctx)
	require.NoError(t, err)

	require.NoError(t, builder.Delete(ctx, saved.ID))
	assert.Equal(t, StateDeleted, builder.State())
	assert.Empty(t, builder.Configs())

	_, ok, err := store.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, builder.LoadForEdit(ctx, saved.ID), ErrNotFound)
	assert.ErrorIs(t, builder.SetDefault(ctx, saved.ID), ErrNotFound)
}

func TestBuilderDeleteResetsLoadedConfig(t *testing.T) {
	builder, _, _ := newTestBuilder(t)
	ctx := context.Background()
	builder.SetName("Loaded")
	saved, err := builder.Save(ctx)
	require.NoError(t, err)
	require.NoError(t, builder.LoadForEdit(ctx, saved.ID))

	require.NoError(t, builder.Delete(ctx, saved.ID))
	assert.Equal(t, emptyConfig(), builder.Current())
	assert.Equal(t, StateDeleted, builder.State())
}

func TestBuilderSetDefault(t *testing.T) {
	builder, store, _ := newTestBuilder(t)
	ctx := context.Background()

	builder.SetName("A")
	builder.SetDefaultFlag(true)
	a, err := builder.Save(ctx)
	require.NoError(t, err)
	builder.SetName("B")
	b, err := builder.Save(ctx)
	require.NoError(t, err)

	require.NoError(t, builder.SetDefault(ctx, b.ID))

	for _, cfg := range builder.Configs() {
		assert.Equal(t, cfg.ID == b.ID, cfg.IsDefault, "config %s", cfg.ID)
	}
	def, ok, err := store.GetDefault(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, b.ID, def.ID)

	stillA, ok, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, stillA.IsDefault)

	assert.ErrorIs(t, builder.SetDefault(ctx, "dashboard-missing"), ErrNotFound)
}

func TestBuilderDataSourceFlow(t *testing.T) {
	builder, _, _ := newTestBuilder(t)
	ctx := context.Background()

	builder.SetName("Sources")
	_, err := builder.SaveDataSources(ctx)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "select at least one data source", verr.Message)

	item, err := builder.AddDataSource("revenue")
	require.NoError(t, err)
	assert.Equal(t, ItemDataSource, item.Type)
	assert.Equal(t, "Revenue Analysis", item.Title)
	assert.Equal(t, VisualizationLine, item.VisualizationType)
	assert.Equal(t, ServiceRevenue, item.Service)
	assert.Regexp(t, `^item-\d+-revenue$`, item.ID)

	_, err = builder.AddDataSource("revenue")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = builder.AddDataSource("weather")
	assert.ErrorIs(t, err, ErrValidation)

	saved, err := builder.SaveDataSources(ctx)
	require.NoError(t, err)
	require.Len(t, saved.Items, 1)
	assert.Equal(t, "revenue", saved.Items[0].SourceID)
}

func TestBuilderApplyTemplate(t *testing.T) {
	builder, _, _ := newTestBuilder(t)

	require.NoError(t, builder.ApplyTemplate("demographic-insights"))
	current := builder.Current()
	assert.Equal(t, "Demographic Insights", current.Name)
	require.Len(t, current.Items, 2)
	assert.Equal(t, "Gender Distribution", current.Items[0].Title)
	assert.Equal(t, "Age Distribution", current.Items[1].Title)
	require.NotNil(t, current.Items[1].Filters[0].Min)
	assert.Equal(t, 20.0, *current.Items[1].Filters[0].Min)
	assert.NotEqual(t, current.Items[0].ID, current.Items[1].ID)
	assert.Regexp(t, `^item-\d+$`, current.Items[0].ID)

	assert.ErrorIs(t, builder.ApplyTemplate("nope"), ErrValidation)
}

func TestBuilderCurrentIsACopy(t *testing.T) {
	builder, _, _ := newTestBuilder(t)
	builder.AddItem(ItemSegment)
	current := builder.Current()
	current.Items[0].Title = "mutated"
	assert.Equal(t, "New Segment Visualization", builder.Current().Items[0].Title)
}

func itemIDs(items []DashboardItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestBuilderSetDefaultToleratesOlderItems(t *testing.T) {
	store, kv := newTestStore()
	kv.data[DefaultStorageKey] = []byte(`[
		{"id":"dashboard-1","name":"Legacy","description":"","layout":"grid","isDefault":false,
		 "items":[{"id":"item-1","type":"segment","title":"Ring","visualizationType":"doughnut","filters":[],"segments":[]}],
		 "createdAt":"2025-01-02T03:04:05Z","updatedAt":"2025-01-02T03:04:05Z"},
		{"id":"dashboard-2","name":"Current","description":"","layout":"grid","isDefault":true,"items":[],
		 "createdAt":"2025-01-02T03:04:05Z","updatedAt":"2025-01-02T03:04:05Z"}
	]`)
	service := NewService(Options{Store: store})
	ctx := context.Background()

	preview, err := service.Preview(ctx, "dashboard-1")
	require.NoError(t, err)
	require.Len(t, preview.Charts, 1)
	assert.False(t, preview.Charts[0].Available)

	builder := service.NewBuilder()
	require.NoError(t, builder.Refresh(ctx))
	require.NoError(t, builder.SetDefault(ctx, "dashboard-1"))

	def, ok, err := store.GetDefault(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dashboard-1", def.ID)
	assert.Equal(t, VisualizationType("doughnut"), def.Items[0].VisualizationType)
	for _, cfg := range builder.Configs() {
		assert.Equal(t, cfg.ID == "dashboard-1", cfg.IsDefault, "config %s", cfg.ID)
	}

	_, err = service.SetDefault(ctx, "dashboard-2")
	require.NoError(t, err)
}
