package crmapi

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockServesEveryDefaultSource(t *testing.T) {
	mock, err := NewMock(nil)
	require.NoError(t, err)

	for _, src := range dashboard.DefaultDataSources() {
		data, err := mock.FetchSeries(context.Background(), dataSourceSpec(src.ID))
		require.NoError(t, err, src.ID)
		assert.NotEmpty(t, data.Series, src.ID)
	}
	for _, kind := range []dashboard.ItemType{dashboard.ItemSegment, dashboard.ItemCombined, dashboard.ItemTrend} {
		_, err := mock.FetchSeries(context.Background(), dashboard.ChartSpec{Source: dashboard.DataRef{Kind: kind}})
		require.NoError(t, err, kind)
	}
}

func TestMockReturnsCopies(t *testing.T) {
	mock, err := NewMock(MockData{})
	require.NoError(t, err)
	mock.Set("rfm", dashboard.ChartData{Series: []dashboard.ChartSeries{{Name: "x", Points: []dashboard.ChartPoint{{Label: "a", Value: 1}}}}})

	first, err := mock.FetchSeries(context.Background(), dataSourceSpec("rfm"))
	require.NoError(t, err)
	first.Series[0].Points[0].Value = 99

	second, err := mock.FetchSeries(context.Background(), dataSourceSpec("rfm"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, second.Series[0].Points[0].Value)

	_, err = mock.FetchSeries(context.Background(), dataSourceSpec("sales"))
	assert.True(t, errors.Is(err, ErrUnsupportedSource))
}

func TestMockHonoursCancellation(t *testing.T) {
	mock, err := NewMock(nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = mock.FetchSeries(ctx, dataSourceSpec("rfm"))
	assert.ErrorIs(t, err, context.Canceled)
}
