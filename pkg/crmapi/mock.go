package crmapi

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// MockData maps a source key (data-source id or item kind) to its series.
type MockData map[string]dashboard.ChartData

// DefaultMockData decodes the bundled fixtures.
func DefaultMockData() (MockData, error) {
	var raw map[string]struct {
		Labels []string `yaml:"labels"`
		Series []struct {
			Name   string `yaml:"name"`
			Points []struct {
				Label string  `yaml:"label"`
				Value float64 `yaml:"value"`
			} `yaml:"points"`
		} `yaml:"series"`
	}
	if err := yaml.Unmarshal(fixturesYAML, &raw); err != nil {
		return nil, fmt.Errorf("crmapi: decode fixtures: %w", err)
	}
	data := make(MockData, len(raw))
	for key, entry := range raw {
		out := dashboard.ChartData{Labels: entry.Labels, Series: make([]dashboard.ChartSeries, len(entry.Series))}
		for i, s := range entry.Series {
			series := dashboard.ChartSeries{Name: s.Name, Points: make([]dashboard.ChartPoint, len(s.Points))}
			for j, p := range s.Points {
				series.Points[j] = dashboard.ChartPoint{Label: p.Label, Value: p.Value}
			}
			out.Series[i] = series
		}
		data[key] = out
	}
	return data, nil
}

// Mock implements dashboard.DataProvider from in-memory fixtures.
type Mock struct {
	mu   sync.RWMutex
	data MockData
}

var _ dashboard.DataProvider = (*Mock)(nil)

// NewMock builds a mock provider. A nil data map loads the bundled fixtures.
func NewMock(data MockData) (*Mock, error) {
	if data == nil {
		var err error
		if data, err = DefaultMockData(); err != nil {
			return nil, err
		}
	}
	return &Mock{data: data}, nil
}

// Set replaces the fixture for one source key.
func (m *Mock) Set(key string, data dashboard.ChartData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = cloneChartData(data)
}

// FetchSeries returns the fixture for the spec's source, ignoring filters.
// Trend items share the revenue fixture.
func (m *Mock) FetchSeries(ctx context.Context, spec dashboard.ChartSpec) (dashboard.ChartData, error) {
	if err := ctx.Err(); err != nil {
		return dashboard.ChartData{}, err
	}
	key := sourceKey(spec)
	if key == "trend" {
		key = "revenue"
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[key]
	if !ok {
		return dashboard.ChartData{}, fmt.Errorf("%w: %s", ErrUnsupportedSource, key)
	}
	return cloneChartData(data), nil
}

func cloneChartData(in dashboard.ChartData) dashboard.ChartData {
	out := dashboard.ChartData{
		Labels: append([]string(nil), in.Labels...),
		Series: make([]dashboard.ChartSeries, len(in.Series)),
	}
	for i, s := range in.Series {
		out.Series[i] = dashboard.ChartSeries{Name: s.Name, Points: append([]dashboard.ChartPoint(nil), s.Points...)}
	}
	return out
}
