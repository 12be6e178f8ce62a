package dashboard

import (
	"context"
	"time"
)

// Layout controls how items are arranged on screen. It has no behavioral effect.
type Layout string

const (
	LayoutGrid Layout = "grid"
	LayoutList Layout = "list"
)

// ItemType discriminates dashboard item variants.
type ItemType string

const (
	ItemSegment    ItemType = "segment"
	ItemCombined   ItemType = "combined"
	ItemTrend      ItemType = "trend"
	ItemDataSource ItemType = "data-source"
)

// VisualizationType names the chart kind used for an item.
type VisualizationType string

const (
	VisualizationPie  VisualizationType = "pie"
	VisualizationBar  VisualizationType = "bar"
	VisualizationLine VisualizationType = "line"
	VisualizationArea VisualizationType = "area"
	// VisualizationTable is only meaningful for data-source items.
	VisualizationTable VisualizationType = "table"
)

// Filter describes one segment filter condition.
type Filter struct {
	ID       string   `json:"id" yaml:"id"`
	Type     string   `json:"type" yaml:"type"`
	Value    any      `json:"value,omitempty" yaml:"value,omitempty"`
	Min      *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max      *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Operator string   `json:"operator" yaml:"operator"`
}

// SegmentRef points at one segment participating in a combined item.
type SegmentRef struct {
	ID    string `json:"id" yaml:"id"`
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"`
}

// DashboardItem is one visualization entry within a configuration.
type DashboardItem struct {
	ID                string            `json:"id" yaml:"id"`
	Type              ItemType          `json:"type" yaml:"type"`
	Title             string            `json:"title" yaml:"title"`
	VisualizationType VisualizationType `json:"visualizationType" yaml:"visualizationType"`
	Filters           []Filter          `json:"filters,omitempty" yaml:"filters,omitempty"`
	Segments          []SegmentRef      `json:"segments,omitempty" yaml:"segments,omitempty"`
	SourceID          string            `json:"sourceId,omitempty" yaml:"sourceId,omitempty"`
	Service           string            `json:"service,omitempty" yaml:"service,omitempty"`
}

// DashboardConfig is a named, persisted set of items plus layout metadata.
type DashboardConfig struct {
	ID          string          `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Layout      Layout          `json:"layout" yaml:"layout"`
	IsDefault   bool            `json:"isDefault" yaml:"isDefault"`
	Items       []DashboardItem `json:"items" yaml:"items"`
	CreatedAt   time.Time       `json:"createdAt,omitzero" yaml:"createdAt,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt,omitzero" yaml:"updatedAt,omitempty"`
}

// ConfigStore persists dashboard configurations. Reads degrade to empty or
// absent results on storage failure; writes return the failure.
type ConfigStore interface {
	List(ctx context.Context) ([]DashboardConfig, error)
	GetByID(ctx context.Context, id string) (DashboardConfig, bool, error)
	GetDefault(ctx context.Context) (DashboardConfig, bool, error)
	Save(ctx context.Context, cfg DashboardConfig) (DashboardConfig, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// DefaultSetter is implemented by stores that can flip the default flag
// without re-validating the stored record.
type DefaultSetter interface {
	SetDefault(ctx context.Context, id string) (DashboardConfig, error)
}

// KeyValue is the raw storage backend behind the collection store.
type KeyValue interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// ConfigEvent is emitted whenever a stored configuration changes.
type ConfigEvent struct {
	ConfigID string           `json:"configId"`
	Reason   string           `json:"reason"`
	Config   *DashboardConfig `json:"config,omitempty"`
}

// EventHook receives configuration change notifications.
type EventHook interface {
	ConfigChanged(ctx context.Context, event ConfigEvent) error
}

type noopEventHook struct{}

func (noopEventHook) ConfigChanged(context.Context, ConfigEvent) error { return nil }
