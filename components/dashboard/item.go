package dashboard

import (
	"encoding/json"
	"fmt"
)

// ItemSpec is the type-specific payload of a DashboardItem. Exactly one of
// SegmentSpec, CombinedSpec, TrendSpec, DataSourceSpec or UnknownSpec.
type ItemSpec interface {
	itemType() ItemType
}

// SegmentSpec carries the filters of a segment item.
type SegmentSpec struct {
	Filters []Filter
}

// CombinedSpec carries the segments intersected by a combined item.
type CombinedSpec struct {
	Segments []SegmentRef
}

// TrendSpec has no type-specific payload.
type TrendSpec struct{}

// DataSourceSpec points a tile at an external data source.
type DataSourceSpec struct {
	SourceID string
	Service  string
}

// UnknownSpec is returned for item types written by another schema version.
type UnknownSpec struct {
	Type ItemType
}

func (SegmentSpec) itemType() ItemType    { return ItemSegment }
func (CombinedSpec) itemType() ItemType   { return ItemCombined }
func (TrendSpec) itemType() ItemType      { return ItemTrend }
func (DataSourceSpec) itemType() ItemType { return ItemDataSource }
func (s UnknownSpec) itemType() ItemType  { return s.Type }

// Spec returns the variant matching the item's type.
func (i DashboardItem) Spec() ItemSpec {
	switch i.Type {
	case ItemSegment:
		return SegmentSpec{Filters: i.Filters}
	case ItemCombined:
		return CombinedSpec{Segments: i.Segments}
	case ItemTrend:
		return TrendSpec{}
	case ItemDataSource:
		return DataSourceSpec{SourceID: i.SourceID, Service: i.Service}
	default:
		return UnknownSpec{Type: i.Type}
	}
}

var defaultItemTitles = map[ItemType]string{
	ItemSegment:    "New Segment Visualization",
	ItemCombined:   "Combined Segments",
	ItemTrend:      "Trend Analysis",
	ItemDataSource: "Data Source",
}

// DefaultItemTitle returns the title given to freshly created items.
func DefaultItemTitle(t ItemType) string {
	if title, ok := defaultItemTitles[t]; ok {
		return title
	}
	return "Visualization"
}

// NewItem creates an item with a fresh id, the type's default title, a pie
// visualization and empty filters/segments.
func NewItem(t ItemType, ids *IDGenerator) DashboardItem {
	if ids == nil {
		ids = NewIDGenerator(nil)
	}
	item := DashboardItem{
		ID:                ids.ItemID(""),
		Type:              t,
		Title:             DefaultItemTitle(t),
		VisualizationType: VisualizationPie,
	}
	normalizeItem(&item)
	return item
}

// MarshalJSON always writes filters and segments for non data-source items so
// the persisted shape is stable.
func (i DashboardItem) MarshalJSON() ([]byte, error) {
	type plain DashboardItem
	if i.Type == ItemDataSource {
		return json.Marshal(plain(i))
	}
	return json.Marshal(struct {
		plain
		Filters  []Filter     `json:"filters"`
		Segments []SegmentRef `json:"segments"`
	}{
		plain:    plain(i),
		Filters:  nonNilFilters(i.Filters),
		Segments: nonNilSegments(i.Segments),
	})
}

// Clone returns a deep copy of the configuration.
func (c DashboardConfig) Clone() DashboardConfig {
	out := c
	if c.Items != nil {
		out.Items = make([]DashboardItem, len(c.Items))
		for i, item := range c.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the item.
func (i DashboardItem) Clone() DashboardItem {
	out := i
	if i.Filters != nil {
		out.Filters = make([]Filter, len(i.Filters))
		for idx, f := range i.Filters {
			out.Filters[idx] = f.clone()
		}
	}
	if i.Segments != nil {
		out.Segments = append([]SegmentRef{}, i.Segments...)
	}
	return out
}

func (f Filter) clone() Filter {
	out := f
	if f.Min != nil {
		v := *f.Min
		out.Min = &v
	}
	if f.Max != nil {
		v := *f.Max
		out.Max = &v
	}
	return out
}

// ValidateItems reports missing or duplicated item ids.
func ValidateItems(items []DashboardItem) error {
	seen := make(map[string]struct{}, len(items))
	for idx, item := range items {
		if item.ID == "" {
			return newValidationError("items", fmt.Sprintf("item at index %d is missing an id", idx))
		}
		if _, ok := seen[item.ID]; ok {
			return newValidationError("items", fmt.Sprintf("duplicate item id %s", item.ID))
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

func normalizeConfig(cfg *DashboardConfig) {
	if cfg.Items == nil {
		cfg.Items = []DashboardItem{}
	}
	if cfg.Layout == "" {
		cfg.Layout = LayoutGrid
	}
	for i := range cfg.Items {
		normalizeItem(&cfg.Items[i])
	}
}

func normalizeItem(item *DashboardItem) {
	if item.Type == ItemDataSource {
		if len(item.Filters) == 0 {
			item.Filters = nil
		}
		if len(item.Segments) == 0 {
			item.Segments = nil
		}
		return
	}
	item.Filters = nonNilFilters(item.Filters)
	item.Segments = nonNilSegments(item.Segments)
}

func nonNilFilters(in []Filter) []Filter {
	if in == nil {
		return []Filter{}
	}
	return in
}

func nonNilSegments(in []SegmentRef) []SegmentRef {
	if in == nil {
		return []SegmentRef{}
	}
	return in
}
