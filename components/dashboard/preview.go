package dashboard

// PreviewUnavailable is the placeholder shown for items that cannot be charted.
const PreviewUnavailable = "preview unavailable"

// DataRef describes where chart data comes from. It is a reference only;
// fetching is done by a DataProvider.
type DataRef struct {
	Kind     ItemType `json:"kind"`
	SourceID string   `json:"sourceId,omitempty"`
	Service  string   `json:"service,omitempty"`
}

// ChartSpec is the renderable description of one item.
type ChartSpec struct {
	ItemID      string            `json:"itemId"`
	Title       string            `json:"title"`
	Kind        VisualizationType `json:"kind"`
	Available   bool              `json:"available"`
	Placeholder string            `json:"placeholder,omitempty"`
	Source      DataRef           `json:"source"`
	Filters     []Filter          `json:"filters,omitempty"`
	Segments    []SegmentRef      `json:"segments,omitempty"`
}

// Preview is the renderable form of a whole configuration.
type Preview struct {
	ConfigID    string      `json:"configId,omitempty"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Layout      Layout      `json:"layout"`
	IsDefault   bool        `json:"isDefault"`
	Empty       bool        `json:"empty"`
	Charts      []ChartSpec `json:"charts"`
}

// PreviewRenderer maps configurations to chart specifications. It performs no
// I/O and tolerates data written by older schema versions.
type PreviewRenderer struct{}

// Render builds the preview for cfg. Unknown item or visualization types
// produce an unavailable chart instead of an error.
func (PreviewRenderer) Render(cfg DashboardConfig) Preview {
	preview := Preview{
		ConfigID:    cfg.ID,
		Name:        cfg.Name,
		Description: cfg.Description,
		Layout:      cfg.Layout,
		IsDefault:   cfg.IsDefault,
		Empty:       len(cfg.Items) == 0,
		Charts:      make([]ChartSpec, 0, len(cfg.Items)),
	}
	for _, item := range cfg.Items {
		preview.Charts = append(preview.Charts, renderChartSpec(item))
	}
	return preview
}

// Chart returns the spec of a single item.
func (r PreviewRenderer) Chart(cfg DashboardConfig, itemID string) (ChartSpec, bool) {
	for _, item := range cfg.Items {
		if item.ID == itemID {
			return renderChartSpec(item), true
		}
	}
	return ChartSpec{}, false
}

func renderChartSpec(item DashboardItem) ChartSpec {
	spec := ChartSpec{
		ItemID:    item.ID,
		Title:     item.Title,
		Kind:      item.VisualizationType,
		Available: true,
	}
	if spec.Title == "" {
		spec.Title = DefaultItemTitle(item.Type)
	}

	switch s := item.Spec().(type) {
	case SegmentSpec:
		spec.Source = DataRef{Kind: ItemSegment, Service: ServiceSegmentation}
		spec.Filters = item.Clone().Filters
	case CombinedSpec:
		spec.Source = DataRef{Kind: ItemCombined, Service: ServiceSegmentation}
		spec.Segments = append([]SegmentRef(nil), s.Segments...)
	case TrendSpec:
		spec.Source = DataRef{Kind: ItemTrend, Service: ServiceSegmentation}
	case DataSourceSpec:
		spec.Source = DataRef{Kind: ItemDataSource, SourceID: s.SourceID, Service: s.Service}
		if s.SourceID == "" {
			return unavailable(spec)
		}
	case UnknownSpec:
		spec.Source = DataRef{Kind: s.Type}
		return unavailable(spec)
	}

	if !chartable(item.Type, item.VisualizationType) {
		return unavailable(spec)
	}
	return spec
}

func chartable(t ItemType, v VisualizationType) bool {
	switch v {
	case VisualizationPie, VisualizationBar, VisualizationLine, VisualizationArea:
		return true
	case VisualizationTable:
		return t == ItemDataSource
	default:
		return false
	}
}

func unavailable(spec ChartSpec) ChartSpec {
	spec.Available = false
	spec.Placeholder = PreviewUnavailable
	return spec
}
