package dashboard

// Service names used by data sources and the external CRM clients.
const (
	ServiceSegmentation = "segmentation"
	ServiceRevenue      = "revenue"
	ServiceMarketing    = "marketing"
)

var defaultDataSources = []DataSource{
	{
		ID:             "demographic",
		Name:           "Demographic Segmentation",
		Description:    "Age, gender, and location-based customer segments",
		Service:        ServiceSegmentation,
		Visualizations: []VisualizationType{VisualizationPie, VisualizationBar, VisualizationTable},
	},
	{
		ID:             "rfm",
		Name:           "RFM Segmentation",
		Description:    "Recency, frequency, and monetary value segments",
		Service:        ServiceSegmentation,
		Visualizations: []VisualizationType{VisualizationPie, VisualizationBar, VisualizationTable},
	},
	{
		ID:             "preference",
		Name:           "Preference Segmentation",
		Description:    "Product preference-based customer segments",
		Service:        ServiceSegmentation,
		Visualizations: []VisualizationType{VisualizationPie, VisualizationBar, VisualizationTable},
	},
	{
		ID:             "revenue",
		Name:           "Revenue Analysis",
		Description:    "Revenue trends and forecasts",
		Service:        ServiceRevenue,
		Visualizations: []VisualizationType{VisualizationLine, VisualizationBar},
	},
	{
		ID:             "sales",
		Name:           "Sales Performance",
		Description:    "Sales metrics and performance indicators",
		Service:        ServiceRevenue,
		Visualizations: []VisualizationType{VisualizationLine, VisualizationBar},
	},
	{
		ID:             "marketing",
		Name:           "Marketing Performance",
		Description:    "Campaign performance and metrics",
		Service:        ServiceMarketing,
		Visualizations: []VisualizationType{VisualizationLine, VisualizationBar, VisualizationPie},
	},
}

// DefaultDataSources returns the built-in data-source catalog.
func DefaultDataSources() []DataSource {
	out := make([]DataSource, len(defaultDataSources))
	for i, src := range defaultDataSources {
		src.Visualizations = append([]VisualizationType(nil), src.Visualizations...)
		out[i] = src
	}
	return out
}
