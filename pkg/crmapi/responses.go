package crmapi

import (
	"maps"
	"slices"
	"strings"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
)

type segmentationRequest struct {
	ReferenceDate string `json:"reference_date,omitempty"`
	MinClusters   int    `json:"min_clusters,omitempty"`
	MaxClusters   int    `json:"max_clusters,omitempty"`
}

// SegmentationResult is the summary returned by the segmentation service.
// Each group maps a segment name to its customer count.
type SegmentationResult struct {
	Summary struct {
		Demographic map[string]float64 `json:"demographic"`
		RFM         map[string]float64 `json:"value_based_rfm"`
		Preference  map[string]float64 `json:"preference"`
	} `json:"summary"`
}

func (r SegmentationResult) group(kind string) map[string]float64 {
	switch kind {
	case "demographic":
		return r.Summary.Demographic
	case "preference":
		return r.Summary.Preference
	default:
		return r.Summary.RFM
	}
}

func (r SegmentationResult) chartData(title, kind string, only []dashboard.SegmentRef) dashboard.ChartData {
	counts := r.group(kind)
	if len(only) > 0 {
		// Named segments may live in any group.
		merged := map[string]float64{}
		for _, group := range []map[string]float64{r.Summary.Demographic, r.Summary.RFM, r.Summary.Preference} {
			maps.Copy(merged, group)
		}
		counts = pick(merged, only)
	}
	return distribution(title, counts, func(name string) string {
		return strings.TrimPrefix(name, "Gender_")
	})
}

// TrendPoint is one bucket of the revenue trend.
type TrendPoint struct {
	Period            string  `json:"period"`
	Revenue           float64 `json:"revenue"`
	CumulativeRevenue float64 `json:"cumulative_revenue"`
}

// RevenueTrends is the revenue service trend response.
type RevenueTrends struct {
	Trend      []TrendPoint `json:"trend"`
	Cumulative []TrendPoint `json:"cumulative"`
}

func (r RevenueTrends) chartData(title string, cumulative bool) dashboard.ChartData {
	rows := r.Trend
	if cumulative {
		rows = r.Cumulative
	}
	series := dashboard.ChartSeries{Name: title, Points: make([]dashboard.ChartPoint, len(rows))}
	labels := make([]string, len(rows))
	for i, row := range rows {
		value := row.Revenue
		if cumulative {
			value = row.CumulativeRevenue
		}
		labels[i] = row.Period
		series.Points[i] = dashboard.ChartPoint{Label: row.Period, Value: value}
	}
	return dashboard.ChartData{Labels: labels, Series: []dashboard.ChartSeries{series}}
}

// SegmentRevenueRow is revenue attributed to one segment.
type SegmentRevenueRow struct {
	TotalRevenue            float64 `json:"total_revenue"`
	TransactionCount        int     `json:"transaction_count"`
	AverageTransactionValue float64 `json:"average_transaction_value"`
	CustomerCount           int     `json:"customer_count,omitempty"`
}

// SegmentRevenue is the revenue-by-segment response.
type SegmentRevenue struct {
	Segments map[string]SegmentRevenueRow `json:"segments"`
	Message  string                       `json:"message,omitempty"`
}

func (r SegmentRevenue) chartData(title string, only []dashboard.SegmentRef) dashboard.ChartData {
	totals := make(map[string]float64, len(r.Segments))
	for name, row := range r.Segments {
		totals[name] = row.TotalRevenue
	}
	if len(only) > 0 {
		totals = pick(totals, only)
	}
	return distribution(title, totals, nil)
}

// CampaignTimelinePoint is one day of campaign engagement.
type CampaignTimelinePoint struct {
	Date      string  `json:"date"`
	Opens     float64 `json:"opens"`
	Clicks    float64 `json:"clicks"`
	Responses float64 `json:"responses"`
}

// CampaignAnalytics is the marketing analytics response.
type CampaignAnalytics struct {
	CampaignID string                  `json:"campaignId"`
	Sent       int                     `json:"sent"`
	Delivered  int                     `json:"delivered"`
	Responded  int                     `json:"responded"`
	Failed     int                     `json:"failed"`
	Timeline   []CampaignTimelinePoint `json:"timeline"`
}

func (r CampaignAnalytics) chartData() dashboard.ChartData {
	labels := make([]string, len(r.Timeline))
	opens := dashboard.ChartSeries{Name: "Opens", Points: make([]dashboard.ChartPoint, len(r.Timeline))}
	clicks := dashboard.ChartSeries{Name: "Clicks", Points: make([]dashboard.ChartPoint, len(r.Timeline))}
	responses := dashboard.ChartSeries{Name: "Responses", Points: make([]dashboard.ChartPoint, len(r.Timeline))}
	for i, day := range r.Timeline {
		labels[i] = day.Date
		opens.Points[i] = dashboard.ChartPoint{Label: day.Date, Value: day.Opens}
		clicks.Points[i] = dashboard.ChartPoint{Label: day.Date, Value: day.Clicks}
		responses.Points[i] = dashboard.ChartPoint{Label: day.Date, Value: day.Responses}
	}
	return dashboard.ChartData{Labels: labels, Series: []dashboard.ChartSeries{opens, clicks, responses}}
}

func pick(values map[string]float64, only []dashboard.SegmentRef) map[string]float64 {
	out := make(map[string]float64, len(only))
	for _, ref := range only {
		if v, ok := values[ref.Value]; ok {
			out[ref.Value] = v
		}
	}
	return out
}

// distribution turns a name->value map into a single series ordered by name.
func distribution(title string, values map[string]float64, label func(string) string) dashboard.ChartData {
	names := slices.Sorted(maps.Keys(values))
	series := dashboard.ChartSeries{Name: title, Points: make([]dashboard.ChartPoint, len(names))}
	labels := make([]string, len(names))
	for i, name := range names {
		display := name
		if label != nil {
			display = label(name)
		}
		labels[i] = display
		series.Points[i] = dashboard.ChartPoint{Label: display, Value: values[name]}
	}
	return dashboard.ChartData{Labels: labels, Series: []dashboard.ChartSeries{series}}
}
