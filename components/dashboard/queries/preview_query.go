package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

type previewService interface {
	Preview(ctx context.Context, id string) (dashboard.Preview, error)
	View(ctx context.Context, id string) (dashboard.Preview, error)
	ChartHTML(ctx context.Context, configID, itemID string) (string, error)
}

// PreviewInput selects the configuration to render. With Fallback set an
// empty ID renders the default configuration.
type PreviewInput struct {
	ID       string `json:"id"`
	Fallback bool   `json:"fallback"`
}

// PreviewQuery renders configurations as chart specifications.
type PreviewQuery struct {
	service previewService
}

// NewPreviewQuery builds the query.
func NewPreviewQuery(service previewService) *PreviewQuery {
	return &PreviewQuery{service: service}
}

var _ gocommand.Querier[PreviewInput, dashboard.Preview] = (*PreviewQuery)(nil)

// Query renders the preview.
func (q *PreviewQuery) Query(ctx context.Context, in PreviewInput) (dashboard.Preview, error) {
	if in.Fallback {
		return q.service.View(ctx, in.ID)
	}
	return q.service.Preview(ctx, in.ID)
}

// ChartInput addresses one item of one configuration.
type ChartInput struct {
	ConfigID string `json:"configId"`
	ItemID   string `json:"itemId"`
}

// ChartQuery renders an item as chart HTML.
type ChartQuery struct {
	service previewService
}

// NewChartQuery builds the query.
func NewChartQuery(service previewService) *ChartQuery {
	return &ChartQuery{service: service}
}

var _ gocommand.Querier[ChartInput, string] = (*ChartQuery)(nil)

// Query returns the chart markup.
func (q *ChartQuery) Query(ctx context.Context, in ChartInput) (string, error) {
	return q.service.ChartHTML(ctx, in.ConfigID, in.ItemID)
}
