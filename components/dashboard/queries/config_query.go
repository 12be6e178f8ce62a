package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

type configReader interface {
	List(ctx context.Context) ([]dashboard.DashboardConfig, error)
	GetByID(ctx context.Context, id string) (dashboard.DashboardConfig, bool, error)
	GetDefault(ctx context.Context) (dashboard.DashboardConfig, bool, error)
}

// ListConfigsInput has no parameters; configurations come back in storage order.
type ListConfigsInput struct{}

// ListConfigsQuery lists stored configurations.
type ListConfigsQuery struct {
	service configReader
}

// NewListConfigsQuery builds the query.
func NewListConfigsQuery(service configReader) *ListConfigsQuery {
	return &ListConfigsQuery{service: service}
}

var _ gocommand.Querier[ListConfigsInput, []dashboard.DashboardConfig] = (*ListConfigsQuery)(nil)

// Query returns every configuration.
func (q *ListConfigsQuery) Query(ctx context.Context, _ ListConfigsInput) ([]dashboard.DashboardConfig, error) {
	return q.service.List(ctx)
}

// GetConfigInput identifies one configuration. An empty ID selects the default.
type GetConfigInput struct {
	ID string `json:"id"`
}

// GetConfigQuery resolves one configuration, returning dashboard.ErrNotFound
// when it is absent.
type GetConfigQuery struct {
	service configReader
}

// NewGetConfigQuery builds the query.
func NewGetConfigQuery(service configReader) *GetConfigQuery {
	return &GetConfigQuery{service: service}
}

var _ gocommand.Querier[GetConfigInput, dashboard.DashboardConfig] = (*GetConfigQuery)(nil)

// Query loads the configuration.
func (q *GetConfigQuery) Query(ctx context.Context, in GetConfigInput) (dashboard.DashboardConfig, error) {
	var (
		cfg dashboard.DashboardConfig
		ok  bool
		err error
	)
	if in.ID == "" {
		cfg, ok, err = q.service.GetDefault(ctx)
	} else {
		cfg, ok, err = q.service.GetByID(ctx, in.ID)
	}
	if err != nil {
		return dashboard.DashboardConfig{}, err
	}
	if !ok {
		id := in.ID
		if id == "" {
			id = "default"
		}
		return dashboard.DashboardConfig{}, &notFound{id: id}
	}
	return cfg, nil
}

type notFound struct{ id string }

func (e *notFound) Error() string        { return "dashboard: configuration " + e.id + " not found" }
func (e *notFound) Is(target error) bool { return target == dashboard.ErrNotFound }
