package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// Catalog lists what a builder can add.
type Catalog struct {
	Templates   []dashboard.Template   `json:"templates"`
	DataSources []dashboard.DataSource `json:"dataSources"`
}

// CatalogInput has no parameters.
type CatalogInput struct{}

// CatalogQuery reads the registry.
type CatalogQuery struct {
	registry *dashboard.Registry
}

func NewCatalogQuery(registry *dashboard.Registry) *CatalogQuery {
	return &CatalogQuery{registry: registry}
}

var _ gocommand.Querier[CatalogInput, Catalog] = (*CatalogQuery)(nil)

func (q *CatalogQuery) Query(context.Context, CatalogInput) (Catalog, error) {
	if q.registry == nil {
		return Catalog{Templates: []dashboard.Template{}, DataSources: []dashboard.DataSource{}}, nil
	}
	return Catalog{
		Templates:   q.registry.Templates(),
		DataSources: q.registry.DataSources(),
	}, nil
}

// ExportInput selects configurations to export; empty IDs exports all.
type ExportInput struct {
	IDs    []string
	Format string
}

// ExportQuery encodes stored configurations as an export document.
type ExportQuery struct {
	service configReader
}

func NewExportQuery(service configReader) *ExportQuery {
	return &ExportQuery{service: service}
}

var _ gocommand.Querier[ExportInput, []byte] = (*ExportQuery)(nil)

func (q *ExportQuery) Query(ctx context.Context, in ExportInput) ([]byte, error) {
	configs, err := q.service.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(in.IDs) > 0 {
		wanted := make(map[string]struct{}, len(in.IDs))
		for _, id := range in.IDs {
			wanted[id] = struct{}{}
		}
		filtered := configs[:0]
		for _, cfg := range configs {
			if _, ok := wanted[cfg.ID]; ok {
				filtered = append(filtered, cfg)
			}
		}
		configs = filtered
	}
	return dashboard.EncodeExport(configs, in.Format)
}
