package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// SeedOptions controls SeedStarterDashboards.
type SeedOptions struct {
	// Force seeds even when configurations already exist.
	Force bool
	// DefaultTemplate is the template code whose dashboard becomes default.
	// Empty means the first template.
	DefaultTemplate string
}

// SeedStarterDashboards saves one configuration per registered template.
// Nothing is written when the store already holds configurations unless
// opts.Force is set. It returns the saved records.
func SeedStarterDashboards(ctx context.Context, service *Service, opts SeedOptions) ([]DashboardConfig, error) {
	if service == nil {
		return nil, errors.New("dashboard: service is required to seed dashboards")
	}
	existing, err := service.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 && !opts.Force {
		return nil, nil
	}
	templates := service.Registry().Templates()
	if opts.DefaultTemplate == "" && len(templates) > 0 {
		opts.DefaultTemplate = templates[0].Code
	}
	var (
		saved   []DashboardConfig
		seedErr error
	)
	for _, tpl := range templates {
		cfg := DashboardConfig{
			Name:        tpl.Name,
			Description: tpl.Description,
			Layout:      tpl.Layout,
			IsDefault:   tpl.Code == opts.DefaultTemplate,
			Items:       make([]DashboardItem, 0, len(tpl.Items)),
		}
		for _, item := range tpl.Items {
			item = item.Clone()
			item.ID = service.opts.IDs.ItemID("")
			cfg.Items = append(cfg.Items, item)
		}
		stored, err := service.Save(ctx, cfg)
		if err != nil {
			seedErr = errors.Join(seedErr, fmt.Errorf("seed template %s: %w", tpl.Code, err))
			continue
		}
		saved = append(saved, stored)
	}
	return saved, seedErr
}
