package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// SeedDashboardsInput controls starter dashboard seeding.
type SeedDashboardsInput struct {
	Actor
	Force           bool
	DefaultTemplate string
	Result          *[]dashboard.DashboardConfig `json:"-"`
}

// SeedDashboardsCommand saves one dashboard per registered template.
type SeedDashboardsCommand struct {
	service   *dashboard.Service
	telemetry Telemetry
}

// NewSeedDashboardsCommand wires dependencies.
func NewSeedDashboardsCommand(service *dashboard.Service, telemetry Telemetry) *SeedDashboardsCommand {
	return &SeedDashboardsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SeedDashboardsInput] = (*SeedDashboardsCommand)(nil)

// Execute runs the seeding pipeline.
func (c *SeedDashboardsCommand) Execute(ctx context.Context, msg SeedDashboardsInput) error {
	if c.service == nil {
		return errors.New("seed command requires service")
	}
	ctx = msg.bind(ctx)
	saved, err := dashboard.SeedStarterDashboards(ctx, c.service, dashboard.SeedOptions{
		Force:           msg.Force,
		DefaultTemplate: msg.DefaultTemplate,
	})
	if msg.Result != nil {
		*msg.Result = saved
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, EventSeed, map[string]any{"seeded": len(saved), "force": msg.Force})
	return nil
}
