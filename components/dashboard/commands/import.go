package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

type importService interface {
	GetByID(ctx context.Context, id string) (dashboard.DashboardConfig, bool, error)
	Save(ctx context.Context, cfg dashboard.DashboardConfig) (dashboard.DashboardConfig, error)
}

// ImportConfigsInput carries an export document (JSON or YAML).
type ImportConfigsInput struct {
	Actor
	Data   []byte
	Result *[]dashboard.DashboardConfig `json:"-"`
}

// ImportConfigsCommand saves every configuration of an export document.
// Records whose id already exists are replaced; any other record is created
// with a fresh id.
type ImportConfigsCommand struct {
	service   importService
	telemetry Telemetry
}

// NewImportConfigsCommand creates the command.
func NewImportConfigsCommand(service importService, telemetry Telemetry) *ImportConfigsCommand {
	return &ImportConfigsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ImportConfigsInput] = (*ImportConfigsCommand)(nil)

// Execute decodes and saves the document. It stops at the first failing record.
func (c *ImportConfigsCommand) Execute(ctx context.Context, msg ImportConfigsInput) error {
	if c.service == nil {
		return errors.New("import command requires service")
	}
	configs, err := dashboard.DecodeExport(msg.Data)
	if err != nil {
		return err
	}
	ctx = msg.bind(ctx)
	saved := make([]dashboard.DashboardConfig, 0, len(configs))
	created := 0
	for idx, cfg := range configs {
		if cfg.ID != "" {
			_, exists, err := c.service.GetByID(ctx, cfg.ID)
			if err != nil {
				return err
			}
			if !exists {
				cfg.ID = ""
			}
		}
		if cfg.ID == "" {
			created++
		}
		stored, err := c.service.Save(ctx, cfg)
		if err != nil {
			return fmt.Errorf("import config %d (%s): %w", idx, cfg.Name, err)
		}
		saved = append(saved, stored)
	}
	if msg.Result != nil {
		*msg.Result = saved
	}
	c.telemetry.Record(ctx, EventImport, map[string]any{
		"configs": len(saved),
		"created": created,
	})
	return nil
}
