package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

type configService interface {
	Save(ctx context.Context, cfg dashboard.DashboardConfig) (dashboard.DashboardConfig, error)
	Delete(ctx context.Context, id string) (bool, error)
	SetDefault(ctx context.Context, id string) (dashboard.DashboardConfig, error)
}

// SaveConfigInput creates (no id) or replaces (known id) a configuration.
// Result, when set, receives the stored record.
type SaveConfigInput struct {
	Actor
	Config dashboard.DashboardConfig
	Result *dashboard.DashboardConfig `json:"-"`
}

// SaveConfigCommand wraps Service.Save.
type SaveConfigCommand struct {
	service configService
}

// NewSaveConfigCommand creates the command.
func NewSaveConfigCommand(service configService) *SaveConfigCommand {
	return &SaveConfigCommand{service: service}
}

var _ gocommand.Commander[SaveConfigInput] = (*SaveConfigCommand)(nil)

// Execute persists the configuration.
func (c *SaveConfigCommand) Execute(ctx context.Context, msg SaveConfigInput) error {
	if c.service == nil {
		return errors.New("save command requires service")
	}
	stored, err := c.service.Save(msg.bind(ctx), msg.Config)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = stored
	}
	return nil
}

// DeleteConfigInput removes a configuration.
type DeleteConfigInput struct {
	Actor
	ID string `json:"id"`
}

// DeleteConfigCommand wraps Service.Delete.
type DeleteConfigCommand struct {
	service configService
}

// NewDeleteConfigCommand creates the command.
func NewDeleteConfigCommand(service configService) *DeleteConfigCommand {
	return &DeleteConfigCommand{service: service}
}

var _ gocommand.Commander[DeleteConfigInput] = (*DeleteConfigCommand)(nil)

// Execute deletes the configuration. Deleting an absent id succeeds.
func (c *DeleteConfigCommand) Execute(ctx context.Context, msg DeleteConfigInput) error {
	if c.service == nil {
		return errors.New("delete command requires service")
	}
	_, err := c.service.Delete(msg.bind(ctx), msg.ID)
	return err
}

// SetDefaultInput marks one configuration as the default.
type SetDefaultInput struct {
	Actor
	ID     string                     `json:"id"`
	Result *dashboard.DashboardConfig `json:"-"`
}

// SetDefaultCommand wraps Service.SetDefault.
type SetDefaultCommand struct {
	service configService
}

// NewSetDefaultCommand creates the command.
func NewSetDefaultCommand(service configService) *SetDefaultCommand {
	return &SetDefaultCommand{service: service}
}

var _ gocommand.Commander[SetDefaultInput] = (*SetDefaultCommand)(nil)

// Execute sets the default flag.
func (c *SetDefaultCommand) Execute(ctx context.Context, msg SetDefaultInput) error {
	if c.service == nil {
		return errors.New("set-default command requires service")
	}
	if msg.ID == "" {
		return &dashboard.ValidationError{Field: "id", Message: "configuration id is required"}
	}
	stored, err := c.service.SetDefault(msg.bind(ctx), msg.ID)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = stored
	}
	return nil
}
