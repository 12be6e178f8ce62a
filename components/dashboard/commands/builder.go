package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// Builder actions accepted by BuilderActionCommand.
const (
	ActionRefresh         = "refresh"
	ActionAddItem         = "add_item"
	ActionAddDataSource   = "add_data_source"
	ActionRemoveItem      = "remove_item"
	ActionUpdateItem      = "update_item"
	ActionMoveItem        = "move_item"
	ActionSetMeta         = "set_meta"
	ActionApplyTemplate   = "apply_template"
	ActionSave            = "save"
	ActionSaveDataSources = "save_data_sources"
	ActionLoad            = "load"
	ActionSetDefault      = "set_default"
	ActionDelete          = "delete"
)

// BuilderMeta holds optional metadata edits; nil fields are left alone.
type BuilderMeta struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Layout      *dashboard.Layout `json:"layout,omitempty"`
	IsDefault   *bool             `json:"isDefault,omitempty"`
}

// BuilderActionInput addresses one builder session and one action.
type BuilderActionInput struct {
	Actor
	Session  string                   `json:"session"`
	Action   string                   `json:"action"`
	ItemType dashboard.ItemType       `json:"itemType,omitempty"`
	SourceID string                   `json:"sourceId,omitempty"`
	Index    int                      `json:"index,omitempty"`
	To       int                      `json:"to,omitempty"`
	Item     *dashboard.DashboardItem `json:"item,omitempty"`
	Meta     BuilderMeta              `json:"meta,omitempty"`
	Template string                   `json:"template,omitempty"`
	ConfigID string                   `json:"configId,omitempty"`

	Result *dashboard.BuilderSnapshot `json:"-"`
}

type builderSessions interface {
	Get(id string) (*dashboard.Builder, bool)
}

// BuilderActionCommand applies edits to a builder session.
type BuilderActionCommand struct {
	sessions  builderSessions
	telemetry Telemetry
}

// NewBuilderActionCommand creates the command.
func NewBuilderActionCommand(sessions builderSessions, telemetry Telemetry) *BuilderActionCommand {
	return &BuilderActionCommand{sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[BuilderActionInput] = (*BuilderActionCommand)(nil)

// Execute runs the action. The session snapshot is written to Result even
// when the action fails so callers can show the retained state.
func (c *BuilderActionCommand) Execute(ctx context.Context, msg BuilderActionInput) error {
	if c.sessions == nil {
		return errors.New("builder command requires sessions")
	}
	builder, ok := c.sessions.Get(msg.Session)
	if !ok {
		return fmt.Errorf("builder session %s: %w", msg.Session, dashboard.ErrNotFound)
	}
	ctx = msg.bind(ctx)
	err := apply(ctx, builder, msg)
	if msg.Result != nil {
		*msg.Result = builder.Snapshot()
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, EventAction, map[string]any{
		"action": msg.Action,
		"state":  string(builder.State()),
	})
	return nil
}

func apply(ctx context.Context, b *dashboard.Builder, msg BuilderActionInput) error {
	switch msg.Action {
	case ActionRefresh:
		return b.Refresh(ctx)
	case ActionAddItem:
		if msg.ItemType == "" {
			return &dashboard.ValidationError{Field: "itemType", Message: "item type is required"}
		}
		b.AddItem(msg.ItemType)
		return nil
	case ActionAddDataSource:
		_, err := b.AddDataSource(msg.SourceID)
		return err
	case ActionRemoveItem:
		return b.RemoveItem(msg.Index)
	case ActionUpdateItem:
		if msg.Item == nil {
			return &dashboard.ValidationError{Field: "item", Message: "item is required"}
		}
		return b.UpdateItem(msg.Index, *msg.Item)
	case ActionMoveItem:
		return b.MoveItem(msg.Index, msg.To)
	case ActionSetMeta:
		if msg.Meta.Name != nil {
			b.SetName(*msg.Meta.Name)
		}
		if msg.Meta.Description != nil {
			b.SetDescription(*msg.Meta.Description)
		}
		if msg.Meta.Layout != nil {
			b.SetLayout(*msg.Meta.Layout)
		}
		if msg.Meta.IsDefault != nil {
			b.SetDefaultFlag(*msg.Meta.IsDefault)
		}
		return nil
	case ActionApplyTemplate:
		return b.ApplyTemplate(msg.Template)
	case ActionSave:
		_, err := b.Save(ctx)
		return err
	case ActionSaveDataSources:
		_, err := b.SaveDataSources(ctx)
		return err
	case ActionLoad:
		return b.LoadForEdit(ctx, msg.ConfigID)
	case ActionSetDefault:
		return b.SetDefault(ctx, msg.ConfigID)
	case ActionDelete:
		return b.Delete(ctx, msg.ConfigID)
	default:
		return &dashboard.ValidationError{Field: "action", Message: fmt.Sprintf("unknown builder action %q", msg.Action)}
	}
}
