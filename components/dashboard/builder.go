package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// BuilderState tracks where the in-progress configuration is in its lifecycle.
type BuilderState string

const (
	StateEmpty   BuilderState = "empty"
	StateEditing BuilderState = "editing"
	StateSaved   BuilderState = "saved"
	StateDeleted BuilderState = "deleted"
)

// BuilderOptions configures a Builder.
type BuilderOptions struct {
	Store     ConfigStore
	Registry  *Registry
	IDs       *IDGenerator
	Logger    *zap.Logger
	Telemetry Telemetry
}

// Builder is one editing session: an in-progress configuration plus the list
// of already saved configurations. Edits stay in memory until Save.
type Builder struct {
	mu        sync.Mutex
	store     ConfigStore
	registry  *Registry
	ids       *IDGenerator
	logger    *zap.Logger
	telemetry Telemetry

	current   DashboardConfig
	configs   []DashboardConfig
	state     BuilderState
	lastSaved string
	deleted   map[string]struct{}
}

// BuilderSnapshot is a point-in-time copy of a builder session.
type BuilderSnapshot struct {
	State   BuilderState      `json:"state"`
	Current DashboardConfig   `json:"current"`
	Configs []DashboardConfig `json:"configs"`
}

// NewBuilder creates a builder with an empty in-progress configuration.
func NewBuilder(opts BuilderOptions) *Builder {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.IDs == nil {
		opts.IDs = NewIDGenerator(nil)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Builder{
		store:     opts.Store,
		registry:  opts.Registry,
		ids:       opts.IDs,
		logger:    opts.Logger,
		telemetry: normalizeTelemetry(opts.Telemetry),
		current:   emptyConfig(),
		configs:   []DashboardConfig{},
		state:     StateEmpty,
		deleted:   map[string]struct{}{},
	}
}

func emptyConfig() DashboardConfig {
	return DashboardConfig{Layout: LayoutGrid, Items: []DashboardItem{}}
}

// Refresh reloads the saved configuration list from the store.
func (b *Builder) Refresh(ctx context.Context) error {
	if b.store == nil {
		return errMissingStore
	}
	configs, err := b.store.List(ctx)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.configs = configs
	return nil
}

// AddItem appends a fresh item of the given type and returns it.
func (b *Builder) AddItem(t ItemType) DashboardItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	item := NewItem(t, b.ids)
	item.ID = b.uniqueItemID(item.ID, "")
	b.current.Items = append(b.current.Items, item)
	b.markEditing()
	return item.Clone()
}

// AddDataSource appends a data-source item for a catalog entry. Its
// visualization defaults to the first one the source allows.
func (b *Builder) AddDataSource(sourceID string) (DashboardItem, error) {
	src, ok := b.registry.DataSource(sourceID)
	if !ok {
		return DashboardItem{}, newValidationError("sourceId", fmt.Sprintf("unknown data source %q", sourceID))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.current.Items {
		if existing.Type == ItemDataSource && existing.SourceID == src.ID {
			return DashboardItem{}, newValidationError("sourceId", fmt.Sprintf("data source %q already added", src.ID))
		}
	}
	item := DashboardItem{
		ID:                b.uniqueItemID(b.ids.ItemID(src.ID), src.ID),
		Type:              ItemDataSource,
		Title:             src.Name,
		VisualizationType: src.Visualizations[0],
		SourceID:          src.ID,
		Service:           src.Service,
	}
	b.current.Items = append(b.current.Items, item)
	b.markEditing()
	return item.Clone(), nil
}

// RemoveItem deletes the item at index.
func (b *Builder) RemoveItem(index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkIndex(index); err != nil {
		return err
	}
	b.current.Items = append(b.current.Items[:index], b.current.Items[index+1:]...)
	b.markEditing()
	return nil
}

// UpdateItem replaces the item at index wholesale. An empty id keeps the
// existing one; an id already used by another item is rejected.
func (b *Builder) UpdateItem(index int, item DashboardItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkIndex(index); err != nil {
		return err
	}
	if item.ID == "" {
		item.ID = b.current.Items[index].ID
	}
	for i, other := range b.current.Items {
		if i != index && other.ID == item.ID {
			return newValidationError("id", fmt.Sprintf("duplicate item id %s", item.ID))
		}
	}
	item = item.Clone()
	normalizeItem(&item)
	b.current.Items[index] = item
	b.markEditing()
	return nil
}

// MoveItem reorders an item; display order follows item order.
func (b *Builder) MoveItem(from, to int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkIndex(from); err != nil {
		return err
	}
	if err := b.checkIndex(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	item := b.current.Items[from]
	items := append(b.current.Items[:from:from], b.current.Items[from+1:]...)
	items = append(items[:to], append([]DashboardItem{item}, items[to:]...)...)
	b.current.Items = items
	b.markEditing()
	return nil
}

// SetName updates the in-progress name.
func (b *Builder) SetName(name string) {
	b.edit(func(cfg *DashboardConfig) { cfg.Name = name })
}

// SetDescription updates the in-progress description.
func (b *Builder) SetDescription(description string) {
	b.edit(func(cfg *DashboardConfig) { cfg.Description = description })
}

// SetLayout updates the in-progress layout.
func (b *Builder) SetLayout(layout Layout) {
	b.edit(func(cfg *DashboardConfig) { cfg.Layout = layout })
}

// SetDefaultFlag toggles isDefault on the in-progress configuration.
func (b *Builder) SetDefaultFlag(isDefault bool) {
	b.edit(func(cfg *DashboardConfig) { cfg.IsDefault = isDefault })
}

// ApplyTemplate replaces the in-progress items with a template's items under
// fresh ids. Name and description are taken from the template when unset.
func (b *Builder) ApplyTemplate(code string) error {
	tpl, ok := b.registry.Template(code)
	if !ok {
		return newValidationError("template", fmt.Sprintf("unknown template %q", code))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	items := make([]DashboardItem, 0, len(tpl.Items))
	for _, item := range tpl.Items {
		item = item.Clone()
		item.ID = b.ids.ItemID("")
		normalizeItem(&item)
		items = append(items, item)
	}
	b.current.Items = items
	if strings.TrimSpace(b.current.Name) == "" {
		b.current.Name = tpl.Name
	}
	if b.current.Description == "" {
		b.current.Description = tpl.Description
	}
	if tpl.Layout != "" {
		b.current.Layout = tpl.Layout
	}
	b.markEditing()
	return nil
}

// Save persists the in-progress configuration. On success the result is
// merged into the list and the in-progress configuration resets; on a store
// failure the in-progress state is kept.
func (b *Builder) Save(ctx context.Context) (DashboardConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saveLocked(ctx)
}

// SaveDataSources is Save for the data-source flow, which also requires at
// least one item.
func (b *Builder) SaveDataSources(ctx context.Context) (DashboardConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if strings.TrimSpace(b.current.Name) == "" {
		return DashboardConfig{}, newValidationError("name", "please provide a name for your dashboard")
	}
	if len(b.current.Items) == 0 {
		return DashboardConfig{}, newValidationError("items", "select at least one data source")
	}
	return b.saveLocked(ctx)
}

func (b *Builder) saveLocked(ctx context.Context) (DashboardConfig, error) {
	if strings.TrimSpace(b.current.Name) == "" {
		return DashboardConfig{}, newValidationError("name", "please provide a name for your dashboard")
	}
	if err := ValidateItems(b.current.Items); err != nil {
		return DashboardConfig{}, err
	}
	if b.store == nil {
		return DashboardConfig{}, errMissingStore
	}
	stored, err := b.store.Save(ctx, b.current.Clone())
	if err != nil {
		b.logger.Error("dashboard save failed", zap.String("id", b.current.ID), zap.Error(err))
		return DashboardConfig{}, err
	}
	b.mergeLocked(stored)
	b.current = emptyConfig()
	b.state = StateSaved
	b.lastSaved = stored.ID
	b.logger.Info("dashboard saved", zap.String("id", stored.ID), zap.String("name", stored.Name))
	b.telemetry.Record(ctx, EventBuilderSave, withActivity(ctx, map[string]any{
		"config_id": stored.ID,
		"items":     len(stored.Items),
	}))
	return stored.Clone(), nil
}

// LoadForEdit replaces the in-progress configuration with a stored one. A
// missing or deleted id yields ErrNotFound and leaves the session unchanged.
func (b *Builder) LoadForEdit(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cfg, err := b.fetchLocked(ctx, id)
	if err != nil {
		return err
	}
	b.current = cfg
	b.state = StateEditing
	return nil
}

// SetDefault marks the configuration as default; the store clears the flag elsewhere.
func (b *Builder) SetDefault(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.fetchLocked(ctx, id); err != nil {
		return err
	}
	stored, err := setDefault(ctx, b.store, id)
	if err != nil {
		return err
	}
	b.mergeLocked(stored)
	if b.current.ID == stored.ID {
		b.current.IsDefault = true
		b.current.UpdatedAt = stored.UpdatedAt
	} else if b.current.IsDefault && b.current.ID != "" {
		b.current.IsDefault = false
	}
	b.telemetry.Record(ctx, EventBuilderSetDefault, withActivity(ctx, map[string]any{"config_id": stored.ID}))
	return nil
}

// Delete removes a configuration. The id can no longer be loaded for editing
// from this session.
func (b *Builder) Delete(ctx context.Context, id string) error {
	if b.store == nil {
		return errMissingStore
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.store.Delete(ctx, id); err != nil {
		b.logger.Error("dashboard delete failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if idx := indexOfConfig(b.configs, id); idx >= 0 {
		b.configs = append(b.configs[:idx], b.configs[idx+1:]...)
	}
	b.deleted[id] = struct{}{}
	if b.current.ID == id {
		b.current = emptyConfig()
		b.state = StateDeleted
	} else if b.lastSaved == id && b.state == StateSaved {
		b.state = StateDeleted
	}
	b.logger.Info("dashboard deleted", zap.String("id", id))
	b.telemetry.Record(ctx, EventBuilderDelete, withActivity(ctx, map[string]any{"config_id": id}))
	return nil
}

// Current returns a copy of the in-progress configuration.
func (b *Builder) Current() DashboardConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current.Clone()
}

// Configs returns a copy of the saved configuration list.
func (b *Builder) Configs() []DashboardConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneConfigs(b.configs)
}

// State returns the current lifecycle state.
func (b *Builder) State() BuilderState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Snapshot returns state, in-progress configuration and list in one copy.
func (b *Builder) Snapshot() BuilderSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BuilderSnapshot{
		State:   b.state,
		Current: b.current.Clone(),
		Configs: cloneConfigs(b.configs),
	}
}

func (b *Builder) fetchLocked(ctx context.Context, id string) (DashboardConfig, error) {
	if _, gone := b.deleted[id]; gone {
		return DashboardConfig{}, notFoundError(id)
	}
	if b.store == nil {
		return DashboardConfig{}, errMissingStore
	}
	cfg, ok, err := b.store.GetByID(ctx, id)
	if err != nil {
		return DashboardConfig{}, err
	}
	if !ok {
		return DashboardConfig{}, notFoundError(id)
	}
	return cfg.Clone(), nil
}

func (b *Builder) mergeLocked(stored DashboardConfig) {
	replaced := false
	for i := range b.configs {
		if b.configs[i].ID == stored.ID {
			b.configs[i] = stored.Clone()
			replaced = true
		} else if stored.IsDefault {
			b.configs[i].IsDefault = false
		}
	}
	if !replaced {
		b.configs = append(b.configs, stored.Clone())
	}
}

func (b *Builder) edit(fn func(cfg *DashboardConfig)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.current)
	b.markEditing()
}

func (b *Builder) markEditing() {
	b.state = StateEditing
}

func (b *Builder) checkIndex(index int) error {
	if index < 0 || index >= len(b.current.Items) {
		return fmt.Errorf("%w: %d (items: %d)", ErrIndexOutOfRange, index, len(b.current.Items))
	}
	return nil
}

// uniqueItemID regenerates candidate until it does not clash with an item
// loaded from storage.
func (b *Builder) uniqueItemID(candidate, suffix string) string {
	for {
		clash := false
		for _, item := range b.current.Items {
			if item.ID == candidate {
				clash = true
				break
			}
		}
		if !clash {
			return candidate
		}
		candidate = b.ids.ItemID(suffix)
	}
}

func cloneConfigs(in []DashboardConfig) []DashboardConfig {
	out := make([]DashboardConfig, len(in))
	for i, cfg := range in {
		out[i] = cfg.Clone()
	}
	return out
}
