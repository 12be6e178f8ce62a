package dashboard

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var errMissingChartRenderer = errors.New("dashboard: chart renderer not configured")

// Event reasons carried by ConfigEvent.
const (
	ReasonCreate     = "create"
	ReasonUpdate     = "update"
	ReasonDelete     = "delete"
	ReasonSetDefault = "set_default"
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Store     ConfigStore
	Validator ConfigValidator
	EventHook EventHook
	Telemetry Telemetry
	Logger    *zap.Logger
	Registry  *Registry
	Charts    *ChartRenderer
	IDs       *IDGenerator
}

// Service wraps a ConfigStore with validation, change events, telemetry and
// preview rendering. It satisfies ConfigStore itself so builders can save
// through it.
type Service struct {
	opts    Options
	preview PreviewRenderer
}

var (
	_ ConfigStore   = (*Service)(nil)
	_ DefaultSetter = (*Service)(nil)
	_ DefaultSetter = (*CollectionStore)(nil)
)

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.EventHook == nil {
		opts.EventHook = noopEventHook{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.IDs == nil {
		opts.IDs = NewIDGenerator(nil)
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts}
}

// Registry returns the template and data-source catalog.
func (s *Service) Registry() *Registry {
	return s.opts.Registry
}

// NewBuilder starts a builder session that saves through the service.
func (s *Service) NewBuilder() *Builder {
	return NewBuilder(BuilderOptions{
		Store:     s,
		Registry:  s.opts.Registry,
		IDs:       s.opts.IDs,
		Logger:    s.opts.Logger,
		Telemetry: s.opts.Telemetry,
	})
}

// List returns every stored configuration.
func (s *Service) List(ctx context.Context) ([]DashboardConfig, error) {
	store, err := s.store()
	if err != nil {
		return nil, err
	}
	return store.List(ctx)
}

// GetByID returns a stored configuration.
func (s *Service) GetByID(ctx context.Context, id string) (DashboardConfig, bool, error) {
	store, err := s.store()
	if err != nil {
		return DashboardConfig{}, false, err
	}
	return store.GetByID(ctx, id)
}

// GetDefault returns the default configuration.
func (s *Service) GetDefault(ctx context.Context) (DashboardConfig, bool, error) {
	store, err := s.store()
	if err != nil {
		return DashboardConfig{}, false, err
	}
	return store.GetDefault(ctx)
}

// Save validates and persists a configuration, then emits a change event.
func (s *Service) Save(ctx context.Context, cfg DashboardConfig) (DashboardConfig, error) {
	store, err := s.store()
	if err != nil {
		return DashboardConfig{}, err
	}
	cfg = cfg.Clone()
	normalizeConfig(&cfg)
	if err := s.opts.Validator.Validate(cfg); err != nil {
		return DashboardConfig{}, err
	}
	reason := ReasonUpdate
	if cfg.ID == "" {
		reason = ReasonCreate
	}
	stored, err := store.Save(ctx, cfg)
	if err != nil {
		return DashboardConfig{}, err
	}
	s.changed(ctx, stored.ID, reason, &stored)
	s.recordTelemetry(ctx, EventConfigSave, map[string]any{
		"config_id":  stored.ID,
		"reason":     reason,
		"is_default": stored.IsDefault,
		"items":      len(stored.Items),
	})
	return stored, nil
}

// Delete removes a configuration and emits a change event.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	store, err := s.store()
	if err != nil {
		return false, err
	}
	if id == "" {
		return false, newValidationError("id", "configuration id is required")
	}
	ok, err := store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	s.changed(ctx, id, ReasonDelete, nil)
	s.recordTelemetry(ctx, EventConfigDelete, map[string]any{"config_id": id})
	return ok, nil
}

// SetDefault flags the configuration as default; the store clears every other flag.
func (s *Service) SetDefault(ctx context.Context, id string) (DashboardConfig, error) {
	store, err := s.store()
	if err != nil {
		return DashboardConfig{}, err
	}
	if id == "" {
		return DashboardConfig{}, newValidationError("id", "configuration id is required")
	}
	stored, err := setDefault(ctx, store, id)
	if err != nil {
		return DashboardConfig{}, err
	}
	s.changed(ctx, stored.ID, ReasonSetDefault, &stored)
	s.recordTelemetry(ctx, EventConfigSetDefault, map[string]any{"config_id": stored.ID})
	return stored, nil
}

// Preview renders the configuration with the given id.
func (s *Service) Preview(ctx context.Context, id string) (Preview, error) {
	cfg, err := s.resolve(ctx, id)
	if err != nil {
		return Preview{}, err
	}
	s.recordTelemetry(ctx, EventConfigPreview, map[string]any{"config_id": cfg.ID})
	return s.preview.Render(cfg), nil
}

// View renders the configuration with the given id, or the default one when
// id is empty.
func (s *Service) View(ctx context.Context, id string) (Preview, error) {
	if id != "" {
		return s.Preview(ctx, id)
	}
	cfg, ok, err := s.GetDefault(ctx)
	if err != nil {
		return Preview{}, err
	}
	if !ok {
		return Preview{}, notFoundError("default")
	}
	s.recordTelemetry(ctx, EventConfigPreview, map[string]any{"config_id": cfg.ID, "default": true})
	return s.preview.Render(cfg), nil
}

// ChartHTML renders one item of a configuration as chart markup.
func (s *Service) ChartHTML(ctx context.Context, configID, itemID string) (string, error) {
	if s.opts.Charts == nil {
		return "", errMissingChartRenderer
	}
	cfg, err := s.resolve(ctx, configID)
	if err != nil {
		return "", err
	}
	spec, ok := s.preview.Chart(cfg, itemID)
	if !ok {
		return "", notFoundError(configID + "/" + itemID)
	}
	html, err := s.opts.Charts.RenderHTML(ctx, cfg.ID, spec)
	if err != nil {
		return "", err
	}
	s.recordTelemetry(ctx, EventChartRender, map[string]any{
		"config_id": cfg.ID,
		"item_id":   itemID,
		"kind":      string(spec.Kind),
	})
	return html, nil
}

func (s *Service) resolve(ctx context.Context, id string) (DashboardConfig, error) {
	cfg, ok, err := s.GetByID(ctx, id)
	if err != nil {
		return DashboardConfig{}, err
	}
	if !ok {
		return DashboardConfig{}, notFoundError(id)
	}
	return cfg, nil
}

// changed drops cached charts and notifies the hook. The write already
// succeeded, so hook failures are logged only.
func (s *Service) changed(ctx context.Context, id, reason string, cfg *DashboardConfig) {
	if s.opts.Charts != nil && s.opts.Charts.Cache() != nil {
		s.opts.Charts.Cache().Invalidate(id)
	}
	var payload *DashboardConfig
	if cfg != nil {
		clone := cfg.Clone()
		payload = &clone
	}
	event := ConfigEvent{ConfigID: id, Reason: reason, Config: payload}
	if err := s.opts.EventHook.ConfigChanged(ctx, event); err != nil {
		s.opts.Logger.Warn("dashboard event hook failed",
			zap.String("config_id", id),
			zap.String("reason", reason),
			zap.Error(err),
		)
	}
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, withActivity(ctx, payload))
}

func (s *Service) store() (ConfigStore, error) {
	if s.opts.Store == nil {
		return nil, errMissingStore
	}
	return s.opts.Store, nil
}

// setDefault flips the flag through the store when it supports it, and falls
// back to a read followed by a save otherwise. Neither path validates items.
func setDefault(ctx context.Context, store ConfigStore, id string) (DashboardConfig, error) {
	if setter, ok := store.(DefaultSetter); ok {
		return setter.SetDefault(ctx, id)
	}
	cfg, ok, err := store.GetByID(ctx, id)
	if err != nil {
		return DashboardConfig{}, err
	}
	if !ok {
		return DashboardConfig{}, notFoundError(id)
	}
	cfg.IsDefault = true
	return store.Save(ctx, cfg)
}
