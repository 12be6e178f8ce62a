package dashboard

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/ettle/strcase"
)

// DataSource describes an external data feed that can back a data-source item.
type DataSource struct {
	ID             string              `json:"id" yaml:"id"`
	Name           string              `json:"name" yaml:"name"`
	Description    string              `json:"description,omitempty" yaml:"description,omitempty"`
	Service        string              `json:"service" yaml:"service"`
	Visualizations []VisualizationType `json:"visualizations" yaml:"visualizations"`
}

// Allows reports whether the source supports the visualization.
func (d DataSource) Allows(v VisualizationType) bool {
	return slices.Contains(d.Visualizations, v)
}

// Template is a reusable starter set of items.
type Template struct {
	Code        string          `json:"code" yaml:"code"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Layout      Layout          `json:"layout,omitempty" yaml:"layout,omitempty"`
	Items       []DashboardItem `json:"items" yaml:"items"`
}

// RegistryHook lets packages register templates or data sources during init().
type RegistryHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []RegistryHook
)

// RegisterRegistryHook registers a hook executed against new registries.
func RegisterRegistryHook(h RegistryHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry holds the data-source catalog and starter templates.
type Registry struct {
	mu          sync.RWMutex
	templates   map[string]Template
	tplOrder    []string
	sources     map[string]DataSource
	sourceOrder []string
}

// NewRegistry builds a registry seeded with the built-in catalog and applies global hooks.
func NewRegistry() *Registry {
	reg := NewEmptyRegistry()
	reg.registerDefaults()
	_ = reg.ApplyHooks()
	return reg
}

// NewEmptyRegistry builds a registry without defaults or hooks.
func NewEmptyRegistry() *Registry {
	return &Registry{
		templates: map[string]Template{},
		sources:   map[string]DataSource{},
	}
}

func (r *Registry) registerDefaults() {
	for _, src := range DefaultDataSources() {
		_ = r.RegisterDataSource(src)
	}
	if doc, err := DefaultManifest(); err == nil {
		_ = r.LoadManifestDocument(doc)
	}
}

// ApplyHooks executes registered hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterTemplate stores a template. A missing code is derived from the name.
func (r *Registry) RegisterTemplate(tpl Template) error {
	if strings.TrimSpace(tpl.Name) == "" {
		return fmt.Errorf("dashboard: template name is required")
	}
	if tpl.Code == "" {
		tpl.Code = TemplateCode(tpl.Name)
	}
	for idx, item := range tpl.Items {
		if _, ok := item.Spec().(UnknownSpec); ok {
			return fmt.Errorf("dashboard: template %s item %d has unknown type %q", tpl.Code, idx, item.Type)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.templates[tpl.Code]; !exists {
		r.tplOrder = append(r.tplOrder, tpl.Code)
	}
	r.templates[tpl.Code] = tpl
	return nil
}

// RegisterDataSource stores a data source definition.
func (r *Registry) RegisterDataSource(src DataSource) error {
	if src.ID == "" {
		return fmt.Errorf("dashboard: data source id is required")
	}
	if src.Name == "" {
		return fmt.Errorf("dashboard: data source %s name is required", src.ID)
	}
	if len(src.Visualizations) == 0 {
		return fmt.Errorf("dashboard: data source %s must allow at least one visualization", src.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sources[src.ID]; !exists {
		r.sourceOrder = append(r.sourceOrder, src.ID)
	}
	r.sources[src.ID] = src
	return nil
}

// Template fetches a template by code.
func (r *Registry) Template(code string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.templates[code]
	return tpl, ok
}

// Templates returns templates in registration order.
func (r *Registry) Templates() []Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Template, 0, len(r.tplOrder))
	for _, code := range r.tplOrder {
		out = append(out, r.templates[code])
	}
	return out
}

// DataSource fetches a data source by id.
func (r *Registry) DataSource(id string) (DataSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[id]
	return src, ok
}

// DataSources returns data sources in registration order.
func (r *Registry) DataSources() []DataSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]DataSource, 0, len(r.sourceOrder))
	for _, id := range r.sourceOrder {
		out = append(out, r.sources[id])
	}
	return out
}

// TemplateCode derives a kebab-case code from a template name.
func TemplateCode(name string) string {
	return strcase.ToKebab(strings.TrimSpace(name))
}
