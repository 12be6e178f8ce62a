package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// ManifestDocument models a YAML manifest describing templates and data sources.
type ManifestDocument struct {
	Version     string       `json:"version" yaml:"version"`
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Templates   []Template   `json:"templates,omitempty" yaml:"templates,omitempty"`
	DataSources []DataSource `json:"dataSources,omitempty" yaml:"dataSources,omitempty"`
	Source      string       `json:"-" yaml:"-"`
}

// LoadManifestFile reads a manifest from disk, registers it, and returns the document.
func (r *Registry) LoadManifestFile(path string) (*ManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument registers the data sources and templates of a decoded manifest.
func (r *Registry) LoadManifestDocument(doc *ManifestDocument) error {
	if doc == nil {
		return fmt.Errorf("dashboard: manifest document is nil")
	}
	for _, src := range doc.DataSources {
		if err := r.RegisterDataSource(src); err != nil {
			return fmt.Errorf("dashboard: register data source %s from %s: %w", src.ID, doc.Source, err)
		}
	}
	for _, tpl := range doc.Templates {
		if err := r.RegisterTemplate(tpl); err != nil {
			return fmt.Errorf("dashboard: register template %s from %s: %w", tpl.Code, doc.Source, err)
		}
	}
	return nil
}

// ReadManifest loads a manifest file from disk without registering it.
func ReadManifest(path string) (*ManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*ManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc ManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *ManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	codes := make(map[string]struct{}, len(doc.Templates))
	for idx, tpl := range doc.Templates {
		if tpl.Name == "" {
			return fmt.Errorf("dashboard: manifest template at index %d is missing name", idx)
		}
		if _, exists := codes[tpl.Code]; exists {
			return fmt.Errorf("dashboard: manifest duplicates template code %s", tpl.Code)
		}
		codes[tpl.Code] = struct{}{}
		if err := ValidateItems(tpl.Items); err != nil {
			return fmt.Errorf("dashboard: manifest template %s: %w", tpl.Code, err)
		}
	}
	sources := make(map[string]struct{}, len(doc.DataSources))
	for idx, src := range doc.DataSources {
		if src.ID == "" {
			return fmt.Errorf("dashboard: manifest data source at index %d is missing id", idx)
		}
		if _, exists := sources[src.ID]; exists {
			return fmt.Errorf("dashboard: manifest duplicates data source %s", src.ID)
		}
		sources[src.ID] = struct{}{}
	}
	return nil
}

func (doc *ManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	for i := range doc.Templates {
		tpl := &doc.Templates[i]
		if tpl.Code == "" {
			tpl.Code = TemplateCode(tpl.Name)
		}
		if tpl.Layout == "" {
			tpl.Layout = LayoutGrid
		}
		for j := range tpl.Items {
			item := &tpl.Items[j]
			if item.ID == "" {
				item.ID = fmt.Sprintf("%s-%d", tpl.Code, j+1)
			}
			if item.VisualizationType == "" {
				item.VisualizationType = VisualizationPie
			}
			normalizeItem(item)
		}
	}
}

// DefaultManifest decodes the embedded starter manifest.
func DefaultManifest() (*ManifestDocument, error) {
	doc, err := DecodeManifest(bytes.NewReader(defaultManifestYAML))
	if err != nil {
		return nil, err
	}
	doc.Source = "embedded:" + defaultManifestPath
	return doc, nil
}
