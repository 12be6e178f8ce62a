package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
)

type scaffoldCmd struct {
	Name         string   `required:"" help:"Display name; the template code is derived from it."`
	Description  string   `help:"One-line description."`
	Layout       string   `enum:"grid,list" default:"grid" help:"Layout of dashboards built from the template."`
	Item         []string `help:"Item as type[:visualization[:title]], e.g. segment:bar:Champions (repeatable)."`
	Source       []string `help:"Data source id added as a data-source item (repeatable)."`
	ManifestPath string   `name:"manifest-path" required:"" type:"path" help:"Manifest YAML file to update."`
	Overwrite    bool     `help:"Replace an existing template with the same code."`
}

func (cmd *scaffoldCmd) Run(g *Globals) error {
	code := dashboard.TemplateCode(cmd.Name)
	if code == "" {
		return fmt.Errorf("dashctl: template name %q yields an empty code", cmd.Name)
	}
	reg, err := g.registry()
	if err != nil {
		return err
	}
	items, err := cmd.items(code, reg)
	if err != nil {
		return err
	}
	path, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("dashctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(path)
	if err != nil {
		return err
	}

	tpl := dashboard.Template{
		Code:        code,
		Name:        cmd.Name,
		Description: cmd.Description,
		Layout:      dashboard.Layout(cmd.Layout),
		Items:       items,
	}
	replaced := false
	for idx := range doc.Templates {
		if doc.Templates[idx].Code != code {
			continue
		}
		if !cmd.Overwrite {
			return fmt.Errorf("dashctl: manifest already defines template %s (use --overwrite to replace)", code)
		}
		doc.Templates[idx] = tpl
		replaced = true
	}
	if !replaced {
		doc.Templates = append(doc.Templates, tpl)
	}
	sort.SliceStable(doc.Templates, func(i, j int) bool {
		return doc.Templates[i].Code < doc.Templates[j].Code
	})
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(path, doc); err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "added template %s to %s\n", code, path)
	return nil
}

func (cmd *scaffoldCmd) items(code string, reg *dashboard.Registry) ([]dashboard.DashboardItem, error) {
	items := make([]dashboard.DashboardItem, 0, len(cmd.Item)+len(cmd.Source))
	nextID := func() string {
		return fmt.Sprintf("%s-%d", code, len(items)+1)
	}
	for _, raw := range cmd.Item {
		parts := strings.SplitN(raw, ":", 3)
		itemType := dashboard.ItemType(strings.TrimSpace(parts[0]))
		switch itemType {
		case dashboard.ItemSegment, dashboard.ItemCombined, dashboard.ItemTrend:
		default:
			return nil, fmt.Errorf("dashctl: item %q: type must be segment, combined or trend", raw)
		}
		item := dashboard.NewItem(itemType, nil)
		item.ID = nextID()
		if len(parts) > 1 && parts[1] != "" {
			item.VisualizationType = dashboard.VisualizationType(parts[1])
		}
		if len(parts) > 2 && parts[2] != "" {
			item.Title = parts[2]
		}
		items = append(items, item)
	}
	for _, id := range cmd.Source {
		src, ok := reg.DataSource(id)
		if !ok {
			return nil, fmt.Errorf("dashctl: unknown data source %q", id)
		}
		item := dashboard.DashboardItem{
			ID:                nextID(),
			Type:              dashboard.ItemDataSource,
			Title:             src.Name,
			VisualizationType: dashboard.VisualizationPie,
			SourceID:          src.ID,
			Service:           src.Service,
		}
		if len(src.Visualizations) > 0 {
			item.VisualizationType = src.Visualizations[0]
		}
		items = append(items, item)
	}
	return items, nil
}

func loadOrInitManifest(path string) (*dashboard.ManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &dashboard.ManifestDocument{Version: dashboard.ManifestVersion, Source: path}, nil
		}
		return nil, fmt.Errorf("dashctl: stat manifest: %w", err)
	}
	return dashboard.ReadManifest(path)
}

func writeManifest(path string, doc *dashboard.ManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dashctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("dashctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("dashctl: write manifest: %w", err)
	}
	return nil
}
