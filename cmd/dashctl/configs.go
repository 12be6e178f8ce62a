package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/commands"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/queries"
)

type listCmd struct{}

func (cmd *listCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	configs, err := queries.NewListConfigsQuery(rt.service).Query(ctx, queries.ListConfigsInput{})
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(g.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLAYOUT\tITEMS\tDEFAULT\tUPDATED")
	for _, cfg := range configs {
		def := ""
		if cfg.IsDefault {
			def = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", cfg.ID, cfg.Name, cfg.Layout, len(cfg.Items), def, cfg.UpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

type showCmd struct {
	ID     string `arg:"" optional:"" help:"Configuration id; omitted shows the default."`
	Format string `enum:"json,yaml" default:"json" help:"Output format."`
}

func (cmd *showCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	cfg, err := queries.NewGetConfigQuery(rt.service).Query(ctx, queries.GetConfigInput{ID: cmd.ID})
	if err != nil {
		return err
	}
	return writeValue(g.out(), cfg, cmd.Format)
}

type importCmd struct {
	Path string `arg:"" help:"Export file to read, or - for stdin."`
}

func (cmd *importCmd) Run(ctx context.Context, g *Globals) error {
	data, err := readInput(g, cmd.Path)
	if err != nil {
		return err
	}
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	var imported []dashboard.DashboardConfig
	err = commands.NewImportConfigsCommand(rt.service, nil).Execute(ctx, commands.ImportConfigsInput{
		Actor:  g.actor(),
		Data:   data,
		Result: &imported,
	})
	for _, cfg := range imported {
		fmt.Fprintf(g.out(), "imported %s (%s)\n", cfg.ID, cfg.Name)
	}
	return err
}

type exportCmd struct {
	Format string   `enum:"json,yaml" default:"yaml" help:"Output format."`
	ID     []string `name:"id" help:"Only export these ids (repeatable)."`
	Out    string   `type:"path" help:"Write to this file instead of stdout."`
}

func (cmd *exportCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	data, err := queries.NewExportQuery(rt.service).Query(ctx, queries.ExportInput{IDs: cmd.ID, Format: cmd.Format})
	if err != nil {
		return err
	}
	if cmd.Out == "" {
		_, err = g.out().Write(data)
		return err
	}
	if err := os.WriteFile(cmd.Out, data, 0o600); err != nil {
		return fmt.Errorf("dashctl: write export: %w", err)
	}
	fmt.Fprintf(g.out(), "exported to %s\n", cmd.Out)
	return nil
}

type deleteCmd struct {
	ID string `arg:"" help:"Configuration id."`
}

func (cmd *deleteCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	if err := commands.NewDeleteConfigCommand(rt.service).Execute(ctx, commands.DeleteConfigInput{Actor: g.actor(), ID: cmd.ID}); err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "deleted %s\n", cmd.ID)
	return nil
}

type setDefaultCmd struct {
	ID string `arg:"" help:"Configuration id."`
}

func (cmd *setDefaultCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	var cfg dashboard.DashboardConfig
	if err := commands.NewSetDefaultCommand(rt.service).Execute(ctx, commands.SetDefaultInput{Actor: g.actor(), ID: cmd.ID, Result: &cfg}); err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "%s (%s) is now the default dashboard\n", cfg.ID, cfg.Name)
	return nil
}

type templatesCmd struct{}

func (cmd *templatesCmd) Run(g *Globals) error {
	reg, err := g.registry()
	if err != nil {
		return err
	}
	catalog, err := queries.NewCatalogQuery(reg).Query(context.Background(), queries.CatalogInput{})
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(g.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TEMPLATE\tNAME\tITEMS")
	for _, tpl := range catalog.Templates {
		fmt.Fprintf(w, "%s\t%s\t%d\n", tpl.Code, tpl.Name, len(tpl.Items))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "SOURCE\tNAME\tSERVICE")
	for _, src := range catalog.DataSources {
		fmt.Fprintf(w, "%s\t%s\t%s\n", src.ID, src.Name, src.Service)
	}
	return w.Flush()
}

type seedCmd struct {
	Force           bool   `help:"Seed even when configurations already exist."`
	DefaultTemplate string `name:"default-template" help:"Template code whose dashboard becomes the default."`
}

func (cmd *seedCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	var seeded []dashboard.DashboardConfig
	err = commands.NewSeedDashboardsCommand(rt.service, nil).Execute(ctx, commands.SeedDashboardsInput{
		Actor:           g.actor(),
		Force:           cmd.Force,
		DefaultTemplate: cmd.DefaultTemplate,
		Result:          &seeded,
	})
	if err != nil {
		return err
	}
	if len(seeded) == 0 {
		fmt.Fprintln(g.out(), "store already holds dashboards; use --force to seed anyway")
		return nil
	}
	for _, cfg := range seeded {
		fmt.Fprintf(g.out(), "seeded %s (%s)\n", cfg.ID, cfg.Name)
	}
	return nil
}

func readInput(g *Globals, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(g.in())
		if err != nil {
			return nil, fmt.Errorf("dashctl: read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashctl: read %s: %w", path, err)
	}
	return data, nil
}

func writeValue(w io.Writer, value any, format string) error {
	if format == dashboard.FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(value)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
