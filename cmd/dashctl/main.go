package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/commands"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/storage"
)

type cli struct {
	Globals

	List       listCmd       `cmd:"" help:"List stored dashboard configurations."`
	Show       showCmd       `cmd:"" help:"Print one configuration (the default when no id is given)."`
	Import     importCmd     `cmd:"" help:"Import configurations from a JSON or YAML export."`
	Export     exportCmd     `cmd:"" help:"Export configurations as JSON or YAML."`
	Delete     deleteCmd     `cmd:"" help:"Delete a configuration."`
	SetDefault setDefaultCmd `cmd:"" name:"set-default" help:"Mark a configuration as the default dashboard."`
	Templates  templatesCmd  `cmd:"" help:"List templates and data sources."`
	Seed       seedCmd       `cmd:"" help:"Save one starter dashboard per template."`
	Scaffold   scaffoldCmd   `cmd:"" help:"Add a dashboard template to a manifest file."`
	Serve      serveCmd      `cmd:"" help:"Run the dashboard HTTP API."`
}

// Globals are shared by every command.
type Globals struct {
	LogFormat string       `name:"log-format" enum:"console,json" default:"console" env:"CRMDASH_LOG_FORMAT" help:"Log encoding (console or json)."`
	LogLevel  string       `name:"log-level" default:"info" env:"CRMDASH_LOG_LEVEL" help:"Minimum log level."`
	Actor     string       `default:"dashctl" env:"CRMDASH_ACTOR" help:"Actor id recorded with telemetry."`
	Manifest  []string     `type:"existingfile" env:"CRMDASH_MANIFESTS" help:"Extra template manifests to load."`
	Storage   StorageFlags `embed:"" prefix:"storage-"`

	stdout io.Writer
	stdin  io.Reader
}

// StorageFlags select the key-value backend.
type StorageFlags struct {
	Driver     string `default:"file" enum:"memory,file,sqlite,redis,mongo,remote" env:"CRMDASH_STORAGE_DRIVER" help:"Storage backend."`
	DSN        string `default:".dashctl" env:"CRMDASH_STORAGE_DSN" help:"Directory, database path, URL or URI for the backend."`
	Database   string `env:"CRMDASH_STORAGE_DATABASE" help:"Mongo database name."`
	Collection string `env:"CRMDASH_STORAGE_COLLECTION" help:"Mongo collection name."`
	Prefix     string `env:"CRMDASH_STORAGE_PREFIX" help:"Redis key prefix."`
	APIKey     string `name:"api-key" env:"CRMDASH_STORAGE_API_KEY" help:"Bearer token for the remote backend."`
	Key        string `default:"crm_dashboard_configs" env:"CRMDASH_STORAGE_KEY" help:"Key holding the configuration collection."`
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "dashctl: load .env: %v\n", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var app cli
	kctx := kong.Parse(&app,
		kong.Name("dashctl"),
		kong.Description("Operator tool for CRM dashboard configurations."),
		kong.UsageOnError(),
		kong.Bind(&app.Globals),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}

func (g *Globals) out() io.Writer {
	if g.stdout == nil {
		return os.Stdout
	}
	return g.stdout
}

func (g *Globals) in() io.Reader {
	if g.stdin == nil {
		return os.Stdin
	}
	return g.stdin
}

func (g *Globals) actor() commands.Actor {
	return commands.Actor{ActorID: g.Actor}
}

func (g *Globals) logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(g.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("dashctl: log level: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	if g.LogFormat == "json" {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = level
	return cfg.Build()
}

func (g *Globals) registry() (*dashboard.Registry, error) {
	reg := dashboard.NewRegistry()
	for _, path := range g.Manifest {
		if _, err := reg.LoadManifestFile(path); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (g *Globals) storageConfig(logger *zap.Logger) storage.Config {
	return storage.Config{
		Driver:     g.Storage.Driver,
		DSN:        g.Storage.DSN,
		Database:   g.Storage.Database,
		Collection: g.Storage.Collection,
		Prefix:     g.Storage.Prefix,
		APIKey:     g.Storage.APIKey,
		Logger:     logger,
	}
}

// runtime is what the one-shot commands operate on.
type runtime struct {
	logger  *zap.Logger
	backend storage.Backend
	service *dashboard.Service
}

func (g *Globals) open(ctx context.Context) (*runtime, error) {
	logger, err := g.logger()
	if err != nil {
		return nil, err
	}
	reg, err := g.registry()
	if err != nil {
		return nil, err
	}
	backend, err := storage.Open(ctx, g.storageConfig(logger))
	if err != nil {
		return nil, err
	}
	service := dashboard.NewService(dashboard.Options{
		Store: dashboard.NewCollectionStore(backend, dashboard.StoreOptions{
			Key:    g.Storage.Key,
			Logger: logger,
		}),
		Logger:   logger,
		Registry: reg,
	})
	return &runtime{logger: logger, backend: backend, service: service}, nil
}

func (r *runtime) Close(ctx context.Context) {
	if err := r.backend.Close(ctx); err != nil {
		r.logger.Warn("close storage", zap.Error(err))
	}
	_ = r.logger.Sync()
}
