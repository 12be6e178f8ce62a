package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/commands"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/httpapi"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/storage"
	"github.com/goliatone/go-dashboard-builder/pkg/crmapi"
	"github.com/goliatone/go-dashboard-builder/pkg/telemetry"
)

type serveCmd struct {
	Addr          string        `default:":8080" env:"CRMDASH_ADDR" help:"Listen address."`
	CRMURL        string        `name:"crm-url" env:"CRMDASH_CRM_URL" help:"Base URL of the CRM API; empty serves fixture data."`
	CRMAPIKey     string        `name:"crm-api-key" env:"CRMDASH_CRM_API_KEY" help:"Bearer token for the CRM API."`
	Period        string        `default:"M" env:"CRMDASH_REVENUE_PERIOD" help:"Revenue trend period (D, W, M, Y)."`
	Campaign      string        `default:"latest" env:"CRMDASH_CAMPAIGN" help:"Campaign id charted by the marketing data source."`
	ChartCacheTTL time.Duration `name:"chart-cache-ttl" default:"5m" env:"CRMDASH_CHART_CACHE_TTL" help:"How long rendered charts are reused."`
	AssetsHost    string        `name:"assets-host" env:"CRMDASH_ASSETS_HOST" help:"Host serving the echarts scripts."`
	Seed          bool          `env:"CRMDASH_SEED" help:"Seed starter dashboards on an empty store at startup."`
}

func (cmd *serveCmd) Run(g *Globals) error {
	app := fx.New(cmd.options(g)...)
	app.Run()
	return app.Err()
}

func (cmd *serveCmd) options(g *Globals) []fx.Option {
	return []fx.Option{
		fx.Supply(g, cmd),
		fx.Provide(
			g.logger,
			g.registry,
			newBackend,
			newTelemetry,
			newDataProvider,
			dashboard.NewTemplateRenderer,
			newChartRenderer,
			dashboard.NewBroadcastHook,
			newService,
			newHandlers,
			newServer,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(seedOnStart, startServer),
	}
}

func newBackend(lc fx.Lifecycle, g *Globals, logger *zap.Logger) (storage.Backend, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	backend, err := storage.Open(ctx, g.storageConfig(logger))
	if err != nil {
		return storage.Backend{}, err
	}
	lc.Append(fx.Hook{OnStop: backend.Close})
	logger.Info("storage opened", zap.String("driver", backend.Driver))
	return backend, nil
}

func newTelemetry(logger *zap.Logger) (dashboard.Telemetry, *telemetry.Prometheus) {
	prom := telemetry.NewPrometheus("dashboard")
	return telemetry.Multi{telemetry.NewZap(logger).WithLevel(zap.DebugLevel), prom}, prom
}

func newDataProvider(cmd *serveCmd, logger *zap.Logger) (dashboard.DataProvider, error) {
	if cmd.CRMURL == "" {
		logger.Info("no CRM url configured, charts use fixture data")
		return crmapi.NewMock(nil)
	}
	return crmapi.NewClient(crmapi.Config{
		BaseURL:    cmd.CRMURL,
		APIKey:     cmd.CRMAPIKey,
		Logger:     logger,
		Period:     cmd.Period,
		CampaignID: cmd.Campaign,
	})
}

func newChartRenderer(cmd *serveCmd, data dashboard.DataProvider, templates dashboard.Renderer) *dashboard.ChartRenderer {
	opts := []dashboard.ChartRendererOption{
		dashboard.WithChartCache(dashboard.NewChartCache(cmd.ChartCacheTTL)),
		dashboard.WithChartTemplates(templates),
	}
	if cmd.AssetsHost != "" {
		opts = append(opts, dashboard.WithChartAssetsHost(cmd.AssetsHost))
	}
	return dashboard.NewChartRenderer(data, opts...)
}

func newService(
	g *Globals,
	backend storage.Backend,
	logger *zap.Logger,
	reg *dashboard.Registry,
	events *dashboard.BroadcastHook,
	sink dashboard.Telemetry,
	charts *dashboard.ChartRenderer,
) *dashboard.Service {
	return dashboard.NewService(dashboard.Options{
		Store: dashboard.NewCollectionStore(backend, dashboard.StoreOptions{
			Key:    g.Storage.Key,
			Logger: logger,
		}),
		EventHook: events,
		Telemetry: sink,
		Logger:    logger,
		Registry:  reg,
		Charts:    charts,
	})
}

func newHandlers(
	service *dashboard.Service,
	events *dashboard.BroadcastHook,
	sink dashboard.Telemetry,
	logger *zap.Logger,
) *httpapi.Handlers {
	return httpapi.NewHandlers(service, events, sink, logger)
}

func newServer(handlers *httpapi.Handlers, prom *telemetry.Prometheus) (router.Server[*fiber.App], error) {
	server := router.NewFiberAdapter()
	r := server.Router()
	r.Get("/healthz", router.WrapHandler(func(ctx router.Context) error {
		return ctx.Send([]byte("ok"))
	}))
	if err := httpapi.Register(r, handlers, httpapi.RouteConfig{}); err != nil {
		return nil, err
	}
	httpapi.RegisterMetrics(server.WrappedRouter(), "/metrics", prom.Handler())
	return server, nil
}

func seedOnStart(lc fx.Lifecycle, cmd *serveCmd, g *Globals, service *dashboard.Service, sink dashboard.Telemetry, logger *zap.Logger) {
	if !cmd.Seed {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var seeded []dashboard.DashboardConfig
			err := commands.NewSeedDashboardsCommand(service, sink).Execute(ctx, commands.SeedDashboardsInput{
				Actor:  g.actor(),
				Result: &seeded,
			})
			if err != nil {
				return err
			}
			logger.Info("starter dashboards seeded", zap.Int("count", len(seeded)))
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, cmd *serveCmd, server router.Server[*fiber.App], events *dashboard.BroadcastHook, logger *zap.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				logger.Info("dashboard api listening", zap.String("addr", cmd.Addr))
				if err := server.Serve(cmd.Addr); err != nil {
					logger.Error("server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			events.Close()
			return server.Shutdown(ctx)
		},
	})
}
