package httpapi

import (
	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-dashboard-builder/components/dashboard"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/commands"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/queries"
	"go.uber.org/zap"
)

// Actor headers attribute changes in telemetry. Authentication happens upstream.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderSessionID = "X-Session-ID"
)

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Save       gocommand.Commander[commands.SaveConfigInput]
	Delete     gocommand.Commander[commands.DeleteConfigInput]
	SetDefault gocommand.Commander[commands.SetDefaultInput]
	Import     gocommand.Commander[commands.ImportConfigsInput]
	Builder    gocommand.Commander[commands.BuilderActionInput]

	List    gocommand.Querier[queries.ListConfigsInput, []dashboard.DashboardConfig]
	Get     gocommand.Querier[queries.GetConfigInput, dashboard.DashboardConfig]
	Preview gocommand.Querier[queries.PreviewInput, dashboard.Preview]
	Chart   gocommand.Querier[queries.ChartInput, string]
	Catalog gocommand.Querier[queries.CatalogInput, queries.Catalog]
	Export  gocommand.Querier[queries.ExportInput, []byte]

	Sessions *dashboard.Sessions
	Events   *dashboard.BroadcastHook
	Logger   *zap.Logger
}

// NewHandlers wires every endpoint to service. events may be nil when the
// service was built without a BroadcastHook.
func NewHandlers(service *dashboard.Service, events *dashboard.BroadcastHook, telemetry dashboard.Telemetry, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	sessions := dashboard.NewSessions(service.NewBuilder)
	return &Handlers{
		Save:       commands.NewSaveConfigCommand(service),
		Delete:     commands.NewDeleteConfigCommand(service),
		SetDefault: commands.NewSetDefaultCommand(service),
		Import:     commands.NewImportConfigsCommand(service, telemetry),
		Builder:    commands.NewBuilderActionCommand(sessions, telemetry),
		List:       queries.NewListConfigsQuery(service),
		Get:        queries.NewGetConfigQuery(service),
		Preview:    queries.NewPreviewQuery(service),
		Chart:      queries.NewChartQuery(service),
		Catalog:    queries.NewCatalogQuery(service.Registry()),
		Export:     queries.NewExportQuery(service),
		Sessions:   sessions,
		Events:     events,
		Logger:     logger,
	}
}
