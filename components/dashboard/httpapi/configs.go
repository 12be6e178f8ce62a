package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/commands"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/queries"
)

func actor(ctx router.Context) commands.Actor {
	return commands.Actor{
		ActorID:   ctx.Header(HeaderActorID),
		SessionID: ctx.Header(HeaderSessionID),
	}
}

func bind(ctx router.Context, v any) error {
	if len(ctx.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(ctx.Body(), v); err != nil {
		return badRequest(err)
	}
	return nil
}

func (h *Handlers) listConfigs(ctx router.Context) error {
	configs, err := h.List.Query(ctx.Context(), queries.ListConfigsInput{})
	if err != nil {
		return h.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, configs)
}

func (h *Handlers) getConfig(ctx router.Context) error {
	cfg, err := h.Get.Query(ctx.Context(), queries.GetConfigInput{ID: ctx.Param("id")})
	if err != nil {
		return h.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, cfg)
}

func (h *Handlers) defaultConfig(ctx router.Context) error {
	cfg, err := h.Get.Query(ctx.Context(), queries.GetConfigInput{})
	if err != nil {
		return h.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, cfg)
}

func (h *Handlers) createConfig(ctx router.Context) error {
	var cfg dashboard.DashboardConfig
	if err := bind(ctx, &cfg); err != nil {
		return h.fail(ctx, err)
	}
	cfg.ID = ""
	return h.save(ctx, cfg, http.StatusCreated)
}

func (h *Handlers) updateConfig(ctx router.Context) error {
	var cfg dashboard.DashboardConfig
	if err := bind(ctx, &cfg); err != nil {
		return h.fail(ctx, err)
	}
	cfg.ID = ctx.Param("id")
	return h.save(ctx, cfg, http.StatusOK)
}

func (h *Handlers) save(ctx router.Context, cfg dashboard.DashboardConfig, status int) error {
	var stored dashboard.DashboardConfig
	if err := h.Save.Execute(ctx.Context(), commands.SaveConfigInput{
		Actor:  actor(ctx),
		Config: cfg,
		Result: &stored,
	}); err != nil {
		return h.fail(ctx, err)
	}
	return ctx.JSON(status, stored)
}

func (h *Handlers) deleteConfig(ctx router.Context) error {
	if err := h.Delete.Execute(ctx.Context(), commands.DeleteConfigInput{
		Actor: actor(ctx),
		ID:    ctx.Param("id"),
	}); err != nil {
		return h.fail(ctx, err)
	}
	return ctx.JSON(http.StatusNoContent, map[string]string{"status": "deleted"})
}

func (h *Handlers) setDefault(ctx router.Context) error {
	var stored dashboard.DashboardConfig
	if err := h.SetDefault.Execute(ctx.Context(), commands.SetDefaultInput{
		Actor:  actor(ctx),
		ID:     ctx.Param("id"),
		Result: &stored,
	}); err != nil {
		return h.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, stored)
}

func (h *Handlers) previewConfig(ctx router.Context) error {
	preview, err := h.Preview.Query(ctx.Context(), queries.PreviewInput{ID: ctx.Param("id")})
	if err != nil {
		return h.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, preview)
}

// viewConfig renders ?id= or, without one, the default dashboard.
func (h *Handlers) viewConfig(ctx router.Context) error {
	preview, err := h.Preview.Query(ctx.Context(), queries.PreviewInput{ID: ctx.Query("id"), Fallback: true})
	if err != nil {
		return h.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, preview)
}

func (h *Handlers) chartHTML(ctx router.Context) error {
	html, err := h.Chart.Query(ctx.Context(), queries.ChartInput{
		ConfigID: ctx.Param("id"),
		ItemID:   ctx.Param("itemId"),
	})
	if err != nil {
		return h.fail(ctx, err)
	}
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send([]byte(html))
}

func (h *Handlers) catalog(ctx router.Context) error {
	catalog, err := h.Catalog.Query(ctx.Context(), queries.CatalogInput{})
	if err != nil {
		return h.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, catalog)
}

func (h *Handlers) exportConfigs(ctx router.Context) error {
	format := ctx.Query("format")
	if format == "" {
		format = dashboard.FormatJSON
	}
	var ids []string
	if raw := ctx.Query("ids"); raw != "" {
		ids = strings.Split(raw, ",")
	}
	data, err := h.Export.Query(ctx.Context(), queries.ExportInput{IDs: ids, Format: format})
	if err != nil {
		return h.fail(ctx, badRequest(err))
	}
	if format == dashboard.FormatYAML {
		ctx.SetHeader("Content-Type", "application/yaml")
	} else {
		ctx.SetHeader("Content-Type", "application/json")
	}
	return ctx.Send(data)
}

func (h *Handlers) importConfigs(ctx router.Context) error {
	var imported []dashboard.DashboardConfig
	if err := h.Import.Execute(ctx.Context(), commands.ImportConfigsInput{
		Actor:  actor(ctx),
		Data:   ctx.Body(),
		Result: &imported,
	}); err != nil {
		return h.fail(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, imported)
}
