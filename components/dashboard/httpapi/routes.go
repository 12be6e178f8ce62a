package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	router "github.com/goliatone/go-router"
)

// RouteConfig customizes where endpoints are mounted.
type RouteConfig struct {
	Dashboards string
	Builder    string
	WebSocket  string
}

func (r RouteConfig) withDefaults() RouteConfig {
	if r.Dashboards == "" {
		r.Dashboards = "/api/dashboards"
	}
	if r.Builder == "" {
		r.Builder = "/api/builder"
	}
	if r.WebSocket == "" {
		r.WebSocket = "/ws"
	}
	return r
}

// Register mounts the REST, builder and WebSocket endpoints on a go-router router.
func Register[T any](r router.Router[T], h *Handlers, routes RouteConfig) error {
	if r == nil {
		return errors.New("httpapi: router is required")
	}
	if h == nil {
		return errors.New("httpapi: handlers are required")
	}
	routes = routes.withDefaults()

	api := r.Group(strings.TrimRight(routes.Dashboards, "/"))
	api.Get("/", router.WrapHandler(h.listConfigs))
	api.Post("/", router.WrapHandler(h.createConfig))
	api.Get("/default", router.WrapHandler(h.defaultConfig))
	api.Get("/view", router.WrapHandler(h.viewConfig))
	api.Get("/catalog", router.WrapHandler(h.catalog))
	api.Get("/export", router.WrapHandler(h.exportConfigs))
	api.Post("/import", router.WrapHandler(h.importConfigs))
	if h.Events != nil {
		registerWebSocket(api, h, routes.WebSocket)
	}
	api.Get("/:id", router.WrapHandler(h.getConfig))
	api.Put("/:id", router.WrapHandler(h.updateConfig))
	api.Delete("/:id", router.WrapHandler(h.deleteConfig))
	api.Post("/:id/set-default", router.WrapHandler(h.setDefault))
	api.Get("/:id/preview", router.WrapHandler(h.previewConfig))
	api.Get("/:id/items/:itemId/chart", router.WrapHandler(h.chartHTML))

	if h.Sessions != nil && h.Builder != nil {
		b := r.Group(strings.TrimRight(routes.Builder, "/") + "/sessions")
		b.Post("/", router.WrapHandler(h.createSession))
		b.Get("/:sid", router.WrapHandler(h.getSession))
		b.Delete("/:sid", router.WrapHandler(h.closeSession))
		b.Post("/:sid/actions", router.WrapHandler(h.builderAction))
		b.Post("/:sid/items", router.WrapHandler(h.addItem))
		b.Post("/:sid/data-sources", router.WrapHandler(h.addDataSource))
		b.Post("/:sid/items/move", router.WrapHandler(h.moveItem))
		b.Put("/:sid/items/:index", router.WrapHandler(h.updateItem))
		b.Delete("/:sid/items/:index", router.WrapHandler(h.removeItem))
		b.Patch("/:sid/meta", router.WrapHandler(h.setMeta))
		b.Post("/:sid/template", router.WrapHandler(h.applyTemplate))
		b.Post("/:sid/save", router.WrapHandler(h.saveSession))
		b.Post("/:sid/load/:id", router.WrapHandler(h.loadForEdit))
	}
	return nil
}

// RegisterMetrics exposes a net/http metrics handler on the fiber app behind
// the go-router adapter.
func RegisterMetrics(app fiber.Router, path string, handler http.Handler) {
	if handler == nil {
		return
	}
	if path == "" {
		path = "/metrics"
	}
	app.Get(path, adaptor.HTTPHandler(handler))
}
