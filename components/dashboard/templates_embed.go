package dashboard

import (
	"embed"
	"io"

	template "github.com/goliatone/go-template"
)

const defaultManifestPath = "manifests/starter.yaml"

//go:embed manifests/starter.yaml
var defaultManifestYAML []byte

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Template names rendered by ChartRenderer.
const (
	TemplateChartTable       = "chart_table.html"
	TemplateChartPlaceholder = "chart_placeholder.html"
	TemplateChartEmpty       = "chart_empty.html"
)

// Renderer describes the template renderer contract used for non-chart markup.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// NewTemplateRenderer creates a go-template renderer backed by the embedded templates.
func NewTemplateRenderer() (Renderer, error) {
	return template.NewRenderer(
		template.WithFS(embeddedTemplates),
		template.WithBaseDir("templates"),
		template.WithExtension(".html"),
	)
}
