package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

var errMissingDataProvider = errors.New("dashboard: chart data provider not configured")

// DataProvider fetches the series behind a chart specification. It is the
// visualization-data collaborator; implementations call the CRM services.
type DataProvider interface {
	FetchSeries(ctx context.Context, spec ChartSpec) (ChartData, error)
}

// ChartData is what a DataProvider returns for one chart.
type ChartData struct {
	Labels []string      `json:"labels,omitempty"`
	Series []ChartSeries `json:"series"`
}

// ChartSeries represents a set of values plotted for a given legend entry.
type ChartSeries struct {
	Name   string       `json:"name"`
	Points []ChartPoint `json:"points"`
}

// ChartPoint represents an individual value (optionally labeled).
type ChartPoint struct {
	Label string  `json:"label,omitempty"`
	Value float64 `json:"value"`
}

// ChartRenderer turns chart specifications into go-echarts markup.
type ChartRenderer struct {
	data       DataProvider
	cache      RenderCache
	templates  Renderer
	theme      string
	assetsHost string
}

var defaultTemplates = sync.OnceValues(NewTemplateRenderer)

// ChartRendererOption customizes renderer behavior.
type ChartRendererOption func(*ChartRenderer)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTemplates injects the renderer used for tables and placeholder blocks.
func WithChartTemplates(templates Renderer) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.templates = templates
	}
}

// WithChartTheme sets the chart theme (defaults to Westeros).
func WithChartTheme(theme string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.theme = theme
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// NewChartRenderer builds a renderer backed by data.
func NewChartRenderer(data DataProvider, options ...ChartRendererOption) *ChartRenderer {
	r := &ChartRenderer{
		data:  data,
		cache: NewChartCache(5 * time.Minute),
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Cache exposes the render cache so owners can invalidate entries.
func (r *ChartRenderer) Cache() RenderCache {
	return r.cache
}

// RenderHTML fetches data for spec and renders it. Unavailable specs render
// the placeholder block without touching the data provider.
func (r *ChartRenderer) RenderHTML(ctx context.Context, configID string, spec ChartSpec) (string, error) {
	if !spec.Available {
		return r.placeholderHTML(spec)
	}
	if r.data == nil {
		return "", errMissingDataProvider
	}
	renderFn := func() (string, error) {
		data, err := r.data.FetchSeries(ctx, spec)
		if err != nil {
			return "", fmt.Errorf("dashboard: fetch series for %s: %w", spec.ItemID, err)
		}
		return r.render(spec, data)
	}
	if r.cache == nil {
		return renderFn()
	}
	return r.cache.GetOrRender(configID, spec, renderFn)
}

func (r *ChartRenderer) render(spec ChartSpec, data ChartData) (string, error) {
	if len(data.Series) == 0 {
		return r.emptyDataHTML(spec)
	}
	labels := data.Labels
	if len(labels) == 0 {
		labels = inferredAxisLabels(data.Series)
	}
	switch spec.Kind {
	case VisualizationBar:
		return r.renderBarChart(spec.Title, labels, data.Series)
	case VisualizationLine:
		return r.renderLineChart(spec.Title, labels, data.Series, false)
	case VisualizationArea:
		return r.renderLineChart(spec.Title, labels, data.Series, true)
	case VisualizationPie:
		return r.renderPieChart(spec.Title, data.Series)
	case VisualizationTable:
		return r.renderTable(spec, labels, data.Series)
	default:
		return r.placeholderHTML(spec)
	}
}

func (r *ChartRenderer) renderBarChart(title string, xAxis []string, series []ChartSeries) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalChartOptions(title)...)
	bar.SetXAxis(xAxis)
	for _, s := range series {
		bar.AddSeries(s.Name, toBarData(s.Points))
	}
	return renderChart(bar)
}

func (r *ChartRenderer) renderLineChart(title string, xAxis []string, series []ChartSeries, area bool) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(r.globalChartOptions(title)...)
	line.SetXAxis(xAxis)
	for _, s := range series {
		line.AddSeries(s.Name, toLineData(s.Points))
	}
	seriesOpts := []charts.SeriesOpts{charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)})}
	if area {
		seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{}))
	}
	line.SetSeriesOptions(seriesOpts...)
	return renderChart(line)
}

func (r *ChartRenderer) renderPieChart(title string, series []ChartSeries) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(r.globalChartOptions(title)...)
	for _, s := range series {
		pie.AddSeries(s.Name, toPieData(s.Points))
	}
	return renderChart(pie)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *ChartRenderer) globalChartOptions(title string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func toBarData(points []ChartPoint) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{
			Name:  point.Label,
			Value: point.Value,
		}
	}
	return data
}

func toLineData(points []ChartPoint) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, point := range points {
		data[i] = opts.LineData{
			Name:  point.Label,
			Value: point.Value,
		}
	}
	return data
}

func toPieData(points []ChartPoint) []opts.PieData {
	data := make([]opts.PieData, len(points))
	for i, point := range points {
		name := point.Label
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{
			Name:  name,
			Value: point.Value,
		}
	}
	return data
}

func inferredAxisLabels(series []ChartSeries) []string {
	var candidate []string
	longest := 0
	for _, s := range series {
		if len(s.Points) <= longest {
			continue
		}
		longest = len(s.Points)
		candidate = make([]string, len(s.Points))
		for i, point := range s.Points {
			if point.Label != "" {
				candidate[i] = point.Label
			} else {
				candidate[i] = fmt.Sprintf("Item %d", i+1)
			}
		}
	}
	return candidate
}

func (r *ChartRenderer) renderTable(spec ChartSpec, labels []string, series []ChartSeries) (string, error) {
	headers := make([]string, len(series))
	for i, s := range series {
		headers[i] = s.Name
	}
	rows := make([]map[string]any, len(labels))
	for i, label := range labels {
		cells := make([]string, len(series))
		for j, s := range series {
			if i < len(s.Points) {
				cells[j] = strconv.FormatFloat(s.Points[i].Value, 'f', -1, 64)
			}
		}
		rows[i] = map[string]any{"label": label, "cells": cells}
	}
	return r.renderTemplate(TemplateChartTable, map[string]any{
		"item_id": spec.ItemID,
		"title":   spec.Title,
		"headers": headers,
		"rows":    rows,
	})
}

func (r *ChartRenderer) placeholderHTML(spec ChartSpec) (string, error) {
	message := spec.Placeholder
	if message == "" {
		message = PreviewUnavailable
	}
	return r.renderTemplate(TemplateChartPlaceholder, map[string]any{
		"item_id": spec.ItemID,
		"title":   spec.Title,
		"message": message,
	})
}

func (r *ChartRenderer) emptyDataHTML(spec ChartSpec) (string, error) {
	return r.renderTemplate(TemplateChartEmpty, map[string]any{
		"item_id": spec.ItemID,
		"title":   spec.Title,
		"message": "no data",
	})
}

func (r *ChartRenderer) renderTemplate(name string, data map[string]any) (string, error) {
	templates := r.templates
	if templates == nil {
		var err error
		if templates, err = defaultTemplates(); err != nil {
			return "", fmt.Errorf("dashboard: load chart templates: %w", err)
		}
	}
	var buf bytes.Buffer
	out, err := templates.Render(name, data, &buf)
	if err != nil {
		return "", fmt.Errorf("dashboard: render %s: %w", name, err)
	}
	if buf.Len() > 0 {
		return buf.String(), nil
	}
	return out, nil
}
