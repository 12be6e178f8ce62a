// Package crmapi fetches chart series from the CRM segmentation, revenue and
// marketing services.
package crmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
	"go.uber.org/zap"
)

// ErrUnsupportedSource is returned for specs the CRM services cannot answer.
var ErrUnsupportedSource = errors.New("crmapi: unsupported data source")

// Config configures the CRM client.
type Config struct {
	BaseURL      string
	APIKey       string
	HTTPClient   *http.Client
	Logger       *zap.Logger
	Period       string
	SegmentField string
	CampaignID   string
	// ReferenceDate is forwarded to the segmentation service; empty lets the
	// service use today.
	ReferenceDate string
	MinClusters   int
	MaxClusters   int
}

// Client talks to the CRM services via REST endpoints.
type Client struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

var _ dashboard.DataProvider = (*Client)(nil)

// NewClient builds a client for the CRM API rooted at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("crmapi: base url is required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Period == "" {
		cfg.Period = "M"
	}
	if cfg.SegmentField == "" {
		cfg.SegmentField = "value_segment"
	}
	if cfg.CampaignID == "" {
		cfg.CampaignID = "latest"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, client: httpClient, logger: logger}, nil
}

// FetchSeries implements dashboard.DataProvider. Data-source items map to the
// service named by their source id; builder items map by kind.
func (c *Client) FetchSeries(ctx context.Context, spec dashboard.ChartSpec) (dashboard.ChartData, error) {
	source := sourceKey(spec)
	c.logger.Debug("crm fetch", zap.String("item_id", spec.ItemID), zap.String("source", source))
	switch source {
	case "demographic", "rfm", "preference":
		seg, err := c.Segmentation(ctx, source)
		if err != nil {
			return dashboard.ChartData{}, err
		}
		return seg.chartData(spec.Title, source, spec.Segments), nil
	case "segment":
		seg, err := c.Segmentation(ctx, "comprehensive")
		if err != nil {
			return dashboard.ChartData{}, err
		}
		return seg.chartData(spec.Title, "rfm", spec.Segments), nil
	case "combined":
		rev, err := c.RevenueBySegment(ctx, c.cfg.SegmentField)
		if err != nil {
			return dashboard.ChartData{}, err
		}
		return rev.chartData(spec.Title, spec.Segments), nil
	case "revenue", "trend", "sales":
		trends, err := c.RevenueTrends(ctx, c.cfg.Period)
		if err != nil {
			return dashboard.ChartData{}, err
		}
		return trends.chartData(spec.Title, source == "sales"), nil
	case "marketing":
		analytics, err := c.CampaignAnalytics(ctx, c.cfg.CampaignID)
		if err != nil {
			return dashboard.ChartData{}, err
		}
		return analytics.chartData(), nil
	default:
		return dashboard.ChartData{}, fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
	}
}

// Segmentation runs POST /segment/{kind}.
func (c *Client) Segmentation(ctx context.Context, kind string) (SegmentationResult, error) {
	req := segmentationRequest{
		ReferenceDate: c.cfg.ReferenceDate,
		MinClusters:   c.cfg.MinClusters,
		MaxClusters:   c.cfg.MaxClusters,
	}
	var resp SegmentationResult
	if err := c.do(ctx, http.MethodPost, "/segment/"+url.PathEscape(kind), req, &resp); err != nil {
		return SegmentationResult{}, err
	}
	return resp, nil
}

// RevenueTrends calls GET /revenue/trends for a pandas-style period (D, W, M, Y).
func (c *Client) RevenueTrends(ctx context.Context, period string) (RevenueTrends, error) {
	var resp RevenueTrends
	path := "/revenue/trends?period=" + url.QueryEscape(period)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return RevenueTrends{}, err
	}
	return resp, nil
}

// RevenueBySegment calls GET /revenue/by-segment.
func (c *Client) RevenueBySegment(ctx context.Context, field string) (SegmentRevenue, error) {
	var resp SegmentRevenue
	path := "/revenue/by-segment?segment_field=" + url.QueryEscape(field)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return SegmentRevenue{}, err
	}
	return resp, nil
}

// CampaignAnalytics calls GET /marketing/analytics/{campaignID}.
func (c *Client) CampaignAnalytics(ctx context.Context, campaignID string) (CampaignAnalytics, error) {
	var resp CampaignAnalytics
	if err := c.do(ctx, http.MethodGet, "/marketing/analytics/"+url.PathEscape(campaignID), nil, &resp); err != nil {
		return CampaignAnalytics{}, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, target any) error {
	var body *bytes.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("crmapi: encode payload: %w", err)
		}
		body = bytes.NewReader(buf)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("crmapi: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("crmapi: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var remote struct {
			Error string `json:"error"`
		}
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		msg := buf.String()
		if json.Unmarshal(buf.Bytes(), &remote) == nil && remote.Error != "" {
			msg = remote.Error
		}
		return fmt.Errorf("crmapi: remote error %d: %s", resp.StatusCode, msg)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("crmapi: decode response: %w", err)
	}
	return nil
}

// sourceKey picks the CRM endpoint family for a chart.
func sourceKey(spec dashboard.ChartSpec) string {
	if spec.Source.Kind == dashboard.ItemDataSource {
		return spec.Source.SourceID
	}
	return string(spec.Source.Kind)
}
