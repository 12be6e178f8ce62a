package crmapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(Config{BaseURL: server.URL + "/", APIKey: "secret", MinClusters: 2, MaxClusters: 6})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func dataSourceSpec(id string) dashboard.ChartSpec {
	return dashboard.ChartSpec{
		ItemID: "item-1-" + id,
		Title:  id,
		Kind:   dashboard.VisualizationPie,
		Source: dashboard.DataRef{Kind: dashboard.ItemDataSource, SourceID: id},
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatalf("expected error without base url")
	}
}

func TestClientSegmentation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/segment/demographic" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("expected auth header, got %s", got)
		}
		var body segmentationRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.MinClusters != 2 || body.MaxClusters != 6 {
			t.Fatalf("unexpected body %#v", body)
		}
		_, _ = w.Write([]byte(`{"summary":{"demographic":{"Gender_Male":10,"Gender_Female":12}}}`))
	})

	data, err := client.FetchSeries(context.Background(), dataSourceSpec("demographic"))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(data.Series) != 1 || len(data.Series[0].Points) != 2 {
		t.Fatalf("unexpected data %#v", data)
	}
	first := data.Series[0].Points[0]
	if first.Label != "Female" || first.Value != 12 {
		t.Fatalf("expected sorted, unprefixed labels, got %#v", first)
	}
}

func TestClientSegmentItemPicksNamedSegments(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/segment/comprehensive" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"summary":{"value_based_rfm":{"Champions":5,"At Risk":3},"preference":{"Denim":9}}}`))
	})
	spec := dashboard.ChartSpec{
		ItemID:   "item-1",
		Title:    "Loyal + Denim",
		Source:   dashboard.DataRef{Kind: dashboard.ItemSegment},
		Segments: []dashboard.SegmentRef{{ID: "s1", Type: "segment", Value: "Denim"}, {ID: "s2", Type: "segment", Value: "Champions"}},
	}
	data, err := client.FetchSeries(context.Background(), spec)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := data.Labels; len(got) != 2 || got[0] != "Champions" || got[1] != "Denim" {
		t.Fatalf("unexpected labels %v", got)
	}
}

func TestClientRevenueTrendsAndCumulative(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/revenue/trends" || r.URL.Query().Get("period") != "M" {
			t.Fatalf("unexpected request %s", r.URL.String())
		}
		_ = json.NewEncoder(w).Encode(RevenueTrends{
			Trend:      []TrendPoint{{Period: "2024-01", Revenue: 10}, {Period: "2024-02", Revenue: 15}},
			Cumulative: []TrendPoint{{Period: "2024-01", CumulativeRevenue: 10}, {Period: "2024-02", CumulativeRevenue: 25}},
		})
	})

	revenue, err := client.FetchSeries(context.Background(), dataSourceSpec("revenue"))
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if revenue.Series[0].Points[1].Value != 15 {
		t.Fatalf("unexpected revenue %#v", revenue)
	}
	sales, err := client.FetchSeries(context.Background(), dataSourceSpec("sales"))
	if err != nil {
		t.Fatalf("sales: %v", err)
	}
	if sales.Series[0].Points[1].Value != 25 {
		t.Fatalf("unexpected cumulative %#v", sales)
	}
}

func TestClientRevenueBySegment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/revenue/by-segment" || r.URL.Query().Get("segment_field") != "value_segment" {
			t.Fatalf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"segments":{"high_value":{"total_revenue":900,"transaction_count":3},"low_value":{"total_revenue":100}}}`))
	})
	data, err := client.FetchSeries(context.Background(), dashboard.ChartSpec{Source: dashboard.DataRef{Kind: dashboard.ItemCombined}})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(data.Series[0].Points) != 2 || data.Series[0].Points[0].Value != 900 {
		t.Fatalf("unexpected data %#v", data)
	}
}

func TestClientCampaignAnalytics(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/marketing/analytics/latest" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"campaignId":"latest","timeline":[{"date":"2024-04-01","opens":3,"clicks":2,"responses":1}]}`))
	})
	data, err := client.FetchSeries(context.Background(), dataSourceSpec("marketing"))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(data.Series) != 3 || data.Series[2].Name != "Responses" || data.Series[2].Points[0].Value != 1 {
		t.Fatalf("unexpected data %#v", data)
	}
}

func TestClientRemoteErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"clustering failed"}`))
	})
	_, err := client.FetchSeries(context.Background(), dataSourceSpec("rfm"))
	if err == nil || err.Error() != "crmapi: remote error 500: clustering failed" {
		t.Fatalf("unexpected error %v", err)
	}

	_, err = client.FetchSeries(context.Background(), dataSourceSpec("weather"))
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("expected unsupported source, got %v", err)
	}
}
