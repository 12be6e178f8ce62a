package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// RemoteConfig configures the HTTP key-value backend.
type RemoteConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// Remote reads and writes values on a config service: GET {base}/{key}
// returns the raw value (404 when absent) and PUT {base}/{key} replaces it.
type Remote struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ dashboard.KeyValue = (*Remote)(nil)

// NewRemote builds a remote backend.
func NewRemote(cfg RemoteConfig) (*Remote, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("storage: remote base url is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Remote{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  client,
	}, nil
}

func (r *Remote) Get(ctx context.Context, key string) ([]byte, bool, error) {
	resp, err := r.do(ctx, http.MethodGet, key, nil)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("storage: read remote %s: %w", key, err)
	}
	if resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("storage: remote get %s: status %d: %s", key, resp.StatusCode, body)
	}
	return body, true, nil
}

func (r *Remote) Set(ctx context.Context, key string, value []byte) error {
	resp, err := r.do(ctx, http.MethodPut, key, value)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("storage: remote put %s: status %d: %s", key, resp.StatusCode, body)
	}
	return nil
}

func (r *Remote) do(ctx context.Context, method, key string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+"/"+url.PathEscape(key), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("storage: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: remote %s %s: %w", method, key, err)
	}
	return resp, nil
}
