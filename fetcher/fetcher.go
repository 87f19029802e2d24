// Package fetcher retrieves raw discovery documents over HTTPS for every
// configured service. A failed fetch is reported per service and never
// aborts the cycle; retry policy belongs to the operator, not here.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ddd/discovery-tracker/config"
)

// Result is the outcome of fetching one service's document. Exactly one of
// Content and Err is meaningful.
type Result struct {
	Service string
	Content []byte
	Err     error
}

// Fetcher downloads discovery documents for the configured service set.
type Fetcher struct {
	client   *http.Client
	services []config.ServiceConfig
	log      *zap.Logger
}

func New(services []config.ServiceConfig, log *zap.Logger) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: 30 * time.Second},
		services: services,
		log:      log,
	}
}

// FetchAll downloads the document for every configured service, one result
// per service in configuration order.
func (f *Fetcher) FetchAll(ctx context.Context) []Result {
	results := make([]Result, 0, len(f.services))
	for _, svc := range f.services {
		content, err := f.fetch(ctx, svc)
		if err != nil {
			f.log.Warn("failed to fetch discovery document",
				zap.String("service", svc.Service), zap.Error(err))
			results = append(results, Result{Service: svc.Service, Err: err})
			continue
		}
		results = append(results, Result{Service: svc.Service, Content: content})
	}
	return results
}

func (f *Fetcher) fetch(ctx context.Context, svc config.ServiceConfig) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, BuildURL(svc), nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", svc.Service, err)
	}
	if svc.Key != "" {
		req.Header.Set("x-goog-api-key", svc.Key)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed for %s: %w", svc.Service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("non-success status %d for %s", resp.StatusCode, svc.Service)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body for %s: %w", svc.Service, err)
	}

	if !LooksLikeDiscoveryDocument(content) {
		return nil, fmt.Errorf("response for %s does not look like a discovery document", svc.Service)
	}
	return content, nil
}

// BuildURL forms the discovery endpoint for a service:
// https://{service}/$discovery/{format}, plus the visibility label when set.
func BuildURL(svc config.ServiceConfig) string {
	u := fmt.Sprintf("https://%s/$discovery/%s", svc.Service, svc.Format)
	if svc.VisibilityLabel != "" {
		u += "?label=" + url.QueryEscape(svc.VisibilityLabel)
	}
	return u
}

// LooksLikeDiscoveryDocument is a cheap sanity check that rejects obvious
// non-discovery responses (error pages, HTML) before parsing.
func LooksLikeDiscoveryDocument(content []byte) bool {
	return strings.Contains(string(content), `"discoveryVersion"`)
}
