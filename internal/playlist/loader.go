package playlist

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/omar-chaar/m3u-health-check/internal/domain"
)

var fetchClient = &http.Client{Timeout: 30 * time.Second}

// Load reads and parses a playlist from an http(s) URL or a local file path.
func Load(ctx context.Context, source string) ([]domain.Endpoint, error) {
	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return fetch(ctx, source)
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open playlist: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func fetch(ctx context.Context, source string) ([]domain.Endpoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch playlist: %w", err)
	}
	resp, err := fetchClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch playlist: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch playlist: server returned %s", resp.Status)
	}
	return Parse(resp.Body)
}
