// Package coingecko implements the CoinGecko data provider.
// It wraps CoinGecko's public v3 API (coins/markets, global, search/trending)
// into the standard provider/fetcher framework.
//
// CoinGecko's public tier needs no API key; it is rate limited to roughly
// 10-30 calls/minute, so every fetcher keeps a conservative limiter.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mkotas/coindeck/internal/infra"
	"github.com/mkotas/coindeck/internal/provider"
)

const providerName = "coingecko"

// DefaultBaseURL is the public CoinGecko API root.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// Provider implements provider.Provider for CoinGecko.
type Provider struct {
	provider.BaseProvider
	baseURL string
}

// New creates a CoinGecko provider against the public API.
func New() *Provider {
	return NewWithBaseURL(DefaultBaseURL)
}

// NewWithBaseURL creates a CoinGecko provider against a custom API root.
// Used by the config's market.api_base override and by tests.
func NewWithBaseURL(baseURL string) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"CoinGecko - free cryptocurrency market data",
			"https://www.coingecko.com",
		),
		baseURL: baseURL,
	}

	p.RegisterFetcher(newMarketsFetcher(p))
	p.RegisterFetcher(newGlobalFetcher(p))
	p.RegisterFetcher(newTrendingFetcher(p))

	return p
}

// Ping checks API reachability via the /ping endpoint.
func (p *Provider) Ping(ctx context.Context) error {
	var resp struct {
		GeckoSays string `json:"gecko_says"`
	}
	if err := p.fetchJSON(ctx, p.baseURL+"/ping", &resp); err != nil {
		return fmt.Errorf("coingecko ping: %w", err)
	}
	return nil
}

// fetchJSON performs a GET request and decodes the response into dest.
func (p *Provider) fetchJSON(ctx context.Context, url string, dest any) error {
	body, _, err := infra.DoGet(ctx, url, nil)
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return nil
}

// newResult creates a FetchResult with the current timestamp.
func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}

// newCachedResult creates a FetchResult marked as cached.
func newCachedResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
		Cached:    true,
	}
}
