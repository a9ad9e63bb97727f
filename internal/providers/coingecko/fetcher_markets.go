package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mkotas/coindeck/internal/provider"
	"github.com/mkotas/coindeck/pkg/models"
)

// --- CryptoMarkets fetcher ---

type marketsFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newMarketsFetcher(p *Provider) *marketsFetcher {
	return &marketsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCryptoMarkets,
			"Coin listings with price, market cap and 24h change from CoinGecko",
			[]string{provider.ParamCurrency, provider.ParamOrder},
			[]string{provider.ParamPerPage, provider.ParamPage},
			30*time.Second, 10, time.Minute,
		),
		p: p,
	}
}

func (f *marketsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	order, err := models.ParseSortOrder(params[provider.ParamOrder])
	if err != nil {
		return nil, err
	}

	perPage := params[provider.ParamPerPage]
	if perPage == "" {
		perPage = "50"
	}
	page := params[provider.ParamPage]
	if page == "" {
		page = "1"
	}

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("vs_currency", params[provider.ParamCurrency])
	q.Set("order", string(order))
	q.Set("per_page", perPage)
	q.Set("page", page)

	var coins []models.Coin
	reqURL := fmt.Sprintf("%s/coins/markets?%s", f.p.baseURL, q.Encode())
	if err := f.p.fetchJSON(ctx, reqURL, &coins); err != nil {
		return nil, fmt.Errorf("coingecko markets: %w", err)
	}

	f.CacheSet(cacheKey, coins)
	return newResult(coins), nil
}

// --- CryptoGlobal fetcher ---

type globalFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newGlobalFetcher(p *Provider) *globalFetcher {
	return &globalFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCryptoGlobal,
			"Aggregate crypto market statistics from CoinGecko",
			nil, nil,
			5*time.Minute, 10, time.Minute,
		),
		p: p,
	}
}

func (f *globalFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var resp globalResponse
	if err := f.p.fetchJSON(ctx, f.p.baseURL+"/global", &resp); err != nil {
		return nil, fmt.Errorf("coingecko global: %w", err)
	}

	stats := &models.GlobalStats{
		ActiveCryptocurrencies: resp.Data.ActiveCryptocurrencies,
		Markets:                resp.Data.Markets,
		TotalMarketCapUSD:      resp.Data.TotalMarketCap["usd"],
		TotalVolumeUSD:         resp.Data.TotalVolume["usd"],
		BTCDominancePct:        resp.Data.MarketCapPercentage["btc"],
		MarketCapChangePct24h:  resp.Data.MarketCapChangePct24h,
	}

	f.CacheSet(cacheKey, stats)
	return newResult(stats), nil
}

// --- CryptoTrending fetcher ---

type trendingFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newTrendingFetcher(p *Provider) *trendingFetcher {
	return &trendingFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCryptoTrending,
			"Trending search coins from CoinGecko",
			nil, nil,
			10*time.Minute, 10, time.Minute,
		),
		p: p,
	}
}

func (f *trendingFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var resp trendingResponse
	if err := f.p.fetchJSON(ctx, f.p.baseURL+"/search/trending", &resp); err != nil {
		return nil, fmt.Errorf("coingecko trending: %w", err)
	}

	trending := make([]models.TrendingCoin, 0, len(resp.Coins))
	for _, entry := range resp.Coins {
		trending = append(trending, models.TrendingCoin{
			ID:            entry.Item.ID,
			Symbol:        entry.Item.Symbol,
			Name:          entry.Item.Name,
			MarketCapRank: entry.Item.MarketCapRank,
			Thumb:         entry.Item.Thumb,
		})
	}

	f.CacheSet(cacheKey, trending)
	return newResult(trending), nil
}
