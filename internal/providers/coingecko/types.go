package coingecko

// Raw response shapes for the CoinGecko v3 API. The markets endpoint
// decodes straight into []models.Coin; only the nested envelopes live here.

// globalResponse wraps /global.
type globalResponse struct {
	Data globalData `json:"data"`
}

type globalData struct {
	ActiveCryptocurrencies int                `json:"active_cryptocurrencies"`
	Markets                int                `json:"markets"`
	TotalMarketCap         map[string]float64 `json:"total_market_cap"`
	TotalVolume            map[string]float64 `json:"total_volume"`
	MarketCapPercentage    map[string]float64 `json:"market_cap_percentage"`
	MarketCapChangePct24h  float64            `json:"market_cap_change_percentage_24h_usd"`
}

// trendingResponse wraps /search/trending.
type trendingResponse struct {
	Coins []trendingEntry `json:"coins"`
}

type trendingEntry struct {
	Item trendingItem `json:"item"`
}

type trendingItem struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank int    `json:"market_cap_rank"`
	Thumb         string `json:"thumb"`
}
