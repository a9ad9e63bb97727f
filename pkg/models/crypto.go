// Package models defines the shared data structures for coindeck:
// market coins, user preferences, snapshots, and comparison results.
package models

import (
	"fmt"
	"time"
)

// Coin is a single cryptocurrency record as returned by the CoinGecko
// /coins/markets endpoint. ChangePct24h is a pointer because the API
// returns null for assets without 24h history.
type Coin struct {
	ID           string   `json:"id"`
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	Image        string   `json:"image,omitempty"`
	CurrentPrice float64  `json:"current_price"`
	MarketCap    float64  `json:"market_cap"`
	MarketCapRank int     `json:"market_cap_rank,omitempty"`
	TotalVolume  float64  `json:"total_volume,omitempty"`
	High24h      float64  `json:"high_24h,omitempty"`
	Low24h       float64  `json:"low_24h,omitempty"`
	ChangePct24h *float64 `json:"price_change_percentage_24h"`
}

// SortOrder is a market page ordering token accepted by the markets endpoint.
type SortOrder string

const (
	SortMarketCapDesc SortOrder = "market_cap_desc"
	SortMarketCapAsc  SortOrder = "market_cap_asc"
	SortVolumeDesc    SortOrder = "volume_desc"
	SortVolumeAsc     SortOrder = "volume_asc"
	SortIDAsc         SortOrder = "id_asc"
	SortIDDesc        SortOrder = "id_desc"
)

// DefaultSortOrder is used when no preference has been stored.
const DefaultSortOrder = SortMarketCapDesc

// SortOrders lists every valid ordering token.
var SortOrders = []SortOrder{
	SortMarketCapDesc,
	SortMarketCapAsc,
	SortVolumeDesc,
	SortVolumeAsc,
	SortIDAsc,
	SortIDDesc,
}

// ParseSortOrder validates a raw ordering token.
func ParseSortOrder(s string) (SortOrder, error) {
	for _, o := range SortOrders {
		if string(o) == s {
			return o, nil
		}
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Preferences holds the persisted display settings.
type Preferences struct {
	Show24h   bool      `json:"show24h"`
	SortOrder SortOrder `json:"sortOrder"`
}

// DefaultPreferences returns the preferences used when storage is empty
// or unreadable.
func DefaultPreferences() Preferences {
	return Preferences{Show24h: false, SortOrder: DefaultSortOrder}
}

// MarketSnapshot is the published result of one refresh cycle.
// When a cycle fails the previous snapshot is republished with Stale set
// and Notice carrying the failure description.
type MarketSnapshot struct {
	Coins      []Coin       `json:"coins"`
	Global     *GlobalStats `json:"global,omitempty"`
	FetchedAt  time.Time    `json:"fetched_at"`
	Generation uint64       `json:"generation"`
	Stale      bool         `json:"stale,omitempty"`
	Notice     string       `json:"notice,omitempty"`
}

// GlobalStats summarizes the overall crypto market.
type GlobalStats struct {
	ActiveCryptocurrencies int     `json:"active_cryptocurrencies"`
	Markets                int     `json:"markets"`
	TotalMarketCapUSD      float64 `json:"total_market_cap_usd"`
	TotalVolumeUSD         float64 `json:"total_volume_usd"`
	BTCDominancePct        float64 `json:"btc_dominance_pct"`
	MarketCapChangePct24h  float64 `json:"market_cap_change_pct_24h"`
}

// TrendingCoin is an entry from the trending-search endpoint.
type TrendingCoin struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank int    `json:"market_cap_rank"`
	Thumb         string `json:"thumb,omitempty"`
}

// MaxSelection is the watchlist capacity: the comparison view is built
// from exactly this many coins.
const MaxSelection = 5

// NewsItem is a single market headline pulled from an RSS feed.
type NewsItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Summary     string    `json:"summary,omitempty"`
}

// ComparisonRow is one coin's slice of a Comparison.
type ComparisonRow struct {
	ID               string   `json:"id"`
	Symbol           string   `json:"symbol"`
	Name             string   `json:"name"`
	Price            float64  `json:"price"`
	MarketCap        float64  `json:"market_cap"`
	ChangePct24h     *float64 `json:"change_pct_24h"`
	PriceVsBase      string   `json:"price_vs_base"`      // price / cheapest price, 4dp
	MarketCapSharePct string  `json:"market_cap_share_pct"` // share of the set's total cap, 2dp
}

// Comparison is the result of comparing a full selection of coins.
type Comparison struct {
	IDs        []string        `json:"ids"`
	Label      string          `json:"label"` // the IDs joined by ", "
	Rows       []ComparisonRow `json:"rows"`
	GeneratedAt time.Time      `json:"generated_at"`
}
