package render

import (
	"strings"
	"testing"
	"time"

	"github.com/mkotas/coindeck/pkg/models"
)

func sampleCoins() []models.Coin {
	up := 2.41
	return []models.Coin{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 60000, MarketCap: 1.2e12, ChangePct24h: &up},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum", CurrentPrice: 3000, MarketCap: 3.6e11, ChangePct24h: nil},
	}
}

func TestTableWith24h(t *testing.T) {
	var buf strings.Builder
	Table(&buf, sampleCoins(), models.Preferences{Show24h: true, SortOrder: models.DefaultSortOrder})
	out := buf.String()

	for _, want := range []string{"Bitcoin", "BTC", "$60,000.00", "24H", "+2.41%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// Missing 24h data renders as a placeholder, not a zero.
	if !strings.Contains(out, "—") {
		t.Errorf("expected placeholder for missing 24h change:\n%s", out)
	}
}

func TestTableWithout24h(t *testing.T) {
	var buf strings.Builder
	Table(&buf, sampleCoins(), models.Preferences{Show24h: false, SortOrder: models.DefaultSortOrder})
	out := buf.String()

	if strings.Contains(out, "24H") || strings.Contains(out, "+2.41%") {
		t.Errorf("24h column should be hidden:\n%s", out)
	}
}

func TestWatchlistShowsPendingAndCount(t *testing.T) {
	var buf strings.Builder
	Watchlist(&buf, sampleCoins(), []string{"bitcoin", "dogecoin"}, models.DefaultPreferences())
	out := buf.String()

	if !strings.Contains(out, "Bitcoin") {
		t.Errorf("missing selected coin:\n%s", out)
	}
	if !strings.Contains(out, "dogecoin") {
		t.Errorf("coin absent from market page should still be listed:\n%s", out)
	}
	if !strings.Contains(out, "2 of 5 coins selected") {
		t.Errorf("missing selection count:\n%s", out)
	}
}

func TestWatchlistFullAnnouncesCompare(t *testing.T) {
	var buf strings.Builder
	ids := []string{"a", "b", "c", "d", "e"}
	Watchlist(&buf, nil, ids, models.DefaultPreferences())

	if !strings.Contains(buf.String(), "compare available") {
		t.Errorf("full watchlist should announce compare:\n%s", buf.String())
	}
}

func TestComparison(t *testing.T) {
	cmp := models.Comparison{
		IDs:   []string{"bitcoin", "ethereum"},
		Label: "bitcoin, ethereum",
		Rows: []models.ComparisonRow{
			{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC", Price: 60000, MarketCap: 1.2e12, PriceVsBase: "20", MarketCapSharePct: "76.92"},
			{ID: "ethereum", Name: "Ethereum", Symbol: "ETH", Price: 3000, MarketCap: 3.6e11, PriceVsBase: "1", MarketCapSharePct: "23.08"},
		},
		GeneratedAt: time.Now(),
	}

	var buf strings.Builder
	Comparison(&buf, cmp)
	out := buf.String()

	for _, want := range []string{"Comparing: bitcoin, ethereum", "20x", "76.92%", "VS BASE"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGlobal(t *testing.T) {
	var buf strings.Builder
	Global(&buf, models.GlobalStats{
		ActiveCryptocurrencies: 12000,
		TotalMarketCapUSD:      2.3e12,
		TotalVolumeUSD:         9.8e10,
		BTCDominancePct:        52.3,
	})
	out := buf.String()

	for _, want := range []string{"$2.30T", "$98.00B", "52.3%", "12000"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNews(t *testing.T) {
	items := []models.NewsItem{
		{Title: "Bitcoin rallies", Source: "CoinDesk", Link: "http://example.com/1", PublishedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
	}

	var buf strings.Builder
	News(&buf, items)
	out := buf.String()

	for _, want := range []string{"[CoinDesk] Bitcoin rallies", "2024-06-01 12:00", "http://example.com/1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
