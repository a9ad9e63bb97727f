package watch

import (
	"testing"

	"github.com/mkotas/coindeck/pkg/models"
)

func marketPage() []models.Coin {
	up := 2.5
	down := -1.25
	return []models.Coin{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 60000, MarketCap: 1.2e12, ChangePct24h: &up},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum", CurrentPrice: 3000, MarketCap: 3.6e11, ChangePct24h: &down},
		{ID: "solana", Symbol: "sol", Name: "Solana", CurrentPrice: 150, MarketCap: 7e10},
		{ID: "cardano", Symbol: "ada", Name: "Cardano", CurrentPrice: 0.6, MarketCap: 2.1e10},
		{ID: "ripple", Symbol: "xrp", Name: "XRP", CurrentPrice: 0.6, MarketCap: 3.3e10},
		{ID: "dogecoin", Symbol: "doge", Name: "Dogecoin", CurrentPrice: 0.15, MarketCap: 2.2e10},
	}
}

func TestBuildComparisonRequiresFullSelection(t *testing.T) {
	_, err := BuildComparison(marketPage(), []string{"bitcoin", "ethereum"})
	if err != ErrCompareRequiresFull {
		t.Fatalf("err = %v, want ErrCompareRequiresFull", err)
	}
}

func TestBuildComparison(t *testing.T) {
	selected := []string{"bitcoin", "ethereum", "solana", "cardano", "ripple"}

	cmp, err := BuildComparison(marketPage(), selected)
	if err != nil {
		t.Fatalf("BuildComparison: %v", err)
	}

	if cmp.Label != "bitcoin, ethereum, solana, cardano, ripple" {
		t.Errorf("Label = %q", cmp.Label)
	}
	if len(cmp.Rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(cmp.Rows))
	}

	// Rows keep selection order and uppercase the symbol.
	if cmp.Rows[0].ID != "bitcoin" || cmp.Rows[0].Symbol != "BTC" {
		t.Errorf("row 0 = %+v", cmp.Rows[0])
	}

	// Base is the cheapest price in the set (0.6): bitcoin = 60000/0.6.
	if cmp.Rows[0].PriceVsBase != "100000" {
		t.Errorf("bitcoin PriceVsBase = %q, want 100000", cmp.Rows[0].PriceVsBase)
	}
	// The cheapest coin compares at exactly 1.
	if cmp.Rows[3].PriceVsBase != "1" {
		t.Errorf("cardano PriceVsBase = %q, want 1", cmp.Rows[3].PriceVsBase)
	}

	// Market-cap shares must be present for every row.
	for _, row := range cmp.Rows {
		if row.MarketCapSharePct == "" {
			t.Errorf("row %s missing MarketCapSharePct", row.ID)
		}
	}
}

func TestBuildComparisonSkipsMissingCoins(t *testing.T) {
	selected := []string{"bitcoin", "ethereum", "solana", "cardano", "notinpage"}

	cmp, err := BuildComparison(marketPage(), selected)
	if err != nil {
		t.Fatalf("BuildComparison: %v", err)
	}
	if len(cmp.Rows) != 4 {
		t.Errorf("rows = %d, want 4 (one selection absent from page)", len(cmp.Rows))
	}
	// The label still names the full selection.
	if cmp.Label != "bitcoin, ethereum, solana, cardano, notinpage" {
		t.Errorf("Label = %q", cmp.Label)
	}
}
