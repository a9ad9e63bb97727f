package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkotas/coindeck/pkg/models"
)

// ErrCompareRequiresFull is returned when a comparison is requested
// before the watchlist holds MaxSelection coins.
var ErrCompareRequiresFull = fmt.Errorf("comparison requires exactly %d selected coins", MaxSelection)

// BuildComparison assembles the comparison view for a full selection.
// Rows follow selection order; ratio arithmetic uses decimals so tiny
// (sub-cent) prices don't collapse to zero. Coins missing from the
// fetched page are skipped — their row simply doesn't appear until a
// later cycle includes them.
func BuildComparison(coins []models.Coin, selected []string) (*models.Comparison, error) {
	if len(selected) != MaxSelection {
		return nil, ErrCompareRequiresFull
	}

	byID := make(map[string]models.Coin, len(coins))
	for _, c := range coins {
		byID[c.ID] = c
	}

	var picked []models.Coin
	for _, id := range selected {
		if c, ok := byID[id]; ok {
			picked = append(picked, c)
		}
	}

	// Base price: the cheapest coin in the set, so every ratio is ≥ 1.
	var base decimal.Decimal
	totalCap := decimal.Zero
	for i, c := range picked {
		price := decimal.NewFromFloat(c.CurrentPrice)
		if i == 0 || price.LessThan(base) {
			base = price
		}
		totalCap = totalCap.Add(decimal.NewFromFloat(c.MarketCap))
	}

	rows := make([]models.ComparisonRow, 0, len(picked))
	for _, c := range picked {
		row := models.ComparisonRow{
			ID:           c.ID,
			Symbol:       strings.ToUpper(c.Symbol),
			Name:         c.Name,
			Price:        c.CurrentPrice,
			MarketCap:    c.MarketCap,
			ChangePct24h: c.ChangePct24h,
		}
		if base.IsPositive() {
			row.PriceVsBase = decimal.NewFromFloat(c.CurrentPrice).
				DivRound(base, 4).String()
		}
		if totalCap.IsPositive() {
			row.MarketCapSharePct = decimal.NewFromFloat(c.MarketCap).
				Mul(decimal.NewFromInt(100)).
				DivRound(totalCap, 2).String()
		}
		rows = append(rows, row)
	}

	return &models.Comparison{
		IDs:         append([]string(nil), selected...),
		Label:       strings.Join(selected, ", "),
		Rows:        rows,
		GeneratedAt: time.Now(),
	}, nil
}
