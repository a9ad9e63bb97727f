// Package render formats market data for terminal output.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mkotas/coindeck/pkg/models"
	"github.com/mkotas/coindeck/pkg/utils"
)

// Table writes a coin table to w. The 24h change column is included
// only when prefs.Show24h is set.
func Table(w io.Writer, coins []models.Coin, prefs models.Preferences) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if prefs.Show24h {
		fmt.Fprintln(tw, "#\tNAME\tSYMBOL\tPRICE\tMARKET CAP\t24H")
	} else {
		fmt.Fprintln(tw, "#\tNAME\tSYMBOL\tPRICE\tMARKET CAP")
	}

	for i, c := range coins {
		row := fmt.Sprintf("%d\t%s\t%s\t%s\t%s",
			i+1,
			c.Name,
			strings.ToUpper(c.Symbol),
			utils.FormatUSD(c.CurrentPrice),
			utils.FormatUSDCompact(c.MarketCap),
		)
		if prefs.Show24h {
			row += "\t" + utils.FormatPercent(c.ChangePct24h)
		}
		fmt.Fprintln(tw, row)
	}

	tw.Flush()
}

// Watchlist writes the selected coins to w, keeping the selection order.
// Coins missing from the current market page are shown as pending.
func Watchlist(w io.Writer, coins []models.Coin, selected []string, prefs models.Preferences) {
	byID := make(map[string]models.Coin, len(coins))
	for _, c := range coins {
		byID[c.ID] = c
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if prefs.Show24h {
		fmt.Fprintln(tw, "NAME\tSYMBOL\tPRICE\tMARKET CAP\t24H")
	} else {
		fmt.Fprintln(tw, "NAME\tSYMBOL\tPRICE\tMARKET CAP")
	}

	for _, id := range selected {
		c, ok := byID[id]
		if !ok {
			fmt.Fprintf(tw, "%s\t-\t-\t-", id)
			if prefs.Show24h {
				fmt.Fprint(tw, "\t-")
			}
			fmt.Fprintln(tw)
			continue
		}
		row := fmt.Sprintf("%s\t%s\t%s\t%s",
			c.Name,
			strings.ToUpper(c.Symbol),
			utils.FormatUSD(c.CurrentPrice),
			utils.FormatUSDCompact(c.MarketCap),
		)
		if prefs.Show24h {
			row += "\t" + utils.FormatPercent(c.ChangePct24h)
		}
		fmt.Fprintln(tw, row)
	}
	tw.Flush()

	if len(selected) == models.MaxSelection {
		fmt.Fprintln(w, "\nwatchlist full: compare available")
	} else {
		fmt.Fprintf(w, "\n%d of %d coins selected\n", len(selected), models.MaxSelection)
	}
}

// Comparison writes a comparison table to w.
func Comparison(w io.Writer, cmp models.Comparison) {
	fmt.Fprintf(w, "Comparing: %s\n\n", cmp.Label)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSYMBOL\tPRICE\tMARKET CAP\tVS BASE\tCAP SHARE")
	for _, row := range cmp.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%sx\t%s%%\n",
			row.Name,
			row.Symbol,
			utils.FormatUSD(row.Price),
			utils.FormatUSDCompact(row.MarketCap),
			row.PriceVsBase,
			row.MarketCapSharePct,
		)
	}
	tw.Flush()
}

// Global writes global market stats to w.
func Global(w io.Writer, g models.GlobalStats) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total market cap\t%s\n", utils.FormatUSDCompact(g.TotalMarketCapUSD))
	fmt.Fprintf(tw, "24h volume\t%s\n", utils.FormatUSDCompact(g.TotalVolumeUSD))
	fmt.Fprintf(tw, "BTC dominance\t%.1f%%\n", g.BTCDominancePct)
	fmt.Fprintf(tw, "Active coins\t%d\n", g.ActiveCryptocurrencies)
	tw.Flush()
}

// News writes headlines to w, newest first.
func News(w io.Writer, items []models.NewsItem) {
	for _, item := range items {
		fmt.Fprintf(w, "[%s] %s\n", item.Source, item.Title)
		if !item.PublishedAt.IsZero() {
			fmt.Fprintf(w, "  %s\n", item.PublishedAt.Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(w, "  %s\n\n", item.Link)
	}
}
