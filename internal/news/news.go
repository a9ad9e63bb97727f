// Package news aggregates crypto market headlines from RSS feeds.
package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/mkotas/coindeck/internal/infra"
	"github.com/mkotas/coindeck/pkg/models"
)

// Source is one crypto news RSS feed.
type Source struct {
	Name   string
	RSSURL string
}

// DefaultSources lists the configured crypto news feeds.
var DefaultSources = []Source{
	{Name: "CoinDesk", RSSURL: "https://www.coindesk.com/arc/outboundfeeds/rss/"},
	{Name: "Cointelegraph", RSSURL: "https://cointelegraph.com/rss"},
	{Name: "Decrypt", RSSURL: "https://decrypt.co/feed"},
}

// News fetches and caches headlines from the configured feeds.
type News struct {
	sources []Source
	cache   *infra.Cache
	limiter *infra.RateLimiter
	parser  *gofeed.Parser
}

// New creates a news aggregator with the default feeds.
func New() *News {
	return NewWithSources(DefaultSources)
}

// NewWithSources creates a news aggregator with custom feeds.
func NewWithSources(sources []Source) *News {
	return &News{
		sources: sources,
		cache:   infra.NewCache(10 * time.Minute),
		limiter: infra.NewRateLimiter(2, time.Second), // conservative: 2 req/s
		parser:  gofeed.NewParser(),
	}
}

// MarketNews returns recent headlines from all configured sources,
// newest first. Sources that fail to fetch are skipped.
func (n *News) MarketNews(ctx context.Context, limit int) ([]models.NewsItem, error) {
	cacheKey := fmt.Sprintf("news:market:%d", limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsItem), nil
	}

	var all []models.NewsItem
	for _, src := range n.sources {
		items, err := n.fetchRSS(ctx, src)
		if err != nil {
			// Non-critical: skip failed sources.
			continue
		}
		all = append(all, items...)
	}

	sortByDate(all)

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	n.cache.Set(cacheKey, all)
	return all, nil
}

// CoinNews returns headlines mentioning the given coin id or symbol.
func (n *News) CoinNews(ctx context.Context, id, symbol string, limit int) ([]models.NewsItem, error) {
	cacheKey := fmt.Sprintf("news:coin:%s:%d", id, limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsItem), nil
	}

	all, err := n.MarketNews(ctx, 0)
	if err != nil {
		return nil, err
	}

	keywords := []string{strings.ToLower(id), strings.ToLower(symbol)}
	var filtered []models.NewsItem
	for _, item := range all {
		if matchesAny(item.Title+" "+item.Summary, keywords) {
			filtered = append(filtered, item)
		}
	}

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	n.cache.Set(cacheKey, filtered)
	return filtered, nil
}

// fetchRSS parses an RSS feed and returns its headlines.
func (n *News) fetchRSS(ctx context.Context, src Source) ([]models.NewsItem, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := n.parser.ParseURLWithContext(src.RSSURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", src.Name, err)
	}

	items := make([]models.NewsItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		ni := models.NewsItem{
			Title:   item.Title,
			Link:    item.Link,
			Source:  src.Name,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			ni.PublishedAt = *item.PublishedParsed
		}
		items = append(items, ni)
	}

	return items, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// matchesAny checks if text contains any of the keywords (case-insensitive).
func matchesAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// sortByDate sorts items by published date (newest first).
// Simple insertion sort — fine for small slices.
func sortByDate(items []models.NewsItem) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && items[j].PublishedAt.Before(key.PublishedAt) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}
