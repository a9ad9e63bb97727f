package watch

import (
	"context"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkotas/coindeck/internal/provider"
	"github.com/mkotas/coindeck/pkg/models"
)

// DefaultRefreshInterval is how often the market page is refetched when
// nothing else triggers a cycle.
const DefaultRefreshInterval = 60 * time.Second

// Refresher drives the fetch-and-publish cycle: once at startup, on a
// fixed interval, and immediately after any state mutation via Kick.
//
// Each cycle carries a generation number. A cycle that resolves after a
// newer cycle has already published is dropped, so a slow response can
// never overwrite fresher data.
type Refresher struct {
	reg      *provider.Registry
	state    *State
	currency string
	perPage  int
	interval time.Duration

	gen  atomic.Uint64
	kick chan struct{}

	mu        sync.Mutex
	snap      *models.MarketSnapshot
	published uint64
	listeners []func(models.MarketSnapshot)
}

// NewRefresher creates a Refresher fetching perPage coins quoted in
// currency from reg, ordered by the state's sort preference.
func NewRefresher(reg *provider.Registry, state *State, currency string, perPage int, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{
		reg:      reg,
		state:    state,
		currency: currency,
		perPage:  perPage,
		interval: interval,
		kick:     make(chan struct{}, 1),
	}
}

// AddListener registers a callback invoked after every published snapshot.
// Listeners must not block; register before Start.
func (r *Refresher) AddListener(fn func(models.MarketSnapshot)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Snapshot returns the last published snapshot, if any cycle has completed.
func (r *Refresher) Snapshot() (models.MarketSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap == nil {
		return models.MarketSnapshot{}, false
	}
	return *r.snap, true
}

// Kick requests an immediate refresh cycle. Coalesces when one is
// already pending.
func (r *Refresher) Kick() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// Start runs the refresh loop until ctx is cancelled: one cycle
// immediately, then one per interval or Kick.
func (r *Refresher) Start(ctx context.Context) {
	r.RunCycle(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunCycle(ctx)
		case <-r.kick:
			r.RunCycle(ctx)
		}
	}
}

// RunCycle performs one fetch-and-publish pass and returns the snapshot
// it produced. On fetch failure the previous coins are republished with
// Stale set and a notice; the display never goes blank over a transient
// upstream error.
func (r *Refresher) RunCycle(ctx context.Context) models.MarketSnapshot {
	gen := r.gen.Add(1)
	prefs := r.state.Prefs()

	var (
		coins  []models.Coin
		global *models.GlobalStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := r.reg.Fetch(gctx, provider.ModelCryptoMarkets, provider.QueryParams{
			provider.ParamCurrency: r.currency,
			provider.ParamOrder:    string(prefs.SortOrder),
			provider.ParamPerPage:  strconv.Itoa(r.perPage),
			provider.ParamPage:     "1",
		})
		if err != nil {
			return err
		}
		coins, _ = result.Data.([]models.Coin)
		return nil
	})
	g.Go(func() error {
		// Global stats are decoration; their failure never fails the cycle.
		result, err := r.reg.Fetch(gctx, provider.ModelCryptoGlobal, provider.QueryParams{})
		if err != nil {
			log.Printf("watch: global stats fetch failed: %v", err)
			return nil
		}
		global, _ = result.Data.(*models.GlobalStats)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("watch: refresh cycle %d failed: %v", gen, err)
		snap := models.MarketSnapshot{
			FetchedAt:  time.Now(),
			Generation: gen,
			Stale:      true,
			Notice:     "market data unavailable: " + err.Error(),
		}
		// Keep showing the last good page.
		r.mu.Lock()
		if r.snap != nil {
			snap.Coins = r.snap.Coins
			snap.Global = r.snap.Global
			snap.FetchedAt = r.snap.FetchedAt
		}
		r.mu.Unlock()
		r.publish(gen, snap)
		return snap
	}

	snap := models.MarketSnapshot{
		Coins:      coins,
		Global:     global,
		FetchedAt:  time.Now(),
		Generation: gen,
	}
	r.publish(gen, snap)
	return snap
}

// publish records and fans out a snapshot unless a newer generation has
// already been published.
func (r *Refresher) publish(gen uint64, snap models.MarketSnapshot) {
	r.mu.Lock()
	if gen <= r.published && r.published != 0 {
		r.mu.Unlock()
		log.Printf("watch: dropping stale cycle %d (newest is %d)", gen, r.published)
		return
	}
	r.published = gen
	r.snap = &snap
	listeners := make([]func(models.MarketSnapshot), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
