package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mkotas/coindeck/internal/provider"
	"github.com/mkotas/coindeck/internal/store"
	"github.com/mkotas/coindeck/pkg/models"
)

// stubMarkets implements provider.Fetcher with scripted results.
type stubMarkets struct {
	provider.BaseFetcher

	mu        sync.Mutex
	lastOrder string
	coins     []models.Coin
	err       error
}

func (f *stubMarkets) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOrder = params[provider.ParamOrder]
	if f.err != nil {
		return nil, f.err
	}
	return &provider.FetchResult{Data: f.coins, FetchedAt: time.Now()}, nil
}

func (f *stubMarkets) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *stubMarkets) order() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOrder
}

type stubProvider struct {
	provider.BaseProvider
}

func newStubRegistry(t *testing.T, coins []models.Coin) (*provider.Registry, *stubMarkets) {
	t.Helper()
	sp := &stubProvider{
		BaseProvider: provider.NewBaseProvider("stub", "stub provider", "https://example.com"),
	}
	markets := &stubMarkets{
		BaseFetcher: provider.NewBaseFetcher(provider.ModelCryptoMarkets, "stub markets",
			[]string{provider.ParamCurrency, provider.ParamOrder}, nil),
		coins: coins,
	}
	sp.RegisterFetcher(markets)

	reg := provider.NewRegistry()
	if err := reg.Register(sp); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return reg, markets
}

func testRefresher(t *testing.T, coins []models.Coin) (*Refresher, *stubMarkets, *State) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "coindeck.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	state := NewState(s)
	state.Load()

	reg, markets := newStubRegistry(t, coins)
	return NewRefresher(reg, state, "usd", 50, time.Minute), markets, state
}

func TestRunCyclePublishes(t *testing.T) {
	r, _, _ := testRefresher(t, marketPage())

	var got []models.MarketSnapshot
	r.AddListener(func(s models.MarketSnapshot) { got = append(got, s) })

	snap := r.RunCycle(context.Background())

	if snap.Stale {
		t.Error("successful cycle should not be stale")
	}
	if len(snap.Coins) != len(marketPage()) {
		t.Errorf("coins = %d, want %d", len(snap.Coins), len(marketPage()))
	}
	if snap.Generation != 1 {
		t.Errorf("generation = %d, want 1", snap.Generation)
	}
	if len(got) != 1 {
		t.Fatalf("listener calls = %d, want 1", len(got))
	}

	stored, ok := r.Snapshot()
	if !ok {
		t.Fatal("Snapshot should be available after a cycle")
	}
	if stored.Generation != snap.Generation {
		t.Error("stored snapshot differs from returned one")
	}
}

func TestSortPreferenceFlowsIntoFetch(t *testing.T) {
	r, markets, state := testRefresher(t, marketPage())

	r.RunCycle(context.Background())
	if markets.order() != "market_cap_desc" {
		t.Errorf("order = %q, want market_cap_desc", markets.order())
	}

	if err := state.SetSortOrder("volume_desc"); err != nil {
		t.Fatal(err)
	}
	r.RunCycle(context.Background())
	if markets.order() != "volume_desc" {
		t.Errorf("order after pref change = %q, want volume_desc", markets.order())
	}
}

func TestFailedCycleKeepsLastGood(t *testing.T) {
	r, markets, _ := testRefresher(t, marketPage())

	good := r.RunCycle(context.Background())
	if good.Stale {
		t.Fatal("first cycle should succeed")
	}

	markets.setErr(fmt.Errorf("upstream down"))
	bad := r.RunCycle(context.Background())

	if !bad.Stale {
		t.Error("failed cycle should publish a stale snapshot")
	}
	if bad.Notice == "" {
		t.Error("stale snapshot should carry a notice")
	}
	if len(bad.Coins) != len(good.Coins) {
		t.Errorf("stale snapshot lost the last good coins: %d vs %d",
			len(bad.Coins), len(good.Coins))
	}
	if bad.Generation <= good.Generation {
		t.Error("failed cycle should still advance the generation")
	}
}

func TestFirstCycleFailure(t *testing.T) {
	r, markets, _ := testRefresher(t, nil)
	markets.setErr(fmt.Errorf("upstream down"))

	snap := r.RunCycle(context.Background())
	if !snap.Stale {
		t.Error("expected stale snapshot")
	}
	if len(snap.Coins) != 0 {
		t.Error("no last-good data exists on first failure")
	}
}

func TestStaleGenerationIsDropped(t *testing.T) {
	r, _, _ := testRefresher(t, marketPage())

	newer := models.MarketSnapshot{Generation: 5, FetchedAt: time.Now()}
	older := models.MarketSnapshot{Generation: 3, FetchedAt: time.Now().Add(-time.Minute)}

	r.publish(5, newer)
	r.publish(3, older) // late arrival of an older cycle

	snap, ok := r.Snapshot()
	if !ok {
		t.Fatal("expected a snapshot")
	}
	if snap.Generation != 5 {
		t.Errorf("generation = %d, want 5 (older publish must be dropped)", snap.Generation)
	}
}

func TestStartRunsImmediateCycleAndStops(t *testing.T) {
	r, _, _ := testRefresher(t, marketPage())

	published := make(chan models.MarketSnapshot, 4)
	r.AddListener(func(s models.MarketSnapshot) { published <- s })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	select {
	case <-published:
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot published after Start")
	}

	// Kick forces a second cycle without waiting out the interval.
	r.Kick()
	select {
	case <-published:
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot published after Kick")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancellation")
	}
}
