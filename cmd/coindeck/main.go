// coindeck — self-hosted crypto market dashboard
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mkotas/coindeck/api"
	"github.com/mkotas/coindeck/internal/config"
	"github.com/mkotas/coindeck/internal/news"
	"github.com/mkotas/coindeck/internal/provider"
	"github.com/mkotas/coindeck/internal/providers"
	"github.com/mkotas/coindeck/internal/render"
	"github.com/mkotas/coindeck/internal/store"
	"github.com/mkotas/coindeck/internal/watch"
	"github.com/mkotas/coindeck/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "coindeck",
	Short: "coindeck — self-hosted crypto market dashboard",
	Long: `coindeck tracks a market page of cryptocurrencies from CoinGecko,
keeps a five-coin watchlist with persisted display preferences, and
serves a live dashboard with WebSocket push refresh.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load() // optional .env, same keys as the environment

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(statusCmd)
}

// app bundles the pieces every command needs: the settings store, the
// watchlist state, and the provider registry.
type app struct {
	store *store.Store
	state *watch.State
	reg   *provider.Registry
}

func newApp() (*app, error) {
	st, err := store.Open(filepath.Join(cfg.Data.Dir, "coindeck.db"))
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}

	state := watch.NewState(st)
	state.Load()

	reg := provider.NewRegistry()
	if err := providers.RegisterAllTo(reg, cfg.Market.APIBase); err != nil {
		st.Close()
		return nil, fmt.Errorf("register providers: %w", err)
	}

	return &app{store: st, state: state, reg: reg}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: close store: %v\n", err)
	}
}

// fetchPage runs one refresh cycle and returns its snapshot.
func (a *app) fetchPage(ctx context.Context) models.MarketSnapshot {
	r := watch.NewRefresher(a.reg, a.state, cfg.Market.Currency, cfg.Market.PerPage, cfg.Market.RefreshInterval)
	return r.RunCycle(ctx)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("coindeck %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (dashboard + API server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard and HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		refresher := watch.NewRefresher(a.reg, a.state, cfg.Market.Currency, cfg.Market.PerPage, cfg.Market.RefreshInterval)

		feeds := append([]news.Source(nil), news.DefaultSources...)
		for _, url := range cfg.News.Feeds {
			feeds = append(feeds, news.Source{Name: url, RSSURL: url})
		}
		newsAgg := news.NewWithSources(feeds)

		srv := api.NewServer(cfg, a.reg, a.state, refresher, newsAgg)

		noUI, _ := cmd.Flags().GetBool("no-ui")
		if noUI {
			srv.SetServeUI(false)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go refresher.Start(ctx)

		addr := cfg.API.Addr()
		fmt.Printf("🌐 coindeck serving on http://%s (refresh every %s)\n", addr, cfg.Market.RefreshInterval)
		return srv.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().Bool("no-ui", false, "serve the API only, without the embedded web UI")
}

// --- List Command ---

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the current market page",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		snap := a.fetchPage(cmd.Context())
		if len(snap.Coins) == 0 {
			return fmt.Errorf("no market data: %s", snap.Notice)
		}

		render.Table(os.Stdout, snap.Coins, a.state.Prefs())
		if snap.Stale {
			fmt.Printf("\n⚠️  %s\n", snap.Notice)
		}
		if snap.Global != nil {
			fmt.Println()
			render.Global(os.Stdout, *snap.Global)
		}
		return nil
	},
}

// --- Watch Command ---

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the selected coins in the terminal, refreshing each cycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if len(a.state.Selected()) == 0 {
			fmt.Println("Watchlist is empty. Add coins with: coindeck toggle <id>")
			return nil
		}

		once, _ := cmd.Flags().GetBool("once")

		refresher := watch.NewRefresher(a.reg, a.state, cfg.Market.Currency, cfg.Market.PerPage, cfg.Market.RefreshInterval)
		refresher.AddListener(func(snap models.MarketSnapshot) {
			fmt.Printf("\n── %s ──\n", snap.FetchedAt.Format("15:04:05"))
			render.Watchlist(os.Stdout, snap.Coins, a.state.Selected(), a.state.Prefs())
			if snap.Stale {
				fmt.Printf("⚠️  %s\n", snap.Notice)
			}
		})

		if once {
			refresher.RunCycle(cmd.Context())
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Watching %d coins, refresh every %s (Ctrl-C to stop)\n",
			len(a.state.Selected()), cfg.Market.RefreshInterval)
		refresher.Start(ctx)
		return nil
	},
}

func init() {
	watchCmd.Flags().Bool("once", false, "render a single refresh cycle and exit")
}

// --- Toggle Command ---

var toggleCmd = &cobra.Command{
	Use:   "toggle [coin-id]",
	Short: "Add a coin to the watchlist, or remove it if already present",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		id := strings.ToLower(strings.TrimSpace(args[0]))
		added, err := a.state.Toggle(id)
		if err != nil {
			return err
		}

		if added {
			fmt.Printf("✅ added %s (%d/%d)\n", id, len(a.state.Selected()), models.MaxSelection)
		} else {
			fmt.Printf("➖ removed %s (%d/%d)\n", id, len(a.state.Selected()), models.MaxSelection)
		}
		return nil
	},
}

// --- Remove Command ---

var removeCmd = &cobra.Command{
	Use:   "remove [coin-id]",
	Short: "Remove a coin from the watchlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		id := strings.ToLower(strings.TrimSpace(args[0]))
		if err := a.state.Remove(id); err != nil {
			return err
		}
		fmt.Printf("➖ removed %s (%d/%d)\n", id, len(a.state.Selected()), models.MaxSelection)
		return nil
	},
}

// --- Compare Command ---

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the five selected coins",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if !a.state.CompareReady() {
			return watch.ErrCompareRequiresFull
		}

		snap := a.fetchPage(cmd.Context())
		cmp, err := watch.BuildComparison(snap.Coins, a.state.Selected())
		if err != nil {
			return err
		}

		render.Comparison(os.Stdout, *cmp)
		return nil
	},
}

// --- Prefs Command ---

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or update display preferences",
	Long: `Show or update display preferences.

Examples:
  coindeck prefs
  coindeck prefs --show-24h=true
  coindeck prefs --sort=volume_desc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if cmd.Flags().Changed("show-24h") {
			show, _ := cmd.Flags().GetBool("show-24h")
			if err := a.state.SetShow24h(show); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("sort") {
			sort, _ := cmd.Flags().GetString("sort")
			if err := a.state.SetSortOrder(sort); err != nil {
				return err
			}
		}

		prefs := a.state.Prefs()
		fmt.Printf("show 24h change: %v\n", prefs.Show24h)
		fmt.Printf("sort order:      %s\n", prefs.SortOrder)
		return nil
	},
}

func init() {
	prefsCmd.Flags().Bool("show-24h", false, "show the 24h change column")
	prefsCmd.Flags().String("sort", "", "market page sort order (market_cap_desc, market_cap_asc, volume_desc, volume_asc, id_asc, id_desc)")
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Show recent crypto market headlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		coin, _ := cmd.Flags().GetString("coin")

		feeds := append([]news.Source(nil), news.DefaultSources...)
		for _, url := range cfg.News.Feeds {
			feeds = append(feeds, news.Source{Name: url, RSSURL: url})
		}
		agg := news.NewWithSources(feeds)

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		var items []models.NewsItem
		var err error
		if coin != "" {
			items, err = agg.CoinNews(ctx, strings.ToLower(coin), "", limit)
		} else {
			items, err = agg.MarketNews(ctx, limit)
		}
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No headlines available.")
			return nil
		}

		render.News(os.Stdout, items)
		return nil
	},
}

func init() {
	newsCmd.Flags().Int("limit", 15, "maximum number of headlines")
	newsCmd.Flags().String("coin", "", "only headlines mentioning this coin id")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  coindeck — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:    %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Currency:   %s\n", cfg.Market.Currency)
		fmt.Printf("    Page size:  %d\n", cfg.Market.PerPage)
		fmt.Printf("    Refresh:    %s\n", cfg.Market.RefreshInterval)
		fmt.Printf("    API server: %s\n", cfg.API.Addr())
		fmt.Printf("    Data dir:   %s\n", cfg.Data.Dir)
		fmt.Println()

		prefs := a.state.Prefs()
		fmt.Println("  Watchlist:")
		fmt.Printf("    Selected:   %d/%d %v\n", len(a.state.Selected()), models.MaxSelection, a.state.Selected())
		fmt.Printf("    Show 24h:   %v\n", prefs.Show24h)
		fmt.Printf("    Sort:       %s\n", prefs.SortOrder)
		fmt.Println()

		fmt.Println("  Providers:")
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		for _, info := range a.reg.List() {
			status := "✅ reachable"
			if p, err := a.reg.Get(info.Name); err != nil {
				status = "❌ " + err.Error()
			} else if err := p.Ping(ctx); err != nil {
				status = "❌ " + err.Error()
			}
			fmt.Printf("    %-12s %s\n", info.Name+":", status)
		}
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
