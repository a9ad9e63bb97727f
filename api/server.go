// Package api provides the HTTP REST API server for coindeck.
//
// It exposes endpoints for market data, the watchlist, display
// preferences, comparison, news, and WebSocket streaming, and serves
// the embedded web UI.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mkotas/coindeck/internal/config"
	"github.com/mkotas/coindeck/internal/news"
	"github.com/mkotas/coindeck/internal/provider"
	"github.com/mkotas/coindeck/internal/watch"
	"github.com/mkotas/coindeck/pkg/models"
	"github.com/mkotas/coindeck/web"
)

// Server is the HTTP API server.
type Server struct {
	router    chi.Router
	cfg       *config.Config
	reg       *provider.Registry
	state     *watch.State
	refresher *watch.Refresher
	news      *news.News
	wsHub     *WSHub
	serveUI   bool // when true, serve the embedded web UI at /
	startedAt time.Time
}

// NewServer creates a configured API server with all routes and middleware.
// Published snapshots are broadcast to WebSocket clients automatically.
func NewServer(cfg *config.Config, reg *provider.Registry, state *watch.State, refresher *watch.Refresher, newsAgg *news.News) *Server {
	srv := &Server{
		cfg:       cfg,
		reg:       reg,
		state:     state,
		refresher: refresher,
		news:      newsAgg,
		wsHub:     NewWSHub(),
		serveUI:   true,
		startedAt: time.Now(),
	}

	refresher.AddListener(func(snap models.MarketSnapshot) {
		srv.wsHub.Broadcast(WSMessage{Type: "snapshot", Data: snap})
	})

	srv.router = srv.buildRouter()
	return srv
}

// SetServeUI controls whether the embedded web UI is served.
// Must be called before ListenAndServe.
func (s *Server) SetServeUI(enabled bool) {
	s.serveUI = enabled
	s.router = s.buildRouter()
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.wsHub.Run()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Market data
		r.Get("/coins", s.handleCoins)
		r.Get("/global", s.handleGlobal)
		r.Get("/trending", s.handleTrending)

		// Watchlist
		r.Get("/watchlist", s.handleWatchlist)
		r.Post("/watchlist/toggle", s.handleToggle)
		r.Delete("/watchlist/{id}", s.handleRemove)

		// Preferences
		r.Put("/prefs", s.handlePrefs)

		// Comparison
		r.Get("/compare", s.handleCompare)

		// News
		r.Get("/news", s.handleNews)
		r.Get("/news/{id}", s.handleCoinNews)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	// Serve embedded web UI (SPA with fallback to index.html)
	if s.serveUI {
		s.mountSPA(r, web.DistFS())
	}

	return r
}

// mountSPA serves the embedded static export as a single-page app.
// Unknown paths fall back to index.html for client-side routing.
func (s *Server) mountSPA(r chi.Router, distFS fs.FS) {
	fileServer := http.FileServer(http.FS(distFS))

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		rPath := strings.TrimPrefix(r.URL.Path, "/")
		if rPath == "" {
			rPath = "index.html"
		}

		f, err := distFS.Open(rPath)
		if err != nil {
			serveIndexHTML(w, r, distFS)
			return
		}
		f.Close()

		if rPath == "index.html" || strings.HasSuffix(rPath, ".html") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}

		fileServer.ServeHTTP(w, r)
	})
}

// serveIndexHTML reads and serves the embedded index.html for SPA fallback.
func serveIndexHTML(w http.ResponseWriter, r *http.Request, distFS fs.FS) {
	data, err := fs.ReadFile(distFS, "index.html")
	if err != nil {
		http.Error(w, "web UI not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ToggleRequest is the body for POST /api/v1/watchlist/toggle.
type ToggleRequest struct {
	ID string `json:"id"`
}

// ToggleResponse reports the outcome of a toggle.
type ToggleResponse struct {
	ID       string   `json:"id"`
	Added    bool     `json:"added"`
	Selected []string `json:"selected"`
}

// PrefsRequest is the body for PUT /api/v1/prefs. Absent fields are
// left unchanged.
type PrefsRequest struct {
	Show24h   *bool   `json:"show24h,omitempty"`
	SortOrder *string `json:"sortOrder,omitempty"`
}

// WatchlistResponse is the payload for GET /api/v1/watchlist and the
// "watchlist" WebSocket event.
type WatchlistResponse struct {
	Selected     []string           `json:"selected"`
	Prefs        models.Preferences `json:"prefs"`
	CompareReady bool               `json:"compareReady"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"status":     "ok",
		"service":    "coindeck",
		"uptime":     time.Since(s.startedAt).Round(time.Second).String(),
		"ws_clients": s.wsHub.ClientCount(),
	}
	if snap, ok := s.refresher.Snapshot(); ok {
		data["generation"] = snap.Generation
		data["fetched_at"] = snap.FetchedAt
		data["stale"] = snap.Stale
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

// handleCoins returns the current market snapshot. The first request
// after startup runs a fetch cycle synchronously.
func (s *Server) handleCoins(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.refresher.Snapshot()
	if !ok {
		snap = s.refresher.RunCycle(r.Context())
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: snap})
}

func (s *Server) handleGlobal(w http.ResponseWriter, r *http.Request) {
	result, err := s.reg.Fetch(r.Context(), provider.ModelCryptoGlobal, provider.QueryParams{})
	if err != nil {
		writeError(w, http.StatusBadGateway, "global stats unavailable: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result.Data})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	result, err := s.reg.Fetch(r.Context(), provider.ModelCryptoTrending, provider.QueryParams{})
	if err != nil {
		writeError(w, http.StatusBadGateway, "trending unavailable: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result.Data})
}

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.watchlistPayload()})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	added, err := s.state.Toggle(req.ID)
	if err != nil {
		if errors.Is(err, watch.ErrSelectionFull) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.broadcastWatchlist()
	s.refresher.Kick()
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: ToggleResponse{
		ID:       req.ID,
		Added:    added,
		Selected: s.state.Selected(),
	}})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.state.Remove(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.broadcastWatchlist()
	s.refresher.Kick()
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.watchlistPayload()})
}

func (s *Server) handlePrefs(w http.ResponseWriter, r *http.Request) {
	var req PrefsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.SortOrder != nil {
		if err := s.state.SetSortOrder(*req.SortOrder); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Show24h != nil {
		if err := s.state.SetShow24h(*req.Show24h); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	s.broadcastWatchlist()
	// The page order comes from upstream, so preference changes refetch.
	s.refresher.Kick()
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.state.Prefs()})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if !s.state.CompareReady() {
		writeError(w, http.StatusConflict, watch.ErrCompareRequiresFull.Error())
		return
	}

	snap, ok := s.refresher.Snapshot()
	if !ok {
		snap = s.refresher.RunCycle(r.Context())
	}

	cmp, err := watch.BuildComparison(snap.Coins, s.state.Selected())
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: cmp})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	items, err := s.news.MarketNews(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusBadGateway, "news unavailable: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: items})
}

func (s *Server) handleCoinNews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit := queryInt(r, "limit", 10)

	// The symbol widens the keyword match when the coin is on the page.
	symbol := ""
	if snap, ok := s.refresher.Snapshot(); ok {
		for _, c := range snap.Coins {
			if c.ID == id {
				symbol = c.Symbol
				break
			}
		}
	}

	items, err := s.news.CoinNews(r.Context(), id, symbol, limit)
	if err != nil {
		writeError(w, http.StatusBadGateway, "news unavailable: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: items})
}

// ============================================================
// Helpers
// ============================================================

func (s *Server) watchlistPayload() WatchlistResponse {
	return WatchlistResponse{
		Selected:     s.state.Selected(),
		Prefs:        s.state.Prefs(),
		CompareReady: s.state.CompareReady(),
	}
}

func (s *Server) broadcastWatchlist() {
	s.wsHub.Broadcast(WSMessage{Type: "watchlist", Data: s.watchlistPayload()})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// ============================================================
// WebSocket hub
// ============================================================

// WSMessage is the JSON envelope pushed over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// WSHub manages WebSocket connections and message broadcasting.
type WSHub struct {
	mu         sync.RWMutex
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub  *WSHub
	send chan WSMessage
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
	}
}

// Run processes hub events. Call in a goroutine.
func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow client; disconnect
					h.mu.RUnlock()
					h.mu.Lock()
					delete(h.clients, client)
					close(client.send)
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends a message to all connected WebSocket clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		// Drop message if broadcast channel is full
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub.
func (h *WSHub) Register(client *WSClient) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *WSHub) Unregister(client *WSClient) {
	h.unregister <- client
}
