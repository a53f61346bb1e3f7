package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"poolscout/internal/model"
	"poolscout/internal/score"
)

// PoolService is the slice of the discovery engine the HTTP surface
// exposes.
type PoolService interface {
	PoolsForToken(ctx context.Context, mint, preferredQuote solana.PublicKey) ([]score.PoolScore, error)
	Stats() model.IndexStats
	Refreshing() bool
}

// Server exposes the pool API, health and metrics over HTTP.
type Server struct {
	service PoolService
	logger  *zap.Logger
	http    *http.Server
}

// NewServer wires the routes. A nil gatherer serves the default
// Prometheus registry at /metrics.
func NewServer(addr string, service PoolService, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{service: service, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/pools/best", s.handleBestPool)
	mux.HandleFunc("/v1/pools", s.handlePools)
	mux.HandleFunc("/v1/stats", s.handleStats)
	mux.HandleFunc("/healthz", s.handleHealth)
	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	} else {
		mux.Handle("/metrics", promhttp.Handler())
	}

	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the route table, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start serves in the background until Stop.
func (s *Server) Start() {
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server failed", zap.Error(err))
		}
	}()
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.http.Shutdown(ctx)
}

func (s *Server) handleBestPool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	mint, ok := queryKey(w, r, "mint", true)
	if !ok {
		return
	}
	quote, ok := queryKey(w, r, "quote", false)
	if !ok {
		return
	}

	ranked, err := s.service.PoolsForToken(r.Context(), mint, quote)
	if err != nil {
		s.logger.Warn("best pool lookup failed", zap.String("mint", mint.String()), zap.Error(err))
		writeError(w, http.StatusBadGateway, "pool lookup failed")
		return
	}
	if len(ranked) == 0 {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, ranked[0])
}

func (s *Server) handlePools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	mint, ok := queryKey(w, r, "mint", true)
	if !ok {
		return
	}
	quote, ok := queryKey(w, r, "quote", false)
	if !ok {
		return
	}

	ranked, err := s.service.PoolsForToken(r.Context(), mint, quote)
	if err != nil {
		s.logger.Warn("pool lookup failed", zap.String("mint", mint.String()), zap.Error(err))
		writeError(w, http.StatusBadGateway, "pool lookup failed")
		return
	}
	if ranked == nil {
		ranked = []score.PoolScore{}
	}
	writeJSON(w, http.StatusOK, ranked)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	writeJSON(w, http.StatusOK, s.service.Stats())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.service.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"pools":        stats.TotalPools,
		"last_indexed": stats.LastIndexed,
		"refreshing":   s.service.Refreshing(),
	})
}

// queryKey parses a base58 public key query parameter. It writes the 400
// response itself and reports false when the request cannot proceed.
func queryKey(w http.ResponseWriter, r *http.Request, name string, required bool) (solana.PublicKey, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if required {
			writeError(w, http.StatusBadRequest, name+" parameter is required")
			return solana.PublicKey{}, false
		}
		return solana.PublicKey{}, true
	}
	key, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name+" parameter")
		return solana.PublicKey{}, false
	}
	return key, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
