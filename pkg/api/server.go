package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/soon-network/soonscan/internal/types"
	"github.com/soon-network/soonscan/pkg/explorer"
	"github.com/soon-network/soonscan/pkg/metrics"
	"github.com/soon-network/soonscan/pkg/network"
	"github.com/soon-network/soonscan/pkg/rpc"
)

// Networks is the network selection the API reads and switches.
type Networks interface {
	Active() network.Config
	Available() []network.Config
	SetNetworkByID(id string) bool
}

// Lookup answers direct block and transaction queries.
type Lookup interface {
	GetBlock(ctx context.Context, slot uint64) (types.Block, error)
	GetTransaction(ctx context.Context, hash string) (types.Transaction, error)
}

// Server exposes the explorer surfaces and network selection as JSON.
type Server struct {
	networks   Networks
	lookup     Lookup
	surfaces   *explorer.Surfaces
	log        *zap.SugaredLogger
	metrics    *metrics.Metrics // nil if metrics disabled
	httpServer *http.Server
}

type Option func(*Server)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Server) { s.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

type networkResponse struct {
	Active    network.Config   `json:"active"`
	Available []network.Config `json:"available"`
	Changed   bool             `json:"changed"`
}

type setNetworkRequest struct {
	ID string `json:"id"`
}

// transactionResponse adds the value rendered in SOON.
type transactionResponse struct {
	types.Transaction
	DisplayValue string `json:"displayValue"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer creates the API server listening on addr.
func NewServer(addr string, networks Networks, lookup Lookup, surfaces *explorer.Surfaces, opts ...Option) *Server {
	s := &Server{
		networks: networks,
		lookup:   lookup,
		surfaces: surfaces,
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/network", s.handleGetNetwork)
	mux.HandleFunc("PUT /api/network", s.handleSetNetwork)
	mux.HandleFunc("GET /api/blocks", s.handleBlocks)
	mux.HandleFunc("GET /api/blocks/{slot}", s.handleBlock)
	mux.HandleFunc("GET /api/transactions", s.handleTransactions)
	mux.HandleFunc("GET /api/transactions/{hash}", s.handleTransaction)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start begins serving. This is non-blocking.
// Returns a channel that receives an error if the server fails.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleGetNetwork(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, networkResponse{
		Active:    s.networks.Active(),
		Available: s.networks.Available(),
	})
}

// handleSetNetwork switches the active network. Unknown ids leave the active
// network unchanged and still answer 200 with changed=false.
func (s *Server) handleSetNetwork(w http.ResponseWriter, r *http.Request) {
	var req setNetworkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	changed := s.networks.SetNetworkByID(req.ID)
	active := s.networks.Active()
	if changed {
		s.metrics.IncNetworkSwitch(active.ID)
		s.log.Infow("active network switched", "network", active.ID)
	} else {
		s.log.Debugw("network switch ignored", "requested", req.ID, "active", active.ID)
	}
	s.writeJSON(w, http.StatusOK, networkResponse{
		Active:    active,
		Available: s.networks.Available(),
		Changed:   changed,
	})
}

func (s *Server) handleBlocks(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.surfaces.Blocks.Snapshot())
}

func (s *Server) handleTransactions(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.surfaces.Transactions.Snapshot())
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.surfaces.Dashboard.Snapshot())
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	slot, err := strconv.ParseUint(r.PathValue("slot"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid slot %q", r.PathValue("slot")))
		return
	}
	b, err := s.lookup.GetBlock(r.Context(), slot)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.lookup.GetTransaction(r.Context(), r.PathValue("hash"))
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, transactionResponse{
		Transaction:  tx,
		DisplayValue: tx.DisplayValue(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"network": s.networks.Active().ID,
	})
}

func (s *Server) writeLookupError(w http.ResponseWriter, err error) {
	var cfgErr *rpc.ConfigurationError
	switch {
	case explorer.IsNotFound(err):
		s.writeError(w, http.StatusNotFound, err)
	case errors.As(err, &cfgErr):
		s.writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.log.Warnw("lookup failed", "error", err)
		s.metrics.IncError(metrics.ErrTypeLookup)
		s.writeError(w, http.StatusBadGateway, err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debugw("failed to write response", "error", err)
	}
}
