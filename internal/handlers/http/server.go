// Package http exposes the monitor over HTTP: JSON snapshots of the recent
// history, chain status passthroughs and the real-time websocket stream.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gabapcia/txalert/internal/broadcast"
	"github.com/gabapcia/txalert/internal/infra/blockchain/mempool"
	"github.com/gabapcia/txalert/internal/monitor"
	"github.com/gabapcia/txalert/internal/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	defaultReadHeaderTimeout = 5 * time.Second
	defaultWriteTimeout      = 10 * time.Second
)

// Hub accepts real-time observers.
type Hub interface {
	Connect(ctx context.Context, o broadcast.Observer) (*broadcast.Subscription, error)
}

// EthStatusSource answers the account-chain status endpoint.
type EthStatusSource interface {
	ChainID(ctx context.Context) (uint64, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
}

// BtcStatusSource answers the UTXO-chain status endpoint.
type BtcStatusSource interface {
	TipHeight(ctx context.Context) (uint64, error)
	Info(ctx context.Context) (mempool.InfoResponse, error)
}

// Server serves the HTTP API.
type Server struct {
	server    *http.Server
	histories monitor.Histories
	hub       Hub
	upgrader  websocket.Upgrader
	cfg       config
}

type config struct {
	staticDir    string
	writeTimeout time.Duration

	eth    EthStatusSource
	rpcURL string

	btc        BtcStatusSource
	btcAPIBase string
}

// Option configures a Server.
type Option func(*config)

// WithStaticDir serves the files under dir at "/".
func WithStaticDir(dir string) Option {
	return func(c *config) {
		c.staticDir = dir
	}
}

// WithEthStatus enables GET /api/status, reporting rpcURL as the node.
func WithEthStatus(src EthStatusSource, rpcURL string) Option {
	return func(c *config) {
		c.eth = src
		c.rpcURL = rpcURL
	}
}

// WithBtcStatus enables GET /api/btc/status, reporting apiBase as the indexer.
func WithBtcStatus(src BtcStatusSource, apiBase string) Option {
	return func(c *config) {
		c.btc = src
		c.btcAPIBase = apiBase
	}
}

// WithWriteTimeout bounds each websocket write.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.writeTimeout = d
		}
	}
}

// NewServer returns a Server listening on port once started.
func NewServer(port int, histories monitor.Histories, hub Hub, opts ...Option) *Server {
	cfg := config{
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Server{
		histories: histories,
		hub:       hub,
		cfg:       cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	return s
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/alerts", s.handleAlerts)
	mux.HandleFunc("GET /api/txs", s.handleTxs)
	mux.HandleFunc("GET /api/btc/txs", s.handleBtcTxs)
	mux.HandleFunc("GET /ws/alerts", s.handleWebsocket)

	if s.cfg.eth != nil {
		mux.HandleFunc("GET /api/status", s.handleEthStatus)
	}
	if s.cfg.btc != nil {
		mux.HandleFunc("GET /api/btc/status", s.handleBtcStatus)
	}
	if s.cfg.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.cfg.staticDir)))
	}

	return cors(mux)
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Stop gracefully shuts the server down. Hijacked websocket connections are
// not tracked by the server and end with their subscriptions.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")

		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug(ctx, "failed to write response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}
