// Package httpops expone los endpoints operativos del shard: salud y métricas Prometheus.
package httpops

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Pinger lo cumple *sql.DB; para el resto, PingFunc.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type Server struct {
	shard  int
	ready  func() bool
	checks map[string]Pinger
	mux    *chi.Mux
	srv    *http.Server
	log    zerolog.Logger
}

// New: ready refleja la conexión al gateway; checks son dependencias que /healthz pinguea.
func New(shard int, addr string, ready func() bool, checks map[string]Pinger, log zerolog.Logger) *Server {
	s := &Server{
		shard:  shard,
		ready:  ready,
		checks: checks,
		mux:    chi.NewRouter(),
		log:    log.With().Str("component", "httpops").Logger(),
	}
	s.routes()
	// el server existe desde el arranque: Start y Shutdown corren en goroutines distintas
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.mux.Use(chimw.Recoverer)
	s.mux.Get("/healthz", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) Handler() http.Handler { return s.mux }

type health struct {
	Shard  int               `json:"shard"`
	Ready  bool              `json:"ready"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	out := health{Shard: s.shard, Ready: s.ready == nil || s.ready()}
	status := http.StatusOK
	if !out.Ready {
		status = http.StatusServiceUnavailable
	}
	for name, c := range s.checks {
		if out.Checks == nil {
			out.Checks = map[string]string{}
		}
		if err := c.PingContext(ctx); err != nil {
			out.Checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		out.Checks[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(out)
}

// Start bloquea hasta Shutdown. http.ErrServerClosed no es error.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("🌐 HTTP listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server")
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
