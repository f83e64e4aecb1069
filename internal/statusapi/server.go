// Package statusapi exposes a read-only observation surface while a
// provisioning pipeline runs: pipeline snapshot, recent events, health and
// Prometheus metrics.
package statusapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parrotctl/internal/pipeline"
	"parrotctl/pkg/types"
)

// Snapshotter is the view of a pipeline run the API serves.
type Snapshotter interface {
	Snapshot() types.PipelineSnapshot
}

// EventSource provides the events recorded so far.
type EventSource interface {
	Events() []pipeline.Event
}

// NewMux builds the router.
//
//	GET /healthz  -> 200 ok
//	GET /status   -> pipeline snapshot JSON
//	GET /events   -> recorded pipeline events JSON
//	GET /metrics  -> Prometheus exposition
func NewMux(snap Snapshotter, events EventSource) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))
	r.Use(MetricsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, snap.Snapshot())
	})
	r.Get("/events", func(w http.ResponseWriter, req *http.Request) {
		evs := events.Events()
		if evs == nil {
			evs = []pipeline.Event{}
		}
		writeJSON(w, evs)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	MountSwagger(r)
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// Server wraps the listening http.Server.
type Server struct {
	srv *http.Server
}

// Start listens on addr and serves in a background goroutine. It fails fast
// when the address cannot be bound instead of surfacing the error later.
func Start(addr string, snap Snapshotter, events EventSource) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{Addr: addr, Handler: NewMux(snap, events)}
	go func() { _ = srv.Serve(ln) }()
	return &Server{srv: srv}, nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
