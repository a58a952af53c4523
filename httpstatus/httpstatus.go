// Package httpstatus serves a minimal fasthttp status and metrics
// endpoint alongside a running engine: GET /status reports its
// lifecycle status and current state as JSON, GET /metrics proxies to
// a prometheus.Registerer's handler. It carries none of the donor's
// backpressure/queueing machinery for a general API surface — a
// two-route introspection server has no load-shedding story worth
// having.
package httpstatus

import (
	"encoding/json"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/fluxorio/iotfsm/fsm"
	"github.com/fluxorio/iotfsm/internal/corelog"
)

// Server is a fasthttp.Server exposing engine status and Prometheus
// metrics.
type Server struct {
	addr    string
	engine  *fsm.Engine
	server  *fasthttp.Server
	logger  corelog.Logger
	metrics fasthttp.RequestHandler
}

// New builds a Server bound to addr, reporting on engine and serving
// /metrics with metricsHandler, or, when that is nil, with the handler
// promhttp.Handler() returns.
func New(addr string, engine *fsm.Engine, metricsHandler fasthttp.RequestHandler, logger corelog.Logger) *Server {
	if logger == nil {
		logger = corelog.New()
	}
	if metricsHandler == nil {
		metricsHandler = fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	}
	s := &Server{addr: addr, engine: engine, logger: logger, metrics: metricsHandler}
	s.server = &fasthttp.Server{Handler: s.route}
	return s
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/status":
		s.handleStatus(ctx)
	case "/metrics":
		s.metrics(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

type statusResponse struct {
	EngineID string `json:"engine_id"`
	Status   string `json:"status"`
	Current  uint64 `json:"current_state,omitempty"`
}

func (s *Server) handleStatus(ctx *fasthttp.RequestCtx) {
	resp := statusResponse{
		EngineID: s.engine.ID(),
		Status:   s.engine.Status().String(),
	}
	if cur := s.engine.CurrentState(); !cur.IsZero() {
		resp.Current = cur.ID()
	}
	ctx.SetContentType("application/json")
	if err := json.NewEncoder(ctx).Encode(resp); err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	}
}

// ListenAndServe blocks serving HTTP on addr until the server is shut
// down or a fatal error occurs.
func (s *Server) ListenAndServe() error {
	if err := s.server.ListenAndServe(s.addr); err != nil {
		return fmt.Errorf("httpstatus: %w", err)
	}
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight
// requests to finish.
func (s *Server) Shutdown() error {
	return s.server.Shutdown()
}
