// Package wserver wires the transport, scheduler, and backend
// packages into a running HTTP server: the connection state machine
// (spec.md §4.5) plus the top-level Server type that owns the
// scheduler's run loop, grounded on the shape of the teacher's
// httpserver.Server/handler split.
package wserver

import (
	"time"

	"github.com/Under-Bordet-AB/weatherserver/backend"
	"github.com/Under-Bordet-AB/weatherserver/backend/cities"
	"github.com/Under-Bordet-AB/weatherserver/backend/static"
	"github.com/Under-Bordet-AB/weatherserver/backend/weather"
	"github.com/Under-Bordet-AB/weatherserver/config"
	"github.com/Under-Bordet-AB/weatherserver/httpcodec"
	"github.com/Under-Bordet-AB/weatherserver/listener"
	"github.com/Under-Bordet-AB/weatherserver/monitor"
	"github.com/Under-Bordet-AB/weatherserver/scheduler"
	"github.com/Under-Bordet-AB/weatherserver/transport"
	"github.com/Under-Bordet-AB/weatherserver/werrors"
	"github.com/Under-Bordet-AB/weatherserver/wlog"
)

// Assets configures the on-disk paths the static routes serve.
type Assets struct {
	IndexHTMLPath string
	SurprisePath  string // optional; route is skipped if empty
}

// Server owns the scheduler, the listening socket, and the route
// table. Run blocks until every connection and the accept task have
// stopped, which in practice means until the process is killed or
// Shutdown is called.
type Server struct {
	cfg   *config.Config
	log   wlog.Logger
	mon   *monitor.Monitor
	sched *scheduler.Scheduler
	ln    *transport.Listener

	router *backend.Router
}

// New builds a Server from cfg, wiring the base routes (health check,
// cities catalogue, weather lookup, static assets) onto a fresh
// Router. It binds and listens on the configured address and port, but
// accepts no connections until Run is called.
func New(cfg *config.Config, assets Assets, log wlog.Logger, mon *monitor.Monitor) (*Server, werrors.Error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = wlog.Discard()
	}

	router := backend.NewRouter()
	registerRoutes(router, assets)

	ln, err := transport.NewListener(cfg.Address, cfg.Port, cfg.ListenBacklog)
	if err != nil {
		return nil, werrors.Wrap(werrors.ServerSocketListen, err)
	}

	return &Server{
		cfg:    cfg,
		log:    log,
		mon:    mon,
		sched:  scheduler.New(cfg.MaxTasks),
		ln:     ln,
		router: router,
	}, nil
}

// fallbackIndexHTML is served for /index.html when the configured
// asset path is empty or unreadable.
const fallbackIndexHTML = `<!DOCTYPE html>
<html><head><title>UB WeatherServer</title></head>
<body><h1>Weather server is running</h1></body></html>
`

func registerRoutes(router *backend.Router, assets Assets) {
	health := func() backend.Handler { return healthHandler{} }
	router.Register("/health", httpcodec.MethodGET, health)
	router.Register("/cities", httpcodec.MethodGET, cities.New)

	c := weather.NewCache()
	router.Register("/weather", httpcodec.MethodGET, weather.NewHandlerFactory(weather.DefaultFetcher{}, c))

	hello := func() backend.Handler { return helloHandler{} }
	router.Register("/", httpcodec.MethodGET, hello)

	idx := static.NewFactoryWithFallback(assets.IndexHTMLPath, "text/html; charset=utf-8", []byte(fallbackIndexHTML))
	router.Register("/index.html", httpcodec.MethodGET, idx)

	if assets.SurprisePath != "" {
		router.Register("/surprise", httpcodec.MethodGET, static.NewFactory(assets.SurprisePath, "image/png"))
	}
}

// helloHandler serves the fixed greeting at GET /, per the mandatory
// end-to-end scenario.
type helloHandler struct{}

const helloBody = "Hello from weather server!"

func (helloHandler) Init(*httpcodec.Request) werrors.Error { return nil }
func (helloHandler) Work() (bool, werrors.Error)           { return true, nil }
func (helloHandler) GetBuffer() []byte                     { return []byte(helloBody) }
func (helloHandler) GetBufferSize() int                    { return len(helloBody) }
func (helloHandler) ContentType() string                   { return "text/plain; charset=utf-8" }
func (helloHandler) Dispose()                              {}

// healthHandler is a trivial single-tick backend.Handler for liveness
// checks, small enough not to need its own package.
type healthHandler struct{}

func (healthHandler) Init(*httpcodec.Request) werrors.Error { return nil }
func (healthHandler) Work() (bool, werrors.Error)           { return true, nil }
func (healthHandler) GetBuffer() []byte                     { return []byte("OK") }
func (healthHandler) GetBufferSize() int                    { return 2 }
func (healthHandler) ContentType() string                   { return "text/plain; charset=utf-8" }
func (healthHandler) Dispose()                              {}

// Run starts the accept task and enters the scheduler's cooperative
// loop. It returns when every connection has finished and the accept
// task has been removed — in a live server, that happens only via
// Shutdown, since the accept task never removes itself on its own.
func (s *Server) Run() werrors.Error {
	idleTimeout := time.Duration(s.cfg.IdleTimeoutMs) * time.Millisecond

	accept := listener.New(s.ln, listener.DefaultMaxAcceptsPerTick, func(conn transport.Conn) {
		c := New(conn, Options{
			Router:          s.router,
			MaxRequestBytes: s.cfg.MaxRequestBytes,
			IdleTimeout:     idleTimeout,
			Log:             s.log,
			Monitor:         s.mon,
		})
		if err := s.sched.Add(c); err != nil {
			s.log.Warn("dropping accepted connection: scheduler at capacity", wlog.Fields{})
			_ = conn.Close()
		}
	}, s.log)

	if err := s.sched.Add(accept); err != nil {
		return err
	}

	s.log.Info("server listening", wlog.Fields{"port": s.ln.Port()})
	if err := s.sched.Run(); err != nil {
		return err
	}
	return nil
}

// Shutdown requests that Run's scheduler loop exit at its next tick
// boundary, tearing down every live connection and the accept task.
func (s *Server) Shutdown() {
	s.sched.Stop()
}

// Port reports the listening socket's bound port, useful when the
// server was configured with port 0 for tests.
func (s *Server) Port() int { return s.ln.Port() }
