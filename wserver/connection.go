package wserver

import (
	"time"

	"github.com/google/uuid"

	"github.com/Under-Bordet-AB/weatherserver/backend"
	"github.com/Under-Bordet-AB/weatherserver/httpcodec"
	"github.com/Under-Bordet-AB/weatherserver/monitor"
	"github.com/Under-Bordet-AB/weatherserver/scheduler"
	"github.com/Under-Bordet-AB/weatherserver/transport"
	"github.com/Under-Bordet-AB/weatherserver/werrors"
	"github.com/Under-Bordet-AB/weatherserver/wlog"
)

// readChunk is how much buffer a single Reading tick attempts to pull
// off the socket.
const readChunk = 4096

// Connection drives one accepted socket through the state machine of
// spec.md §4.5. It implements scheduler.Task, Creator, and Cleaner, so
// the scheduler owns its entire lifecycle: one Run call advances it by
// exactly one tick, never blocking.
type Connection struct {
	id   string
	conn transport.Conn
	log  wlog.Logger
	mon  *monitor.Monitor

	router          *backend.Router
	maxRequestBytes int
	idleTimeout     time.Duration

	state State

	readBuf      []byte
	lastActivity time.Time

	req   *httpcodec.Request
	route string

	handler      backend.Handler
	backendTicks int

	resp       []byte
	writeDone  int
	statusCode int
}

// Options configures a new Connection. Router, MaxRequestBytes, and
// IdleTimeout are required; Log and Monitor default to no-ops.
type Options struct {
	Router          *backend.Router
	MaxRequestBytes int
	IdleTimeout     time.Duration
	Log             wlog.Logger
	Monitor         *monitor.Monitor
}

// New wraps conn in a Connection ready to be added to a Scheduler.
func New(conn transport.Conn, opts Options) *Connection {
	log := opts.Log
	if log == nil {
		log = wlog.Discard()
	}
	return &Connection{
		id:              uuid.NewString(),
		conn:            conn,
		log:             log,
		mon:             opts.Monitor,
		router:          opts.Router,
		maxRequestBytes: opts.MaxRequestBytes,
		idleTimeout:     opts.IdleTimeout,
		state:           StateReading,
	}
}

func (c *Connection) Create(_ *scheduler.Scheduler) {
	c.lastActivity = time.Now()
	if c.mon != nil {
		c.mon.ConnectionAccepted()
	}
}

func (c *Connection) Cleanup() {
	if c.handler != nil {
		c.handler.Dispose()
		c.handler = nil
	}
	_ = c.conn.Close()
	if c.mon != nil {
		c.mon.ConnectionClosed()
	}
}

func (c *Connection) Run(s *scheduler.Scheduler) {
	switch c.state {
	case StateReading:
		c.runReading(s)
	case StateProcessing:
		c.runProcessing()
	case StateBackendWorking:
		c.runBackendWorking()
	case StateSending:
		c.runSending(s)
	case StateDone:
		_ = s.RemoveCurrent()
	}
}

func (c *Connection) runReading(s *scheduler.Scheduler) {
	buf := make([]byte, readChunk)
	res := c.conn.Read(buf)

	switch {
	case res.Closed:
		c.state = StateDone
		_ = s.RemoveCurrent()
		return
	case res.Err != nil:
		c.log.Error("connection read failed", res.Err, wlog.Fields{"conn_id": c.id})
		c.state = StateDone
		_ = s.RemoveCurrent()
		return
	case res.WouldBlock:
		if time.Since(c.lastActivity) > c.idleTimeout {
			c.log.Warn("connection idle timeout", wlog.Fields{"conn_id": c.id})
			c.sendErrorAndClose(httpcodec.RequestTimeout(), s)
		}
		return
	}

	c.lastActivity = time.Now()
	c.readBuf = append(c.readBuf, buf[:res.N]...)

	if c.maxRequestBytes > 0 && len(c.readBuf) > c.maxRequestBytes {
		c.log.Error("request exceeded size limit", werrors.New(werrors.ConnRequestTooLarge), wlog.Fields{"conn_id": c.id})
		c.sendErrorAndClose(httpcodec.PayloadTooLarge(), s)
		return
	}

	if _, found := httpcodec.FindFrame(c.readBuf); !found {
		return
	}

	req, parseErr := httpcodec.Parse(c.readBuf)
	if parseErr != nil {
		c.log.Error("request parse failed", parseErr, wlog.Fields{"conn_id": c.id})
		c.sendErrorAndClose(httpcodec.BadRequest("Malformed HTTP request"), s)
		return
	}
	c.req = req
	c.state = StateProcessing
}

func (c *Connection) runProcessing() {
	factory, outcome, allowed := c.router.Dispatch(routePath(c.req.URL), c.req.Method)
	switch outcome {
	case backend.OutcomeNotFound:
		c.setResponse(httpcodec.NotFound())
		c.state = StateSending
		return
	case backend.OutcomeMethodNotAllowed:
		c.setResponse(httpcodec.MethodNotAllowed(allowed...))
		c.state = StateSending
		return
	}

	c.route = routePath(c.req.URL)
	c.handler = factory()
	if err := c.handler.Init(c.req); err != nil {
		c.log.Error("backend init failed", err, wlog.Fields{"conn_id": c.id, "route": c.route})
		c.setResponse(httpcodec.InternalServerError())
		c.handler.Dispose()
		c.handler = nil
		c.state = StateSending
		return
	}
	c.state = StateBackendWorking
}

func (c *Connection) runBackendWorking() {
	c.backendTicks++
	done, err := c.handler.Work()
	if err != nil {
		c.log.Error("backend work failed", err, wlog.Fields{"conn_id": c.id, "route": c.route})
		c.setResponse(httpcodec.InternalServerError())
		c.handler.Dispose()
		c.handler = nil
		c.state = StateSending
		return
	}
	if !done {
		return
	}

	if c.mon != nil {
		c.mon.BackendTicks(c.route, c.backendTicks)
	}
	c.setResponse(httpcodec.Binary(c.handler.ContentType(), c.handler.GetBuffer()))
	c.handler.Dispose()
	c.handler = nil
	c.state = StateSending
}

func (c *Connection) runSending(s *scheduler.Scheduler) {
	res := c.conn.Write(c.resp[c.writeDone:])
	if res.Err != nil {
		c.log.Error("connection write failed", res.Err, wlog.Fields{"conn_id": c.id})
		c.state = StateDone
		_ = s.RemoveCurrent()
		return
	}
	if res.WouldBlock {
		return
	}

	c.writeDone += res.N
	if c.writeDone < len(c.resp) {
		return
	}

	if c.mon != nil {
		c.mon.RequestServed(c.route, c.statusCode)
	}
	c.state = StateDone
	_ = s.RemoveCurrent()
}

func (c *Connection) setResponse(r *httpcodec.Response) {
	c.statusCode = r.Status
	c.resp = r.Bytes()
	c.writeDone = 0
}

func (c *Connection) sendErrorAndClose(r *httpcodec.Response, s *scheduler.Scheduler) {
	c.setResponse(r)
	c.state = StateSending
	c.runSending(s)
}

// routePath strips a query string from a request target, since the
// router matches on path only.
func routePath(target string) string {
	for i, ch := range target {
		if ch == '?' {
			return target[:i]
		}
	}
	return target
}
