package wserver_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Under-Bordet-AB/weatherserver/backend"
	"github.com/Under-Bordet-AB/weatherserver/httpcodec"
	"github.com/Under-Bordet-AB/weatherserver/scheduler"
	"github.com/Under-Bordet-AB/weatherserver/transport"
	"github.com/Under-Bordet-AB/weatherserver/werrors"
	"github.com/Under-Bordet-AB/weatherserver/wserver"
)

// fakeConn is an in-memory transport.Conn for driving the connection
// state machine deterministically, without a real socket.
type fakeConn struct {
	toRead     []byte
	closeAfter bool // report Closed once toRead is drained, instead of WouldBlock forever
	written    []byte
	closed     bool
}

func (f *fakeConn) Read(buf []byte) transport.ReadResult {
	if len(f.toRead) == 0 {
		if f.closeAfter {
			return transport.ReadResult{Closed: true}
		}
		return transport.ReadResult{WouldBlock: true}
	}
	n := copy(buf, f.toRead)
	f.toRead = f.toRead[n:]
	return transport.ReadResult{N: n}
}

func (f *fakeConn) Write(buf []byte) transport.WriteResult {
	f.written = append(f.written, buf...)
	return transport.WriteResult{N: len(buf)}
}

func (f *fakeConn) Close() error       { f.closed = true; return nil }
func (f *fakeConn) RemoteAddr() string { return "fake" }

type staticOKHandler struct{}

func (staticOKHandler) Init(*httpcodec.Request) werrors.Error { return nil }
func (staticOKHandler) Work() (bool, werrors.Error)           { return true, nil }
func (staticOKHandler) GetBuffer() []byte                     { return []byte("ok") }
func (staticOKHandler) GetBufferSize() int                    { return 2 }
func (staticOKHandler) ContentType() string                   { return "text/plain" }
func (staticOKHandler) Dispose()                              {}

func TestConnectionServesHealthCheck(t *testing.T) {
	router := backend.NewRouter()
	router.Register("/health", httpcodec.MethodGET, func() backend.Handler { return staticOKHandler{} })

	s := scheduler.New(8)
	fc := &fakeConn{toRead: []byte("GET /health HTTP/1.1\r\nHost: x\r\n\r\n")}
	conn := wserver.New(fc, wserver.Options{Router: router, MaxRequestBytes: 8192, IdleTimeout: time.Second})

	require.NoError(t, s.Add(conn))
	require.NoError(t, s.Run())

	assert.Contains(t, string(fc.written), "HTTP/1.1 200 OK")
	assert.True(t, fc.closed)
}

func TestConnectionReturnsNotFoundForUnknownPath(t *testing.T) {
	router := backend.NewRouter()

	s := scheduler.New(8)
	fc := &fakeConn{toRead: []byte("GET /nope HTTP/1.1\r\n\r\n")}
	conn := wserver.New(fc, wserver.Options{Router: router, MaxRequestBytes: 8192, IdleTimeout: time.Second})

	require.NoError(t, s.Add(conn))
	require.NoError(t, s.Run())

	assert.Contains(t, string(fc.written), "HTTP/1.1 404 Not Found")
}

func TestConnectionReturnsMethodNotAllowed(t *testing.T) {
	router := backend.NewRouter()
	router.Register("/health", httpcodec.MethodGET, func() backend.Handler { return staticOKHandler{} })

	s := scheduler.New(8)
	fc := &fakeConn{toRead: []byte("POST /health HTTP/1.1\r\n\r\n")}
	conn := wserver.New(fc, wserver.Options{Router: router, MaxRequestBytes: 8192, IdleTimeout: time.Second})

	require.NoError(t, s.Add(conn))
	require.NoError(t, s.Run())

	assert.Contains(t, string(fc.written), "HTTP/1.1 405 Method Not Allowed")
	assert.Contains(t, string(fc.written), "Allow: GET")
}

func TestConnectionRejectsOversizedRequest(t *testing.T) {
	router := backend.NewRouter()

	s := scheduler.New(8)
	fc := &fakeConn{toRead: []byte("GET /" + strings.Repeat("a", 100) + " HTTP/1.1\r\n\r\n")}
	conn := wserver.New(fc, wserver.Options{Router: router, MaxRequestBytes: 10, IdleTimeout: time.Second})

	require.NoError(t, s.Add(conn))
	require.NoError(t, s.Run())

	assert.Contains(t, string(fc.written), "HTTP/1.1 413 Payload Too Large")
}

func TestConnectionClosesOnPeerDisconnectBeforeFullRequest(t *testing.T) {
	router := backend.NewRouter()

	s := scheduler.New(8)
	fc := &fakeConn{toRead: []byte("GET / HTTP"), closeAfter: true}
	conn := wserver.New(fc, wserver.Options{Router: router, MaxRequestBytes: 8192, IdleTimeout: time.Second})

	require.NoError(t, s.Add(conn))
	require.NoError(t, s.Run())

	assert.True(t, fc.closed)
	assert.Empty(t, fc.written, "a connection that disconnects mid-request gets no response")
}

func TestConnectionReturnsFixedBodyForMalformedRequest(t *testing.T) {
	router := backend.NewRouter()

	s := scheduler.New(8)
	fc := &fakeConn{toRead: []byte("GET /\r\n\r\n")}
	conn := wserver.New(fc, wserver.Options{Router: router, MaxRequestBytes: 8192, IdleTimeout: time.Second})

	require.NoError(t, s.Add(conn))
	require.NoError(t, s.Run())

	assert.Contains(t, string(fc.written), "HTTP/1.1 400 Bad Request")
	assert.Contains(t, string(fc.written), "Malformed HTTP request")
}

func TestConnectionSendsTimeoutAfterIdlePeriod(t *testing.T) {
	router := backend.NewRouter()

	s := scheduler.New(8)
	fc := &fakeConn{} // never sends anything; every Read reports WouldBlock
	conn := wserver.New(fc, wserver.Options{Router: router, MaxRequestBytes: 8192, IdleTimeout: 5 * time.Millisecond})

	require.NoError(t, s.Add(conn))
	require.NoError(t, s.Run()) // busy-ticks until the idle timeout fires, then drains

	assert.Contains(t, string(fc.written), "HTTP/1.1 408 Request Timeout")
}
