// Package backend defines the pluggable async backend capability of
// spec.md §4.6: a request handler that may take more than one
// scheduler tick to produce its response, modeled after the teacher's
// httpserver handler/cache split rather than a single blocking call.
package backend

import (
	"github.com/Under-Bordet-AB/weatherserver/httpcodec"
	"github.com/Under-Bordet-AB/weatherserver/werrors"
)

// Handler is one in-flight backend invocation. A connection drives it
// tick by tick: Init once, then Work repeatedly until it reports done,
// then GetBuffer/GetBufferSize once to collect the result, then
// Dispose exactly once regardless of outcome. Work owns nothing the
// connection needs to free — buffer ownership transfers to the caller
// only via GetBuffer, after which the handler must not mutate it.
type Handler interface {
	// Init receives the parsed request and does any cheap synchronous
	// setup (parsing query parameters, validating arguments).
	Init(req *httpcodec.Request) werrors.Error

	// Work advances the backend by one tick. done=true means the
	// result is ready and GetBuffer may be called.
	Work() (done bool, err werrors.Error)

	// GetBuffer returns the finished response bytes. Only valid after
	// Work has reported done with no error.
	GetBuffer() []byte

	// GetBufferSize reports len(GetBuffer()) without requiring the
	// caller to materialize the buffer first, mirroring the teacher's
	// size-then-copy buffer idiom.
	GetBufferSize() int

	// ContentType reports the MIME type GetBuffer should be served as.
	ContentType() string

	// Dispose releases any resources the handler acquired. Always
	// called exactly once, win or lose.
	Dispose()
}

// Factory creates a fresh Handler for one request. Handlers are not
// reused across requests, so they may hold per-request state freely.
type Factory func() Handler
