// Package static serves fixed on-disk assets (the index page, the
// optional mascot image) as single-tick backends, grounded on the
// teacher's httpserver static-file handler shape but trimmed to the
// one-shot read this server's assets need.
package static

import (
	"os"

	"github.com/Under-Bordet-AB/weatherserver/backend"
	"github.com/Under-Bordet-AB/weatherserver/httpcodec"
	"github.com/Under-Bordet-AB/weatherserver/werrors"
)

// Handler serves the bytes of a single file, read fresh on every
// request so the asset can be edited without restarting the server.
// When fallback is non-nil, an unreadable (or unconfigured) path falls
// back to serving it instead of failing Init.
type Handler struct {
	path        string
	contentType string
	fallback    []byte
	buf         []byte
}

// NewFactory returns a backend.Factory that serves path with the given
// content type. A missing or unreadable file fails Init.
func NewFactory(path, contentType string) backend.Factory {
	return func() backend.Handler {
		return &Handler{path: path, contentType: contentType}
	}
}

// NewFactoryWithFallback is like NewFactory, but serves fallback
// instead of failing when path is empty or can't be read.
func NewFactoryWithFallback(path, contentType string, fallback []byte) backend.Factory {
	return func() backend.Handler {
		return &Handler{path: path, contentType: contentType, fallback: fallback}
	}
}

func (h *Handler) Init(_ *httpcodec.Request) werrors.Error {
	buf, err := os.ReadFile(h.path)
	if err != nil {
		if h.fallback != nil {
			h.buf = h.fallback
			return nil
		}
		return werrors.Wrap(werrors.BackendInitFail, err)
	}
	h.buf = buf
	return nil
}

func (h *Handler) Work() (bool, werrors.Error) { return true, nil }

func (h *Handler) GetBuffer() []byte   { return h.buf }
func (h *Handler) GetBufferSize() int  { return len(h.buf) }
func (h *Handler) ContentType() string { return h.contentType }
func (h *Handler) Dispose()            { h.buf = nil }
