package weather

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/Under-Bordet-AB/weatherserver/backend"
	"github.com/Under-Bordet-AB/weatherserver/backend/cities"
	"github.com/Under-Bordet-AB/weatherserver/httpcodec"
	"github.com/Under-Bordet-AB/weatherserver/werrors"
)

// ticksToReady is how many Work calls the handler simulates before its
// result is available, standing in for the latency a real upstream
// fetch would add, and exercising the connection state machine's
// BackendWorking tick-by-tick wait (spec.md §4.5).
const ticksToReady = 2

// Handler serves GET /weather?location=Name or ?lat=&lon=.
type Handler struct {
	fetcher Fetcher
	cache   *Cache

	lat, lon float64
	city     string

	ticks int
	buf   []byte
	err   werrors.Error
}

// NewHandlerFactory returns a backend.Factory bound to the given
// fetcher and cache, so a single cache can be shared across requests.
func NewHandlerFactory(fetcher Fetcher, cache *Cache) backend.Factory {
	return func() backend.Handler {
		return &Handler{fetcher: fetcher, cache: cache}
	}
}

func (h *Handler) Init(req *httpcodec.Request) werrors.Error {
	values, parseErr := url.ParseQuery(queryOf(req.URL))
	if parseErr != nil {
		return werrors.Wrap(werrors.BackendInitFail, parseErr)
	}

	if loc := values.Get("location"); loc != "" {
		c, ok := cities.Lookup(loc)
		if !ok {
			return werrors.Newf(werrors.BackendInitFail, "unknown location %q", loc)
		}
		h.city, h.lat, h.lon = c.Name, c.Lat, c.Lon
		return nil
	}

	latStr, lonStr := values.Get("lat"), values.Get("lon")
	if latStr == "" || lonStr == "" {
		return werrors.New(werrors.BackendInitFail)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return werrors.Wrap(werrors.BackendInitFail, err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return werrors.Wrap(werrors.BackendInitFail, err)
	}
	h.lat, h.lon = lat, lon
	return nil
}

func queryOf(target string) string {
	if _, q, found := strings.Cut(target, "?"); found {
		return q
	}
	return ""
}

func (h *Handler) Work() (bool, werrors.Error) {
	if cached, ok := h.cache.Get(h.lat, h.lon); ok {
		h.finish(cached)
		return true, nil
	}

	h.ticks++
	if h.ticks < ticksToReady {
		return false, nil
	}

	sample, err := h.fetcher.Fetch(h.lat, h.lon)
	if err != nil {
		h.err = werrors.Wrap(werrors.BackendWorkFail, err)
		return true, h.err
	}
	if h.city != "" {
		sample.City = h.city
	}

	h.cache.Put(h.lat, h.lon, sample)
	h.finish(sample)
	return true, nil
}

func (h *Handler) finish(sample Sample) {
	buf, err := json.Marshal(sample)
	if err != nil {
		h.err = werrors.Wrap(werrors.BackendWorkFail, err)
		return
	}
	h.buf = buf
}

func (h *Handler) GetBuffer() []byte   { return h.buf }
func (h *Handler) GetBufferSize() int  { return len(h.buf) }
func (h *Handler) ContentType() string { return "application/json" }
func (h *Handler) Dispose()            { h.buf = nil }
