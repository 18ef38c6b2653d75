// Package cities serves the static city catalogue backend of
// spec.md's supplemented feature set: a single-tick handler returning
// a fixed JSON list, grounded on the teacher's cache package for the
// read-mostly lookup-table shape.
package cities

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/Under-Bordet-AB/weatherserver/backend"
	"github.com/Under-Bordet-AB/weatherserver/httpcodec"
	"github.com/Under-Bordet-AB/weatherserver/werrors"
)

// City is one entry in the catalogue.
type City struct {
	Name string  `json:"name"`
	Lat  float64 `json:"latitude"`
	Lon  float64 `json:"longitude"`
}

// catalogue is the fixed set of cities this server knows about. A real
// deployment would load this from configuration; spec.md scopes
// acquisition out, so a baked-in table stands in for it.
var catalogue = []City{
	{Name: "Stockholm", Lat: 59.3293, Lon: 18.0686},
	{Name: "Gothenburg", Lat: 57.7089, Lon: 11.9746},
	{Name: "Malmo", Lat: 55.6050, Lon: 13.0038},
	{Name: "Uppsala", Lat: 59.8586, Lon: 17.6389},
	{Name: "Umea", Lat: 63.8258, Lon: 20.2630},
}

func init() {
	sort.Slice(catalogue, func(i, j int) bool { return catalogue[i].Name < catalogue[j].Name })
}

// Lookup finds a city by name, folding ASCII case and the common
// Swedish letters (Å, Ä, Ö) to lowercase before comparing, so
// "stockholm", "STOCKHOLM", and "Stockholm" all resolve alike.
func Lookup(name string) (City, bool) {
	folded := foldName(name)
	for _, c := range catalogue {
		if foldName(c.Name) == folded {
			return c, true
		}
	}
	return City{}, false
}

// foldName lowercases ASCII letters and the Swedish Å/Ä/Ö (and their
// precomposed lowercase forms stay unchanged), so lookups are
// case-insensitive per spec.
func foldName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch r {
		case 'Å':
			r = 'å'
		case 'Ä':
			r = 'ä'
		case 'Ö':
			r = 'ö'
		default:
			if r >= 'A' && r <= 'Z' {
				r += 'a' - 'A'
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Handler serves GET /cities. It never blocks and never spans more
// than one tick — Init does all the work, Work reports done
// immediately — since the catalogue is already resident in memory.
type Handler struct {
	buf []byte
}

// New is a backend.Factory for Handler.
func New() backend.Handler { return &Handler{} }

func (h *Handler) Init(_ *httpcodec.Request) werrors.Error {
	buf, err := json.Marshal(catalogue)
	if err != nil {
		return werrors.Wrap(werrors.BackendInitFail, err)
	}
	h.buf = buf
	return nil
}

func (h *Handler) Work() (bool, werrors.Error) { return true, nil }

func (h *Handler) GetBuffer() []byte   { return h.buf }
func (h *Handler) GetBufferSize() int  { return len(h.buf) }
func (h *Handler) ContentType() string { return "application/json" }
func (h *Handler) Dispose()            { h.buf = nil }
