// Package weather serves the weather-lookup backend: a multi-tick
// async handler (spec.md §4.6) that fans out to a pluggable Fetcher,
// caches results, and never blocks the scheduler while "waiting" on
// the fetch.
package weather

import (
	"fmt"
	"math"
)

// Sample is one weather reading for a location.
type Sample struct {
	City        string  `json:"city,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	TempCelsius float64 `json:"temp_celsius"`
	Condition   string  `json:"condition"`
}

// Fetcher retrieves a weather sample for a coordinate. Real
// deployments would back this with an HTTP client to an upstream
// provider; spec.md scopes that acquisition out, so DefaultFetcher
// below stands in with a deterministic formula instead of randomness,
// keeping results reproducible for tests.
type Fetcher interface {
	Fetch(lat, lon float64) (Sample, error)
}

// DefaultFetcher computes a plausible, deterministic reading from the
// coordinate alone, so the backend has something real to cache and
// serve without depending on network access.
type DefaultFetcher struct{}

var conditions = []string{"clear", "cloudy", "rain", "snow", "windy"}

func (DefaultFetcher) Fetch(lat, lon float64) (Sample, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Sample{}, fmt.Errorf("coordinate out of range: lat=%g lon=%g", lat, lon)
	}

	temp := 15 + 20*math.Sin((lat+lon)*math.Pi/180)
	idx := int(math.Abs(lat*7+lon*13)) % len(conditions)

	return Sample{
		Lat:         lat,
		Lon:         lon,
		TempCelsius: math.Round(temp*10) / 10,
		Condition:   conditions[idx],
	}, nil
}
