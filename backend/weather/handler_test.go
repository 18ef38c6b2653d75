package weather_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Under-Bordet-AB/weatherserver/backend/weather"
	"github.com/Under-Bordet-AB/weatherserver/httpcodec"
)

func TestHandlerSpansMultipleTicksBeforeReady(t *testing.T) {
	factory := weather.NewHandlerFactory(weather.DefaultFetcher{}, weather.NewCache())
	h := factory()
	require.NoError(t, h.Init(&httpcodec.Request{URL: "/weather?lat=59.3&lon=18.0"}))

	done, err := h.Work()
	require.NoError(t, err)
	assert.False(t, done, "first tick must not complete the async backend call")

	done, err = h.Work()
	require.NoError(t, err)
	assert.True(t, done)

	var sample weather.Sample
	require.NoError(t, json.Unmarshal(h.GetBuffer(), &sample))
	assert.InDelta(t, 59.3, sample.Lat, 0.001)
}

func TestHandlerResolvesLocationByName(t *testing.T) {
	factory := weather.NewHandlerFactory(weather.DefaultFetcher{}, weather.NewCache())
	h := factory()
	require.NoError(t, h.Init(&httpcodec.Request{URL: "/weather?location=Stockholm"}))

	for {
		done, err := h.Work()
		require.NoError(t, err)
		if done {
			break
		}
	}

	var sample weather.Sample
	require.NoError(t, json.Unmarshal(h.GetBuffer(), &sample))
	assert.Equal(t, "Stockholm", sample.City)
}

func TestHandlerUnknownLocationFailsInit(t *testing.T) {
	factory := weather.NewHandlerFactory(weather.DefaultFetcher{}, weather.NewCache())
	h := factory()
	err := h.Init(&httpcodec.Request{URL: "/weather?location=Atlantis"})
	require.Error(t, err)
}

func TestCachedCoordinateSkipsFetchDelay(t *testing.T) {
	cache := weather.NewCache()
	factory := weather.NewHandlerFactory(weather.DefaultFetcher{}, cache)

	first := factory()
	require.NoError(t, first.Init(&httpcodec.Request{URL: "/weather?lat=10&lon=10"}))
	for {
		done, err := first.Work()
		require.NoError(t, err)
		if done {
			break
		}
	}

	second := factory()
	require.NoError(t, second.Init(&httpcodec.Request{URL: "/weather?lat=10&lon=10"}))
	done, err := second.Work()
	require.NoError(t, err)
	assert.True(t, done, "a cached coordinate must resolve on the first tick")
}
