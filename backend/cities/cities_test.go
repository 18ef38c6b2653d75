package cities_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Under-Bordet-AB/weatherserver/backend/cities"
)

func TestHandlerServesCatalogueInOneTick(t *testing.T) {
	h := cities.New()
	require.NoError(t, h.Init(nil))

	done, err := h.Work()
	require.NoError(t, err)
	assert.True(t, done)

	var got []cities.City
	require.NoError(t, json.Unmarshal(h.GetBuffer(), &got))
	assert.NotEmpty(t, got)
	assert.Equal(t, h.GetBufferSize(), len(h.GetBuffer()))

	h.Dispose()
}

func TestLookupFoldsASCIIAndSwedishCase(t *testing.T) {
	want, ok := cities.Lookup("Stockholm")
	require.True(t, ok)

	got, ok := cities.Lookup("stockholm")
	require.True(t, ok)
	assert.Equal(t, want, got)

	got, ok = cities.Lookup("STOCKHOLM")
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok = cities.Lookup("nonexistent")
	assert.False(t, ok)
}
