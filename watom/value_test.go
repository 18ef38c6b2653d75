package watom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Under-Bordet-AB/weatherserver/watom"
)

func TestValueLoadBeforeStoreReturnsZero(t *testing.T) {
	v := watom.NewValue[string]()
	assert.Equal(t, "", v.Load())
}

func TestValueStoreLoad(t *testing.T) {
	v := watom.NewValue[int]()
	v.Store(42)
	assert.Equal(t, 42, v.Load())
}

func TestValueSwapReturnsPrevious(t *testing.T) {
	v := watom.NewValue[int]()
	v.Store(1)
	old := v.Swap(2)
	assert.Equal(t, 1, old)
	assert.Equal(t, 2, v.Load())
}

func TestCounterIncDec(t *testing.T) {
	var c watom.Counter
	c.Inc()
	c.Inc()
	c.Dec()
	assert.Equal(t, int64(1), c.Load())
}
