package wlog_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Under-Bordet-AB/weatherserver/wlog"
)

func TestLoggerWritesMessageAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := wlog.New(&buf)
	l.SetLevel(wlog.DebugLevel)

	l.Info("hello", wlog.Fields{"conn": 1})
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "conn=1")
}

func TestWithMergesFieldsWithoutMutatingParent(t *testing.T) {
	var buf bytes.Buffer
	base := wlog.New(&buf)
	base.SetFields(wlog.Fields{"server": "weather"})

	child := base.With(wlog.Fields{"conn": 7})
	child.Info("child event", nil)

	assert.Contains(t, buf.String(), "server=weather")
	assert.Contains(t, buf.String(), "conn=7")
	assert.Equal(t, wlog.Fields{"server": "weather"}, base.GetFields())
}

func TestErrorIncludesErrValue(t *testing.T) {
	var buf bytes.Buffer
	l := wlog.New(&buf)
	l.Error("failed", errors.New("boom"), nil)
	assert.Contains(t, buf.String(), "boom")
}
