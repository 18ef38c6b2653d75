// Package wlog is the structured leveled logger used across this
// module, wrapping logrus in the shape of nabbar-golib/logger.Logger
// (trimmed to the operations call sites here actually need).
package wlog

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// FuncLog returns a Logger, used for dependency injection the way
// nabbar-golib/logger.FuncLog is used throughout httpserver.
type FuncLog func() Logger

// Logger is the logging surface the packages of this module that log
// (listener, wserver, cmd/weatherserver) take as a dependency instead
// of importing logrus directly.
type Logger interface {
	SetLevel(lvl Level)
	GetLevel() Level
	SetFields(f Fields)
	GetFields() Fields

	Debug(message string, fields Fields)
	Info(message string, fields Fields)
	Warn(message string, fields Fields)
	Error(message string, err error, fields Fields)

	// With returns a child logger with additional default fields,
	// without mutating the receiver.
	With(fields Fields) Logger
}

type lgr struct {
	mtx    sync.RWMutex
	level  Level
	fields Fields
	out    *logrus.Logger
}

// New returns a Logger writing to w (os.Stderr if nil) at InfoLevel.
func New(w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	out := logrus.New()
	out.SetOutput(w)
	out.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	l := &lgr{
		level:  InfoLevel,
		fields: Fields{},
		out:    out,
	}
	l.out.SetLevel(InfoLevel.toLogrus())
	return l
}

func (l *lgr) SetLevel(lvl Level) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.level = lvl
	l.out.SetLevel(lvl.toLogrus())
}

func (l *lgr) GetLevel() Level {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.level
}

func (l *lgr) SetFields(f Fields) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.fields = f.Clone()
}

func (l *lgr) GetFields() Fields {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.fields.Clone()
}

func (l *lgr) entry(fields Fields) *logrus.Entry {
	l.mtx.RLock()
	base := l.fields
	l.mtx.RUnlock()

	merged := base.Clone()
	for k, v := range fields {
		merged[k] = v
	}
	return l.out.WithFields(logrus.Fields(merged))
}

func (l *lgr) Debug(message string, fields Fields) { l.entry(fields).Debug(message) }
func (l *lgr) Info(message string, fields Fields)  { l.entry(fields).Info(message) }
func (l *lgr) Warn(message string, fields Fields)  { l.entry(fields).Warn(message) }

func (l *lgr) Error(message string, err error, fields Fields) {
	e := l.entry(fields)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(message)
}

func (l *lgr) With(fields Fields) Logger {
	l.mtx.RLock()
	defer l.mtx.RUnlock()

	merged := l.fields.Clone()
	for k, v := range fields {
		merged[k] = v
	}

	return &lgr{
		level:  l.level,
		fields: merged,
		out:    l.out,
	}
}

// Discard returns a Logger that drops every message, for tests.
func Discard() Logger {
	return New(io.Discard)
}
