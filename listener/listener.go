// Package listener implements the bounded-batch connection-acquisition
// task of spec.md §4.4: a scheduler.Task that accepts at most N pending
// connections per tick, so one listening socket saturated with
// incoming connections can never starve every other task in the run
// loop.
package listener

import (
	"github.com/Under-Bordet-AB/weatherserver/scheduler"
	"github.com/Under-Bordet-AB/weatherserver/transport"
	"github.com/Under-Bordet-AB/weatherserver/wlog"
)

// DefaultMaxAcceptsPerTick bounds how many connections one tick will
// pull off the listening socket's backlog.
const DefaultMaxAcceptsPerTick = 16

// AcceptTask drains up to maxPerTick pending connections from a
// transport.Listener each tick, handing each accepted connection to
// onAccept. It never removes itself; its Cleanup closes the listener
// if the scheduler tears down.
type AcceptTask struct {
	ln         *transport.Listener
	maxPerTick int
	onAccept   func(transport.Conn)
	log        wlog.Logger
}

// New returns an AcceptTask bound to ln. maxPerTick <= 0 uses
// DefaultMaxAcceptsPerTick.
func New(ln *transport.Listener, maxPerTick int, onAccept func(transport.Conn), log wlog.Logger) *AcceptTask {
	if maxPerTick <= 0 {
		maxPerTick = DefaultMaxAcceptsPerTick
	}
	if log == nil {
		log = wlog.Discard()
	}
	return &AcceptTask{ln: ln, maxPerTick: maxPerTick, onAccept: onAccept, log: log}
}

func (a *AcceptTask) Run(_ *scheduler.Scheduler) {
	for i := 0; i < a.maxPerTick; i++ {
		conn, ok, err := a.ln.Accept()
		if err != nil {
			a.log.Error("accept failed", err, wlog.Fields{})
			return
		}
		if !ok {
			return
		}
		a.onAccept(conn)
	}
}

func (a *AcceptTask) Cleanup() {
	_ = a.ln.Close()
}
