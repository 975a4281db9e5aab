package game

import "time"

// The host-inactivity timer is the only deferred task in the system. It
// is owned by the session, armed on host disconnect, and disarmed on
// host rejoin or session replacement. The callback never touches state
// directly: it posts a hostTimeout command carrying the generation it was
// armed with, so the run loop can discard firings from superseded timers.

func (e *Engine) armHostTimer() {
	e.stopHostTimer()
	e.timerGen++
	gen := e.timerGen
	e.timer = time.AfterFunc(e.cfg.HostInactivityTimeout, func() {
		e.Dispatch(hostTimeout{generation: gen})
	})
}

func (e *Engine) disarmHostTimer() {
	e.stopHostTimer()
	// Invalidate any firing already queued behind us.
	e.timerGen++
}

func (e *Engine) stopHostTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}
