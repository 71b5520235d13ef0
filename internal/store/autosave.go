package store

import (
	"sync"
	"time"
)

// Autosaver debounces registry changes into saves: each notification
// resets a single owned timer, and the save callback runs only after a
// quiet period. Close cancels any pending save.
type Autosaver struct {
	mu     sync.Mutex
	timer  *time.Timer
	delay  time.Duration
	save   func()
	closed bool
}

// NewAutosaver creates an idle autosaver; nothing is scheduled until
// the first Notify
func NewAutosaver(delay time.Duration, save func()) *Autosaver {
	return &Autosaver{delay: delay, save: save}
}

// Notify schedules a save after the quiet period, replacing (not
// stacking) any previously scheduled one
func (a *Autosaver) Notify() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.save)
}

// Flush cancels any pending save and runs the save callback
// immediately
func (a *Autosaver) Flush() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	save := a.save
	a.mu.Unlock()
	save()
}

// Close cancels any pending save without running it
func (a *Autosaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.closed = true
}
