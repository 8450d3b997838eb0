// Package alert renders notifications through a single presentation slot:
// an alert is visible for a fixed window, then transitions out, then frees
// the slot. A newer alert replaces whatever is visible, so only the latest
// event is ever on screen.
package alert

import (
	"sync"
	"time"
)

type Alert struct {
	ID      uint
	Title   string
	Message string
	Type    string
}

// Display is the rendering surface. Show makes the alert visible, Dismiss
// starts its exit transition, Remove frees the slot.
type Display interface {
	Show(a Alert)
	Dismiss(a Alert)
	Remove(a Alert)
}

// Sound plays the notification cue once per presented alert.
type Sound interface {
	Play()
}

const (
	// DefaultVisibleFor is how long an alert stays before auto-dismiss.
	DefaultVisibleFor = 5 * time.Second
	// DefaultRemoveDelay is the exit transition length.
	DefaultRemoveDelay = 300 * time.Millisecond
)

type Presenter struct {
	display Display
	sound   Sound

	visibleFor  time.Duration
	removeDelay time.Duration

	mu           sync.Mutex
	current      *Alert
	dismissTimer *time.Timer
	removeTimer  *time.Timer
	closed       bool
}

func NewPresenter(display Display, sound Sound) *Presenter {
	return &Presenter{
		display:     display,
		sound:       sound,
		visibleFor:  DefaultVisibleFor,
		removeDelay: DefaultRemoveDelay,
	}
}

// Present shows the alert, replacing any alert still in the slot, and
// schedules its auto-dismiss.
func (p *Presenter) Present(a Alert) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.stopTimersLocked()

	if p.current != nil {
		p.display.Remove(*p.current)
	}

	p.current = &a
	p.display.Show(a)
	p.sound.Play()

	p.dismissTimer = time.AfterFunc(p.visibleFor, func() {
		p.dismiss(a.ID)
	})
}

// dismiss starts the exit transition for the alert with the given id. A
// stale timer firing after replacement finds a different id and does
// nothing.
func (p *Presenter) dismiss(id uint) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.current == nil || p.current.ID != id {
		return
	}

	p.display.Dismiss(*p.current)

	p.removeTimer = time.AfterFunc(p.removeDelay, func() {
		p.remove(id)
	})
}

func (p *Presenter) remove(id uint) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.current == nil || p.current.ID != id {
		return
	}

	p.display.Remove(*p.current)
	p.current = nil
}

// Close tears the presenter down: pending timers are canceled as a unit and
// no callback fires afterwards.
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	p.stopTimersLocked()
	p.current = nil
}

func (p *Presenter) stopTimersLocked() {
	if p.dismissTimer != nil {
		p.dismissTimer.Stop()
		p.dismissTimer = nil
	}
	if p.removeTimer != nil {
		p.removeTimer.Stop()
		p.removeTimer = nil
	}
}
