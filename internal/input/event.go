// Package input turns device signals into lane events and hands them to the tick thread.
package input

import (
	"sync"
	"time"
)

// Event is a lane press or release from any device.
type Event struct {
	Lane    int
	Pressed bool
	// Devices that only report presses set Hold, a release is simulated after it
	Hold time.Duration
}

func Press(lane int) Event {
	return Event{Lane: lane, Pressed: true}
}

func Release(lane int) Event {
	return Event{Lane: lane}
}

// Mailbox is a bounded, lock protected queue between device goroutines
// and the tick thread. Events posted while it is full are dropped.
type Mailbox struct {
	mu      sync.Mutex
	events  []Event
	size    int
	dropped uint64
}

func NewMailbox(size int) *Mailbox {
	if size < 1 {
		size = 1
	}
	return &Mailbox{events: make([]Event, 0, size), size: size}
}

func (m *Mailbox) Post(ev Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) >= m.size {
		m.dropped++
		return false
	}
	m.events = append(m.events, ev)
	return true
}

// Drain appends every pending event to dst in arrival order and empties the mailbox.
func (m *Mailbox) Drain(dst []Event) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	dst = append(dst, m.events...)
	m.events = m.events[:0]
	return dst
}

func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func (m *Mailbox) Dropped() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}
