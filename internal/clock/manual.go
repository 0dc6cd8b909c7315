package clock

import (
	"time"
)

// ManualDevice is a virtual audio device whose time only moves when told to.
// It drives replays and tests.
type ManualDevice struct {
	now       time.Duration
	start     time.Duration
	length    time.Duration
	scheduled bool
	stopped   bool
}

func NewManualDevice(length time.Duration) *ManualDevice {
	return &ManualDevice{length: length}
}

func (d *ManualDevice) Now() time.Duration {
	return d.now
}

func (d *ManualDevice) ScheduleStart(at time.Duration) error {
	d.start = at
	d.scheduled = true
	d.stopped = false
	return nil
}

func (d *ManualDevice) Duration() time.Duration {
	return d.length
}

func (d *ManualDevice) Playing() bool {
	if !d.scheduled || d.stopped {
		return false
	}
	return d.length <= 0 || d.now < d.start+d.length
}

func (d *ManualDevice) Stop() {
	d.stopped = true
}

func (d *ManualDevice) Stopped() bool {
	return d.stopped
}

// Start is the device time playback was scheduled for.
func (d *ManualDevice) Start() time.Duration {
	return d.start
}

func (d *ManualDevice) Advance(by time.Duration) {
	d.now += by
}

// Set moves the device time forward to t, it never goes backwards.
func (d *ManualDevice) Set(t time.Duration) {
	if t > d.now {
		d.now = t
	}
}
