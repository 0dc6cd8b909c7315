package clock

import (
	"errors"
	"fmt"
	"time"

	"github.com/Authcursed/Rhythm-Game/internal/game"
)

var (
	ErrAlreadyStarted = errors.New("clock already started")
	ErrNegativeDelay  = errors.New("start delay is negative")
)

// Device is the audio output the clock is derived from.
type Device interface {
	// Monotonic device time, arbitrary epoch
	Now() time.Duration
	// Begin playback exactly at device time at, it must not block
	ScheduleStart(at time.Duration) error
	// Length of the track, zero if unknown
	Duration() time.Duration
	// Whether the device is still producing the track
	Playing() bool
	Stop()
}

// Clock is the single time source of a play-through.
// Reads before Start return zero values rather than failing.
type Clock struct {
	device Device
	beat   time.Duration
	offset time.Duration // audio position of beat 0, including the global offset

	reference time.Duration // device time the track starts, lead-in included
	started   bool
	playing   bool
	finished  bool
	stopped   bool
}

// New creates a clock for a constant tempo track.
func New(device Device, bpm float64, offset time.Duration) (*Clock, error) {
	if nil == device {
		return nil, errors.New("clock needs a device")
	}
	if bpm <= 0 {
		return nil, fmt.Errorf("%w: %v bpm", game.ErrTempo, bpm)
	}
	return &Clock{
		device: device,
		beat:   game.BeatLength(bpm),
		offset: offset,
	}, nil
}

// Now is the current device time, zero until Start.
func (c *Clock) Now() time.Duration {
	if !c.started {
		return 0
	}
	return c.device.Now()
}

// Start arms playback delay from now. A clock can only be started once until Reset.
func (c *Clock) Start(delay time.Duration) error {
	if c.started {
		return ErrAlreadyStarted
	}
	if delay < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeDelay, delay)
	}
	reference := c.device.Now() + delay
	if err := c.device.ScheduleStart(reference); nil != err {
		return fmt.Errorf("unable to schedule playback: %w", err)
	}
	c.reference = reference
	c.started = true
	c.playing = true
	return nil
}

func (c *Clock) Playing() bool {
	return c.playing
}

func (c *Clock) Started() bool {
	return c.started
}

// Reference is the device time of the start of the track.
func (c *Clock) Reference() time.Duration {
	return c.reference
}

func (c *Clock) BeatLength() time.Duration {
	return c.beat
}

// Position is the time since the start of the track, negative during the lead-in.
func (c *Clock) Position() time.Duration {
	if !c.playing {
		return 0
	}
	return c.device.Now() - c.reference
}

func (c *Clock) PositionInBeats() float64 {
	if !c.playing {
		return 0
	}
	return float64(c.Position()-c.offset) / float64(c.beat)
}

// BeatToTime converts a chart beat to device time. The lead-in is already part of
// the reference, so it is not added again here.
func (c *Clock) BeatToTime(beat float64) time.Duration {
	return c.reference + c.offset + time.Duration(beat*float64(c.beat))
}

// Ended latches once the track position passes its duration or the device stops on its own.
func (c *Clock) Ended() bool {
	if c.finished {
		return true
	}
	if !c.playing {
		return false
	}
	pos := c.Position()
	length := c.device.Duration()
	if (length > 0 && pos >= length) || (pos >= 0 && !c.device.Playing()) {
		c.finished = true
		c.playing = false
	}
	return c.finished
}

// Stop halts playback, it is safe to call any number of times.
func (c *Clock) Stop() {
	c.playing = false
	if c.started && !c.stopped {
		c.stopped = true
		c.device.Stop()
	}
}

// Reset stops the clock and allows it to be started again.
func (c *Clock) Reset() {
	c.Stop()
	c.reference = 0
	c.started = false
	c.finished = false
	c.stopped = false
}
