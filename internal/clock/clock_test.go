package clock

import (
	"errors"
	"testing"
	"time"
)

func newClock(t *testing.T, length time.Duration) (*Clock, *ManualDevice) {
	device := NewManualDevice(length)
	device.Set(10 * time.Second)
	c, err := New(device, 120, 0)
	if nil != err {
		t.Fatalf("unable to create clock: %v", err)
	}
	return c, device
}

func TestReadsBeforeStart(t *testing.T) {
	c, _ := newClock(t, time.Minute)
	if c.Now() != 0 || c.Position() != 0 || c.PositionInBeats() != 0 {
		t.Fatalf("expected zero reads before start, got now=%v pos=%v beats=%v", c.Now(), c.Position(), c.PositionInBeats())
	}
	if c.Playing() || c.Ended() {
		t.Fatal("expected a fresh clock to be neither playing nor ended")
	}
}

func TestStart(t *testing.T) {
	c, device := newClock(t, time.Minute)
	if err := c.Start(time.Second); nil != err {
		t.Fatalf("unexpected start error: %v", err)
	}
	if c.Reference() != 11*time.Second || device.Start() != 11*time.Second {
		t.Fatalf("expected reference 11s, got clock=%v device=%v", c.Reference(), device.Start())
	}
	if c.Position() != -time.Second {
		t.Fatalf("expected lead-in position -1s, got %v", c.Position())
	}

	device.Advance(2 * time.Second)
	if c.Position() != time.Second {
		t.Fatalf("expected position 1s, got %v", c.Position())
	}
	if beats := c.PositionInBeats(); beats != 2 {
		t.Fatalf("expected 2 beats at 120bpm, got %v", beats)
	}

	if err := c.Start(time.Second); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
	if c.Reference() != 11*time.Second {
		t.Fatal("second start must not move the reference")
	}
}

func TestNegativeDelay(t *testing.T) {
	c, _ := newClock(t, time.Minute)
	if err := c.Start(-time.Second); !errors.Is(err, ErrNegativeDelay) {
		t.Fatalf("expected ErrNegativeDelay, got %v", err)
	}
	if c.Started() {
		t.Fatal("clock must not start on error")
	}
}

func TestBeatToTime(t *testing.T) {
	device := NewManualDevice(time.Minute)
	c, err := New(device, 120, 300*time.Millisecond)
	if nil != err {
		t.Fatal(err)
	}
	if err := c.Start(time.Second); nil != err {
		t.Fatal(err)
	}
	// The lead-in is counted once, through the reference.
	if got := c.BeatToTime(4); got != 3300*time.Millisecond {
		t.Fatalf("expected beat 4 at 3.3s, got %v", got)
	}
	device.Set(c.BeatToTime(4))
	if beats := c.PositionInBeats(); beats != 4 {
		t.Fatalf("expected position 4 beats at the beat time, got %v", beats)
	}
}

func TestEnded(t *testing.T) {
	c, device := newClock(t, 5*time.Second)
	if err := c.Start(time.Second); nil != err {
		t.Fatal(err)
	}
	device.Advance(5 * time.Second)
	if c.Ended() {
		t.Fatal("ended one second before the end of the track")
	}
	device.Advance(time.Second)
	if !c.Ended() {
		t.Fatal("expected the clock to end at the track duration")
	}
	if c.Playing() {
		t.Fatal("expected an ended clock to stop playing")
	}
	// latched
	if !c.Ended() {
		t.Fatal("ended must stay latched")
	}
}

func TestEndedOnDeviceStop(t *testing.T) {
	c, device := newClock(t, time.Minute)
	if err := c.Start(0); nil != err {
		t.Fatal(err)
	}
	device.Advance(time.Second)
	device.Stop()
	if !c.Ended() {
		t.Fatal("expected the clock to end when the device stops")
	}
}

func TestStopAndReset(t *testing.T) {
	c, device := newClock(t, time.Minute)
	c.Stop()
	if device.Stopped() {
		t.Fatal("stop before start must not touch the device")
	}
	if err := c.Start(0); nil != err {
		t.Fatal(err)
	}
	c.Stop()
	c.Stop()
	if !device.Stopped() || c.Playing() {
		t.Fatal("expected the device to be stopped")
	}

	c.Reset()
	if c.Started() || c.Ended() {
		t.Fatal("expected reset to clear the clock")
	}
	if err := c.Start(0); nil != err {
		t.Fatalf("expected start after reset to succeed: %v", err)
	}
}

func TestNewRejectsTempo(t *testing.T) {
	if _, err := New(NewManualDevice(0), 0, 0); nil == err {
		t.Fatal("expected zero tempo to be rejected")
	}
	if _, err := New(nil, 120, 0); nil == err {
		t.Fatal("expected a missing device to be rejected")
	}
}
