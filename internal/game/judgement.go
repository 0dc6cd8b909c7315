package game

import (
	"errors"
	"fmt"
	"time"
)

// Tier is a timing judgement, ordered from best to worst.
type Tier uint8

const (
	Perfect Tier = iota
	Good
	Okay
	Miss
)

const TierCount = 4

var tierNames = [TierCount]string{"Perfect", "Good", "Okay", "Miss"}

func (t Tier) String() string {
	if int(t) < len(tierNames) {
		return tierNames[t]
	}
	return fmt.Sprintf("Tier(%d)", t)
}

func (t Tier) Hit() bool {
	return t < Miss
}

// Counts is a per tier counter indexed by Tier.
type Counts [TierCount]int

func (c Counts) Total() int {
	return c[Perfect] + c[Good] + c[Okay] + c[Miss]
}

// Result is produced once per LiveNote.
type Result struct {
	Note   int
	Lane   int
	Tier   Tier
	Delta  time.Duration // Hit time - target time, positive is late
	Target time.Duration
}

var ErrWindows = errors.New("timing windows must be strictly increasing and positive")

// Windows are absolute time deltas, each boundary is inclusive.
type Windows struct {
	Perfect time.Duration
	Good    time.Duration
	Okay    time.Duration
}

func DefaultWindows() Windows {
	return Windows{
		Perfect: 50 * time.Millisecond,
		Good:    100 * time.Millisecond,
		Okay:    200 * time.Millisecond,
	}
}

func (w Windows) Validate() error {
	if w.Perfect <= 0 || w.Perfect >= w.Good || w.Good >= w.Okay {
		return fmt.Errorf("%w: perfect=%v good=%v okay=%v", ErrWindows, w.Perfect, w.Good, w.Okay)
	}
	return nil
}

// Classify returns the hit tier for delta, false when it is outside the okay window.
func (w Windows) Classify(delta time.Duration) (Tier, bool) {
	d := abs(delta)
	switch {
	case d <= w.Perfect:
		return Perfect, true
	case d <= w.Good:
		return Good, true
	case d <= w.Okay:
		return Okay, true
	}
	return Miss, false
}

// Points are the base score of each hit tier.
type Points struct {
	Perfect int
	Good    int
	Okay    int
}

func DefaultPoints() Points {
	return Points{Perfect: 100, Good: 75, Okay: 50}
}

func (p Points) Base(t Tier) int {
	switch t {
	case Perfect:
		return p.Perfect
	case Good:
		return p.Good
	case Okay:
		return p.Okay
	}
	return 0
}

func abs(x time.Duration) time.Duration {
	if x < 0 {
		return -x
	}
	return x
}
