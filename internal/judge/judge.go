// Package judge owns the live notes of one lane and classifies presses against them.
package judge

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Authcursed/Rhythm-Game/internal/game"
)

var ErrWrongLane = errors.New("note belongs to another lane")

type Judge struct {
	lane    int
	windows game.Windows

	notes   []*game.LiveNote // ordered by target time
	pressed bool

	// notes that left the okay window without ever being seen inside it
	violations int
}

func New(lane int, windows game.Windows) (*Judge, error) {
	if err := windows.Validate(); nil != err {
		return nil, err
	}
	return &Judge{lane: lane, windows: windows}, nil
}

func (j *Judge) Lane() int {
	return j.lane
}

// Add takes ownership of a released note.
func (j *Judge) Add(n *game.LiveNote) error {
	if n.Lane != j.lane {
		return fmt.Errorf("%w: note lane %d, judge lane %d", ErrWrongLane, n.Lane, j.lane)
	}
	n.State = game.Pending
	i := len(j.notes)
	for i > 0 && j.notes[i-1].Target > n.Target {
		i--
	}
	j.notes = append(j.notes, nil)
	copy(j.notes[i+1:], j.notes[i:])
	j.notes[i] = n
	return nil
}

// promote marks notes observed inside the okay window as candidates.
func (j *Judge) promote(now time.Duration) {
	for _, n := range j.notes {
		if n.Target-j.windows.Okay > now {
			// ordered by target, nothing later can be inside either
			return
		}
		if n.State == game.Pending && now-n.Target <= j.windows.Okay {
			n.State = game.Candidate
		}
	}
}

// Press judges the earliest due candidate within the okay window, even if a later
// note is closer in time. A press that reaches no note returns false.
func (j *Judge) Press(now time.Duration) (game.Result, bool) {
	j.pressed = true
	j.promote(now)
	for i, n := range j.notes {
		if n.State != game.Candidate {
			continue
		}
		tier, ok := j.windows.Classify(now - n.Target)
		if !ok {
			continue
		}
		j.remove(i)
		return j.resolve(n, tier, now-n.Target), true
	}
	return game.Result{}, false
}

// Release only changes the pressed state, it never judges.
func (j *Judge) Release() {
	j.pressed = false
}

func (j *Judge) Pressed() bool {
	return j.pressed
}

// Update resolves notes that passed the okay window unhit as misses, appending them to dst.
func (j *Judge) Update(now time.Duration, dst []game.Result) []game.Result {
	j.promote(now)
	kept := j.notes[:0]
	for _, n := range j.notes {
		late := now - n.Target
		if late <= j.windows.Okay {
			kept = append(kept, n)
			continue
		}
		if n.State != game.Candidate {
			j.violations++
			log.Printf("lane %d: note %d left the okay window without entering it (%v late), travel time and frame period are inconsistent", j.lane, n.ID, late)
		}
		dst = append(dst, j.resolve(n, game.Miss, late))
	}
	for i := len(kept); i < len(j.notes); i++ {
		j.notes[i] = nil
	}
	j.notes = kept
	return dst
}

func (j *Judge) resolve(n *game.LiveNote, tier game.Tier, delta time.Duration) game.Result {
	n.State = game.Resolved
	return game.Result{
		Note:   n.ID,
		Lane:   n.Lane,
		Tier:   tier,
		Delta:  delta,
		Target: n.Target,
	}
}

func (j *Judge) remove(i int) {
	copy(j.notes[i:], j.notes[i+1:])
	j.notes[len(j.notes)-1] = nil
	j.notes = j.notes[:len(j.notes)-1]
}

// Live is the notes still owned by this lane, for presentation only.
func (j *Judge) Live() []*game.LiveNote {
	return j.notes
}

// Abandon drops every unresolved note without judging it.
func (j *Judge) Abandon() int {
	n := len(j.notes)
	for i := range j.notes {
		j.notes[i] = nil
	}
	j.notes = j.notes[:0]
	j.pressed = false
	return n
}

func (j *Judge) Violations() int {
	return j.violations
}
