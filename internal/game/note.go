package game

import (
	"time"
)

// Note is a single chart event, it never changes once loaded.
type Note struct {
	Lane int     // The chart column
	Beat float64 // The beat the note should be hit on
}

type NoteState uint8

const (
	Pending   NoteState = iota // Released by the scheduler, not yet inside the okay window
	Candidate                  // Observed inside the okay window
	Resolved                   // Hit or missed, terminal
)

// LiveNote is the runtime projection of a Note into clock space.
type LiveNote struct {
	ID     int // Index into the chart in beat order
	Lane   int
	Beat   float64
	Target time.Duration // Device time the note should be hit
	Spawn  time.Duration // Target - Travel
	Travel time.Duration

	// This is state
	State NoteState
}

// Progress is how far along its travel the note is at now, 0 at spawn and 1 on the hit line.
// It is not clamped, values above 1 mean the note has passed the hit line.
func (n *LiveNote) Progress(now time.Duration) float64 {
	if n.Travel <= 0 {
		return 1
	}
	return float64(now-n.Spawn) / float64(n.Travel)
}

// Input is a recorded lane press, At is relative to the song reference time.
type Input struct {
	Lane int
	At   time.Duration
}
