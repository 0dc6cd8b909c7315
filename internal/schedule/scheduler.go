// Package schedule releases chart notes into clock space ahead of their hit time.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/Authcursed/Rhythm-Game/internal/game"
)

var ErrTravelTime = errors.New("travel time must be positive")

// Timeline is the part of the clock the scheduler reads.
type Timeline interface {
	Playing() bool
	PositionInBeats() float64
	BeatToTime(beat float64) time.Duration
	BeatLength() time.Duration
}

// Releaser takes ownership of a note once it is released.
type Releaser interface {
	Release(note *game.LiveNote)
}

type ReleaserFunc func(note *game.LiveNote)

func (f ReleaserFunc) Release(note *game.LiveNote) { f(note) }

type Scheduler struct {
	timeline Timeline
	notes    []game.Note
	travel   time.Duration
	next     int
}

// New validates the chart and works on a copy sorted by beat if it is not already,
// the chart itself is never modified.
func New(timeline Timeline, chart *game.Chart, travel time.Duration) (*Scheduler, error) {
	if nil == chart {
		return nil, game.ErrEmptyChart
	}
	if travel <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrTravelTime, travel)
	}
	if err := chart.Validate(); nil != err {
		return nil, err
	}
	notes := chart.Notes
	if !chart.Sorted() {
		sorted := *chart
		sorted.Notes = append([]game.Note(nil), chart.Notes...)
		sorted.Sort()
		notes = sorted.Notes
	}
	return &Scheduler{
		timeline: timeline,
		notes:    notes,
		travel:   travel,
	}, nil
}

// Tick releases every note whose target beat is inside the lookahead window, in chart order.
func (s *Scheduler) Tick(r Releaser) int {
	if !s.timeline.Playing() || s.next >= len(s.notes) {
		return 0
	}
	lookahead := float64(s.travel) / float64(s.timeline.BeatLength())
	horizon := s.timeline.PositionInBeats() + lookahead

	released := 0
	for s.next < len(s.notes) && s.notes[s.next].Beat <= horizon {
		note := s.project(s.next)
		s.next++
		released++
		r.Release(note)
	}
	return released
}

func (s *Scheduler) project(i int) *game.LiveNote {
	n := s.notes[i]
	target := s.timeline.BeatToTime(n.Beat)
	return &game.LiveNote{
		ID:     i,
		Lane:   n.Lane,
		Beat:   n.Beat,
		Target: target,
		Spawn:  target - s.travel,
		Travel: s.travel,
		State:  game.Pending,
	}
}

func (s *Scheduler) Travel() time.Duration {
	return s.travel
}

// Released is the number of notes handed out so far.
func (s *Scheduler) Released() int {
	return s.next
}

func (s *Scheduler) Len() int {
	return len(s.notes)
}

func (s *Scheduler) Done() bool {
	return s.next >= len(s.notes)
}

func (s *Scheduler) Reset() {
	s.next = 0
}
