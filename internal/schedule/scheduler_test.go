package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/Authcursed/Rhythm-Game/internal/clock"
	"github.com/Authcursed/Rhythm-Game/internal/game"
)

func chart(notes ...game.Note) *game.Chart {
	return &game.Chart{
		BPM:        120,
		Difficulty: game.Difficulty{NKeys: 4},
		Notes:      notes,
	}
}

func started(t *testing.T) (*clock.Clock, *clock.ManualDevice) {
	device := clock.NewManualDevice(time.Minute)
	c, err := clock.New(device, 120, 0)
	if nil != err {
		t.Fatal(err)
	}
	if err := c.Start(time.Second); nil != err {
		t.Fatal(err)
	}
	return c, device
}

func TestTickBeforeStart(t *testing.T) {
	device := clock.NewManualDevice(time.Minute)
	c, _ := clock.New(device, 120, 0)
	s, err := New(c, chart(game.Note{Lane: 0, Beat: 0}), 2*time.Second)
	if nil != err {
		t.Fatal(err)
	}
	if n := s.Tick(ReleaserFunc(func(*game.LiveNote) { t.Fatal("released before start") })); n != 0 {
		t.Fatalf("expected no release, got %d", n)
	}
}

func TestLookaheadRelease(t *testing.T) {
	c, device := started(t)
	s, err := New(c, chart(
		game.Note{Lane: 0, Beat: 2},
		game.Note{Lane: 1, Beat: 4},
		game.Note{Lane: 2, Beat: 4},
		game.Note{Lane: 3, Beat: 10},
	), 2*time.Second)
	if nil != err {
		t.Fatal(err)
	}

	released := []*game.LiveNote{}
	collect := ReleaserFunc(func(n *game.LiveNote) { released = append(released, n) })

	// Position is -1s, -2 beats; the horizon is beat 2.
	s.Tick(collect)
	if len(released) != 1 || released[0].ID != 0 {
		t.Fatalf("expected only note 0, got %d notes", len(released))
	}
	n := released[0]
	if n.Target != c.BeatToTime(2) || n.Spawn != n.Target-2*time.Second || n.Travel != 2*time.Second {
		t.Fatalf("unexpected projection %+v", n)
	}
	if n.Spawn != device.Now() {
		t.Fatalf("expected the note to spawn exactly now, spawn=%v now=%v", n.Spawn, device.Now())
	}

	device.Advance(time.Second)
	s.Tick(collect)
	if len(released) != 3 {
		t.Fatalf("expected both beat 4 notes, got %d notes", len(released))
	}
	if released[1].ID != 1 || released[2].ID != 2 {
		t.Fatal("expected ties to release in chart order")
	}

	device.Advance(10 * time.Second)
	s.Tick(collect)
	s.Tick(collect)
	if len(released) != 4 || !s.Done() {
		t.Fatalf("expected every note released exactly once, got %d", len(released))
	}
}

func TestMonotonicRelease(t *testing.T) {
	c, device := started(t)
	notes := []game.Note{}
	for i := 0; i < 64; i++ {
		notes = append(notes, game.Note{Lane: i % 4, Beat: float64(i) * 0.75})
	}
	s, err := New(c, chart(notes...), 1500*time.Millisecond)
	if nil != err {
		t.Fatal(err)
	}
	tick := 0
	releasedAt := map[int]int{}
	for !s.Done() {
		s.Tick(ReleaserFunc(func(n *game.LiveNote) {
			if _, ok := releasedAt[n.ID]; ok {
				t.Fatalf("note %d released twice", n.ID)
			}
			releasedAt[n.ID] = tick
		}))
		device.Advance(7 * time.Millisecond)
		tick++
	}
	for i := 1; i < len(notes); i++ {
		if releasedAt[i-1] > releasedAt[i] {
			t.Fatalf("note %d released after note %d", i-1, i)
		}
	}
}

func TestUnsortedChart(t *testing.T) {
	c, device := started(t)
	ch := chart(
		game.Note{Lane: 3, Beat: 8},
		game.Note{Lane: 2, Beat: 1},
		game.Note{Lane: 0, Beat: 1},
	)
	sum := ch.Hash()
	s, err := New(c, ch, time.Second)
	if nil != err {
		t.Fatal(err)
	}
	if ch.Notes[0].Lane != 3 || ch.Hash() != sum {
		t.Fatalf("the chart was reordered: %v", ch.Notes)
	}
	device.Advance(time.Hour)
	lanes := []int{}
	s.Tick(ReleaserFunc(func(n *game.LiveNote) { lanes = append(lanes, n.Lane) }))
	if len(lanes) != 3 || lanes[0] != 2 || lanes[1] != 0 || lanes[2] != 3 {
		t.Fatalf("expected stable beat order [2 0 3], got %v", lanes)
	}
}

func TestNewRejects(t *testing.T) {
	c, _ := started(t)
	if _, err := New(c, chart(game.Note{Lane: 4, Beat: 1}), time.Second); !errors.Is(err, game.ErrInvalidLane) {
		t.Fatalf("expected ErrInvalidLane, got %v", err)
	}
	if _, err := New(c, chart(), time.Second); !errors.Is(err, game.ErrEmptyChart) {
		t.Fatalf("expected ErrEmptyChart, got %v", err)
	}
	if _, err := New(c, chart(game.Note{Lane: 0, Beat: 1}), 0); !errors.Is(err, ErrTravelTime) {
		t.Fatalf("expected ErrTravelTime, got %v", err)
	}
}
