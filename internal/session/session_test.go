package session

import (
	"errors"
	"testing"
	"time"

	"github.com/Authcursed/Rhythm-Game/internal/game"
)

type fakeClock struct {
	starts, stops int
	err           error
}

func (c *fakeClock) Start(time.Duration) error {
	if nil != c.err {
		return c.err
	}
	c.starts++
	return nil
}

func (c *fakeClock) Stop() { c.stops++ }

func running(t *testing.T) (*Session, *fakeClock) {
	c := &fakeClock{}
	s := New(c, game.DefaultPoints(), time.Second)
	if err := s.Start(); nil != err {
		t.Fatal(err)
	}
	return s, c
}

func hit(tier game.Tier) game.Result {
	return game.Result{Tier: tier}
}

func TestStart(t *testing.T) {
	s, c := running(t)
	if c.starts != 1 || s.State() != Running {
		t.Fatalf("expected a running session with a started clock, got %v", s.State())
	}
	if err := s.Start(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if c.starts != 1 {
		t.Fatal("second start must not restart the clock")
	}
}

func TestStartClockError(t *testing.T) {
	c := &fakeClock{err: errors.New("no device")}
	s := New(c, game.DefaultPoints(), 0)
	if err := s.Start(); nil == err {
		t.Fatal("expected the clock error")
	}
	if s.State() != NotRunning {
		t.Fatalf("expected NotRunning, got %v", s.State())
	}
}

func TestComboBonus(t *testing.T) {
	s, _ := running(t)
	for i := 0; i < 24; i++ {
		s.Record(hit(game.Perfect))
	}
	before := s.Snapshot().Score
	s.Record(hit(game.Perfect))
	if delta := s.Snapshot().Score - before; delta != 300 {
		t.Fatalf("expected 100 x (1 + 24/10) = 300, got %d", delta)
	}
}

func TestScoring(t *testing.T) {
	s, _ := running(t)
	s.Record(hit(game.Perfect)) // 100, combo 1
	s.Record(hit(game.Good))    // 75, combo 2
	s.Record(hit(game.Okay))    // 50, combo 3
	s.Miss()                    // combo 0
	s.Record(hit(game.Good))    // 75, combo 1

	snap := s.Snapshot()
	if snap.Score != 300 {
		t.Fatalf("expected score 300, got %d", snap.Score)
	}
	if snap.Combo != 1 || snap.MaxCombo != 3 {
		t.Fatalf("expected combo 1 max 3, got %d max %d", snap.Combo, snap.MaxCombo)
	}
	expected := game.Counts{1, 2, 1, 1}
	if snap.Counts != expected {
		t.Fatalf("expected counts %v, got %v", expected, snap.Counts)
	}
}

func TestStatistics(t *testing.T) {
	s, _ := running(t)
	for _, d := range []time.Duration{-10, 10, 20, 40} {
		s.Record(game.Result{Tier: game.Perfect, Delta: d * time.Millisecond})
	}
	snap := s.Snapshot()
	if snap.Mean != 15*time.Millisecond {
		t.Fatalf("expected mean 15ms, got %v", snap.Mean)
	}
	if snap.TotalError != 80*time.Millisecond {
		t.Fatalf("expected total error 80ms, got %v", snap.TotalError)
	}
	// sample stdev of -10, 10, 20, 40 is sqrt(1300/3)
	if snap.Stdev < 20816*time.Microsecond || snap.Stdev > 20817*time.Microsecond {
		t.Fatalf("unexpected stdev %v", snap.Stdev)
	}
}

func TestRecordOutsideRunning(t *testing.T) {
	s := New(&fakeClock{}, game.DefaultPoints(), 0)
	if s.Record(hit(game.Perfect)) {
		t.Fatal("judgement before start must be dropped")
	}
	s.Start()
	s.Record(hit(game.Perfect))
	s.Finalize()
	if s.Record(hit(game.Perfect)) || s.Miss() {
		t.Fatal("judgement after finalize must be dropped")
	}
	if s.Snapshot().Score != 100 {
		t.Fatal("score changed after finalize")
	}
}

func TestIdempotentFinalize(t *testing.T) {
	s, c := running(t)
	s.Record(hit(game.Perfect))
	s.Record(hit(game.Good))
	if !s.Finalize() {
		t.Fatal("expected the first finalize to apply")
	}
	first := s.Snapshot()
	if s.Finalize() || s.Abort() {
		t.Fatal("expected later finalize calls to be ignored")
	}
	if s.Snapshot() != first {
		t.Fatalf("snapshot changed: %+v -> %+v", first, s.Snapshot())
	}
	if c.stops != 1 {
		t.Fatalf("expected the clock stopped once, got %d", c.stops)
	}
	if first.Rank != RankB {
		t.Fatalf("expected rank B for 1 perfect 1 good, got %v", first.Rank)
	}
}

func TestAbort(t *testing.T) {
	s, c := running(t)
	s.Miss()
	if !s.Abort() {
		t.Fatal("expected abort to end a running session")
	}
	snap := s.Snapshot()
	if snap.State != Finalized || !snap.Aborted || snap.Rank != RankD || c.stops != 1 {
		t.Fatalf("unexpected aborted snapshot %+v", snap)
	}
}

func TestReset(t *testing.T) {
	s, c := running(t)
	s.Record(hit(game.Perfect))
	s.Finalize()
	s.Reset()
	if s.State() != NotRunning || s.Snapshot().Score != 0 || s.Snapshot().Rank != RankNone {
		t.Fatalf("expected a cleared session, got %+v", s.Snapshot())
	}
	if err := s.Start(); nil != err {
		t.Fatalf("expected a retry to start: %v", err)
	}
	if c.starts != 2 {
		t.Fatal("expected the clock to be started again")
	}
}

var rankTests = []struct {
	counts game.Counts
	rank   Rank
}{
	{game.Counts{}, RankNone},
	{game.Counts{10, 0, 0, 0}, RankSS},
	{game.Counts{807, 192, 0, 1}, RankS}, // accuracy 0.951
	{game.Counts{810, 188, 0, 2}, RankA}, // accuracy 0.951, too many misses
	{game.Counts{9, 1, 0, 0}, RankS},     // 0.975
	{game.Counts{0, 10, 0, 0}, RankC},    // 0.75
	{game.Counts{8, 0, 0, 2}, RankB},     // 0.80
	{game.Counts{7, 0, 0, 3}, RankC},     // 0.70
	{game.Counts{6, 0, 0, 4}, RankD},
	{game.Counts{0, 0, 0, 3}, RankD},
}

func TestComputeRank(t *testing.T) {
	for _, test := range rankTests {
		if rank := ComputeRank(test.counts); rank != test.rank {
			t.Log("counts  ", test.counts, accuracy(test.counts))
			t.Log("expected", test.rank)
			t.Log("got     ", rank)
			t.Fail()
		}
	}
}
