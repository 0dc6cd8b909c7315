// Package session turns judgement results into score, combo and a final rank.
package session

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Authcursed/Rhythm-Game/internal/game"
)

var ErrNotReady = errors.New("session is not ready to start")

type State uint8

const (
	NotRunning State = iota
	Running
	Finalized
)

var stateNames = [...]string{"not running", "running", "finalized"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// Clock is started and stopped by the session.
type Clock interface {
	Start(delay time.Duration) error
	Stop()
}

type Session struct {
	clock  Clock
	points game.Points
	delay  time.Duration

	state    State
	aborted  bool
	score    int
	combo    int
	maxCombo int
	counts   game.Counts
	rank     Rank

	// hit offset statistics
	hits       int
	mean       float64
	m2         float64
	totalError time.Duration
}

func New(clock Clock, points game.Points, delay time.Duration) *Session {
	return &Session{clock: clock, points: points, delay: delay}
}

// Start is only valid from NotRunning. The session stays NotRunning if the clock fails to start.
func (s *Session) Start() error {
	if s.state != NotRunning {
		return fmt.Errorf("%w: %v", ErrNotReady, s.state)
	}
	s.clear()
	if err := s.clock.Start(s.delay); nil != err {
		return err
	}
	s.state = Running
	return nil
}

func (s *Session) clear() {
	s.aborted = false
	s.score = 0
	s.combo = 0
	s.maxCombo = 0
	s.counts = game.Counts{}
	s.rank = RankNone
	s.hits = 0
	s.mean = 0
	s.m2 = 0
	s.totalError = 0
}

// Record applies a judgement. Results outside Running are dropped.
func (s *Session) Record(r game.Result) bool {
	if s.state != Running {
		return false
	}
	s.counts[r.Tier]++
	if !r.Tier.Hit() {
		s.combo = 0
		return true
	}

	s.score += s.points.Base(r.Tier) * (1 + s.combo/10)
	s.combo++
	if s.combo > s.maxCombo {
		s.maxCombo = s.combo
	}

	s.hits++
	d := float64(r.Delta)
	delta := d - s.mean
	s.mean += delta / float64(s.hits)
	s.m2 += delta * (d - s.mean)
	if r.Delta < 0 {
		s.totalError -= r.Delta
	} else {
		s.totalError += r.Delta
	}
	return true
}

// Miss records a note that passed the hit line unhit.
func (s *Session) Miss() bool {
	return s.Record(game.Result{Tier: game.Miss})
}

// Finalize stops the clock and computes the rank, only the first call has an effect.
func (s *Session) Finalize() bool {
	if s.state != Running {
		return false
	}
	s.clock.Stop()
	s.rank = ComputeRank(s.counts)
	s.state = Finalized
	return true
}

// Abort ends a running session early, the results so far are kept and ranked.
func (s *Session) Abort() bool {
	if !s.Finalize() {
		return false
	}
	s.aborted = true
	return true
}

// Reset returns a session in any state to NotRunning, ready for a retry.
func (s *Session) Reset() {
	if s.state == Running {
		s.clock.Stop()
	}
	s.clear()
	s.state = NotRunning
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Running() bool {
	return s.state == Running
}

type Snapshot struct {
	State    State
	Aborted  bool
	Score    int
	Combo    int
	MaxCombo int
	Counts   game.Counts
	Rank     Rank

	// Mean and Stdev of the signed hit offsets, TotalError is the sum of their absolute values
	Mean       time.Duration
	Stdev      time.Duration
	TotalError time.Duration
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		State:      s.state,
		Aborted:    s.aborted,
		Score:      s.score,
		Combo:      s.combo,
		MaxCombo:   s.maxCombo,
		Counts:     s.counts,
		Rank:       s.rank,
		Mean:       time.Duration(math.Round(s.mean)),
		TotalError: s.totalError,
	}
	if s.hits > 1 {
		snap.Stdev = time.Duration(math.Round(math.Sqrt(s.m2 / float64(s.hits-1))))
	}
	return snap
}

// Accuracy weights perfect 1, good 0.75 and okay 0.5 over every judged note.
func (s Snapshot) Accuracy() float64 {
	return accuracy(s.Counts)
}
