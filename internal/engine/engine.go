// Package engine is the context of one play-through. It owns the clock, scheduler,
// lane judges and session, and steps them together once per host frame.
package engine

import (
	"fmt"
	"log"
	"time"

	"github.com/Authcursed/Rhythm-Game/internal/clock"
	"github.com/Authcursed/Rhythm-Game/internal/game"
	"github.com/Authcursed/Rhythm-Game/internal/input"
	"github.com/Authcursed/Rhythm-Game/internal/judge"
	"github.com/Authcursed/Rhythm-Game/internal/schedule"
	"github.com/Authcursed/Rhythm-Game/internal/session"
	"github.com/Authcursed/Rhythm-Game/internal/timer"
)

// Listener receives presentation notifications, it must not block.
type Listener interface {
	Spawn(note game.LiveNote)
	Judged(result game.Result)
	Press(lane int)
	Release(lane int)
	Finished(snapshot session.Snapshot)
}

type NopListener struct{}

func (NopListener) Spawn(game.LiveNote)       {}
func (NopListener) Judged(game.Result)        {}
func (NopListener) Press(int)                 {}
func (NopListener) Release(int)               {}
func (NopListener) Finished(session.Snapshot) {}

const defaultMailboxSize = 128

type Options struct {
	Windows     game.Windows
	Points      game.Points
	Travel      time.Duration // Time a note takes from spawn to the hit line
	Delay       time.Duration // Lead-in before the track starts
	Offset      time.Duration // Global calibration, added to the chart offset
	MailboxSize int
	Logger      *log.Logger
	Verbose     bool // Log every judgement
}

func DefaultOptions() Options {
	return Options{
		Windows:     game.DefaultWindows(),
		Points:      game.DefaultPoints(),
		Travel:      2 * time.Second,
		Delay:       1500 * time.Millisecond,
		MailboxSize: defaultMailboxSize,
	}
}

type Engine struct {
	chart     *game.Chart
	options   Options
	logger    *log.Logger
	listener  Listener
	clock     *clock.Clock
	scheduler *schedule.Scheduler
	judges    []*judge.Judge
	session   *session.Session
	timers    timer.Queue
	mailbox   *input.Mailbox

	inputs   []game.Input
	events   []input.Event
	results  []game.Result
	holds    []uint64 // per lane count of simulated holds
	notified bool
}

// New validates the whole configuration, it is the only place the engine fails hard.
func New(chart *game.Chart, device clock.Device, options Options, listener Listener) (*Engine, error) {
	if nil == chart {
		return nil, game.ErrEmptyChart
	}
	if err := options.Windows.Validate(); nil != err {
		return nil, err
	}
	c, err := clock.New(device, chart.BPM, chart.Offset+options.Offset)
	if nil != err {
		return nil, err
	}
	s, err := schedule.New(c, chart, options.Travel)
	if nil != err {
		return nil, err
	}
	judges := make([]*judge.Judge, chart.Lanes())
	for lane := range judges {
		if judges[lane], err = judge.New(lane, options.Windows); nil != err {
			return nil, err
		}
	}
	if nil == listener {
		listener = NopListener{}
	}
	logger := options.Logger
	if nil == logger {
		logger = log.Default()
	}
	if options.MailboxSize <= 0 {
		options.MailboxSize = defaultMailboxSize
	}
	return &Engine{
		chart:     chart,
		options:   options,
		logger:    logger,
		listener:  listener,
		clock:     c,
		scheduler: s,
		judges:    judges,
		holds:     make([]uint64, len(judges)),
		session:   session.New(c, options.Points, options.Delay),
		mailbox:   input.NewMailbox(options.MailboxSize),
	}, nil
}

// Start begins the session and schedules playback after the lead-in.
func (e *Engine) Start() error {
	if err := e.session.Start(); nil != err {
		return fmt.Errorf("unable to start session: %w", err)
	}
	return nil
}

// Mailbox is where device goroutines post lane events.
func (e *Engine) Mailbox() *input.Mailbox {
	return e.mailbox
}

// Tick advances the play-through by one frame and reports whether it is still running.
func (e *Engine) Tick() bool {
	if !e.session.Running() {
		return false
	}
	now := e.clock.Now()

	e.timers.Run(now)
	e.scheduler.Tick(e)

	// Overruns first, a press can only reach notes due after them
	e.results = e.results[:0]
	for _, j := range e.judges {
		e.results = j.Update(now, e.results)
	}
	for _, r := range e.results {
		e.record(r)
	}

	e.events = e.mailbox.Drain(e.events[:0])
	for _, ev := range e.events {
		e.handle(now, ev)
	}

	if e.clock.Ended() {
		e.finish()
		return false
	}
	return true
}

// Release implements schedule.Releaser, routing the note to its lane.
func (e *Engine) Release(n *game.LiveNote) {
	if err := e.judges[n.Lane].Add(n); nil != err {
		// lanes were validated with the chart
		e.logger.Println("unable to release note", n.ID, err)
		return
	}
	e.listener.Spawn(*n)
}

func (e *Engine) handle(now time.Duration, ev input.Event) {
	if ev.Lane < 0 || ev.Lane >= len(e.judges) {
		return
	}
	j := e.judges[ev.Lane]
	if !ev.Pressed {
		j.Release()
		e.listener.Release(ev.Lane)
		return
	}

	e.inputs = append(e.inputs, game.Input{Lane: ev.Lane, At: now - e.clock.Reference()})
	e.listener.Press(ev.Lane)
	if ev.Hold > 0 {
		// a later press supersedes the pending release of its lane
		lane := ev.Lane
		e.holds[lane]++
		hold := e.holds[lane]
		e.timers.After(now+ev.Hold, func() {
			if e.holds[lane] != hold {
				return
			}
			e.judges[lane].Release()
			e.listener.Release(lane)
		})
	}
	if r, ok := j.Press(now); ok {
		e.record(r)
	}
}

func (e *Engine) record(r game.Result) {
	if !e.session.Record(r) {
		return
	}
	if e.options.Verbose {
		e.logger.Printf("lane %d note %d: %v %+.1fms", r.Lane, r.Note, r.Tier, float64(r.Delta)/float64(time.Millisecond))
	}
	e.listener.Judged(r)
}

func (e *Engine) finish() {
	e.session.Finalize()
	e.abandon()
}

// Abort ends the play-through early (game over or quit), keeping the results so far.
func (e *Engine) Abort() {
	e.session.Abort()
	e.abandon()
}

// abandon drops unresolved notes and pending releases, they are never judged.
func (e *Engine) abandon() {
	dropped := 0
	for _, j := range e.judges {
		dropped += j.Abandon()
	}
	e.timers.Clear()
	if dropped > 0 {
		e.logger.Printf("abandoned %d unjudged notes", dropped)
	}
	if e.session.State() == session.Finalized && !e.notified {
		e.notified = true
		e.listener.Finished(e.session.Snapshot())
	}
}

// Reset prepares the engine for a retry of the same chart.
func (e *Engine) Reset() {
	e.session.Reset()
	e.clock.Reset()
	e.scheduler.Reset()
	for _, j := range e.judges {
		j.Abandon()
	}
	e.timers.Clear()
	e.mailbox.Drain(nil)
	e.inputs = nil
	e.notified = false
}

func (e *Engine) Snapshot() session.Snapshot {
	return e.session.Snapshot()
}

func (e *Engine) Clock() *clock.Clock {
	return e.clock
}

func (e *Engine) Chart() *game.Chart {
	return e.chart
}

// Inputs are the presses recorded so far, relative to the track start.
func (e *Engine) Inputs() []game.Input {
	return e.inputs
}

// Live is the unresolved notes of a lane, for presentation.
func (e *Engine) Live(lane int) []*game.LiveNote {
	if lane < 0 || lane >= len(e.judges) {
		return nil
	}
	return e.judges[lane].Live()
}

func (e *Engine) Pressed(lane int) bool {
	if lane < 0 || lane >= len(e.judges) {
		return false
	}
	return e.judges[lane].Pressed()
}

// Violations counts notes that skipped their whole okay window, see judge.Judge.
func (e *Engine) Violations() int {
	n := 0
	for _, j := range e.judges {
		n += j.Violations()
	}
	return n
}
