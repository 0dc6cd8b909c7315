package engine

import (
	"sort"
	"time"

	"github.com/Authcursed/Rhythm-Game/internal/clock"
	"github.com/Authcursed/Rhythm-Game/internal/game"
	"github.com/Authcursed/Rhythm-Game/internal/input"
	"github.com/Authcursed/Rhythm-Game/internal/session"
)

// Replay judges recorded inputs against a chart on a virtual device and returns the
// final snapshot. Time is stepped by at most the okay window so no note skips it.
func Replay(chart *game.Chart, inputs []game.Input, options Options) (session.Snapshot, error) {
	length := chart.End() + options.Offset + options.Windows.Okay + time.Second
	device := clock.NewManualDevice(length)

	e, err := New(chart, device, options, nil)
	if nil != err {
		return session.Snapshot{}, err
	}
	if err := e.Start(); nil != err {
		return session.Snapshot{}, err
	}

	pending := make([]game.Input, len(inputs))
	copy(pending, inputs)
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].At < pending[j].At
	})

	step := options.Windows.Okay
	if step > 10*time.Millisecond {
		step = 10 * time.Millisecond
	}
	reference := e.Clock().Reference()
	for e.Tick() {
		next := device.Now() + step
		if len(pending) > 0 && reference+pending[0].At <= next {
			at := reference + pending[0].At
			device.Set(at)
			for len(pending) > 0 && reference+pending[0].At == at {
				e.Mailbox().Post(input.Press(pending[0].Lane))
				e.Mailbox().Post(input.Release(pending[0].Lane))
				pending = pending[1:]
			}
			continue
		}
		device.Set(next)
	}
	return e.Snapshot(), nil
}
