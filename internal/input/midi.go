package input

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// MIDI maps consecutive notes starting at Base to lanes, e.g. drum pads.
type MIDI struct {
	Base    uint8
	Lanes   int
	mailbox *Mailbox
	stop    func()
}

func OpenMIDI(port string, base uint8, lanes int, mailbox *Mailbox) (*MIDI, error) {
	in, err := findInPort(port)
	if nil != err {
		return nil, err
	}
	m := &MIDI{Base: base, Lanes: lanes, mailbox: mailbox}
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		m.handle(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	m.stop = stop
	return m, nil
}

func findInPort(name string) (drivers.In, error) {
	for _, in := range midi.GetInPorts() {
		if strings.Contains(in.String(), name) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("no MIDI input port matching %q", name)
}

func (m *MIDI) handle(msg midi.Message) {
	var channel, key, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		lane, ok := m.lane(key)
		if !ok {
			return
		}
		// note on with zero velocity is a note off
		if velocity > 0 {
			m.mailbox.Post(Press(lane))
		} else {
			m.mailbox.Post(Release(lane))
		}
	case msg.GetNoteOff(&channel, &key, &velocity):
		if lane, ok := m.lane(key); ok {
			m.mailbox.Post(Release(lane))
		}
	}
}

func (m *MIDI) lane(key uint8) (int, bool) {
	if key < m.Base || int(key-m.Base) >= m.Lanes {
		return -1, false
	}
	return int(key - m.Base), true
}

func (m *MIDI) Close() {
	if nil != m.stop {
		m.stop()
	}
}
