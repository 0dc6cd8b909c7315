package input

import (
	"log"
	"time"

	"github.com/eiannone/keyboard"
)

// Keyboard reads terminal key presses. Terminals do not report key releases,
// so every press carries a simulated hold.
type Keyboard struct {
	keys    []rune
	hold    time.Duration
	mailbox *Mailbox
	quit    func()
	events  <-chan keyboard.KeyEvent
}

func OpenKeyboard(keys []rune, hold time.Duration, mailbox *Mailbox, quit func()) (*Keyboard, error) {
	events, err := keyboard.GetKeys(128)
	if nil != err {
		return nil, err
	}
	k := &Keyboard{
		keys:    keys,
		hold:    hold,
		mailbox: mailbox,
		quit:    quit,
		events:  events,
	}
	go k.listen()
	return k, nil
}

func (k *Keyboard) listen() {
	for ev := range k.events {
		if nil != ev.Err {
			log.Println("unable to read key", ev.Err)
			continue
		}
		if !k.handle(ev) {
			return
		}
	}
}

// handle returns false once the player asked to quit.
func (k *Keyboard) handle(ev keyboard.KeyEvent) bool {
	switch ev.Key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		if nil != k.quit {
			k.quit()
		}
		return false
	case keyboard.KeySpace:
		ev.Rune = ' '
	}
	lane := KeyLane(k.keys, ev.Rune)
	if lane < 0 {
		return true
	}
	k.mailbox.Post(Event{Lane: lane, Pressed: true, Hold: k.hold})
	return true
}

func (k *Keyboard) Close() error {
	return keyboard.Close()
}

// KeyLane is the lane bound to r, or -1.
func KeyLane(keys []rune, r rune) int {
	if r == 0 {
		return -1
	}
	for i, c := range keys {
		if r == c {
			return i
		}
	}
	return -1
}
