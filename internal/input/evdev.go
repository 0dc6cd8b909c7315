package input

import (
	"encoding/binary"
	"io"
	"log"
	"os"
	"syscall"
)

// Linux input-event-codes.h
const (
	evKey = 0x01

	keyReleased = 0
	keyPressed  = 1
)

type keyEvent struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// Evdev reads key events straight from a Linux input device, which reports real releases.
// Codes maps a key code to its lane index.
type Evdev struct {
	file    *os.File
	codes   []uint16
	mailbox *Mailbox
}

func OpenEvdev(device string, codes []uint16, mailbox *Mailbox) (*Evdev, error) {
	file, err := os.Open(device)
	if err != nil {
		return nil, err
	}
	e := &Evdev{file: file, codes: codes, mailbox: mailbox}
	go func() {
		if err := e.read(file); nil != err && err != io.EOF {
			log.Println(err, "unable to read keyboard input")
		}
	}()
	return e, nil
}

func (e *Evdev) read(r io.Reader) error {
	var ev keyEvent
	for {
		if err := binary.Read(r, binary.LittleEndian, &ev); nil != err {
			return err
		}
		if ev.Type != evKey {
			continue
		}
		lane := e.lane(ev.Code)
		if lane < 0 {
			continue
		}
		switch ev.Value {
		case keyPressed:
			e.mailbox.Post(Press(lane))
		case keyReleased:
			e.mailbox.Post(Release(lane))
		}
		// 2 is autorepeat
	}
}

func (e *Evdev) lane(code uint16) int {
	for i, c := range e.codes {
		if c == code {
			return i
		}
	}
	return -1
}

func (e *Evdev) Close() error {
	return e.file.Close()
}

var qwertyRows = [...]struct {
	keys  string
	first uint16
}{
	{"1234567890-=", 2},
	{"qwertyuiop[]", 16},
	{"asdfghjkl;'", 30},
	{"zxcvbnm,./", 44},
}

// KeyCodes maps lane keys to evdev codes on a QWERTY layout, unknown keys get code 0.
func KeyCodes(keys []rune) []uint16 {
	codes := make([]uint16, len(keys))
	for i, k := range keys {
		if k == ' ' {
			codes[i] = 57
			continue
		}
		for _, row := range qwertyRows {
			for j, c := range row.keys {
				if c == k {
					codes[i] = row.first + uint16(j)
				}
			}
		}
	}
	return codes
}
