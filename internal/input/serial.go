package input

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
)

// Serial bridges a microcontroller that prints "HIT n" lines, n being the 1 based lane.
// The device never reports releases, so every press carries Hold.
type Serial struct {
	Port       string
	Baud       int
	Lanes      int
	Hold       time.Duration
	MinBackoff time.Duration
	MaxBackoff time.Duration

	mailbox *Mailbox
	open    func(port string, baud int) (io.ReadCloser, error)
}

func NewSerial(port string, baud, lanes int, hold time.Duration, mailbox *Mailbox) *Serial {
	return &Serial{
		Port:       port,
		Baud:       baud,
		Lanes:      lanes,
		Hold:       hold,
		MinBackoff: 250 * time.Millisecond,
		MaxBackoff: 5 * time.Second,
		mailbox:    mailbox,
		open:       openSerial,
	}
}

func openSerial(port string, baud int) (io.ReadCloser, error) {
	return serial.Open(port, &serial.Mode{BaudRate: baud})
}

// Run reads the device until ctx is done, reopening it with exponential backoff
// whenever it fails or disconnects. Device errors are logged, never returned.
func (s *Serial) Run(ctx context.Context) error {
	backoff := s.MinBackoff
	for {
		lines, err := s.read(ctx)
		if nil != ctx.Err() {
			return nil
		}
		if lines > 0 {
			backoff = s.MinBackoff
		}
		log.Printf("serial %s: %v, retrying in %v", s.Port, err, backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > s.MaxBackoff {
			backoff = s.MaxBackoff
		}
	}
}

func (s *Serial) read(ctx context.Context) (int, error) {
	port, err := s.open(s.Port, s.Baud)
	if nil != err {
		return 0, err
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			// unblocks the scanner
			port.Close()
		case <-done:
			port.Close()
		}
	}()

	lines := 0
	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		lines++
		s.handle(scanner.Text())
	}
	if err := scanner.Err(); nil != err {
		return lines, err
	}
	return lines, errors.New("device disconnected")
}

func (s *Serial) handle(line string) {
	lane, ok := ParseHit(line, s.Lanes)
	if !ok {
		return
	}
	if !s.mailbox.Post(Event{Lane: lane, Pressed: true, Hold: s.Hold}) {
		log.Printf("serial %s: input mailbox full, dropped lane %d", s.Port, lane)
	}
}

// ParseHit reads a "HIT n" line into a 0 based lane. Other device chatter is ignored.
func ParseHit(line string, lanes int) (int, bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 || fields[0] != "HIT" {
		return -1, false
	}
	n, err := strconv.Atoi(fields[1])
	if nil != err || n < 1 || n > lanes {
		return -1, false
	}
	return n - 1, true
}
