package game

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

var (
	ErrEmptyChart   = errors.New("chart has no notes")
	ErrInvalidLane  = errors.New("note lane out of range")
	ErrTempo        = errors.New("tempo must be positive")
	ErrNegativeBeat = errors.New("note beat is negative")
)

type Chart struct {
	Title      string
	Artist     string
	BPM        float64
	Offset     time.Duration // Audio position of beat 0
	Difficulty Difficulty
	Notes      []Note
}

func (c *Chart) Lanes() int {
	return int(c.Difficulty.NKeys)
}

// BeatLength is the duration of one beat, 60/BPM seconds.
func (c *Chart) BeatLength() time.Duration {
	return BeatLength(c.BPM)
}

func BeatLength(bpm float64) time.Duration {
	return time.Duration(math.Round(float64(time.Minute) / bpm))
}

// Validate reports load time configuration errors.
func (c *Chart) Validate() error {
	if c.BPM <= 0 || math.IsNaN(c.BPM) || math.IsInf(c.BPM, 0) {
		return fmt.Errorf("%w: %v bpm", ErrTempo, c.BPM)
	}
	if len(c.Notes) == 0 {
		return ErrEmptyChart
	}
	lanes := c.Lanes()
	for i, n := range c.Notes {
		if n.Lane < 0 || n.Lane >= lanes {
			return fmt.Errorf("%w: note %d lane %d, chart has %d lanes", ErrInvalidLane, i, n.Lane, lanes)
		}
		if n.Beat < 0 || math.IsNaN(n.Beat) {
			return fmt.Errorf("%w: note %d beat %v", ErrNegativeBeat, i, n.Beat)
		}
	}
	return nil
}

func (c *Chart) Sorted() bool {
	return sort.SliceIsSorted(c.Notes, func(i, j int) bool {
		return c.Notes[i].Beat < c.Notes[j].Beat
	})
}

// Sort orders the notes by beat, ties keep their loaded order.
func (c *Chart) Sort() {
	sort.SliceStable(c.Notes, func(i, j int) bool {
		return c.Notes[i].Beat < c.Notes[j].Beat
	})
}

// Hash identifies the playable content of a chart for score history.
func (c *Chart) Hash() string {
	h := sha256.New()
	h.Write([]byte(strconv.FormatFloat(c.BPM, 'g', -1, 64)))
	h.Write([]byte{byte(c.Difficulty.NKeys)})
	for _, n := range c.Notes {
		h.Write([]byte(strconv.Itoa(n.Lane)))
		h.Write([]byte{':'})
		h.Write([]byte(strconv.FormatFloat(n.Beat, 'g', -1, 64)))
		h.Write([]byte{';'})
	}
	sum := h.Sum(nil)
	return base64.StdEncoding.EncodeToString(sum)
}

// End is the audio position of the last note.
func (c *Chart) End() time.Duration {
	if len(c.Notes) == 0 {
		return c.Offset
	}
	last := 0.0
	for _, n := range c.Notes {
		if n.Beat > last {
			last = n.Beat
		}
	}
	return c.Offset + time.Duration(last*float64(c.BeatLength()))
}
