// Package audio plays the chart's track through the speaker and exposes the
// stream position as the device time the clock runs on.
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

var ErrUnsupported = errors.New("unsupported audio format")

// Extensions that Decode understands.
var Extensions = []string{".ogg", ".mp3", ".wav"}

func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Decode opens a track by its file extension.
func Decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	if !Supported(path) {
		return nil, beep.Format{}, fmt.Errorf("%w: %v", ErrUnsupported, path)
	}
	f, err := os.Open(path)
	if nil != err {
		return nil, beep.Format{}, err
	}
	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		streamer, format, err = wav.Decode(f)
	}
	if nil != err {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("unable to decode %v: %w", path, err)
	}
	return streamer, format, nil
}

// counter streams its mixer and counts the samples handed to the speaker.
// The count, plus the wall time since the last buffer was requested, is the device time.
type counter struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	chunk   time.Duration
	mixer   *beep.Mixer
	samples int
	last    time.Time
	since   func(time.Time) time.Duration
	floor   time.Duration
}

func newCounter(rate beep.SampleRate, chunk time.Duration) *counter {
	return &counter{
		rate:  rate,
		chunk: chunk,
		mixer: &beep.Mixer{},
		since: time.Since,
	}
}

// Stream never drains, the mixer produces silence while it is empty.
func (c *counter) Stream(samples [][2]float64) (int, bool) {
	n, _ := c.mixer.Stream(samples)
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	c.mu.Lock()
	c.samples += len(samples)
	c.last = time.Now()
	c.mu.Unlock()
	return len(samples), true
}

func (c *counter) Err() error {
	return nil
}

// streamed is the device time without interpolation, the time the next buffer starts at.
func (c *counter) streamed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate.D(c.samples)
}

func (c *counter) now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.rate.D(c.samples)
	if !c.last.IsZero() {
		elapsed := c.since(c.last)
		if elapsed > c.chunk {
			elapsed = c.chunk
		}
		t += elapsed
	}
	// Interpolation is capped, so a late buffer must not move time backwards
	if t < c.floor {
		t = c.floor
	}
	c.floor = t
	return t
}

// Device is a clock.Device backed by the speaker.
type Device struct {
	track    beep.StreamSeekCloser
	format   beep.Format
	rate     beep.SampleRate
	counter  *counter
	mu       sync.Mutex
	started  bool
	finished bool
	stopped  bool
}

// Open decodes the track and starts the speaker streaming silence, so device time
// advances before playback is scheduled.
func Open(path string, latency time.Duration) (*Device, error) {
	track, format, err := Decode(path)
	if nil != err {
		return nil, err
	}
	if latency <= 0 {
		latency = time.Second / 60
	}
	d := &Device{
		track:   track,
		format:  format,
		rate:    format.SampleRate,
		counter: newCounter(format.SampleRate, latency),
	}
	if err := speaker.Init(d.rate, d.rate.N(latency)); nil != err {
		track.Close()
		return nil, fmt.Errorf("unable to initialise speaker: %w", err)
	}
	speaker.Play(d.counter)
	return d, nil
}

func (d *Device) Now() time.Duration {
	return d.counter.now()
}

// ScheduleStart queues the track behind enough silence to begin exactly at device time at.
func (d *Device) ScheduleStart(at time.Duration) error {
	speaker.Lock()
	defer speaker.Unlock()
	if err := d.track.Seek(0); nil != err {
		return fmt.Errorf("unable to rewind track: %w", err)
	}
	lead := at - d.counter.streamed()
	if lead < 0 {
		lead = 0
	}
	d.mu.Lock()
	d.started, d.finished, d.stopped = true, false, false
	d.mu.Unlock()
	d.counter.mixer.Add(beep.Seq(
		beep.Silence(d.rate.N(lead)),
		d.track,
		beep.Callback(func() {
			d.mu.Lock()
			d.finished = true
			d.mu.Unlock()
		}),
	))
	return nil
}

func (d *Device) Duration() time.Duration {
	return d.format.SampleRate.D(d.track.Len())
}

func (d *Device) Playing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.started && !d.finished && !d.stopped
}

func (d *Device) Stop() {
	speaker.Lock()
	d.counter.mixer.Clear()
	speaker.Unlock()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}

// Close stops playback and releases the decoder.
func (d *Device) Close() error {
	d.Stop()
	return d.track.Close()
}
