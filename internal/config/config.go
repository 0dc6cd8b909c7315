package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Authcursed/Rhythm-Game/internal/game"
	"gopkg.in/alecthomas/kingpin.v2"
)

const Version = "0.3.0"

var ErrKeys = errors.New("key set has the wrong number of keys")

type Options struct {
	Directory  string
	Difficulty string
	Replay     bool

	Delay       time.Duration
	Offset      time.Duration
	Travel      time.Duration
	FramePeriod time.Duration
	Latency     time.Duration

	Perfect time.Duration
	Good    time.Duration
	Okay    time.Duration

	KeysSingle string
	KeysSolo   string
	KeysDouble string

	Serial        string
	Baud          int
	SerialRelease time.Duration
	MIDI          string
	MIDIBase      uint8
	Evdev         string

	DB         string
	ConfigFile string
	Verbose    bool

	// Flags the user passed, these are never overridden by the config file
	set map[string]bool
}

func (o *Options) mark(name string) kingpin.Action {
	return func(*kingpin.ParseContext) error {
		o.set[name] = true
		return nil
	}
}

// Parse reads the command line, overlays the config file and validates the result.
func Parse(args []string) (*Options, error) {
	o := &Options{set: map[string]bool{}}
	app := kingpin.New("rhythm", "Rhythm game timing engine")
	app.Version(Version)
	app.HelpFlag.Short('h')

	app.Arg("directory", "Song/chart directory").Required().ExistingDirVar(&o.Directory)
	app.Flag("difficulty", "Chart difficulty name, prompts when empty").Short('D').StringVar(&o.Difficulty)
	app.Flag("replay", "Replay the best recorded play instead of playing").BoolVar(&o.Replay)

	app.Flag("delay", "Start delay").Default("1.5s").Short('d').Action(o.mark("delay")).DurationVar(&o.Delay)
	app.Flag("offset", "Global offset").Default("0ms").Short('o').Action(o.mark("offset")).DurationVar(&o.Offset)
	app.Flag("travel-time", "Time a note is visible before its target").Default("2s").Short('t').Action(o.mark("travel-time")).DurationVar(&o.Travel)
	app.Flag("frame-period", "Tick frame period").Default("1ms").Short('p').Action(o.mark("frame-period")).DurationVar(&o.FramePeriod)
	app.Flag("latency", "Speaker buffer length").Default("16ms").Action(o.mark("latency")).DurationVar(&o.Latency)

	app.Flag("perfect", "Perfect window").Default("50ms").Action(o.mark("perfect")).DurationVar(&o.Perfect)
	app.Flag("good", "Good window").Default("100ms").Action(o.mark("good")).DurationVar(&o.Good)
	app.Flag("okay", "Okay window").Default("200ms").Action(o.mark("okay")).DurationVar(&o.Okay)

	app.Flag("keys-single", "Keys for 4k").Default("dfjk").Short('k').Action(o.mark("keys-single")).StringVar(&o.KeysSingle)
	app.Flag("keys-solo", "Keys for 6k").Default("sdfjkl").Action(o.mark("keys-solo")).StringVar(&o.KeysSolo)
	app.Flag("keys-double", "Keys for 8k").Default("asdfjkl;").Action(o.mark("keys-double")).StringVar(&o.KeysDouble)

	app.Flag("serial", "Serial port of a hit pad").Action(o.mark("serial")).StringVar(&o.Serial)
	app.Flag("baud", "Serial baud rate").Default("9600").Action(o.mark("baud")).IntVar(&o.Baud)
	app.Flag("serial-release", "Release delay after a serial hit").Default("100ms").Action(o.mark("serial-release")).DurationVar(&o.SerialRelease)
	app.Flag("midi", "MIDI input port name").Action(o.mark("midi")).StringVar(&o.MIDI)
	app.Flag("midi-base-note", "MIDI note of lane 0").Default("60").Action(o.mark("midi-base-note")).Uint8Var(&o.MIDIBase)
	app.Flag("evdev", "Linux input device").Action(o.mark("evdev")).StringVar(&o.Evdev)

	app.Flag("db", "Score database").Default(DefaultDBPath()).Action(o.mark("db")).StringVar(&o.DB)
	app.Flag("config", "TOML config file").Default(DefaultConfigPath()).StringVar(&o.ConfigFile)
	app.Flag("verbose", "Log every judgement").Short('v').Action(o.mark("verbose")).BoolVar(&o.Verbose)

	if _, err := app.Parse(args); nil != err {
		return nil, err
	}

	file, err := LoadFile(o.ConfigFile)
	if nil != err {
		return nil, err
	}
	file.apply(o)

	if err := o.Validate(); nil != err {
		return nil, err
	}
	return o, nil
}

// Windows are the judgement windows, valid after Validate.
func (o *Options) Windows() game.Windows {
	return game.Windows{Perfect: o.Perfect, Good: o.Good, Okay: o.Okay}
}

func (o *Options) Validate() error {
	if err := o.Windows().Validate(); nil != err {
		return err
	}
	if o.Travel <= 0 {
		return fmt.Errorf("travel time must be positive, got %v", o.Travel)
	}
	if o.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %v", o.Delay)
	}
	if o.FramePeriod <= 0 {
		return fmt.Errorf("frame period must be positive, got %v", o.FramePeriod)
	}
	// A frame longer than the okay window can jump over it
	if o.FramePeriod > o.Okay {
		return fmt.Errorf("frame period %v is longer than the okay window %v", o.FramePeriod, o.Okay)
	}
	for _, nKeys := range game.NKeyMap {
		if len(o.Keys(nKeys)) != int(nKeys) {
			return fmt.Errorf("%w: %d keys for %dk", ErrKeys, len(o.Keys(nKeys)), nKeys)
		}
	}
	if o.Serial != "" && o.Baud <= 0 {
		return fmt.Errorf("baud rate must be positive, got %v", o.Baud)
	}
	return nil
}

func (o *Options) Keys(nKeys uint8) []rune {
	switch nKeys {
	case 4:
		return []rune(o.KeysSingle)
	case 6:
		return []rune(o.KeysSolo)
	case 8:
		return []rune(o.KeysDouble)
	}
	return []rune(o.KeysSingle)
}
