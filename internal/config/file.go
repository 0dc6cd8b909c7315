package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration decodes TOML strings such as "150ms".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if nil != err {
		return err
	}
	*d = Duration(v)
	return nil
}

// FileConfig is the TOML config file, nil fields are left alone.
type FileConfig struct {
	Timing  TimingConfig `toml:"timing"`
	Keys    KeysConfig   `toml:"keys"`
	Input   InputConfig  `toml:"input"`
	DB      *string      `toml:"db"`
	Verbose *bool        `toml:"verbose"`
}

type TimingConfig struct {
	Delay       *Duration `toml:"delay"`
	Offset      *Duration `toml:"offset"`
	Travel      *Duration `toml:"travel-time"`
	FramePeriod *Duration `toml:"frame-period"`
	Latency     *Duration `toml:"latency"`
	Perfect     *Duration `toml:"perfect"`
	Good        *Duration `toml:"good"`
	Okay        *Duration `toml:"okay"`
}

type KeysConfig struct {
	Single *string `toml:"single"`
	Solo   *string `toml:"solo"`
	Double *string `toml:"double"`
}

type InputConfig struct {
	Serial        *string   `toml:"serial"`
	Baud          *int      `toml:"baud"`
	SerialRelease *Duration `toml:"serial-release"`
	MIDI          *string   `toml:"midi"`
	MIDIBase      *uint8    `toml:"midi-base-note"`
	Evdev         *string   `toml:"evdev"`
}

// LoadFile reads a TOML config from path. A missing file is not an error.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, nil
	}
	if _, err := os.Stat(path); nil != err {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("unable to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); nil != err {
		return FileConfig{}, fmt.Errorf("unable to decode config: %w", err)
	}
	return cfg, nil
}

func (f FileConfig) apply(o *Options) {
	duration := func(name string, dst *time.Duration, v *Duration) {
		if nil != v && !o.set[name] {
			*dst = time.Duration(*v)
		}
	}
	str := func(name string, dst *string, v *string) {
		if nil != v && !o.set[name] {
			*dst = *v
		}
	}

	duration("delay", &o.Delay, f.Timing.Delay)
	duration("offset", &o.Offset, f.Timing.Offset)
	duration("travel-time", &o.Travel, f.Timing.Travel)
	duration("frame-period", &o.FramePeriod, f.Timing.FramePeriod)
	duration("latency", &o.Latency, f.Timing.Latency)
	duration("perfect", &o.Perfect, f.Timing.Perfect)
	duration("good", &o.Good, f.Timing.Good)
	duration("okay", &o.Okay, f.Timing.Okay)

	str("keys-single", &o.KeysSingle, f.Keys.Single)
	str("keys-solo", &o.KeysSolo, f.Keys.Solo)
	str("keys-double", &o.KeysDouble, f.Keys.Double)

	str("serial", &o.Serial, f.Input.Serial)
	if nil != f.Input.Baud && !o.set["baud"] {
		o.Baud = *f.Input.Baud
	}
	duration("serial-release", &o.SerialRelease, f.Input.SerialRelease)
	str("midi", &o.MIDI, f.Input.MIDI)
	if nil != f.Input.MIDIBase && !o.set["midi-base-note"] {
		o.MIDIBase = *f.Input.MIDIBase
	}
	str("evdev", &o.Evdev, f.Input.Evdev)

	str("db", &o.DB, f.DB)
	if nil != f.Verbose && !o.set["verbose"] {
		o.Verbose = *f.Verbose
	}
}

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if nil != err || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if nil != err || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "rhythm", "config.toml")
}

func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), "rhythm", "scores.db")
}
