package parser

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Authcursed/Rhythm-Game/internal/game"
)

var ErrVariableTempo = errors.New("charts with tempo changes are not supported")

type DefaultParser struct{}

// 0 – No note
// 1 – Normal note
// 2 – Hold head
// 3 – Hold/Roll tail
// 4 – Roll head
// M – Mine (or other negative note)
// K – Automatic keysound
// L – Lift note
// F – Fake note

// Hold and roll heads are played as taps, tails and everything else are not notes.
func (p *DefaultParser) isNote(c byte) bool {
	return c == '1' || c == '2' || c == '4'
}

func (p *DefaultParser) isRowChar(c byte) bool {
	return strings.IndexByte("01234MKLF", c) >= 0
}

func (p *DefaultParser) Parse(file string) ([]*game.Chart, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, err
	}
	charts, err := p.ParseString(string(data))
	if nil != err {
		return nil, fmt.Errorf("unable to parse %v: %w", file, err)
	}
	return charts, nil
}

type header struct {
	title, artist string
	offset        time.Duration
	bpm           float64
}

func (p *DefaultParser) parseHeader(meta string) (header, error) {
	var h header
	for _, mdl := range strings.Split(meta, "#") {
		mdl = strings.TrimSpace(mdl)
		mdl = strings.TrimSuffix(mdl, ";")
		key, value, ok := strings.Cut(mdl, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToUpper(key) {
		case "TITLE":
			h.title = value
		case "ARTIST":
			h.artist = value
		case "OFFSET":
			offs, err := strconv.ParseFloat(value, 64)
			if nil != err {
				return h, fmt.Errorf("invalid offset: %w", err)
			}
			// the file stores the negated audio position of beat 0
			h.offset = time.Duration(-offs * float64(time.Second))
		case "BPMS":
			value = strings.ReplaceAll(value, "\n", "")
			for i, bpm := range strings.Split(value, ",") {
				as := strings.Split(strings.TrimSpace(bpm), "=")
				if len(as) != 2 {
					return h, fmt.Errorf("invalid bpm %q", bpm)
				}
				bv, err := strconv.ParseFloat(strings.TrimSpace(as[1]), 64)
				if nil != err {
					return h, fmt.Errorf("invalid bpm %q: %w", bpm, err)
				}
				if i == 0 {
					h.bpm = bv
				} else if bv != h.bpm {
					return h, ErrVariableTempo
				}
			}
		}
	}
	if h.bpm <= 0 {
		return h, fmt.Errorf("%w: missing #BPMS", game.ErrTempo)
	}
	return h, nil
}

func (p *DefaultParser) ParseString(data string) ([]*game.Chart, error) {
	str := strings.ReplaceAll(data, "\r", "")
	sections := strings.Split(str, "#NOTES:")

	h, err := p.parseHeader(sections[0])
	if nil != err {
		return nil, err
	}

	charts := []*game.Chart{}
	for _, section := range sections[1:] {
		// type:description:difficulty:meter:radar:data;
		fields := strings.SplitN(section, ":", 6)
		if len(fields) != 6 {
			return nil, errors.New("malformed #NOTES section")
		}
		chartType := strings.TrimSpace(fields[0])
		nKeys, ok := game.NKeyMap[chartType]
		if !ok {
			continue
		}
		body := fields[5]
		if end := strings.IndexByte(body, ';'); end >= 0 {
			body = body[:end]
		}
		notes, err := p.parseNotes(body, int(nKeys))
		if nil != err {
			return nil, err
		}

		chart := &game.Chart{
			Title:  h.title,
			Artist: h.artist,
			BPM:    h.bpm,
			Offset: h.offset,
			Difficulty: game.Difficulty{
				Name:  strings.TrimSpace(fields[2]),
				Meter: strings.TrimSpace(fields[3]),
				NKeys: nKeys,
			},
			Notes: notes,
		}
		if err := chart.Validate(); nil != err {
			return nil, fmt.Errorf("%v %v: %w", chartType, chart.Difficulty.Name, err)
		}
		charts = append(charts, chart)
	}
	if len(charts) == 0 {
		return nil, errors.New("no playable charts")
	}
	return charts, nil
}

// parseNotes converts measures of rows into beats, each measure is 4 beats long.
func (p *DefaultParser) parseNotes(body string, nKeys int) ([]game.Note, error) {
	notes := []game.Note{}
	for m, block := range strings.Split(body, ",") {
		rows := []string{}
		for _, l := range strings.Split(block, "\n") {
			if i := strings.Index(l, "//"); i >= 0 {
				l = l[:i]
			}
			l = strings.TrimSpace(l)
			if l == "" {
				continue
			}
			if len(l) != nKeys {
				return nil, fmt.Errorf("measure %d: row %q does not have %d columns", m, l, nKeys)
			}
			rows = append(rows, l)
		}

		beatsPerRow := 4.0 / float64(len(rows)) // 1/4, 1/8, 1/16, 1/24 etc
		for i, row := range rows {
			beat := float64(m)*4 + float64(i)*beatsPerRow
			for lane := 0; lane < nKeys; lane++ {
				c := row[lane]
				if !p.isRowChar(c) {
					return nil, fmt.Errorf("measure %d: unknown note %q", m, c)
				}
				if p.isNote(c) {
					notes = append(notes, game.Note{Lane: lane, Beat: beat})
				}
			}
		}
	}
	return notes, nil
}
