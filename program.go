package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Authcursed/Rhythm-Game/internal/audio"
	"github.com/Authcursed/Rhythm-Game/internal/config"
	"github.com/Authcursed/Rhythm-Game/internal/engine"
	"github.com/Authcursed/Rhythm-Game/internal/game"
	"github.com/Authcursed/Rhythm-Game/internal/input"
	"github.com/Authcursed/Rhythm-Game/internal/parser"
	"github.com/Authcursed/Rhythm-Game/internal/render"
	"github.com/Authcursed/Rhythm-Game/internal/score"
	"github.com/Authcursed/Rhythm-Game/internal/session"
	"github.com/Authcursed/Rhythm-Game/internal/theme"
	"github.com/eiannone/keyboard"
	"golang.org/x/term"
)

const (
	titleRow     = 2
	laneRow      = 4
	statusRow    = 6
	judgementRow = 8
	judgementFor = 400 * time.Millisecond
)

type Program struct {
	Options  *config.Options
	Parser   parser.Parser
	Scorer   score.Scorer
	Theme    theme.Theme
	Renderer *render.DefaultRenderer

	audioFile, chartFile string

	charts []*game.Chart
	chart  *game.Chart
	engine *engine.Engine
}

// findFiles picks the chart and track of a song directory, the last match of each wins.
func findFiles(directory string) (audioFile, chartFile string, err error) {
	if err := filepath.Walk(directory, func(p string, info os.FileInfo, err error) error {
		if nil != err {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch {
		case strings.EqualFold(filepath.Ext(info.Name()), ".sm"):
			chartFile = p
		case audio.Supported(info.Name()):
			audioFile = p
		}
		return nil
	}); nil != err {
		return "", "", fmt.Errorf("unable to walk song directory: %w", err)
	}

	if audioFile == "" || chartFile == "" {
		return "", "", fmt.Errorf("unable to find .sm and %v file in %v", strings.Join(audio.Extensions, "/"), directory)
	}
	return audioFile, chartFile, nil
}

func (p *Program) Init() error {
	var err error
	p.audioFile, p.chartFile, err = findFiles(p.Options.Directory)
	if nil != err {
		return err
	}

	p.charts, err = p.Parser.Parse(p.chartFile)
	if nil != err {
		return err
	}

	p.chart, err = p.selectChart()
	if nil != err {
		return err
	}
	log.Printf("Opening %v (%v, %v)\n", p.audioFile, p.chartFile, p.chart.Difficulty.Name)
	return nil
}

func chartByName(charts []*game.Chart, name string) (*game.Chart, bool) {
	for _, c := range charts {
		if strings.EqualFold(c.Difficulty.Name, name) {
			return c, true
		}
	}
	return nil, false
}

// selectChart uses the difficulty option, or asks for one when there is a choice.
func (p *Program) selectChart() (*game.Chart, error) {
	if p.Options.Difficulty != "" {
		c, ok := chartByName(p.charts, p.Options.Difficulty)
		if !ok {
			return nil, fmt.Errorf("no %v chart in %v", p.Options.Difficulty, p.chartFile)
		}
		return c, nil
	}
	if len(p.charts) == 1 || !term.IsTerminal(int(os.Stdin.Fd())) {
		return p.charts[0], nil
	}

	// Difficulty selection
	for i, c := range p.charts {
		fmt.Printf("%2v) %3v  %5v  %v (%vk)\n", i, c.Difficulty.Meter, len(c.Notes), c.Difficulty.Name, c.Difficulty.NKeys)
	}
	r, _, err := keyboard.GetSingleKey()
	if nil != err {
		return nil, fmt.Errorf("unable to read difficulty: %w", err)
	}
	index, err := strconv.Atoi(string(r))
	if nil != err || index < 0 || index >= len(p.charts) {
		return nil, fmt.Errorf("%q is not a listed difficulty", r)
	}
	return p.charts[index], nil
}

func (p *Program) engineOptions() engine.Options {
	o := engine.DefaultOptions()
	o.Windows = p.Options.Windows()
	o.Travel = p.Options.Travel
	o.Delay = p.Options.Delay
	o.Offset = p.Options.Offset
	o.Verbose = p.Options.Verbose
	return o
}

// openInputs starts every configured input device, quit is called when the player asks to leave.
func (p *Program) openInputs(ctx context.Context, quit func(), mailbox *input.Mailbox) ([]func() error, error) {
	closers := []func() error{}
	nKeys := p.chart.Difficulty.NKeys
	keys := p.Options.Keys(nKeys)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		k, err := input.OpenKeyboard(keys, p.Options.SerialRelease, mailbox, quit)
		if nil != err {
			return closers, fmt.Errorf("unable to open keyboard: %w", err)
		}
		closers = append(closers, k.Close)
	}
	if p.Options.Evdev != "" {
		e, err := input.OpenEvdev(p.Options.Evdev, input.KeyCodes(keys), mailbox)
		if nil != err {
			return closers, fmt.Errorf("unable to open %v: %w", p.Options.Evdev, err)
		}
		closers = append(closers, e.Close)
	}
	if p.Options.MIDI != "" {
		m, err := input.OpenMIDI(p.Options.MIDI, p.Options.MIDIBase, int(nKeys), mailbox)
		if nil != err {
			return closers, fmt.Errorf("unable to open midi port %v: %w", p.Options.MIDI, err)
		}
		closers = append(closers, func() error {
			m.Close()
			return nil
		})
	}
	if p.Options.Serial != "" {
		s := input.NewSerial(p.Options.Serial, p.Options.Baud, int(nKeys), p.Options.SerialRelease, mailbox)
		go s.Run(ctx)
	}
	return closers, nil
}

func (p *Program) Play(ctx context.Context) error {
	device, err := audio.Open(p.audioFile, p.Options.Latency)
	if nil != err {
		return err
	}
	defer device.Close()

	p.engine, err = engine.New(p.chart, device, p.engineOptions(), p)
	if nil != err {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	closers, err := p.openInputs(ctx, cancel, p.engine.Mailbox())
	defer func() {
		for _, c := range closers {
			if err := c(); nil != err {
				log.Println("unable to close input", err)
			}
		}
	}()
	if nil != err {
		return err
	}

	// Clear the screen and hide the cursor
	if err := p.Renderer.Init(); nil != err {
		return err
	}
	if err := p.engine.Start(); nil != err {
		p.Renderer.Deinit()
		return err
	}

	err = p.Renderer.RenderLoop(ctx, p.Options.FramePeriod, func(now time.Time) bool {
		running := p.engine.Tick()
		p.renderStatus()
		return running
	})
	// Quitting keeps the results so far
	p.engine.Abort()
	p.Renderer.Deinit()
	if nil != err && !errors.Is(err, context.Canceled) {
		return err
	}

	snapshot := p.engine.Snapshot()
	p.printResults(snapshot)
	if v := p.engine.Violations(); v > 0 {
		log.Printf("%v notes skipped their okay window, lower --frame-period", v)
	}

	id, err := p.Scorer.Save(context.Background(), score.Play{
		Chart:    p.chart,
		Snapshot: snapshot,
		Inputs:   p.engine.Inputs(),
		Offset:   p.Options.Offset,
	})
	if nil != err {
		return err
	}
	log.Println("saved play", id)
	return nil
}

// Replay judges the best saved play of the chart again and prints its results.
func (p *Program) Replay(ctx context.Context) error {
	best, ok, err := p.Scorer.Best(ctx, p.chart)
	if nil != err {
		return err
	}
	if !ok {
		return fmt.Errorf("no saved play of %v %v", p.chart.Title, p.chart.Difficulty.Name)
	}
	snapshot, err := score.Rescore(p.chart, best, p.engineOptions())
	if nil != err {
		return err
	}
	if snapshot.Score != best.Snapshot.Score {
		log.Printf("replay scored %v, the play saved %v", snapshot.Score, best.Snapshot.Score)
	}
	log.Println("replaying play", best.ID, "from", best.Played.Format(time.RFC1123))
	p.printResults(snapshot)
	return nil
}

func (p *Program) printResults(snapshot session.Snapshot) {
	width, _ := p.Renderer.Size()
	fmt.Println(p.Theme.RenderResults(snapshot, width))
}

func (p *Program) renderStatus() {
	r, e := p.Renderer, p.engine

	var lanes strings.Builder
	for lane := 0; lane < p.chart.Lanes(); lane++ {
		var next *game.LiveNote
		if live := e.Live(lane); len(live) > 0 {
			next = live[0]
		}
		lanes.WriteString(p.Theme.RenderLane(lane, e.Pressed(lane), next))
		lanes.WriteString("  ")
	}

	snap := e.Snapshot()
	r.Fill(titleRow, 2, fmt.Sprintf("%v - %v [%v]", p.chart.Artist, p.chart.Title, p.chart.Difficulty.Name))
	r.Fill(laneRow, 2, lanes.String())
	r.Fill(statusRow, 2, fmt.Sprintf("Score: %8v   Combo: %4v   Time: %8.2fs\033[K",
		snap.Score, snap.Combo, e.Clock().Position().Seconds()))
}

// Listener

func (p *Program) Spawn(note game.LiveNote) {}

func (p *Program) Judged(result game.Result) {
	frames := int(judgementFor / p.Options.FramePeriod)
	p.Renderer.ClearLine(judgementRow)
	p.Renderer.AddDecoration(2, judgementRow, fmt.Sprintf("%v  %+6.1f ms",
		p.Theme.RenderTier(result.Tier), float64(result.Delta)/float64(time.Millisecond)), frames)
}

func (p *Program) Press(lane int) {}

func (p *Program) Release(lane int) {}

func (p *Program) Finished(snapshot session.Snapshot) {
	log.Printf("finished with %v (%v)", snapshot.Score, snapshot.Rank)
}
