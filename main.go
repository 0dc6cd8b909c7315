package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/Authcursed/Rhythm-Game/internal/config"
	"github.com/Authcursed/Rhythm-Game/internal/parser"
	"github.com/Authcursed/Rhythm-Game/internal/render"
	"github.com/Authcursed/Rhythm-Game/internal/score"
	"github.com/Authcursed/Rhythm-Game/internal/theme"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	if err := run(); nil != err {
		log.Fatalln(err)
	}
}

func run() error {
	options, err := config.Parse(os.Args[1:])
	if nil != err {
		return err
	}

	store, err := score.Open(options.DB, nil)
	if nil != err {
		return err
	}
	defer func() {
		if err := store.Close(); nil != err {
			log.Println("unable to close score database", err)
		}
	}()

	// Ensure our Default implementations are used as interfaces
	p := &Program{
		Options:  options,
		Parser:   &parser.DefaultParser{},
		Scorer:   store,
		Theme:    &theme.DefaultTheme{},
		Renderer: render.NewRenderer(),
	}
	if err := p.Init(); nil != err {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if options.Replay {
		return p.Replay(ctx)
	}
	return p.Play(ctx)
}
