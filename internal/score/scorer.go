package score

import (
	"context"
	"time"

	"github.com/Authcursed/Rhythm-Game/internal/engine"
	"github.com/Authcursed/Rhythm-Game/internal/game"
	"github.com/Authcursed/Rhythm-Game/internal/session"
)

type Scorer interface {
	// Save a finished play, returning its id
	Save(ctx context.Context, play Play) (string, error)

	// Load previous plays of the chart, best first
	Load(ctx context.Context, chart *game.Chart) ([]History, error)

	Best(ctx context.Context, chart *game.Chart) (History, bool, error)

	Close() error
}

// Play is a finished play-through as it is saved.
type Play struct {
	Chart    *game.Chart
	Snapshot session.Snapshot
	Inputs   []game.Input
	Offset   time.Duration // Global offset the play used
}

type History struct {
	ID       string
	Sum      string
	Played   time.Time
	Snapshot session.Snapshot
	Offset   time.Duration
	Inputs   []game.Input
}

// Rescore judges a recorded play again, with the offset it was played with.
func Rescore(chart *game.Chart, history History, options engine.Options) (session.Snapshot, error) {
	options.Offset = history.Offset
	return engine.Replay(chart, history.Inputs, options)
}
