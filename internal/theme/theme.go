package theme

import (
	"github.com/Authcursed/Rhythm-Game/internal/game"
	"github.com/Authcursed/Rhythm-Game/internal/session"
)

type Theme interface {
	RenderTier(tier game.Tier) string
	RenderRank(rank session.Rank) string
	// A lane of the status line, colored by the beat of its next note
	RenderLane(lane int, pressed bool, next *game.LiveNote) string
	RenderResults(snapshot session.Snapshot, width int) string
}
