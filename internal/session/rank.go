package session

import (
	"github.com/Authcursed/Rhythm-Game/internal/game"
)

type Rank string

const (
	RankSS   Rank = "SS"
	RankS    Rank = "S"
	RankA    Rank = "A"
	RankB    Rank = "B"
	RankC    Rank = "C"
	RankD    Rank = "D"
	RankNone Rank = "N/A"
)

func accuracy(c game.Counts) float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return (float64(c[game.Perfect])*1.0 + float64(c[game.Good])*0.75 + float64(c[game.Okay])*0.5) / float64(total)
}

// ComputeRank checks the thresholds from the highest rank down, the first match wins.
func ComputeRank(c game.Counts) Rank {
	total := c.Total()
	if total == 0 {
		return RankNone
	}
	acc := accuracy(c)
	switch {
	case c[game.Miss] == 0 && c[game.Perfect] == total:
		return RankSS
	case acc >= 0.95 && c[game.Miss] <= 1:
		return RankS
	case acc >= 0.90:
		return RankA
	case acc >= 0.80:
		return RankB
	case acc >= 0.70:
		return RankC
	}
	return RankD
}
