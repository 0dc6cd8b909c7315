package parser

import "github.com/Authcursed/Rhythm-Game/internal/game"

type Parser interface {
	Parse(file string) ([]*game.Chart, error)
}
