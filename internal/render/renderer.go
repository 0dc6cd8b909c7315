package render

import (
	"context"
	"time"
)

type Renderer interface {
	Init() error
	Deinit() error
	AddDecoration(col, row uint16, content string, frames int)
	RenderLoop(ctx context.Context, period time.Duration, render func(now time.Time) bool) error
	Fill(row, column uint16, message string)
	ClearLine(row uint16)
}
