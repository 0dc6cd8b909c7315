package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

// DefaultRenderer draws on an ANSI terminal. When the output is not a terminal
// Init and Deinit write nothing, frames are still flushed.
type DefaultRenderer struct {
	Out io.Writer
	Fd  int

	buffer      strings.Builder
	decorations []*decoration
	terminal    bool
	sleep       func(time.Duration)
}

type decoration struct {
	X, Y    uint16
	Content string
	Frames  int // remaining frames until removed
}

func NewRenderer() *DefaultRenderer {
	return &DefaultRenderer{Out: os.Stdout, Fd: int(os.Stdout.Fd())}
}

func (r *DefaultRenderer) out() io.Writer {
	if nil == r.Out {
		return os.Stdout
	}
	return r.Out
}

func (r *DefaultRenderer) Init() error {
	r.terminal = term.IsTerminal(r.Fd)
	if !r.terminal {
		return nil
	}
	_, err := fmt.Fprintf(r.out(), "%s%s%s",
		"\033[?1049h", // Enable alternate buffer
		"\033[?25l",   // Make the cursor invisible
		"\033[J",      // Clear the screen
	)
	return err
}

func (r *DefaultRenderer) Deinit() error {
	if !r.terminal {
		return nil
	}
	_, err := fmt.Fprintf(r.out(), "%s%s",
		"\033[?1049l", // Disable alternate buffer
		"\033[?25h",   // Make the cursor visible
	)
	return err
}

// Size is the terminal size, 80x24 when it can not be read.
func (r *DefaultRenderer) Size() (int, int) {
	w, h, err := term.GetSize(r.Fd)
	if nil != err || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

func (r *DefaultRenderer) AddDecoration(col, row uint16, content string, frames int) {
	r.decorations = append(r.decorations, &decoration{
		X:       col,
		Y:       row,
		Content: content,
		Frames:  frames,
	})
	r.Fill(row, col, content)
}

func (r *DefaultRenderer) tickDecorations() {
	nd := make([]*decoration, 0, len(r.decorations))
	for _, d := range r.decorations {
		if d.Frames == 0 {
			r.ClearLine(d.Y)
			continue
		}
		nd = append(nd, d)
		d.Frames--
	}
	r.decorations = nd
}

// RenderLoop calls render once per period until it returns false or ctx is done.
func (r *DefaultRenderer) RenderLoop(ctx context.Context, period time.Duration, render func(now time.Time) bool) error {
	sleep := r.sleep
	if nil == sleep {
		sleep = time.Sleep
	}
	for {
		if err := ctx.Err(); nil != err {
			return err
		}
		now := time.Now()
		deadline := now.Add(period)

		cont := render(now)

		r.tickDecorations()
		if err := r.flush(); nil != err {
			return fmt.Errorf("unable to draw frame: %w", err)
		}
		if !cont {
			return nil
		}
		sleep(time.Until(deadline))
	}
}

func (r *DefaultRenderer) Fill(row, column uint16, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.FormatInt(int64(row), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(column), 10))
	r.buffer.WriteString("H")
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) ClearLine(row uint16) {
	r.Fill(row, 1, "\033[2K")
}

func (r *DefaultRenderer) flush() error {
	if r.buffer.Len() == 0 {
		return nil
	}
	_, err := io.WriteString(r.out(), r.buffer.String())
	r.buffer.Reset()
	return err
}
