package theme

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Authcursed/Rhythm-Game/internal/game"
	"github.com/Authcursed/Rhythm-Game/internal/session"
	"github.com/charmbracelet/lipgloss"
)

type DefaultTheme struct {
}

const (
	laneSym    = "⬤"
	pressedSym = "◉"
	emptySym   = "·"
)

var (
	tierStyles = [game.TierCount]lipgloss.Style{
		game.Perfect: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ADECEC")),
		game.Good:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00EC80")),
		game.Okay:    lipgloss.NewStyle().Foreground(lipgloss.Color("#ECC300")),
		game.Miss:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EC1E00")),
	}
	rankStyles = map[session.Rank]lipgloss.Style{
		session.RankSS: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ECC300")),
		session.RankS:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EC8000")),
		session.RankA:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00EC80")),
		session.RankB:  lipgloss.NewStyle().Foreground(lipgloss.Color("#0076EC")),
		session.RankC:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6A00EC")),
		session.RankD:  lipgloss.NewStyle().Foreground(lipgloss.Color("#EC1E00")),
	}
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	resultsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Padding(0, 2)

	noteColors = map[int]lipgloss.Color{
		1:  "#EC1E00", // 1/4 red
		2:  "#0076EC", // 1/8 blue
		3:  "#6A00EC", // 1/12 purple
		4:  "#ECC300", // 1/16 yellow
		6:  "#EC006A", // 1/24 pink
		8:  "#EC8000", // 1/32 orange
		12: "#ADECEC", // 1/48 light blue
		16: "#00EC80", // 1/64 green
		-1: "#FFFFFF", // other white
	}
	denoms = [...]int{1, 2, 3, 4, 6, 8, 12, 16}
)

// denom is the beat subdivision a note falls on, -1 if it is none of the usual ones.
func denom(beat float64) int {
	_, frac := math.Modf(beat)
	for _, d := range denoms {
		x := frac * float64(d)
		if math.Abs(x-math.Round(x)) < 1e-6 {
			return d
		}
	}
	return -1
}

func getNoteColor(d int) lipgloss.Color {
	col, ok := noteColors[d]
	if !ok {
		return noteColors[-1]
	}
	return col
}

func (t *DefaultTheme) RenderTier(tier game.Tier) string {
	if int(tier) >= len(tierStyles) {
		return tier.String()
	}
	return tierStyles[tier].Render(tier.String())
}

func (t *DefaultTheme) RenderRank(rank session.Rank) string {
	style, ok := rankStyles[rank]
	if !ok {
		return mutedStyle.Render(string(rank))
	}
	return style.Render(string(rank))
}

func (t *DefaultTheme) RenderLane(lane int, pressed bool, next *game.LiveNote) string {
	if pressed {
		return lipgloss.NewStyle().Bold(true).Render(pressedSym)
	}
	if nil == next {
		return mutedStyle.Render(emptySym)
	}
	return lipgloss.NewStyle().Foreground(getNoteColor(denom(next.Beat))).Render(laneSym)
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%6.2f ms", float64(d)/float64(time.Millisecond))
}

func (t *DefaultTheme) RenderResults(s session.Snapshot, width int) string {
	var b strings.Builder
	line := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%10s:  ", label)))
		b.WriteString(value)
		b.WriteString("\n")
	}
	title := "Results"
	if s.Aborted {
		title = "Results (aborted)"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n\n")
	line("Rank", t.RenderRank(s.Rank))
	line("Score", fmt.Sprintf("%d", s.Score))
	line("Max Combo", fmt.Sprintf("%d", s.MaxCombo))
	line("Accuracy", fmt.Sprintf("%.2f%%", 100*s.Accuracy()))
	for i := 0; i < game.TierCount; i++ {
		tier := game.Tier(i)
		b.WriteString(tierStyles[tier].Render(fmt.Sprintf("%10s:  ", tier)))
		b.WriteString(fmt.Sprintf("%d\n", s.Counts[tier]))
	}
	line("Mean", ms(s.Mean))
	line("Stdev", ms(s.Stdev))
	line("Error dt", ms(s.TotalError))

	box := resultsStyle.Render(strings.TrimRight(b.String(), "\n"))
	if width <= 0 {
		return box
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
}
