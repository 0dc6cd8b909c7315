package theme

import (
	"strings"
	"testing"
	"time"

	"github.com/Authcursed/Rhythm-Game/internal/game"
	"github.com/Authcursed/Rhythm-Game/internal/session"
)

func TestDenom(t *testing.T) {
	tests := map[float64]int{
		0:        1,
		3:        1,
		4.5:      2,
		1.0 / 3:  3,
		2.25:     4,
		1.0 / 6:  6,
		0.125:    8,
		0.0625:   16,
		0.1:      -1,
		7.0 / 12: 12,
	}
	for beat, expected := range tests {
		if d := denom(beat); d != expected {
			t.Log("beat    ", beat)
			t.Log("denom   ", d)
			t.Log("expected", expected)
			t.Fail()
		}
	}
}

func TestRenderResults(t *testing.T) {
	th := &DefaultTheme{}
	snap := session.Snapshot{
		State:    session.Finalized,
		Score:    1234,
		MaxCombo: 17,
		Counts:   game.Counts{10, 5, 2, 1},
		Rank:     session.RankB,
		Mean:     -3 * time.Millisecond,
	}
	out := th.RenderResults(snap, 80)
	for _, want := range []string{"Results", "1234", "17", "Perfect", "Miss", "-3.00 ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("results are missing %q:\n%v", want, out)
		}
	}
	if strings.Contains(out, "aborted") {
		t.Errorf("results of a finished play marked aborted")
	}
	snap.Aborted = true
	if out := th.RenderResults(snap, 0); !strings.Contains(out, "aborted") {
		t.Errorf("aborted play not marked:\n%v", out)
	}
}

func TestRenderLane(t *testing.T) {
	th := &DefaultTheme{}
	if s := th.RenderLane(0, false, nil); !strings.Contains(s, emptySym) {
		t.Errorf("empty lane rendered as %q", s)
	}
	if s := th.RenderLane(0, true, nil); !strings.Contains(s, pressedSym) {
		t.Errorf("pressed lane rendered as %q", s)
	}
	if s := th.RenderLane(1, false, &game.LiveNote{Beat: 2.5}); !strings.Contains(s, laneSym) {
		t.Errorf("lane with a note rendered as %q", s)
	}
}
