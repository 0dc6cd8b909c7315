package judge

import (
	"testing"
	"time"

	"github.com/Authcursed/Rhythm-Game/internal/game"
)

func ms(n float64) time.Duration {
	return time.Duration(n * float64(time.Millisecond))
}

func newJudge(t *testing.T) *Judge {
	j, err := New(0, game.DefaultWindows())
	if nil != err {
		t.Fatal(err)
	}
	return j
}

func note(id int, target time.Duration) *game.LiveNote {
	return &game.LiveNote{ID: id, Lane: 0, Target: target, Spawn: target - 2*time.Second, Travel: 2 * time.Second}
}

var classifyTests = []struct {
	delta time.Duration
	tier  game.Tier
	hit   bool
}{
	{ms(49), game.Perfect, true},
	{ms(50), game.Perfect, true},
	{-ms(50), game.Perfect, true},
	{ms(50.1), game.Good, true},
	{ms(100), game.Good, true},
	{-ms(150), game.Okay, true},
	{ms(200), game.Okay, true},
	{ms(200.1), game.Miss, false},
	{-ms(200.1), game.Miss, false},
}

func TestPressClassification(t *testing.T) {
	target := 10 * time.Second
	for _, test := range classifyTests {
		j := newJudge(t)
		if err := j.Add(note(1, target)); nil != err {
			t.Fatal(err)
		}
		result, ok := j.Press(target + test.delta)
		if ok != test.hit {
			t.Log("delta", test.delta)
			t.Log("expected hit", test.hit, "got", ok)
			t.Fail()
			continue
		}
		if ok && (result.Tier != test.tier || result.Delta != test.delta) {
			t.Log("delta   ", test.delta)
			t.Log("expected", test.tier)
			t.Log("got     ", result.Tier, result.Delta)
			t.Fail()
		}
	}
}

func TestEarliestDueWins(t *testing.T) {
	j := newJudge(t)
	now := 10 * time.Second
	t1, t2 := now-ms(40), now+ms(30)
	j.Add(note(2, t2))
	j.Add(note(1, t1))

	result, ok := j.Press(now)
	if !ok {
		t.Fatal("expected a hit")
	}
	if result.Note != 1 || result.Target != t1 {
		t.Fatalf("expected the earliest due note 1, got note %d", result.Note)
	}
	if len(j.Live()) != 1 || j.Live()[0].ID != 2 {
		t.Fatal("expected only the later note to remain")
	}
}

func TestPressWithoutCandidate(t *testing.T) {
	j := newJudge(t)
	if _, ok := j.Press(time.Second); ok {
		t.Fatal("expected an empty lane press to have no effect")
	}
	j.Add(note(1, 10*time.Second))
	if _, ok := j.Press(9 * time.Second); ok {
		t.Fatal("expected an early press to have no effect")
	}
	if n := j.Live()[0]; n.State != game.Pending {
		t.Fatalf("expected the note to stay pending, got %v", n.State)
	}
	if !j.Pressed() {
		t.Fatal("expected the lane to be pressed")
	}
	j.Release()
	if j.Pressed() {
		t.Fatal("expected release to clear the pressed state")
	}
}

func TestOverrunMiss(t *testing.T) {
	j := newJudge(t)
	target := 10 * time.Second
	n := note(1, target)
	j.Add(n)

	results := j.Update(target, nil)
	if len(results) != 0 || n.State != game.Candidate {
		t.Fatalf("expected a candidate on the hit line, got %v results state %v", len(results), n.State)
	}
	results = j.Update(target+ms(200), results)
	if len(results) != 0 {
		t.Fatal("a note on the okay boundary is still hittable")
	}
	results = j.Update(target+ms(201), results)
	if len(results) != 1 || results[0].Tier != game.Miss || results[0].Delta != ms(201) {
		t.Fatalf("expected one miss, got %+v", results)
	}
	if n.State != game.Resolved || len(j.Live()) != 0 {
		t.Fatal("expected the missed note to be resolved and removed")
	}
	if j.Violations() != 0 {
		t.Fatal("a candidate miss is not a violation")
	}

	// resolved exactly once
	if more := j.Update(target+time.Second, nil); len(more) != 0 {
		t.Fatal("note judged twice")
	}
	if _, ok := j.Press(target + time.Second); ok {
		t.Fatal("note judged twice")
	}
}

func TestExitWithoutEntry(t *testing.T) {
	j := newJudge(t)
	target := 10 * time.Second
	j.Add(note(1, target))
	j.Update(target-time.Second, nil)
	// the frame jumps straight over the window
	results := j.Update(target+time.Second, nil)
	if len(results) != 1 || results[0].Tier != game.Miss {
		t.Fatal("expected the skipped note to resolve as a miss")
	}
	if j.Violations() != 1 {
		t.Fatalf("expected one violation, got %d", j.Violations())
	}
}

func TestExactlyOnce(t *testing.T) {
	j := newJudge(t)
	resolved := map[int]int{}
	for i := 0; i < 40; i++ {
		j.Add(note(i, time.Duration(i)*ms(120)+time.Second))
	}
	for now := time.Duration(0); now < 8*time.Second; now += ms(5) {
		if now%ms(35) == 0 {
			if r, ok := j.Press(now); ok {
				resolved[r.Note]++
			}
		}
		for _, r := range j.Update(now, nil) {
			resolved[r.Note]++
		}
	}
	for i := 0; i < 40; i++ {
		if resolved[i] != 1 {
			t.Fatalf("note %d resolved %d times", i, resolved[i])
		}
	}
}

func TestAddWrongLane(t *testing.T) {
	j := newJudge(t)
	n := note(1, time.Second)
	n.Lane = 2
	if err := j.Add(n); nil == err {
		t.Fatal("expected a lane mismatch error")
	}
}

func TestAbandon(t *testing.T) {
	j := newJudge(t)
	j.Add(note(1, time.Second))
	j.Add(note(2, 2*time.Second))
	if n := j.Abandon(); n != 2 || len(j.Live()) != 0 {
		t.Fatalf("expected 2 abandoned notes, got %d", n)
	}
}

func TestNewRejectsWindows(t *testing.T) {
	if _, err := New(0, game.Windows{Perfect: ms(100), Good: ms(50), Okay: ms(200)}); nil == err {
		t.Fatal("expected non increasing windows to be rejected")
	}
}

var sink game.Result

func BenchmarkPress(b *testing.B) {
	j, _ := New(0, game.DefaultWindows())
	for n := 0; n < b.N; n++ {
		target := time.Duration(n) * time.Second
		j.Add(&game.LiveNote{ID: n, Target: target})
		sink, _ = j.Press(target + ms(12))
	}
}
