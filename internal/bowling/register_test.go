package bowling

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"
)

var testNow = time.Date(2024, 3, 10, 18, 7, 30, 0, time.UTC)

// play registers every pin count in order and fails the test on rejection.
func play(t *testing.T, pins ...int) *Game {
	t.Helper()
	g := NewGame(testNow)
	for i, p := range pins {
		r, err := Register(g, p, testNow)
		if err != nil {
			t.Fatalf("throw %d (%d pins) rejected: %v", i+1, p, err)
		}
		g = r.Game
	}
	return g
}

func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestRegisterScenarios(t *testing.T) {
	tests := []struct {
		name  string
		pins  []int
		want  int
		ended bool
	}{
		{name: "worst score", pins: repeat(0, 20), want: 0, ended: true},
		{name: "best score", pins: repeat(10, 12), want: 300, ended: true},
		{name: "no extra throw in last frame", pins: []int{0, 5, 10, 7, 0, 2, 3, 0, 0, 7, 3, 10, 2, 6, 9, 0, 4, 3}, want: 96, ended: true},
		{name: "extra throw after strike", pins: []int{1, 5, 5, 5, 10, 2, 3, 1, 0, 7, 3, 10, 2, 6, 9, 0, 10, 10, 10}, want: 132, ended: true},
		{name: "extra throw after spare", pins: []int{1, 6, 5, 5, 10, 10, 1, 0, 7, 3, 7, 1, 2, 6, 9, 0, 2, 8, 5}, want: 117, ended: true},
		{name: "in progress", pins: []int{0, 0, 2, 2, 5}, want: 9},
		{name: "nine strikes and a three", pins: append(repeat(10, 9), 3), want: 249},
		{name: "nine strikes and an open tenth", pins: append(repeat(10, 9), 0, 0), want: 240, ended: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := play(t, tt.pins...)
			if g.TotalScore != tt.want {
				t.Fatalf("expected total %d, got %d", tt.want, g.TotalScore)
			}
			if g.Ended() != tt.ended {
				t.Fatalf("expected ended=%v, got status %v", tt.ended, g.Status)
			}
		})
	}
}

func TestRegisterRejectsFrameOverflow(t *testing.T) {
	g := play(t, 0, 0, 2, 2, 5)
	before := g.Clone()

	_, err := Register(g, 6, testNow.Add(time.Minute))
	if !errors.Is(err, ErrFrameScoreExceeded) {
		t.Fatalf("expected frame score exceeded, got %v", err)
	}
	if !reflect.DeepEqual(g, before) {
		t.Fatalf("game changed after rejected throw:\n got %+v\nwant %+v", g, before)
	}
	if g.TotalScore != 9 {
		t.Fatalf("expected score 9, got %d", g.TotalScore)
	}
}

func TestRegisterLastFrameCeilings(t *testing.T) {
	nine := repeat(0, 18)
	tests := []struct {
		name   string
		tenth  []int
		next   int
		accept bool
	}{
		{name: "open first throw plus too many", tenth: []int{3}, next: 8},
		{name: "open first throw plus spare", tenth: []int{3}, next: 7, accept: true},
		{name: "strike then strike", tenth: []int{10}, next: 10, accept: true},
		{name: "strike then partial then overflow", tenth: []int{10, 3}, next: 8},
		{name: "strike then partial then rest", tenth: []int{10, 3}, next: 7, accept: true},
		{name: "two strikes then strike", tenth: []int{10, 10}, next: 10, accept: true},
		{name: "two strikes then gutter", tenth: []int{10, 10}, next: 0, accept: true},
		{name: "spare then strike", tenth: []int{4, 6}, next: 10, accept: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := play(t, append(append([]int{}, nine...), tt.tenth...)...)
			r, err := Register(g, tt.next, testNow)
			if tt.accept {
				if err != nil {
					t.Fatalf("expected throw to be accepted, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrFrameScoreExceeded) {
				t.Fatalf("expected frame score exceeded, got %v (registration %+v)", err, r)
			}
		})
	}
}

func TestRegisterFrameClosing(t *testing.T) {
	tests := []struct {
		name       string
		pins       []int
		wantFrames int
		lastOpen   bool
	}{
		{name: "strike closes frame", pins: []int{10}, wantFrames: 1},
		{name: "first ball leaves frame open", pins: []int{4}, wantFrames: 1, lastOpen: true},
		{name: "second ball closes frame", pins: []int{0, 0}, wantFrames: 1},
		{name: "spare closes frame", pins: []int{6, 4}, wantFrames: 1},
		{name: "strike in tenth owes bonus", pins: append(repeat(0, 18), 10), wantFrames: 10, lastOpen: true},
		{name: "spare in tenth owes bonus", pins: append(repeat(0, 18), 3, 7), wantFrames: 10, lastOpen: true},
		{name: "two strikes in tenth owe bonus", pins: append(repeat(0, 18), 10, 10), wantFrames: 10, lastOpen: true},
		{name: "open tenth closes", pins: append(repeat(0, 18), 3, 6), wantFrames: 10},
		{name: "bonus ball closes tenth", pins: append(repeat(0, 18), 3, 7, 2), wantFrames: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := play(t, tt.pins...)
			if len(g.Frames) != tt.wantFrames {
				t.Fatalf("expected %d frames, got %d", tt.wantFrames, len(g.Frames))
			}
			if g.LastFrame().Open() != tt.lastOpen {
				t.Fatalf("expected last frame open=%v, got %v", tt.lastOpen, g.LastFrame().Status)
			}
			wantEnded := tt.wantFrames == MaxFrames && !tt.lastOpen
			if g.Ended() != wantEnded {
				t.Fatalf("expected ended=%v, got %v", wantEnded, g.Status)
			}
		})
	}
}

func TestRegisterAfterEnd(t *testing.T) {
	g := play(t, repeat(0, 20)...)
	if _, err := Register(g, 1, testNow); !errors.Is(err, ErrGameAlreadyEnded) {
		t.Fatalf("expected game already ended, got %v", err)
	}
}

func TestRegisterEleventhFrameIsInvalid(t *testing.T) {
	// Status left ongoing so only the frame number guards the game.
	g := play(t, repeat(0, 20)...)
	g.Status = GameOngoing

	_, err := Register(g, 1, testNow)
	if CodeOf(err) != CodeInvalidFrame {
		t.Fatalf("expected invalid frame, got %v", err)
	}
	if msgs := Messages(err); len(msgs) != 1 || msgs[0] != "Number must be in range [1, 10]" {
		t.Fatalf("unexpected messages %v", msgs)
	}
}

func TestRegisterAccumulatesMessages(t *testing.T) {
	g := play(t, repeat(0, 20)...)
	g.Status = GameOngoing

	_, err := Register(g, 11, testNow)
	msgs := Messages(err)
	want := []string{"Number must be in range [1, 10]", "Score must be in range [0, 10]"}
	if !reflect.DeepEqual(msgs, want) {
		t.Fatalf("expected %v, got %v", want, msgs)
	}
	if CodeOf(err) != CodeInvalidFrame {
		t.Fatalf("expected code of first failure, got %q", CodeOf(err))
	}
}

func TestRegisterRejectsPinsOutOfRange(t *testing.T) {
	g := NewGame(testNow)
	for _, pins := range []int{-1, 11, 100} {
		_, err := Register(g, pins, testNow)
		if CodeOf(err) != CodeInvalidThrow {
			t.Fatalf("pins %d: expected invalid throw, got %v", pins, err)
		}
	}
	if len(g.Frames) != 0 {
		t.Fatalf("expected no frames, got %d", len(g.Frames))
	}
}

func TestRegisterThirdThrowBeforeLastFrame(t *testing.T) {
	g := NewGame(testNow)
	g.Frames = []Frame{{Number: 1, Status: FrameOpen, Throws: []Throw{{Number: 1, Score: 1}, {Number: 2, Score: 1}}}}

	_, err := Register(g, 1, testNow)
	if CodeOf(err) != CodeInvalidThrow {
		t.Fatalf("expected invalid throw, got %v", err)
	}
}

func TestRegisterUpdatesBookkeeping(t *testing.T) {
	g := play(t, 3)
	later := testNow.Add(time.Hour)

	r, err := Register(g, 7, later)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if r.NewFrame || r.Frame != 1 || !r.FrameClosed() {
		t.Fatalf("unexpected registration %+v", r)
	}
	if r.Throw != (Throw{Number: 2, Score: 7}) {
		t.Fatalf("unexpected throw %+v", r.Throw)
	}
	if !r.Game.UpdatedAt.Equal(later) {
		t.Fatalf("expected timestamp %v, got %v", later, r.Game.UpdatedAt)
	}
	if r.Game.Version != g.Version+1 {
		t.Fatalf("expected version %d, got %d", g.Version+1, r.Game.Version)
	}
}

func TestRegisterFrameTotals(t *testing.T) {
	g := play(t, 10, 3, 4, 5)
	got := []int{g.Frames[0].TotalScore, g.Frames[1].TotalScore, g.Frames[2].TotalScore}
	want := []int{17, 7, 5}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected frame totals %v, got %v", want, got)
	}
}

// referenceScore scores a complete game ball by ball, the way a score sheet
// is filled in by hand.
func referenceScore(rolls []int) int {
	total, ball := 0, 0
	for frame := 0; frame < MaxFrames; frame++ {
		switch {
		case rolls[ball] == 10:
			total += 10 + rolls[ball+1] + rolls[ball+2]
			ball++
		case rolls[ball]+rolls[ball+1] == 10:
			total += 10 + rolls[ball+2]
			ball += 2
		default:
			total += rolls[ball] + rolls[ball+1]
			ball += 2
		}
	}
	return total
}

// randomGame returns a complete, legal sequence of rolls.
func randomGame(rng *rand.Rand) []int {
	var rolls []int
	for frame := 1; frame < MaxFrames; frame++ {
		first := rng.Intn(11)
		rolls = append(rolls, first)
		if first < 10 {
			rolls = append(rolls, rng.Intn(11-first))
		}
	}

	first := rng.Intn(11)
	rolls = append(rolls, first)
	standing := 10 - first
	if standing == 0 {
		standing = 10
	}
	second := rng.Intn(standing + 1)
	rolls = append(rolls, second)

	if first == 10 || first+second == 10 {
		standing -= second
		if standing == 0 {
			standing = 10
		}
		rolls = append(rolls, rng.Intn(standing+1))
	}
	return rolls
}

func TestRegisterMatchesReferenceScoring(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		rolls := randomGame(rng)
		g := play(t, rolls...)

		if !g.Ended() {
			t.Fatalf("game %v did not end", rolls)
		}
		if want := referenceScore(rolls); g.TotalScore != want {
			t.Fatalf("game %v: expected %d, got %d", rolls, want, g.TotalScore)
		}
		assertNumbering(t, g)
	}
}

func assertNumbering(t *testing.T, g *Game) {
	t.Helper()
	for i, f := range g.Frames {
		if f.Number != i+1 {
			t.Fatalf("frame at index %d has number %d", i, f.Number)
		}
		if !f.IsLast() && f.Pins() > MaxPins {
			t.Fatalf("frame %d knocked down %d pins", f.Number, f.Pins())
		}
		for j, th := range f.Throws {
			if th.Number != j+1 {
				t.Fatalf("frame %d throw at index %d has number %d", f.Number, j, th.Number)
			}
		}
	}
}
