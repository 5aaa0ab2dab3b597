// internal/bowling/types.go
//
// Entity definitions for a bowling game.
// Defines:
//   - GameStatus / FrameStatus: closed status enumerations.
//   - Game, Frame, Throw: the recorded state of one game.
//   - Validate methods reporting entity-level constraint violations.

package bowling

import (
	"fmt"
	"time"
)

const (
	MaxFrames     = 10  // frames per game
	MaxPins       = 10  // pins standing at the start of a frame
	MaxThrows     = 3   // throws in the last frame when a bonus is earned
	MaxFrameScore = 30  // strike followed by two strikes
	MaxGameScore  = 300 // perfect game
)

// GameStatus is the lifecycle state of a game.
type GameStatus uint8

const (
	GameOngoing GameStatus = iota + 1
	GameEnded
)

var gameStatusText = map[GameStatus]string{
	GameOngoing: "ongoing",
	GameEnded:   "ended",
}

// String returns the wire name of the status.
func (s GameStatus) String() string {
	if v, ok := gameStatusText[s]; ok {
		return v
	}
	return fmt.Sprintf("GameStatus(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s GameStatus) MarshalText() ([]byte, error) {
	v, ok := gameStatusText[s]
	if !ok {
		return nil, fmt.Errorf("invalid game status %d", uint8(s))
	}
	return []byte(v), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *GameStatus) UnmarshalText(b []byte) error {
	v, err := ParseGameStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseGameStatus converts a stored status name back into a GameStatus.
func ParseGameStatus(v string) (GameStatus, error) {
	for s, name := range gameStatusText {
		if name == v {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown game status %q", v)
}

// FrameStatus is the lifecycle state of a frame.
type FrameStatus uint8

const (
	FrameOpen FrameStatus = iota + 1
	FrameClosed
)

var frameStatusText = map[FrameStatus]string{
	FrameOpen:   "open",
	FrameClosed: "closed",
}

func (s FrameStatus) String() string {
	if v, ok := frameStatusText[s]; ok {
		return v
	}
	return fmt.Sprintf("FrameStatus(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s FrameStatus) MarshalText() ([]byte, error) {
	v, ok := frameStatusText[s]
	if !ok {
		return nil, fmt.Errorf("invalid frame status %d", uint8(s))
	}
	return []byte(v), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *FrameStatus) UnmarshalText(b []byte) error {
	v, err := ParseFrameStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseFrameStatus converts a stored status name back into a FrameStatus.
func ParseFrameStatus(v string) (FrameStatus, error) {
	for s, name := range frameStatusText {
		if name == v {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown frame status %q", v)
}

// Game holds the recorded state of a single bowling game.
type Game struct {
	ID         int64      // Store-assigned identifier.
	Status     GameStatus // Ongoing until the tenth frame closes.
	TotalScore int        // Score over every recorded throw, [0, 300].
	UpdatedAt  time.Time  // Last successful change.
	Version    int64      // Incremented on every accepted throw.
	Frames     []Frame    // Ordered by frame number, starting at 1.
}

// Frame is one scoring unit of a game.
type Frame struct {
	Number     int         // 1..10, contiguous within a game.
	Status     FrameStatus // Open until the frame takes no more throws.
	TotalScore int         // Scored value including strike/spare bonus, [0, 30].
	Throws     []Throw     // Ordered by throw number, starting at 1.
}

// Throw records the pins knocked down by a single ball.
type Throw struct {
	Number int // 1..3; 3 only in the last frame.
	Score  int // Pins knocked down by this throw, [0, 10].
}

// NewGame returns an ongoing game with no frames.
func NewGame(now time.Time) *Game {
	return &Game{
		Status:    GameOngoing,
		UpdatedAt: now.UTC(),
		Frames:    []Frame{},
	}
}

// Ended reports whether the game takes no more throws.
func (g *Game) Ended() bool { return g.Status == GameEnded }

// LastFrame returns the highest-numbered frame, or nil before the first throw.
func (g *Game) LastFrame() *Frame {
	if len(g.Frames) == 0 {
		return nil
	}
	return &g.Frames[len(g.Frames)-1]
}

// Pins flattens every throw of the game in chronological order.
func (g *Game) Pins() []int {
	pins := make([]int, 0, 21)
	for _, f := range g.Frames {
		for _, t := range f.Throws {
			pins = append(pins, t.Score)
		}
	}
	return pins
}

// Clone returns a deep copy of g.
func (g *Game) Clone() *Game {
	c := *g
	c.Frames = make([]Frame, len(g.Frames))
	for i, f := range g.Frames {
		c.Frames[i] = f
		c.Frames[i].Throws = append([]Throw(nil), f.Throws...)
	}
	return &c
}

// Validate reports game-level constraint violations.
func (g *Game) Validate() []string {
	var msgs []string
	if _, ok := gameStatusText[g.Status]; !ok {
		msgs = append(msgs, "Status is not included in the list")
	}
	if g.TotalScore < 0 || g.TotalScore > MaxGameScore {
		msgs = append(msgs, "Total score must be in range [0, 300]")
	}
	return msgs
}

// Open reports whether the frame still takes throws.
func (f *Frame) Open() bool { return f.Status == FrameOpen }

// IsLast reports whether f is the tenth frame.
func (f *Frame) IsLast() bool { return f.Number >= MaxFrames }

// Pins sums the pins knocked down in this frame.
func (f *Frame) Pins() int {
	sum := 0
	for _, t := range f.Throws {
		sum += t.Score
	}
	return sum
}

// Validate reports frame-level constraint violations.
func (f *Frame) Validate() []string {
	var msgs []string
	if _, ok := frameStatusText[f.Status]; !ok {
		msgs = append(msgs, "Status is not included in the list")
	}
	if f.Number < 1 || f.Number > MaxFrames {
		msgs = append(msgs, "Number must be in range [1, 10]")
	}
	if f.TotalScore < 0 || f.TotalScore > MaxFrameScore {
		msgs = append(msgs, "Total score must be in range [0, 30]")
	}
	return msgs
}

// Strike reports whether the throw knocked down every pin.
func (t Throw) Strike() bool { return t.Score >= MaxPins }

// Validate reports throw-level constraint violations.
func (t Throw) Validate() []string {
	var msgs []string
	if !ScoreInRange(t.Score) {
		msgs = append(msgs, "Score must be in range [0, 10]")
	}
	if t.Number < 1 || t.Number > MaxThrows {
		msgs = append(msgs, "Number must be in range [1, 3]")
	}
	return msgs
}

// ScoreInRange reports whether pins is a possible single-throw pin count.
func ScoreInRange(pins int) bool { return pins >= 0 && pins <= MaxPins }
