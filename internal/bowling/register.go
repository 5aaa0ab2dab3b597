// internal/bowling/register.go
//
// Throw registration for a single game.
// Responsibilities:
//   - Pick the frame that receives the next throw (open it when needed).
//   - Validate the throw and the frame's pin sum, collecting every message.
//   - Close the frame and end the game when the rules say so.
//   - Recompute the whole-game score from the flattened throw sequence.
//
// Notes:
//   - Register never mutates its input; the caller persists Registration.Game.
//   - Frame pin ceilings in the tenth frame are frame-local: 10 on the first
//     throw, 10 or 20 on the second (20 after a strike), 20 or 30 on the
//     third (30 after two strikes).

package bowling

import (
	"fmt"
	"time"

	"github.com/robalobadob/bowling/apps/go-server/internal/score"
)

// Registration is the result of an accepted throw.
type Registration struct {
	Game     *Game // Game state after the throw, score recomputed.
	Frame    int   // Number of the frame that received the throw.
	NewFrame bool  // True when the frame was opened by this throw.
	Throw    Throw // The recorded throw.
}

// FrameClosed reports whether the throw closed its frame.
func (r *Registration) FrameClosed() bool {
	return !r.Game.Frames[r.Frame-1].Open()
}

// Register validates pins as the next throw of g and returns the resulting
// game state. On failure the returned error is an *Error listing every
// violation found; g is left untouched either way.
func Register(g *Game, pins int, now time.Time) (*Registration, error) {
	if g.Ended() {
		return nil, ErrGameAlreadyEnded
	}

	next := g.Clone()
	frame, isNew := targetFrame(next)

	var v violations
	v.add(CodeInvalidFrame, frame.Validate()...)

	thrw := Throw{Number: len(frame.Throws) + 1, Score: pins}
	v.add(CodeInvalidThrow, thrw.Validate()...)
	if !frame.IsLast() && thrw.Number > 2 {
		v.add(CodeInvalidThrow, "Number must be in range [1, 2] before the last frame")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	previous := frame.Pins()
	if !frameScoreValid(frame, thrw, previous+pins) {
		return nil, ErrFrameScoreExceeded
	}

	frame.Throws = append(frame.Throws, thrw)
	if closesFrame(frame, thrw, previous+pins) {
		frame.Status = FrameClosed
	}
	if isNew {
		next.Frames = append(next.Frames, *frame)
	}
	if frame.IsLast() && !frame.Open() {
		next.Status = GameEnded
	}

	if err := recompute(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = now.UTC()
	next.Version++

	return &Registration{Game: next, Frame: frame.Number, NewFrame: isNew, Throw: thrw}, nil
}

// targetFrame returns the frame that receives the next throw. A frame that
// does not exist yet is returned detached and reported as new.
func targetFrame(g *Game) (*Frame, bool) {
	last := g.LastFrame()
	switch {
	case last == nil:
		return &Frame{Number: 1, Status: FrameOpen}, true
	case last.Open():
		return last, false
	default:
		return &Frame{Number: last.Number + 1, Status: FrameOpen}, true
	}
}

// frameScoreValid checks the pins knocked down in frame, including the new
// throw, against the ceiling for that throw.
func frameScoreValid(frame *Frame, t Throw, framePins int) bool {
	if !frame.IsLast() || t.Number == 1 {
		return framePins <= MaxPins
	}

	previous := framePins - t.Score
	if t.Number == 2 {
		if previous < MaxPins {
			return framePins <= MaxPins
		}
		return framePins <= 2*MaxPins
	}

	if previous < 2*MaxPins {
		return framePins <= 2*MaxPins
	}
	return framePins <= 3*MaxPins
}

// closesFrame reports whether frame takes no more throws after t.
func closesFrame(frame *Frame, t Throw, framePins int) bool {
	switch t.Number {
	case 1:
		// A strike closes every frame but the last, which owes bonus throws.
		return t.Strike() && !frame.IsLast()
	case 2:
		if frame.IsLast() {
			return framePins < MaxPins
		}
		return true
	default:
		return true
	}
}

// recompute rescores every frame of g from its flattened throws.
func recompute(g *Game) error {
	frames := score.Breakdown(g.Pins())
	total := 0
	for i := range g.Frames {
		g.Frames[i].TotalScore = 0
		if i < len(frames) {
			g.Frames[i].TotalScore = frames[i]
			total += frames[i]
		}
		if msgs := g.Frames[i].Validate(); len(msgs) > 0 {
			return fmt.Errorf("frame %d after rescoring: %v", g.Frames[i].Number, msgs)
		}
	}
	g.TotalScore = total
	if msgs := g.Validate(); len(msgs) > 0 {
		return fmt.Errorf("game after rescoring: %v", msgs)
	}
	return nil
}
