// internal/score/score.go
//
// Score calculator for a single ten-pin bowling game.
// Responsibilities:
//   - Walk the flattened, chronological list of knocked-down pins frame by frame.
//   - Apply strike (next two throws) and spare (next throw) bonuses.
//   - Report an incomplete trailing frame as its first throw only.
//
// Notes:
//   - Input values are pins per throw, never running totals.
//   - Bonus throws of the tenth frame only feed look-aheads; scoring stops
//     after ten frames.
package score

const (
	frameCount = 10
	allPins    = 10
)

// Breakdown returns the score of every frame that has at least one throw in
// pins, in frame order. At most ten entries are returned; an empty input
// yields an empty slice.
func Breakdown(pins []int) []int {
	frames := make([]int, 0, frameCount)

	for i := 0; i < len(pins) && len(frames) < frameCount; {
		first := pins[i]

		// Strike: one throw, bonus is the next two values.
		if first == allPins {
			frames = append(frames, allPins+sumNext(pins, i+1, 2))
			i++
			continue
		}

		// Only one throw recorded so far for this frame.
		if i+1 >= len(pins) {
			frames = append(frames, first)
			break
		}

		second := pins[i+1]
		i += 2
		if first+second == allPins {
			frames = append(frames, allPins+sumNext(pins, i, 1))
		} else {
			frames = append(frames, first+second)
		}
	}
	return frames
}

// Total returns the game score for pins, the sum of Breakdown(pins).
func Total(pins []int) int {
	total := 0
	for _, s := range Breakdown(pins) {
		total += s
	}
	return total
}

// sumNext adds up to n values of pins starting at from.
func sumNext(pins []int, from, n int) int {
	sum := 0
	for j := from; j < len(pins) && j < from+n; j++ {
		sum += pins[j]
	}
	return sum
}
