package highlights

import "github.com/forPelevin/shortsclip/internal/types"

// EvenlySpaced returns n windows of clipLen spread over [0, duration-clipLen].
// A source no longer than clipLen yields a single window over all of it.
func EvenlySpaced(duration, clipLen float64, n int) []types.ClipWindow {
	if duration <= 0 {
		return nil
	}
	if duration <= clipLen {
		return []types.ClipWindow{{Start: 0, End: duration}}
	}
	step := (duration - clipLen) / float64(max(1, n))
	out := make([]types.ClipWindow, 0, max(0, n))
	for i := 0; i < n; i++ {
		start := float64(i) * step
		end := start + clipLen
		if end > duration {
			end = duration
		}
		out = append(out, types.ClipWindow{Start: start, End: end})
	}
	return out
}
