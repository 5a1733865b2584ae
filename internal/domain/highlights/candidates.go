package highlights

import (
	"iter"
	"sort"

	"github.com/forPelevin/shortsclip/internal/types"
)

const (
	// LeadIn is how far a window starts before the span that triggered it.
	LeadIn = 1.2
	// DefaultMinGap is the minimum spacing between kept windows, in seconds.
	DefaultMinGap = 2.0
)

// BuildCandidates proposes one fixed-length window per span with at least one
// hook keyword. Output is in span order.
func BuildCandidates(spans iter.Seq[types.CaptionSpan], duration, clipLen float64) []types.ClipWindow {
	if spans == nil || duration <= 0 || clipLen <= 0 {
		return nil
	}
	var out []types.ClipWindow
	for s := range spans {
		score := Score(s.Text)
		if score == 0 {
			continue
		}
		start := s.Start - LeadIn
		if start < 0 {
			start = 0
		}
		end := start + clipLen
		if end > duration {
			end = duration
		}
		if end <= start {
			continue
		}
		out = append(out, types.ClipWindow{Start: start, End: end, Score: score})
	}
	return out
}

// Deduplicate walks windows chronologically (ties: higher score first) and
// keeps a window only when it starts at least minGap after the last kept one
// ends. The input slice is not modified.
func Deduplicate(windows []types.ClipWindow, minGap float64) []types.ClipWindow {
	sorted := append([]types.ClipWindow(nil), windows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].Score > sorted[j].Score
	})
	var out []types.ClipWindow
	for _, w := range sorted {
		if len(out) == 0 || w.Start >= out[len(out)-1].End+minGap {
			out = append(out, w)
		}
	}
	return out
}

// Rank orders windows by score descending, then start ascending, and keeps
// at most limit of them.
func Rank(windows []types.ClipWindow, limit int) []types.ClipWindow {
	out := append([]types.ClipWindow(nil), windows...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Start < out[j].Start
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Select runs score, dedupe and rank. An empty result means the caller
// should fall back to EvenlySpaced.
func Select(spans iter.Seq[types.CaptionSpan], duration, clipLen float64, maxClips int) []types.ClipWindow {
	cands := BuildCandidates(spans, duration, clipLen)
	if len(cands) == 0 {
		return nil
	}
	return Rank(Deduplicate(cands, DefaultMinGap), maxClips)
}
