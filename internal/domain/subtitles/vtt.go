package subtitles

import (
	"fmt"
	"html"
	"iter"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/forPelevin/shortsclip/internal/types"
)

var (
	reTiming = regexp.MustCompile(`((?:\d+:)?\d{1,2}:\d{2}[.,]\d{3})\s+-->\s+((?:\d+:)?\d{1,2}:\d{2}[.,]\d{3})`)
	reTag    = regexp.MustCompile(`<[^>]*>`)
)

// ReadVTT opens a caption track. Only an unreadable file is an error; the
// returned sequence skips malformed cue blocks.
func ReadVTT(path string) (iter.Seq[types.CaptionSpan], error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read captions: %w", err)
	}
	return ParseVTT(string(b)), nil
}

// ParseVTT yields caption spans in track order. The sequence is lazy and can
// be ranged over any number of times.
func ParseVTT(raw string) iter.Seq[types.CaptionSpan] {
	return func(yield func(types.CaptionSpan) bool) {
		var block []string
		flush := func() bool {
			defer func() { block = block[:0] }()
			span, ok := parseBlock(block)
			if !ok {
				return true
			}
			return yield(span)
		}
		for ln := range strings.SplitSeq(raw, "\n") {
			ln = strings.TrimSpace(ln)
			if ln == "" {
				if len(block) > 0 && !flush() {
					return
				}
				continue
			}
			block = append(block, ln)
		}
		if len(block) > 0 {
			flush()
		}
	}
}

// CollectVTT drains seq into a slice.
func CollectVTT(seq iter.Seq[types.CaptionSpan]) []types.CaptionSpan {
	var out []types.CaptionSpan
	for s := range seq {
		out = append(out, s)
	}
	return out
}

func parseBlock(lines []string) (types.CaptionSpan, bool) {
	timing := -1
	var m []string
	for i, ln := range lines {
		if mm := reTiming.FindStringSubmatch(ln); mm != nil {
			timing, m = i, mm
			break
		}
	}
	if timing < 0 {
		return types.CaptionSpan{}, false
	}

	// Lines before the timing line are the cue identifier.
	var parts []string
	for _, ln := range lines[timing+1:] {
		if strings.Contains(ln, "-->") || strings.HasPrefix(ln, "WEBVTT") {
			continue
		}
		t := strings.TrimSpace(html.UnescapeString(reTag.ReplaceAllString(ln, "")))
		if t != "" {
			parts = append(parts, t)
		}
	}
	text := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	if text == "" {
		return types.CaptionSpan{}, false
	}
	return types.CaptionSpan{
		Start: ParseTimestamp(m[1]),
		End:   ParseTimestamp(m[2]),
		Text:  text,
	}, true
}

// ParseTimestamp accepts H:MM:SS.mmm and MM:SS.mmm. Anything else is 0.
func ParseTimestamp(ts string) float64 {
	parts := strings.Split(strings.ReplaceAll(strings.TrimSpace(ts), ",", "."), ":")
	var h, m, s string
	switch len(parts) {
	case 3:
		h, m, s = parts[0], parts[1], parts[2]
	case 2:
		h, m, s = "0", parts[0], parts[1]
	default:
		return 0
	}
	hi, err := strconv.Atoi(h)
	if err != nil {
		return 0
	}
	mi, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	// Millisecond integer math keeps .mmm exact.
	sec, frac, _ := strings.Cut(s, ".")
	si, err := strconv.Atoi(sec)
	if err != nil {
		return 0
	}
	ms := 0
	if frac != "" {
		frac = (frac + "000")[:3]
		if ms, err = strconv.Atoi(frac); err != nil {
			return 0
		}
	}
	total := int64(hi)*3_600_000 + int64(mi)*60_000 + int64(si)*1000 + int64(ms)
	return float64(total) / 1000
}
