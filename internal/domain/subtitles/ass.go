package subtitles

import (
	"fmt"
	"strings"
	"time"

	"github.com/forPelevin/shortsclip/internal/types"
)

// RenderASS builds a clip-local ASS script from the caption spans that
// overlap [start, end). It returns "" when no span overlaps.
func RenderASS(spans []types.CaptionSpan, start, end float64) string {
	events := collectEvents(spans, start, end)
	if len(events) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(assHeader())
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, ev := range events {
		b.WriteString("Dialogue: 0,")
		b.WriteString(assTime(ev.Start))
		b.WriteString(",")
		b.WriteString(assTime(ev.End))
		b.WriteString(",Shorts,,0,0,0,,")
		b.WriteString(strings.Join(wrapText(ev.Text), `\N`))
		b.WriteString("\n")
	}
	return b.String()
}

type event struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

func collectEvents(spans []types.CaptionSpan, start, end float64) []event {
	var out []event
	for _, s := range spans {
		if s.End <= start || s.Start >= end || s.End <= s.Start {
			continue
		}
		text := sanitizeASS(s.Text)
		if text == "" {
			continue
		}
		ss, se := s.Start, s.End
		if ss < start {
			ss = start
		}
		if se > end {
			se = end
		}
		// Events are clip-local: the renderer sees a trimmed input.
		out = append(out, event{Start: dur(ss - start), End: dur(se - start), Text: text})
	}
	return out
}

// wrapText splits text into lines that fit the vertical frame.
func wrapText(text string) []string {
	const (
		charBudget = 28
		wordBudget = 6
	)
	var out []string
	var cur []string
	curLen := 0
	for _, w := range strings.Fields(text) {
		wl := len([]rune(w))
		nextLen := curLen
		if curLen > 0 {
			nextLen++
		}
		nextLen += wl
		if len(cur) > 0 && (len(cur) >= wordBudget || nextLen > charBudget) {
			out = append(out, strings.Join(cur, " "))
			cur = cur[:0]
			nextLen = wl
		}
		cur = append(cur, w)
		curLen = nextLen
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}

func assHeader() string {
	return strings.TrimSpace(`
[Script Info]
ScriptType: v4.00+
PlayResX: 1080
PlayResY: 1920
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Shorts, Inter, 72, &H00FFFFFF, &H00FFD200, &H00000000, &H64000000, 1,0,0,0,100,100,0,0,1,6,2,2, 60,60,360,1
`)
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", hs, ms, s, cs)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
