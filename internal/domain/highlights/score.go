package highlights

import "strings"

// HookKeywords are attention-grabbing Indonesian/English terms. Matching is
// by lower-case substring.
var HookKeywords = []string{
	"wow",
	"gila",
	"viral",
	"kaget",
	"ternyata",
	"fakta",
	"rahasia",
	"wajib",
	"jangan",
	"breaking",
	"terungkap",
}

// Score returns how many distinct hook keywords appear in text.
func Score(text string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, kw := range HookKeywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}
