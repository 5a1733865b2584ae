//go:build integration

package itest

import (
	"fmt"
	"os/exec"

	"github.com/tidwall/gjson"
)

type probeInfo struct {
	Duration float64
	Width    int
	Height   int
	HasAudio bool
}

func probeClip(mp4Path string) (probeInfo, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration:stream=codec_type,width,height",
		"-of", "json",
		mp4Path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return probeInfo{}, fmt.Errorf("ffprobe: %w\n%s", err, string(b))
	}
	if !gjson.ValidBytes(b) {
		return probeInfo{}, fmt.Errorf("ffprobe: invalid json %q", b)
	}
	info := probeInfo{Duration: gjson.GetBytes(b, "format.duration").Float()}
	for _, s := range gjson.GetBytes(b, "streams").Array() {
		switch s.Get("codec_type").String() {
		case "video":
			info.Width = int(s.Get("width").Int())
			info.Height = int(s.Get("height").Int())
		case "audio":
			info.HasAudio = true
		}
	}
	if info.Duration <= 0 {
		return info, fmt.Errorf("ffprobe: no duration for %s", mp4Path)
	}
	return info, nil
}
