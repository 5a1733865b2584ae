package ffmpeg

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/forPelevin/shortsclip/internal/types"
)

func TestEncodeArgs_SoftwareProfile(t *testing.T) {
	job := types.EncodeJob{
		Input:  "/in/src.mp4",
		Output: "/out/a.mp4",
		Start:  8.8,
		End:    38.8,
		Profile: types.RenderProfile{
			Name: "sw", Codec: "libx264", Width: 720, Height: 1280, FPS: 24,
			Preset: "ultrafast", CRF: "28", AudioBitrate: "96k", Threads: 1,
			Extra: []string{"-tune", "zerolatency"},
		},
	}
	got := strings.Join(EncodeArgs(job), " ")
	want := "-y -ss 8.800 -to 38.800 -i /in/src.mp4 " +
		"-vf scale=720:1280:force_original_aspect_ratio=increase,crop=720:1280,fps=24 " +
		"-c:v libx264 -preset ultrafast -crf 28 -threads 1 -pix_fmt yuv420p -c:a aac -b:a 96k " +
		"-tune zerolatency -movflags +faststart /out/a.mp4"
	if got != want {
		t.Fatalf("EncodeArgs:\n got %s\nwant %s", got, want)
	}
}

func TestEncodeArgs_NoCRF(t *testing.T) {
	job := types.EncodeJob{Profile: types.RenderProfile{Codec: "h264_amf", Preset: "speed", AudioBitrate: "96k"}}
	if slices.Contains(EncodeArgs(job), "-crf") {
		t.Fatalf("expected no -crf for profile without quality factor")
	}
}

func TestFilterChain_BurnIn(t *testing.T) {
	p := types.RenderProfile{Width: 540, Height: 960, FPS: 20}
	got := FilterChain(p, `C:\subs\a.ass`)
	if !strings.HasSuffix(got, `,subtitles=C\:\\subs\\a.ass`) {
		t.Fatalf("unexpected filter chain: %s", got)
	}
}

func TestParseProbeDuration(t *testing.T) {
	sec, err := parseProbeDuration(`{"format":{"duration":"123.456000"}}`)
	if err != nil || sec != 123.456 {
		t.Fatalf("parse = %v, %v", sec, err)
	}
	for _, in := range []string{"", "N/A", `{"format":{}}`, `{"format":{"duration":"0"}}`} {
		if _, err := parseProbeDuration(in); !errors.Is(err, types.ErrProbeFailed) {
			t.Fatalf("parseProbeDuration(%q) err = %v, want ErrProbeFailed", in, err)
		}
	}
}
