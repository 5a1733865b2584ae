package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/forPelevin/shortsclip/internal/ports/adapters/proc"
	"github.com/forPelevin/shortsclip/internal/types"
	"github.com/tidwall/gjson"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, in, outWav string) error {
	_, err := proc.Run(ctx, proc.Cmd{
		Tool: "ffmpeg extract audio",
		Bin:  a.ffmpeg,
		Args: []string{
			"-y",
			"-i", in,
			"-vn",
			"-ac", "1",
			"-ar", "16000",
			"-f", "wav",
			outWav,
		},
	})
	return err
}

func (a *Adapter) Encode(ctx context.Context, job types.EncodeJob) error {
	_, err := proc.Run(ctx, proc.Cmd{
		Tool: "ffmpeg encode " + job.Profile.Name,
		Bin:  a.ffmpeg,
		Args: EncodeArgs(job),
	})
	return err
}

func (a *Adapter) ProbeDuration(ctx context.Context, path string) (float64, error) {
	out, err := proc.Run(ctx, proc.Cmd{
		Tool: "ffprobe duration",
		Bin:  a.ffprobe,
		Args: []string{
			"-v", "error",
			"-show_entries", "format=duration",
			"-of", "json",
			path,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", types.ErrProbeFailed, err)
	}
	return parseProbeDuration(out)
}

func parseProbeDuration(out string) (float64, error) {
	if !gjson.Valid(out) {
		return 0, fmt.Errorf("%w: invalid ffprobe json %q", types.ErrProbeFailed, out)
	}
	d := gjson.Get(out, "format.duration")
	if !d.Exists() {
		return 0, fmt.Errorf("%w: no duration in ffprobe output", types.ErrProbeFailed)
	}
	sec := d.Float()
	if sec <= 0 {
		return 0, fmt.Errorf("%w: non-positive duration %q", types.ErrProbeFailed, d.String())
	}
	return sec, nil
}

// EncodeArgs builds the ffmpeg argument list for one window.
func EncodeArgs(job types.EncodeJob) []string {
	p := job.Profile
	args := []string{
		"-y",
		"-ss", fmtSeconds(job.Start),
		"-to", fmtSeconds(job.End),
		"-i", job.Input,
		"-vf", FilterChain(p, job.BurnASS),
		"-c:v", p.Codec,
	}
	if p.Preset != "" {
		args = append(args, "-preset", p.Preset)
	}
	if p.CRF != "" {
		args = append(args, "-crf", p.CRF)
	}
	if p.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(p.Threads))
	}
	args = append(args,
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", p.AudioBitrate,
	)
	args = append(args, p.Extra...)
	args = append(args,
		"-movflags", "+faststart",
		job.Output,
	)
	return args
}

// FilterChain scales to cover WxH, center-crops, and sets the frame rate.
func FilterChain(p types.RenderProfile, burnASS string) string {
	vf := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,fps=%d",
		p.Width, p.Height, p.Width, p.Height, p.FPS)
	if burnASS != "" {
		vf += ",subtitles=" + escapeFilterPath(burnASS)
	}
	return vf
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	p = strings.ReplaceAll(p, "'", "\\'")
	p = strings.ReplaceAll(p, ",", "\\,")
	return p
}
