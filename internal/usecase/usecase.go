package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/forPelevin/shortsclip/internal/domain/highlights"
	"github.com/forPelevin/shortsclip/internal/domain/subtitles"
	"github.com/forPelevin/shortsclip/internal/ports"
	"github.com/forPelevin/shortsclip/internal/types"
)

// MediaSource fetches remote media and captions into the scratch directory.
type MediaSource interface {
	FetchMedia(ctx context.Context, url, sourceID string) (string, error)
	FetchCaptions(ctx context.Context, url, sourceID string) (string, error)
}

type ClipRenderer interface {
	Render(ctx context.Context, input, dest string, w types.ClipWindow, burnASS string) (string, error)
}

type Deps struct {
	Video    ports.VideoTool
	Media    MediaSource
	Renderer ClipRenderer
	// ASR is optional; when set, local files are transcribed for captions.
	ASR ports.Transcriber
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	Source       types.Source
	ClipSeconds  float64
	MaxClips     int
	ScratchDir   string
	OutDir       string
	BurnCaptions bool
	Logf         func(format string, args ...any)
}

type WindowFailure struct {
	Window types.ClipWindow
	Err    error
}

type Result struct {
	SourceID   string
	SourcePath string
	Duration   float64
	Windows    []types.ClipWindow
	EvenSpaced bool
	Clips      []types.ClipResult
	Failures   []WindowFailure
}

// Run clips one source: acquire, probe, captions (best effort), select
// windows, then render each window. A failed window is recorded and skipped.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	logf := in.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	id := SafeID(in.Source.ID)
	res := Result{SourceID: id}

	src := in.Source.LocalPath
	if !in.Source.IsLocal() {
		logf("[%s] downloading %s", id, in.Source.URL)
		p, err := u.d.Media.FetchMedia(ctx, in.Source.URL, id)
		if err != nil {
			return res, err
		}
		src = p
	}
	res.SourcePath = src

	dur, err := u.d.Video.ProbeDuration(ctx, src)
	if err != nil {
		if !errors.Is(err, types.ErrProbeFailed) {
			err = fmt.Errorf("%w: %w", types.ErrProbeFailed, err)
		}
		return res, err
	}
	res.Duration = dur
	logf("[%s] duration %.1fs", id, dur)

	spans := u.captions(ctx, in, src, id, logf)

	windows := highlights.Select(slices.Values(spans), dur, in.ClipSeconds, in.MaxClips)
	if len(windows) == 0 {
		windows = highlights.EvenlySpaced(dur, in.ClipSeconds, in.MaxClips)
		res.EvenSpaced = true
		logf("[%s] no keyword hits in %d caption span(s); using %d evenly spaced window(s)", id, len(spans), len(windows))
	} else {
		logf("[%s] selected %d highlight window(s)", id, len(windows))
	}
	res.Windows = windows

	suffix := "clip"
	if in.Source.IsLocal() {
		suffix = "upload_clip"
	}
	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		name := fmt.Sprintf("%s_%s_%02d", id, suffix, i+1)
		dest := filepath.Join(in.OutDir, name+".mp4")

		burn := ""
		if in.BurnCaptions {
			burn = writeASS(spans, w, filepath.Join(in.ScratchDir, name+".ass"), logf)
		}

		profile, err := u.d.Renderer.Render(ctx, src, dest, w, burn)
		if err != nil {
			logf("[%s] window %.3f-%.3f skipped: %v", id, w.Start, w.End, err)
			res.Failures = append(res.Failures, WindowFailure{Window: w, Err: err})
			continue
		}
		logf("[%s] rendered %s (%s)", id, dest, profile)
		res.Clips = append(res.Clips, types.ClipResult{Path: dest, Window: w})
	}
	return res, nil
}

// captions never fails the run: any error means no spans.
func (u Usecase) captions(ctx context.Context, in Input, src, id string, logf func(string, ...any)) []types.CaptionSpan {
	var (
		vtt string
		err error
	)
	switch {
	case !in.Source.IsLocal():
		vtt, err = u.d.Media.FetchCaptions(ctx, in.Source.URL, id)
	case u.d.ASR != nil:
		vtt, err = u.transcribe(ctx, in.ScratchDir, src, id)
	default:
		return nil
	}
	if err != nil {
		logf("[%s] captions unavailable: %s", id, types.FirstLine(err))
		return nil
	}
	seq, err := subtitles.ReadVTT(vtt)
	if err != nil {
		logf("[%s] captions unreadable: %v", id, err)
		return nil
	}
	return subtitles.CollectVTT(seq)
}

func (u Usecase) transcribe(ctx context.Context, scratch, src, id string) (string, error) {
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return "", err
	}
	wav := filepath.Join(scratch, id+".16k.wav")
	if err := u.d.Video.ExtractAudioMono16k(ctx, src, wav); err != nil {
		return "", fmt.Errorf("%w: %w", types.ErrCaptionFetchFailed, err)
	}
	return u.d.ASR.TranscribeVTT(ctx, wav, filepath.Join(scratch, id+".asr"))
}

func writeASS(spans []types.CaptionSpan, w types.ClipWindow, path string, logf func(string, ...any)) string {
	ass := subtitles.RenderASS(spans, w.Start, w.End)
	if ass == "" {
		return ""
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logf("burn-in disabled for %s: %v", filepath.Base(path), err)
		return ""
	}
	if err := os.WriteFile(path, []byte(ass), 0o644); err != nil {
		logf("burn-in disabled for %s: %v", filepath.Base(path), err)
		return ""
	}
	return path
}

var reUnsafeID = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// SafeID makes a source identifier usable as a file name prefix.
func SafeID(id string) string {
	id = reUnsafeID.ReplaceAllString(id, "_")
	if id == "" {
		return "source"
	}
	return id
}
