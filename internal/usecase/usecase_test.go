package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/forPelevin/shortsclip/internal/domain/highlights"
	"github.com/forPelevin/shortsclip/internal/types"
)

const captionTrack = `WEBVTT

00:00:10.000 --> 00:00:12.000
ternyata gila

00:00:12.500 --> 00:00:14.000
wow

00:01:40.000 --> 00:01:42.000
ini rahasia
`

type fakeVideo struct {
	duration float64
	probeErr error
	probed   []string
}

func (f *fakeVideo) ProbeDuration(_ context.Context, path string) (float64, error) {
	f.probed = append(f.probed, path)
	return f.duration, f.probeErr
}

func (f *fakeVideo) Encode(context.Context, types.EncodeJob) error { return nil }

func (f *fakeVideo) ExtractAudioMono16k(_ context.Context, _, outWav string) error {
	return os.WriteFile(outWav, []byte("RIFF"), 0o644)
}

type fakeMedia struct {
	dir        string
	fetchErr   error
	captionErr error
	track      string
	fetched    int
}

func (f *fakeMedia) FetchMedia(_ context.Context, _, id string) (string, error) {
	f.fetched++
	if f.fetchErr != nil {
		return "", f.fetchErr
	}
	return filepath.Join(f.dir, id+".mp4"), nil
}

func (f *fakeMedia) FetchCaptions(_ context.Context, _, id string) (string, error) {
	if f.captionErr != nil {
		return "", f.captionErr
	}
	p := filepath.Join(f.dir, id+".id.vtt")
	return p, os.WriteFile(p, []byte(f.track), 0o644)
}

type fakeRenderer struct {
	failAt  map[int]bool
	windows []types.ClipWindow
	dests   []string
	burns   []string
}

func (f *fakeRenderer) Render(_ context.Context, _, dest string, w types.ClipWindow, burn string) (string, error) {
	i := len(f.windows)
	f.windows = append(f.windows, w)
	f.dests = append(f.dests, dest)
	f.burns = append(f.burns, burn)
	if f.failAt[i] {
		return "", types.ErrRenderExhausted
	}
	return "p1", nil
}

type fakeASR struct {
	track string
	calls int
}

func (f *fakeASR) TranscribeVTT(_ context.Context, _, outPrefix string) (string, error) {
	f.calls++
	p := outPrefix + ".vtt"
	return p, os.WriteFile(p, []byte(f.track), 0o644)
}

func newInput(t *testing.T, src types.Source) Input {
	t.Helper()
	tmp := t.TempDir()
	return Input{
		Source:      src,
		ClipSeconds: 30,
		MaxClips:    3,
		ScratchDir:  filepath.Join(tmp, "downloads"),
		OutDir:      filepath.Join(tmp, "output"),
	}
}

func remote(id string) types.Source {
	return types.Source{ID: id, URL: "https://www.youtube.com/watch?v=" + id}
}

func TestRun_CaptionFailureFallsBackToEvenSpacing(t *testing.T) {
	in := newInput(t, remote("abc"))
	media := &fakeMedia{dir: t.TempDir(), captionErr: types.ErrCaptionFetchFailed}
	rend := &fakeRenderer{}
	uc := New(Deps{Video: &fakeVideo{duration: 100}, Media: media, Renderer: rend})

	res, err := uc.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := highlights.EvenlySpaced(100, 30, 3)
	if !slices.Equal(res.Windows, want) {
		t.Fatalf("windows = %+v, want %+v", res.Windows, want)
	}
	if !res.EvenSpaced || len(res.Clips) != 3 {
		t.Fatalf("expected 3 evenly spaced clips, got %+v", res)
	}
	if filepath.Base(res.Clips[0].Path) != "abc_clip_01.mp4" {
		t.Fatalf("unexpected clip name: %s", res.Clips[0].Path)
	}
}

func TestRun_RendersScoredWindowsInScoreOrder(t *testing.T) {
	in := newInput(t, remote("abc"))
	media := &fakeMedia{dir: t.TempDir(), track: captionTrack}
	rend := &fakeRenderer{}
	uc := New(Deps{Video: &fakeVideo{duration: 300}, Media: media, Renderer: rend})

	res, err := uc.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.EvenSpaced {
		t.Fatalf("expected keyword windows")
	}
	if len(rend.windows) != 2 {
		t.Fatalf("expected 2 renders, got %+v", rend.windows)
	}
	if rend.windows[0].Score != 2 || rend.windows[1].Score != 1 {
		t.Fatalf("expected score-ordered renders, got %+v", rend.windows)
	}
	if rend.windows[1].Start < rend.windows[0].End {
		t.Fatalf("expected non-overlapping windows, got %+v", rend.windows)
	}
}

func TestRun_WindowFailureDoesNotAbort(t *testing.T) {
	in := newInput(t, remote("abc"))
	rend := &fakeRenderer{failAt: map[int]bool{1: true}}
	uc := New(Deps{
		Video:    &fakeVideo{duration: 200},
		Media:    &fakeMedia{dir: t.TempDir(), captionErr: types.ErrCaptionFetchFailed},
		Renderer: rend,
	})
	res, err := uc.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(rend.windows) != 3 || len(res.Clips) != 2 || len(res.Failures) != 1 {
		t.Fatalf("expected 3 attempts, 2 clips, 1 failure; got %d, %d, %d", len(rend.windows), len(res.Clips), len(res.Failures))
	}
	if !errors.Is(res.Failures[0].Err, types.ErrRenderExhausted) {
		t.Fatalf("unexpected failure: %v", res.Failures[0].Err)
	}
}

func TestRun_FatalErrors(t *testing.T) {
	t.Run("acquisition", func(t *testing.T) {
		video := &fakeVideo{duration: 100}
		uc := New(Deps{Video: video, Media: &fakeMedia{fetchErr: types.ErrAcquisitionExhausted}, Renderer: &fakeRenderer{}})
		_, err := uc.Run(context.Background(), newInput(t, remote("abc")))
		if !errors.Is(err, types.ErrAcquisitionExhausted) {
			t.Fatalf("expected ErrAcquisitionExhausted, got %v", err)
		}
		if len(video.probed) != 0 {
			t.Fatalf("probe must not run after failed acquisition")
		}
	})
	t.Run("probe", func(t *testing.T) {
		rend := &fakeRenderer{}
		uc := New(Deps{Video: &fakeVideo{probeErr: errors.New("moov atom not found")}, Media: &fakeMedia{dir: t.TempDir()}, Renderer: rend})
		_, err := uc.Run(context.Background(), newInput(t, remote("abc")))
		if !errors.Is(err, types.ErrProbeFailed) {
			t.Fatalf("expected ErrProbeFailed, got %v", err)
		}
		if len(rend.windows) != 0 {
			t.Fatalf("render must not run after failed probe")
		}
	})
}

func TestRun_LocalSource(t *testing.T) {
	t.Run("without asr", func(t *testing.T) {
		media := &fakeMedia{}
		rend := &fakeRenderer{}
		in := newInput(t, types.Source{ID: "my clip.mov", LocalPath: "/videos/my clip.mov"})
		res, err := New(Deps{Video: &fakeVideo{duration: 20}, Media: media, Renderer: rend}).Run(context.Background(), in)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if media.fetched != 0 {
			t.Fatalf("local source must not be downloaded")
		}
		if len(res.Clips) != 1 || res.Windows[0] != (types.ClipWindow{Start: 0, End: 20}) {
			t.Fatalf("expected single whole-source clip, got %+v", res.Windows)
		}
		if filepath.Base(res.Clips[0].Path) != "my_clip_mov_upload_clip_01.mp4" {
			t.Fatalf("unexpected clip name: %s", res.Clips[0].Path)
		}
	})
	t.Run("with asr", func(t *testing.T) {
		asr := &fakeASR{track: captionTrack}
		rend := &fakeRenderer{}
		in := newInput(t, types.Source{ID: "talk", LocalPath: "/videos/talk.mp4"})
		res, err := New(Deps{Video: &fakeVideo{duration: 300}, Renderer: rend, ASR: asr}).Run(context.Background(), in)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if asr.calls != 1 || res.EvenSpaced {
			t.Fatalf("expected transcript-driven selection, calls=%d even=%v", asr.calls, res.EvenSpaced)
		}
	})
}

func TestRun_BurnCaptions(t *testing.T) {
	in := newInput(t, remote("abc"))
	in.BurnCaptions = true
	rend := &fakeRenderer{}
	uc := New(Deps{Video: &fakeVideo{duration: 300}, Media: &fakeMedia{dir: t.TempDir(), track: captionTrack}, Renderer: rend})
	if _, err := uc.Run(context.Background(), in); err != nil {
		t.Fatalf("run: %v", err)
	}
	if rend.burns[0] == "" || !strings.HasSuffix(rend.burns[0], "abc_clip_01.ass") {
		t.Fatalf("unexpected burn-in path: %q", rend.burns[0])
	}
	b, err := os.ReadFile(rend.burns[0])
	if err != nil {
		t.Fatalf("read ass: %v", err)
	}
	if !strings.Contains(string(b), "ternyata gila") {
		t.Fatalf("expected caption text in ASS:\n%s", b)
	}
}

func TestSafeID(t *testing.T) {
	tests := map[string]string{
		"dQw4w9WgXcQ": "dQw4w9WgXcQ",
		"a/b c.mp4":   "a_b_c_mp4",
		"":            "source",
		"ok-id_1":     "ok-id_1",
	}
	for in, want := range tests {
		if got := SafeID(in); got != want {
			t.Fatalf("SafeID(%q) = %q, want %q", in, got, want)
		}
	}
}
