// Package render materializes a clip window through an ordered list of
// encoder profiles, most capable first.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forPelevin/shortsclip/internal/cascade"
	"github.com/forPelevin/shortsclip/internal/ports"
	"github.com/forPelevin/shortsclip/internal/types"
)

var lowLatencyX264 = []string{"-tune", "zerolatency", "-x264-params", "ref=1:rc-lookahead=0:subme=0:me=dia"}

// DefaultProfiles goes from hardware encoding down to a 540p software encode
// with reduced search effort.
func DefaultProfiles() []types.RenderProfile {
	return []types.RenderProfile{
		{
			Name: "amf-720p", Codec: "h264_amf", Width: 720, Height: 1280, FPS: 24,
			Preset: "speed", AudioBitrate: "96k", Threads: 1,
		},
		{
			Name: "x264-1080p", Codec: "libx264", Width: 1080, Height: 1920, FPS: 30,
			Preset: "veryfast", CRF: "23", AudioBitrate: "128k", Threads: 2,
		},
		{
			Name: "x264-720p-fast", Codec: "libx264", Width: 720, Height: 1280, FPS: 24,
			Preset: "ultrafast", CRF: "28", AudioBitrate: "96k", Threads: 1,
			Extra: lowLatencyX264,
		},
		{
			Name: "x264-540p-fast", Codec: "libx264", Width: 540, Height: 960, FPS: 20,
			Preset: "ultrafast", CRF: "32", AudioBitrate: "64k", Threads: 1,
			Extra: lowLatencyX264,
		},
	}
}

type Renderer struct {
	video    ports.VideoTool
	profiles []types.RenderProfile
	logf     func(format string, args ...any)
}

func New(video ports.VideoTool, profiles []types.RenderProfile, logf func(format string, args ...any)) *Renderer {
	if len(profiles) == 0 {
		profiles = DefaultProfiles()
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Renderer{video: video, profiles: profiles, logf: logf}
}

func (r *Renderer) Profiles() []types.RenderProfile {
	return append([]types.RenderProfile(nil), r.profiles...)
}

// Render writes window w of input to dest. Every profile encodes into a
// sibling temp file that only replaces dest on success, so dest is either a
// complete clip or absent. It returns the name of the profile that won.
func (r *Renderer) Render(ctx context.Context, input, dest string, w types.ClipWindow, burnASS string) (string, error) {
	if w.End <= w.Start {
		return "", fmt.Errorf("%w: empty window [%.3f, %.3f)", types.ErrRenderExhausted, w.Start, w.End)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("remove stale clip: %w", err)
	}

	var steps []cascade.Step[struct{}]
	for i, p := range r.profiles {
		steps = append(steps, cascade.Step[struct{}]{
			Name: p.Name,
			Run: func(ctx context.Context) (struct{}, error) {
				return struct{}{}, r.attempt(ctx, input, dest, partPath(dest, i), w, p, burnASS)
			},
		})
	}
	_, name, err := cascade.Run(ctx, "render "+filepath.Base(dest), types.ErrRenderExhausted, steps, cascade.Policy{
		PreferLast: true,
		Logf:       r.logf,
	})
	return name, err
}

func (r *Renderer) attempt(ctx context.Context, input, dest, part string, w types.ClipWindow, p types.RenderProfile, burnASS string) error {
	err := r.video.Encode(ctx, types.EncodeJob{
		Input:   input,
		Output:  part,
		Start:   w.Start,
		End:     w.End,
		Profile: p,
		BurnASS: burnASS,
	})
	if err == nil {
		err = os.Rename(part, dest)
	}
	if err != nil {
		_ = os.Remove(part)
		return err
	}
	return nil
}

// partPath keeps the container extension so the encoder can infer the muxer.
func partPath(dest string, i int) string {
	ext := filepath.Ext(dest)
	return fmt.Sprintf("%s.part%d%s", strings.TrimSuffix(dest, ext), i, ext)
}
