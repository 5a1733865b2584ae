package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/shortsclip/internal/acquire"
	"github.com/forPelevin/shortsclip/internal/ports"
	"github.com/forPelevin/shortsclip/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/shortsclip/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/shortsclip/internal/ports/adapters/ytdlp"
	"github.com/forPelevin/shortsclip/internal/render"
	"github.com/forPelevin/shortsclip/internal/types"
	"github.com/forPelevin/shortsclip/internal/usecase"
)

type Config struct {
	Sources       []types.Source
	OutDir        string
	ClipSeconds   int
	ClipsPerVideo int
	BurnCaptions  bool
	Logf          func(format string, args ...any)

	// Concurrency bounds how many sources are processed at once. Work inside
	// one source is always sequential.
	Concurrency int

	// ScratchDir holds downloads, caption tracks and intermediate files.
	// If empty, defaults to ".cache/downloads".
	ScratchDir string

	FFmpegPath  string
	FFprobePath string
	YtDlpPath   string

	WhisperBin   string
	WhisperModel string
	WhisperLang  string

	EnableBrowserCookies bool
	// JSRuntimes overrides runtime detection when non-nil.
	JSRuntimes []string
}

func (c Config) Validate() error {
	if len(c.Sources) == 0 {
		return errors.New("no sources given")
	}
	for _, s := range c.Sources {
		if s.URL == "" && s.LocalPath == "" {
			return fmt.Errorf("source %q has neither url nor path", s.ID)
		}
		if s.IsLocal() {
			st, err := os.Stat(s.LocalPath)
			if err != nil {
				return fmt.Errorf("stat input: %w", err)
			}
			if st.IsDir() {
				return fmt.Errorf("input %s is a directory", s.LocalPath)
			}
		}
	}
	if c.ClipsPerVideo <= 0 {
		return fmt.Errorf("clips must be > 0")
	}
	if c.ClipSeconds <= 0 {
		return fmt.Errorf("clip duration must be > 0")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0")
	}
	if c.WhisperModel != "" && c.WhisperBin == "" {
		return fmt.Errorf("whisper binary is required when a model is set")
	}
	return nil
}

type ItemResult struct {
	Source types.Source
	Result usecase.Result
	Err    error
}

type Summary struct {
	RunDir       string
	ManifestPath string
	Items        []ItemResult
}

func (s Summary) ClipCount() int {
	n := 0
	for _, it := range s.Items {
		n += len(it.Result.Clips)
	}
	return n
}

// Run clips every source and writes manifest.json into a fresh run
// directory. It fails only when setup fails or no source succeeds.
func Run(ctx context.Context, cfg Config) (Summary, error) {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	scratch := cfg.ScratchDir
	if scratch == "" {
		scratch = filepath.Join(".cache", "downloads")
	}
	logf("preparing workspace")
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return Summary{}, err
	}
	logf("scratch: %s", scratch)

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "output"
	}
	sources := uniqueSources(cfg.Sources, logf)
	if len(sources) == 0 {
		return Summary{}, errors.New("no sources given")
	}
	runOutDir := buildRunOutDir(outDir, runLabel(sources), time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return Summary{}, err
	}
	logf("output run dir: %s", runOutDir)

	uc := usecase.New(buildDeps(cfg, scratch, logf))

	items := make([]ItemResult, len(sources))
	var g errgroup.Group
	g.SetLimit(max(1, cfg.Concurrency))
	for i, src := range sources {
		g.Go(func() error {
			res, err := uc.Run(ctx, usecase.Input{
				Source:       src,
				ClipSeconds:  float64(cfg.ClipSeconds),
				MaxClips:     cfg.ClipsPerVideo,
				ScratchDir:   scratch,
				OutDir:       runOutDir,
				BurnCaptions: cfg.BurnCaptions,
				Logf:         logf,
			})
			if err != nil {
				logf("[%s] failed: %v", res.SourceID, err)
			}
			items[i] = ItemResult{Source: src, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	sum := Summary{RunDir: runOutDir, Items: items}
	b, err := json.MarshalIndent(buildManifest(runOutDir, items, time.Now().UTC()), "", "  ")
	if err != nil {
		return sum, fmt.Errorf("marshal manifest: %w", err)
	}
	sum.ManifestPath = filepath.Join(runOutDir, "manifest.json")
	if err := os.WriteFile(sum.ManifestPath, b, 0o644); err != nil {
		return sum, err
	}
	logf("manifest written (%d clips): %s", sum.ClipCount(), sum.ManifestPath)

	for _, it := range items {
		if it.Err == nil {
			return sum, nil
		}
	}
	return sum, items[0].Err
}

func buildDeps(cfg Config, scratch string, logf func(string, ...any)) usecase.Deps {
	video := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)

	jsRuntimes := cfg.JSRuntimes
	if jsRuntimes == nil {
		jsRuntimes = acquire.DetectJSRuntimes(nil)
	}
	home, _ := os.UserHomeDir()
	acq := acquire.New(acquire.Config{
		ScratchDir:           scratch,
		EnableBrowserCookies: cfg.EnableBrowserCookies,
		CookieStores:         acquire.DefaultCookieStores(runtime.GOOS, home, os.Getenv("LOCALAPPDATA")),
		JSRuntimes:           jsRuntimes,
		Logf:                 logf,
	}, ytdlp.New(cfg.YtDlpPath))

	deps := usecase.Deps{
		Video:    video,
		Media:    acq,
		Renderer: render.New(video, nil, logf),
	}
	if cfg.WhisperModel != "" {
		deps.ASR = whispercpp.New(cfg.WhisperBin, cfg.WhisperModel, cfg.WhisperLang)
	}
	return deps
}

func buildManifest(runOutDir string, items []ItemResult, now time.Time) types.Manifest {
	m := types.Manifest{CreatedAt: now.Format(time.RFC3339)}
	for _, it := range items {
		mi := types.ManifestItem{
			SourceID: it.Result.SourceID,
			Source:   it.Source.URL,
			Duration: it.Result.Duration,
			Fallback: it.Result.EvenSpaced,
			Clips:    []types.ManifestClip{},
		}
		if it.Source.IsLocal() {
			mi.Source = it.Source.LocalPath
		}
		if it.Err != nil {
			mi.Error = it.Err.Error()
		}
		for _, c := range it.Result.Clips {
			rel, err := filepath.Rel(runOutDir, c.Path)
			if err != nil {
				rel = c.Path
			}
			mi.Clips = append(mi.Clips, types.ManifestClip{
				ID:       strings.TrimSuffix(filepath.Base(c.Path), filepath.Ext(c.Path)),
				StartSec: c.Window.Start,
				EndSec:   c.Window.End,
				Score:    c.Window.Score,
				File:     filepath.ToSlash(rel),
			})
		}
		m.Items = append(m.Items, mi)
	}
	return m
}

// uniqueSources drops repeated inputs and renames distinct inputs whose
// sanitized ids collide, so their clip files never overwrite each other.
func uniqueSources(in []types.Source, logf func(string, ...any)) []types.Source {
	seen := make(map[string]bool, len(in))
	ids := make(map[string]bool, len(in))
	var out []types.Source
	for _, s := range in {
		key := sourceKey(s)
		if seen[key] {
			logf("skipping duplicate source %s", key)
			continue
		}
		seen[key] = true
		if id := usecase.SafeID(s.ID); ids[id] {
			s.ID = id + "-" + hash(key)[:6]
			logf("source id %s already taken, using %s", id, s.ID)
		}
		ids[usecase.SafeID(s.ID)] = true
		out = append(out, s)
	}
	return out
}

func sourceKey(s types.Source) string {
	switch {
	case s.LocalPath != "":
		return "file:" + filepath.Clean(s.LocalPath)
	case s.URL != "":
		return "url:" + s.URL
	}
	return "id:" + s.ID
}

func runLabel(sources []types.Source) string {
	if len(sources) == 1 {
		return sources[0].ID
	}
	return "batch"
}

func buildRunOutDir(outRoot, label string, now time.Time) string {
	name := normalizePathSegment(label)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", label, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.MediaFetcher = (*ytdlp.Adapter)(nil)
var _ ports.Transcriber = (*whispercpp.Adapter)(nil)
var _ usecase.MediaSource = (*acquire.Acquirer)(nil)
var _ usecase.ClipRenderer = (*render.Renderer)(nil)
