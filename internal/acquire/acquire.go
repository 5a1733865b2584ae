// Package acquire obtains source media and caption tracks through an ordered
// list of downloader attempts.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/forPelevin/shortsclip/internal/cascade"
	"github.com/forPelevin/shortsclip/internal/ports"
	"github.com/forPelevin/shortsclip/internal/types"
)

var DefaultSubLangs = []string{"id.*", "en.*"}

type Config struct {
	ScratchDir string

	// EnableBrowserCookies appends one attempt per locally present browser
	// cookie store after all anonymous attempts.
	EnableBrowserCookies bool
	CookieStores         []CookieStore

	// JSRuntimes are passed to the downloader; with none, an attempt that
	// skips the JS player is tried early.
	JSRuntimes []string

	SubLangs []string
	Logf     func(format string, args ...any)

	// Exists overrides the file check used for cookie stores.
	Exists func(path string) bool
}

// Attempt is one named parameter set for the downloader.
type Attempt struct {
	Name string
	Args []string
}

type Acquirer struct {
	cfg Config
	f   ports.MediaFetcher
}

func New(cfg Config, f ports.MediaFetcher) *Acquirer {
	if cfg.Logf == nil {
		cfg.Logf = func(string, ...any) {}
	}
	if cfg.Exists == nil {
		cfg.Exists = fileExists
	}
	if len(cfg.SubLangs) == 0 {
		cfg.SubLangs = DefaultSubLangs
	}
	return &Acquirer{cfg: cfg, f: f}
}

// Attempts returns the ordered attempt list.
func (a *Acquirer) Attempts() []Attempt {
	out := []Attempt{{Name: "auto"}}
	if len(a.cfg.JSRuntimes) == 0 {
		out = append(out, Attempt{Name: "skip-js-player", Args: []string{"--extractor-args", "youtube:player_skip=js"}})
	}
	out = append(out,
		Attempt{Name: "progressive-mp4", Args: []string{"-f", "18/b[ext=mp4]/b"}},
		Attempt{Name: "best-premerged", Args: []string{"-f", "b"}},
	)
	for _, client := range []string{"web", "web_safari", "web_creator", "ios", "tv_embedded"} {
		out = append(out, Attempt{
			Name: "client-" + client,
			Args: []string{"--extractor-args", "youtube:player_client=" + client},
		})
	}
	if a.cfg.EnableBrowserCookies {
		for _, s := range a.cfg.CookieStores {
			if s.present(a.cfg.Exists) {
				out = append(out, Attempt{Name: "cookies-" + s.Browser, Args: []string{"--cookies-from-browser", s.Browser}})
			}
		}
	}
	return out
}

func (a *Acquirer) commonArgs() []string {
	var args []string
	for _, rt := range a.cfg.JSRuntimes {
		args = append(args, "--js-runtimes", rt)
	}
	return append(args,
		"--no-playlist",
		"--geo-bypass",
		"--force-ipv4",
		"--extractor-retries", "5",
	)
}

// FetchMedia downloads url into the scratch directory as <sourceID>.<ext>
// and returns the final path. The first successful attempt wins.
func (a *Acquirer) FetchMedia(ctx context.Context, url, sourceID string) (string, error) {
	if err := os.MkdirAll(a.cfg.ScratchDir, 0o755); err != nil {
		return "", err
	}
	tmpl := a.template(sourceID)
	common := a.commonArgs()

	var steps []cascade.Step[string]
	for _, at := range a.Attempts() {
		extra := append(append([]string(nil), common...), at.Args...)
		steps = append(steps, cascade.Step[string]{
			Name: at.Name,
			Run: func(ctx context.Context) (string, error) {
				return a.f.FetchMedia(ctx, url, tmpl, extra)
			},
		})
	}
	path, name, err := cascade.Run(ctx, "download "+sourceID, types.ErrAcquisitionExhausted, steps, cascade.Policy{
		IsNoise: IsNoise,
		Logf:    a.cfg.Logf,
	})
	if err != nil {
		return "", err
	}
	a.cfg.Logf("downloaded %s via %s: %s", sourceID, name, path)
	return path, nil
}

// FetchCaptions downloads the caption track and returns the best matching
// .vtt path. Callers treat any error as "no captions".
func (a *Acquirer) FetchCaptions(ctx context.Context, url, sourceID string) (string, error) {
	if err := os.MkdirAll(a.cfg.ScratchDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", types.ErrCaptionFetchFailed, err)
	}
	if err := a.f.FetchCaptions(ctx, url, a.template(sourceID), a.cfg.SubLangs); err != nil {
		return "", err
	}
	p, ok := FindCaptionFile(a.cfg.ScratchDir, sourceID)
	if !ok {
		return "", fmt.Errorf("%w: no caption track for %s", types.ErrCaptionFetchFailed, sourceID)
	}
	return p, nil
}

// FindCaptionFile prefers Indonesian, then English, then any track.
func FindCaptionFile(dir, sourceID string) (string, bool) {
	for _, pat := range []string{
		sourceID + ".id*.vtt",
		sourceID + ".en*.vtt",
		sourceID + ".*vtt",
	} {
		matches, _ := filepath.Glob(filepath.Join(dir, pat))
		if len(matches) > 0 {
			return matches[0], true
		}
	}
	return "", false
}

// IsNoise reports failures caused by the local environment rather than by
// the remote service.
func IsNoise(err error) bool {
	return errors.Is(err, types.ErrCredentialStoreMissing)
}

func (a *Acquirer) template(sourceID string) string {
	return filepath.Join(a.cfg.ScratchDir, sourceID+".%(ext)s")
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
