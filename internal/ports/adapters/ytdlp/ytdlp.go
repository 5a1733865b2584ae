package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/forPelevin/shortsclip/internal/ports/adapters/proc"
	"github.com/forPelevin/shortsclip/internal/types"
)

type Adapter struct {
	bin string
}

func New(binPath string) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &Adapter{bin: binPath}
}

func (a *Adapter) FetchMedia(ctx context.Context, url, outTemplate string, extra []string) (string, error) {
	args := []string{"--ignore-config"}
	args = append(args, extra...)
	args = append(args,
		"-o", outTemplate,
		"--print", "after_move:filepath",
		url,
	)
	out, err := proc.Run(ctx, a.cmd("yt-dlp download", args))
	if err != nil {
		return "", err
	}
	path := lastLine(out)
	if path == "" {
		return "", errors.New("yt-dlp download: no output path printed")
	}
	return path, nil
}

func (a *Adapter) FetchCaptions(ctx context.Context, url, outTemplate string, langs []string) error {
	args := []string{
		"--ignore-config",
		"--skip-download",
		"--write-auto-subs",
		"--write-subs",
		"--sub-langs", strings.Join(langs, ","),
		"--convert-subs", "vtt",
		"-o", outTemplate,
		url,
	}
	if _, err := proc.Run(ctx, a.cmd("yt-dlp captions", args)); err != nil {
		return fmt.Errorf("%w: %w", types.ErrCaptionFetchFailed, err)
	}
	return nil
}

func (a *Adapter) cmd(tool string, args []string) proc.Cmd {
	c := proc.Cmd{Tool: tool, Bin: a.bin, Args: args, Classify: classify}
	// Keep user-level yt-dlp config out of hosted runs.
	if os.Getenv("YTDLP_NO_CONFIG") == "" {
		c.Env = []string{"YTDLP_NO_CONFIG=1"}
	}
	return c
}

func classify(stderr string) error {
	if isCredentialStoreMissing(stderr) {
		return types.ErrCredentialStoreMissing
	}
	return nil
}

// isCredentialStoreMissing is the only place that interprets yt-dlp's
// diagnostics for the missing browser cookie database.
func isCredentialStoreMissing(stderr string) bool {
	lower := strings.ToLower(stderr)
	return strings.Contains(lower, "cookies database") && strings.Contains(lower, "could not find")
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if ln := strings.TrimSpace(lines[i]); ln != "" {
			return ln
		}
	}
	return ""
}
