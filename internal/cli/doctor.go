package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/forPelevin/shortsclip/internal/acquire"
	"github.com/forPelevin/shortsclip/internal/config"
	"github.com/spf13/cobra"
)

const (
	ffmpegInstallURL = "https://ffmpeg.org/download.html"
	ytDlpInstallURL  = "https://github.com/yt-dlp/yt-dlp#installation"
	whisperURL       = "https://github.com/ggerganov/whisper.cpp"
)

// DependencyError contains information about a missing dependency
type DependencyError struct {
	Name       string
	Path       string
	InstallURL string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s not found (%s). Install from: %s", e.Name, e.Path, e.InstallURL)
}

type check struct {
	name    string
	path    string
	install string
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the external tools are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home, _ := os.UserHomeDir()
			stores := acquire.DefaultCookieStores(runtime.GOOS, home, os.Getenv("LOCALAPPDATA"))
			return doctor(cmd.OutOrStdout(), configFrom(cmd), exec.LookPath, stores, fileExists)
		},
	}
}

func requiredChecks(cfg *config.Config) []check {
	checks := []check{
		{"ffmpeg", cfg.Tools.FFmpeg, ffmpegInstallURL},
		{"ffprobe", cfg.Tools.FFprobe, ffmpegInstallURL},
		{"yt-dlp", cfg.Tools.YtDlp, ytDlpInstallURL},
	}
	if cfg.Whisper.Model != "" {
		checks = append(checks, check{"whisper.cpp", cfg.Whisper.Bin, whisperURL})
	}
	return checks
}

// doctor reports every dependency and fails when a required one is missing.
func doctor(w io.Writer, cfg *config.Config, lookPath func(string) (string, error), stores []acquire.CookieStore, exists func(string) bool) error {
	var missing []error
	for _, c := range requiredChecks(cfg) {
		resolved, err := lookPath(c.path)
		if err != nil {
			missing = append(missing, &DependencyError{Name: c.name, Path: c.path, InstallURL: c.install})
			fmt.Fprintf(w, "%s %-12s %s\n", errStyle.Render("✗"), c.name, dimStyle.Render("missing"))
			continue
		}
		fmt.Fprintf(w, "%s %-12s %s\n", okStyle.Render("✓"), c.name, dimStyle.Render(resolved))
	}

	if cfg.Whisper.Model != "" && !exists(cfg.Whisper.Model) {
		missing = append(missing, fmt.Errorf("whisper model %s does not exist", cfg.Whisper.Model))
		fmt.Fprintf(w, "%s %-12s %s\n", errStyle.Render("✗"), "model", dimStyle.Render(cfg.Whisper.Model))
	}

	js := acquire.DetectJSRuntimes(lookPath)
	if len(js) == 0 {
		fmt.Fprintf(w, "%s %-12s %s\n", dimStyle.Render("-"), "js runtime", dimStyle.Render("none (yt-dlp will skip the js player)"))
	} else {
		fmt.Fprintf(w, "%s %-12s %s\n", okStyle.Render("✓"), "js runtime", dimStyle.Render(strings.Join(js, ", ")))
	}

	if cfg.EnableBrowserCookies {
		var found []string
		for _, s := range stores {
			for _, p := range s.Paths {
				if exists(p) {
					found = append(found, s.Browser)
					break
				}
			}
		}
		status := "none found"
		if len(found) > 0 {
			status = strings.Join(found, ", ")
		}
		fmt.Fprintf(w, "%s %-12s %s\n", dimStyle.Render("-"), "cookies", dimStyle.Render(status))
	}

	if cfg.YouTube.APIKey == "" {
		fmt.Fprintf(w, "%s %-12s %s\n", dimStyle.Render("-"), "youtube api", dimStyle.Render("YOUTUBE_API_KEY not set (trending disabled)"))
	}

	return errors.Join(missing...)
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
