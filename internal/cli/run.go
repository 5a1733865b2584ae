package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/forPelevin/shortsclip/internal/config"
	"github.com/forPelevin/shortsclip/internal/logging"
	"github.com/forPelevin/shortsclip/internal/pipeline"
	"github.com/forPelevin/shortsclip/internal/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const runTimeout = 3 * time.Hour

func newClipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clip <url|video-id|file>...",
		Short: "Cut highlight clips from YouTube URLs, video ids or local files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := make([]types.Source, 0, len(args))
			for _, a := range args {
				sources = append(sources, pipeline.SourceFromArg(a))
			}
			return runPipeline(cmd, sources)
		},
	}
	addRunFlags(cmd.Flags())
	return cmd
}

func addRunFlags(fs *pflag.FlagSet) {
	fs.String("out", "", "Output root directory (default from config: output)")
	fs.Int("clips", 0, "Clips per video (default from config: 3)")
	fs.Int("duration", 0, "Clip duration in seconds (default from config: 30)")
	fs.Int("concurrency", 0, "Sources processed at once (default from config: 1)")
	fs.Bool("burn-captions", false, "Burn caption text into the clips")
	fs.Bool("browser-cookies", false, "Allow yt-dlp to read browser cookie stores as a last resort")
	fs.String("whisper-model", "", "whisper.cpp model used to transcribe local files")

	// Hidden tuning flag (internal)
	fs.String("scratch", "", "Scratch directory for downloads")
	_ = fs.MarkHidden("scratch")
}

// applyRunFlags overrides config values with flags the user set explicitly.
func applyRunFlags(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("out") {
		cfg.OutputDir, _ = fs.GetString("out")
	}
	if fs.Changed("clips") {
		cfg.ClipsPerVideo, _ = fs.GetInt("clips")
	}
	if fs.Changed("duration") {
		cfg.ClipSeconds, _ = fs.GetInt("duration")
	}
	if fs.Changed("concurrency") {
		cfg.Concurrency, _ = fs.GetInt("concurrency")
	}
	if fs.Changed("burn-captions") {
		cfg.BurnCaptions, _ = fs.GetBool("burn-captions")
	}
	if fs.Changed("browser-cookies") {
		cfg.EnableBrowserCookies, _ = fs.GetBool("browser-cookies")
	}
	if fs.Changed("whisper-model") {
		cfg.Whisper.Model, _ = fs.GetString("whisper-model")
	}
	if fs.Changed("scratch") {
		cfg.ScratchDir, _ = fs.GetString("scratch")
	}
}

func pipelineConfig(cfg *config.Config, sources []types.Source, logf func(string, ...any)) pipeline.Config {
	return pipeline.Config{
		Sources:       sources,
		OutDir:        cfg.OutputDir,
		ClipSeconds:   cfg.ClipSeconds,
		ClipsPerVideo: cfg.ClipsPerVideo,
		BurnCaptions:  cfg.BurnCaptions,
		Logf:          logf,
		Concurrency:   cfg.Concurrency,
		ScratchDir:    cfg.ScratchDir,

		FFmpegPath:  cfg.Tools.FFmpeg,
		FFprobePath: cfg.Tools.FFprobe,
		YtDlpPath:   cfg.Tools.YtDlp,

		WhisperBin:   cfg.Whisper.Bin,
		WhisperModel: cfg.Whisper.Model,
		WhisperLang:  cfg.Whisper.Lang,

		EnableBrowserCookies: cfg.EnableBrowserCookies,
	}
}

func runPipeline(cmd *cobra.Command, sources []types.Source) error {
	cfg := configFrom(cmd)
	applyRunFlags(cmd.Flags(), cfg)

	pcfg := pipelineConfig(cfg, sources, logging.Logf(logging.WithComponent("pipeline")))
	if err := pcfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	sum, err := pipeline.Run(ctx, pcfg)
	if sum.RunDir != "" {
		fmt.Fprintln(cmd.OutOrStdout(), renderSummary(sum))
	}
	return err
}
