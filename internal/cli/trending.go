package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/forPelevin/shortsclip/internal/config"
	"github.com/forPelevin/shortsclip/internal/logging"
	"github.com/forPelevin/shortsclip/internal/ports"
	"github.com/forPelevin/shortsclip/internal/ports/adapters/youtube"
	"github.com/forPelevin/shortsclip/internal/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const catalogTimeout = time.Minute

func newTrendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trending",
		Short: "List trending or top recent YouTube videos and optionally clip them",
		Args:  cobra.NoArgs,
		RunE:  runTrending,
	}
	fs := cmd.Flags()
	fs.Bool("recent", false, "Rank recent uploads by engagement instead of the trending chart")
	fs.Int("days", 0, "Look-back window in days for --recent (1-7, default from config: 3)")
	fs.Int("max", 0, "Number of videos to list (default from config: 10)")
	fs.String("region", "", "Region code (default from config: ID)")
	fs.String("category", "", "Video category id (default from config: 24)")
	fs.Bool("pick", false, "Choose videos to clip interactively")
	fs.Int("top", 0, "Clip the first N listed videos without prompting")
	addRunFlags(fs)
	return cmd
}

func runTrending(cmd *cobra.Command, _ []string) error {
	cfg := configFrom(cmd)
	applyCatalogFlags(cmd.Flags(), cfg)

	if err := youtube.ValidateBaseURL(cfg.YouTube.BaseURL, cfg.YouTube.AllowedHosts); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	yt := youtube.New(cfg.YouTube.APIKey, cfg.YouTube.BaseURL)
	yt.Logf = logging.Logf(logging.WithComponent("catalog"))

	recent, _ := cmd.Flags().GetBool("recent")
	ctx, cancel := context.WithTimeout(cmd.Context(), catalogTimeout)
	videos, err := listVideos(ctx, yt, catalogQuery(cfg), recent)
	cancel()
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		return errors.New("catalog returned no videos")
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderVideos(videos))

	pick, _ := cmd.Flags().GetBool("pick")
	top, _ := cmd.Flags().GetInt("top")
	var chosen []types.Video
	switch {
	case pick:
		chosen, err = pickVideos(videos)
		if err != nil {
			return err
		}
	case top > 0:
		chosen = videos[:min(top, len(videos))]
	default:
		return nil
	}
	if len(chosen) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("nothing selected"))
		return nil
	}
	return runPipeline(cmd, videoSources(chosen))
}

func listVideos(ctx context.Context, c ports.Catalog, q types.CatalogQuery, recent bool) ([]types.Video, error) {
	if recent {
		return c.TopRecent(ctx, q)
	}
	return c.Trending(ctx, q)
}

func applyCatalogFlags(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("days") {
		cfg.YouTube.DaysBack, _ = fs.GetInt("days")
	}
	if fs.Changed("max") {
		cfg.YouTube.MaxResults, _ = fs.GetInt("max")
	}
	if fs.Changed("region") {
		cfg.YouTube.Region, _ = fs.GetString("region")
	}
	if fs.Changed("category") {
		cfg.YouTube.Category, _ = fs.GetString("category")
	}
}

func catalogQuery(cfg *config.Config) types.CatalogQuery {
	return types.CatalogQuery{
		Region:      cfg.YouTube.Region,
		Category:    cfg.YouTube.Category,
		MaxResults:  cfg.YouTube.MaxResults,
		MinDuration: time.Duration(cfg.MinSourceSeconds) * time.Second,
		MaxDuration: time.Duration(cfg.MaxSourceSeconds) * time.Second,
		DaysBack:    cfg.YouTube.DaysBack,
	}
}

func pickVideos(videos []types.Video) ([]types.Video, error) {
	opts := make([]huh.Option[string], 0, len(videos))
	for _, v := range videos {
		opts = append(opts, huh.NewOption(videoLabel(v), v.ID))
	}
	var ids []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Videos to clip").
				Description("space to toggle, enter to confirm").
				Options(opts...).
				Value(&ids),
		),
	).WithTheme(huh.ThemeCharm())
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, err
	}
	return selectByID(videos, ids), nil
}

// selectByID keeps catalog order.
func selectByID(videos []types.Video, ids []string) []types.Video {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []types.Video
	for _, v := range videos {
		if want[v.ID] {
			out = append(out, v)
		}
	}
	return out
}

func videoSources(videos []types.Video) []types.Source {
	out := make([]types.Source, 0, len(videos))
	for _, v := range videos {
		out = append(out, types.Source{ID: v.ID, URL: v.URL(), Title: v.Title})
	}
	return out
}
