package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/forPelevin/shortsclip/internal/config"
	"github.com/forPelevin/shortsclip/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type contextKey string

const configKey contextKey = "config"

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile   string
		verbose   bool
		logFormat string
	)

	root := &cobra.Command{
		Use:           "shortsclip",
		Short:         "Cut vertical short clips from YouTube videos or local files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(verbose, logFormat)

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./shortsclip.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format: console or json")

	root.AddCommand(newClipCmd(), newTrendingCmd(), newDoctorCmd(), newInitConfigCmd())
	return root
}

func configFrom(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey).(*config.Config); ok {
		return cfg
	}
	return config.Default()
}
