package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/telefetch/telefetch/internal/bot"
	"github.com/telefetch/telefetch/internal/core/config"
	"github.com/telefetch/telefetch/internal/core/engine"
	"github.com/telefetch/telefetch/internal/core/i18n"
	"github.com/telefetch/telefetch/internal/core/store"
	"github.com/telefetch/telefetch/internal/core/version"
)

var rootCmd = &cobra.Command{
	Use:     "telefetch",
	Short:   "Telegram bot that fetches videos from links and sends them back",
	Version: version.Version,
	Long: `telefetch runs a Telegram bot: send it a video link (YouTube,
Instagram, TikTok, Facebook, Twitter/X, Vimeo) and it downloads the
video and replies with the file.

Run without arguments to start the bot. Use 'telefetch fetch <url>'
for a one-shot download without Telegram.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func runBot() error {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.LoadOrDefault()
	t := i18n.T(cfg.Language)

	if !config.Exists() {
		color.Yellow("%s. Run 'telefetch init'.", t.Errors.ConfigNotFound)
	}

	if !engine.Available() {
		return fmt.Errorf("%s", t.Errors.EngineMissing)
	}
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("%s", t.Errors.TokenMissing)
	}

	mergeCapable := !cfg.NoFFmpeg && engine.FFmpegAvailable()
	if mergeCapable {
		fmt.Println(t.Bot.ModeMerge)
	} else {
		fmt.Println(t.Bot.ModeSingle)
	}

	b, err := bot.New(bot.Options{
		Token:        cfg.Telegram.Token,
		Engine:       engine.NewYTDLP(mergeCapable),
		Store:        store.NewFileStore(cfg.StorePath),
		Ceiling:      cfg.MaxBytes,
		MergeCapable: mergeCapable,
		IGSessionID:  cfg.Instagram.SessionID,
		Lang:         cfg.Language,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return b.Run(ctx)
}
