package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/telefetch/telefetch/internal/core/config"
	"github.com/telefetch/telefetch/internal/core/engine"
	"github.com/telefetch/telefetch/internal/core/format"
	"github.com/telefetch/telefetch/internal/core/i18n"
	"github.com/telefetch/telefetch/internal/core/pipeline"
)

var (
	fetchQuality string
	fetchOutput  string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download a single video without Telegram",
	Long: `Download one video to the local output directory.

Examples:
  telefetch fetch https://youtu.be/xxxx
  telefetch fetch -q 480 https://vimeo.com/xxxx
  telefetch fetch -o ~/Videos https://youtu.be/xxxx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(args[0])
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchQuality, "quality", "q", "", "quality cap: 360, 480 or 720")
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "output directory")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(url string) error {
	_ = godotenv.Load()

	cfg := config.LoadOrDefault()
	t := i18n.T(cfg.Language)

	if !engine.Available() {
		return fmt.Errorf("%s", t.Errors.EngineMissing)
	}

	mergeCapable := !cfg.NoFFmpeg && engine.FFmpegAvailable()

	tier := format.DefaultTier(mergeCapable)
	if fetchQuality != "" {
		parsed, err := format.ParseTier(fetchQuality)
		if err != nil {
			return err
		}
		tier = parsed
	}
	if tier == format.TierHigh && !mergeCapable {
		tier = format.TierMedium
	}

	outputDir := cfg.OutputDir
	if fetchOutput != "" {
		outputDir = fetchOutput
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	state := &fetchState{startTime: time.Now()}
	pipe := &pipeline.Pipeline{
		Engine:     engine.NewYTDLP(mergeCapable),
		Ceiling:    cfg.MaxBytes,
		OnProgress: state.update,
	}

	req := pipeline.Request{
		URL:          url,
		Tier:         tier,
		MergeCapable: mergeCapable,
	}
	if cfg.Instagram.SessionID != "" {
		req.CookieData = pipeline.InstagramSessionCookie(cfg.Instagram.SessionID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := pipe.Acquire(ctx, req, func(res pipeline.Result) error {
			dest := filepath.Join(outputDir, filepath.Base(res.Path))
			if err := pipeline.MoveFile(res.Path, dest); err != nil {
				return err
			}
			state.setDone(dest, res.Size)
			return nil
		})
		if err != nil {
			state.setError(err)
		}
	}()

	p := tea.NewProgram(newFetchModel(url, cfg.Language, state))
	if _, err := p.Run(); err != nil {
		return err
	}

	// Quitting the TUI before completion aborts the transfer.
	cancel()

	_, _, _, _, _, fetchErr := state.get()
	if errors.Is(fetchErr, context.Canceled) {
		return nil
	}
	return fetchErr
}
