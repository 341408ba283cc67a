// Command localtest runs a single download job without Telegram: status
// messages go to stdout and the delivered file is copied into --out.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wapuda/tg-grabber/internal/config"
	"github.com/wapuda/tg-grabber/internal/executor"
	"github.com/wapuda/tg-grabber/internal/jobs"
	"github.com/wapuda/tg-grabber/internal/logx"
	"github.com/wapuda/tg-grabber/internal/messenger"
	"github.com/wapuda/tg-grabber/internal/proc"
	"github.com/wapuda/tg-grabber/internal/transcode"
	"github.com/wapuda/tg-grabber/internal/workspace"
)

var (
	flagGif     bool
	flagCookies string
	flagOut     string
)

func main() {
	rootCmd.Flags().BoolVar(&flagGif, "gif", false, "convert the download to GIF")
	rootCmd.Flags().StringVar(&flagCookies, "cookies", "", "cookies file for yt-dlp (default COOKIES_FILE)")
	rootCmd.Flags().StringVar(&flagOut, "out", "./out", "directory receiving the delivered file")

	rootCmd.SilenceErrors = true

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("localtest failed")
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "localtest <url>",
	Short:        "download one link the way the bot would",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         doRun,
}

func doRun(cmd *cobra.Command, args []string) error {
	c := config.Load()
	lc := logx.FromEnv("localtest")
	if os.Getenv("LOG_FORMAT") == "" {
		lc.Format = "console"
	}
	logx.Setup(lc)

	if flagCookies == "" {
		flagCookies = c.CookiesFile
	}
	if err := os.MkdirAll(flagOut, 0o755); err != nil {
		return err
	}
	ws := workspace.NewManager(c.TempRoot)
	if err := ws.EnsureRoot(); err != nil {
		return err
	}

	runner := proc.NewRunner()
	ex := executor.New(executor.Config{
		YtDlpBin:        c.YtDlpBin,
		DownloadTimeout: c.DownloadTimeout,
		MaxNameBytes:    c.MaxNameBytes,
	}, messenger.NewConsole(cmd.OutOrStdout(), flagOut), ws, runner, transcode.NewFFmpeg(runner, c.FFmpegBin, c.TranscodeTimeout))

	out := ex.Run(cmd.Context(), jobs.DownloadRequest{
		ChatID:         1,
		SourceURL:      args[0],
		CredentialPath: flagCookies,
		WantTranscode:  flagGif,
	})
	fmt.Fprintln(cmd.OutOrStdout(), "outcome:", out)
	if out.Kind == jobs.Failed {
		return out.Err
	}
	return nil
}
