package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-digest/internal/processor"
)

func newSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize FILE...",
		Short: "Summarize transcript files into markdown digests",
		Long: `Summarizes each transcript and writes <name>.md into paths.output.
Processed sources are moved to paths.archived.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSummarize,
	}
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := newLogger(cfg, cmd.ErrOrStderr())
	defer log.Sync()

	a, err := newApp(cfg, log, true)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range args {
		bar := newProgressBar(cmd.ErrOrStderr(), path)
		report, err := a.digester.DigestFile(cmd.Context(), path, barProgress(bar))
		_ = bar.Finish()

		if err != nil {
			failed++
			printError(cmd, err, cfg.Output.Language)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", color.GreenString("✓"), path, report.Output)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d transcripts failed", failed, len(args))
	}
	return nil
}

func newProgressBar(w io.Writer, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("chunks"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// barProgress maps processor stages onto the bar: one step per chunk.
func barProgress(bar *progressbar.ProgressBar) processor.ProgressFunc {
	return func(p processor.Progress) {
		switch p.Stage {
		case processor.StageChunking:
			bar.ChangeMax(p.TotalChunks)
		case processor.StageProcessing:
			bar.Describe(color.BlueString("chunk %d/%d", p.ChunkIndex+1, p.TotalChunks))
			_ = bar.Set(p.ChunkIndex)
		case processor.StageRetry:
			bar.Describe(color.YellowString("chunk %d/%d retry %d in %s", p.ChunkIndex+1, p.TotalChunks, p.Attempt, p.Delay.Round(100*time.Millisecond)))
		case processor.StageComplete:
			_ = bar.Set(p.TotalChunks)
		}
	}
}
