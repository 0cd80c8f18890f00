package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-digest/internal/config"
	"github.com/nguyentantai21042004/meeting-digest/internal/digest"
	"github.com/nguyentantai21042004/meeting-digest/internal/logger"
	"github.com/nguyentantai21042004/meeting-digest/internal/processor"
	"github.com/nguyentantai21042004/meeting-digest/internal/retry"
	"github.com/nguyentantai21042004/meeting-digest/internal/summarizer"
	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

// app holds the wired dependencies shared by the commands.
type app struct {
	cfg       *config.Config
	log       logger.Logger
	stats     *retry.Stats
	processor processor.Processor
	digester  digest.Digester
}

// loadConfig reads --config. A missing default file falls back to built-in
// defaults so analyze works without setup.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.Default(), nil
	}
	return nil, err
}

func newLogger(cfg *config.Config, out io.Writer) logger.Logger {
	return logger.NewWithConfig(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
	})
}

// newApp wires the processing stack. summarizing requires a provider with a
// summarizer behind it.
func newApp(cfg *config.Config, log logger.Logger, summarizing bool) (*app, error) {
	stats := retry.NewStats()
	engine := retry.New(stats, log)
	limiter := processor.NewLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	proc := processor.New(cfg.Chunking.ChunkingEngine(), engine, limiter, log)

	a := &app{cfg: cfg, log: log, stats: stats, processor: proc}
	if !summarizing {
		return a, nil
	}

	if cfg.Provider.Name != summarizer.Provider {
		return nil, fmt.Errorf("provider %q cannot summarize; only %q is supported", cfg.Provider.Name, summarizer.Provider)
	}
	sum := summarizer.New(cfg.Provider.APIKeys, cfg.Provider.Model, log)

	a.digester = digest.New(digest.Options{
		OutputDir:     cfg.Paths.Output,
		ArchiveDir:    cfg.Paths.Archived,
		MaxConcurrent: cfg.Performance.MaxConcurrent,
		Validator:     transcript.Validator{RequireSpeakers: cfg.Chunking.RequireSpeakers},
		Processing:    processingOptions(cfg),
	}, proc, sum.Summarize, log)
	return a, nil
}

func processingOptions(cfg *config.Config) processor.Options {
	return processor.Options{
		Provider:          cfg.Provider.Name,
		Model:             cfg.Provider.Model,
		MaxTokensPerChunk: cfg.Chunking.MaxTokensPerChunk,
		Strategy:          transcript.Strategy(cfg.Chunking.Strategy),
		Language:          cfg.Output.Language,
		Retry:             cfg.Retry,
	}
}
