package digest

import (
	"time"

	"github.com/nguyentantai21042004/meeting-digest/internal/logger"
	"github.com/nguyentantai21042004/meeting-digest/internal/processor"
	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

// Options configure where digests go and how transcripts are processed.
type Options struct {
	OutputDir string
	// ArchiveDir receives processed sources. Empty leaves them in place.
	ArchiveDir    string
	MaxConcurrent int
	Validator     transcript.Validator
	Processing    processor.Options
}

type implDigester struct {
	opts      Options
	processor processor.Processor
	summarize processor.SummarizeFunc
	logger    logger.Logger
	now       func() time.Time
}

// New creates a Digester that summarizes through proc and summarize.
func New(opts Options, proc processor.Processor, summarize processor.SummarizeFunc, log logger.Logger) Digester {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &implDigester{
		opts:      opts,
		processor: proc,
		summarize: summarize,
		logger:    log,
		now:       time.Now,
	}
}
