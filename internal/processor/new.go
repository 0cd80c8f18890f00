package processor

import (
	"golang.org/x/time/rate"

	"github.com/nguyentantai21042004/meeting-digest/internal/chunking"
	"github.com/nguyentantai21042004/meeting-digest/internal/logger"
	"github.com/nguyentantai21042004/meeting-digest/internal/retry"
)

type implProcessor struct {
	cfg       chunking.Config
	analyzer  chunking.Analyzer
	assembler chunking.Assembler
	engine    retry.Engine
	limiter   *rate.Limiter
	logger    logger.Logger
}

// New creates a new Processor instance. limiter paces provider calls and may be nil.
func New(cfg chunking.Config, engine retry.Engine, limiter *rate.Limiter, log logger.Logger) Processor {
	if engine == nil {
		engine = retry.New(nil, log)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &implProcessor{
		cfg:       cfg,
		analyzer:  chunking.NewAnalyzer(cfg),
		assembler: chunking.NewAssembler(cfg),
		engine:    engine,
		limiter:   limiter,
		logger:    log,
	}
}

// NewLimiter allows requestsPerMinute provider calls with the given burst.
// Zero means unlimited.
func NewLimiter(requestsPerMinute float64, burst int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, max(burst, 1))
	}
	return rate.NewLimiter(rate.Limit(requestsPerMinute/60), max(burst, 1))
}
