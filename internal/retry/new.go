package retry

import (
	"math/rand/v2"

	"github.com/nguyentantai21042004/meeting-digest/internal/apperror"
	"github.com/nguyentantai21042004/meeting-digest/internal/logger"
)

// New creates an Engine that records into stats. A nil stats gets a fresh one.
func New(stats *Stats, log logger.Logger) Engine {
	if stats == nil {
		stats = NewStats()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &implEngine{
		stats:    stats,
		logger:   log,
		classify: apperror.Normalize,
		sleep:    sleepContext,
		rand:     rand.Float64,
	}
}
