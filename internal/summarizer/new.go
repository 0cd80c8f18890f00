package summarizer

import (
	"sync"

	"github.com/nguyentantai21042004/meeting-digest/internal/logger"
)

// DefaultModel is used when neither the summarizer nor the call names a model.
const DefaultModel = "gemini-2.5-flash"

type implSummarizer struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int
	logger     logger.Logger
	model      string
	generate   generateFunc
}

// New creates a Summarizer that rotates through the supplied Gemini API keys.
func New(apiKeys []string, model string, log logger.Logger) Summarizer {
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &implSummarizer{
		apiKeys:  apiKeys,
		logger:   log,
		model:    model,
		generate: generateGemini,
	}
}
