package chunking

import "github.com/nguyentantai21042004/meeting-digest/internal/transcript"

// Analyzer decides whether a transcript must be chunked for a provider/model.
type Analyzer interface {
	Analyze(t *transcript.Transcript, provider, model string, opts Options) Analysis
	ContextLimit(provider, model string) int
}

// Strategy partitions a transcript's sections into token-bounded chunks.
type Strategy interface {
	Name() transcript.Strategy
	Chunk(t *transcript.Transcript, maxTokens int) []transcript.Chunk
}

// Assembler stamps chunk metadata and adds cross-chunk context.
type Assembler interface {
	Enrich(chunks []transcript.Chunk, t *transcript.Transcript, strategy transcript.Strategy) []transcript.Chunk
	AddContextOverlap(chunks []transcript.Chunk) []transcript.Chunk
}
