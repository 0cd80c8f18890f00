package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/meeting-digest/internal/apperror"
	"github.com/nguyentantai21042004/meeting-digest/internal/chunking"
	"github.com/nguyentantai21042004/meeting-digest/internal/retry"
	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

// Processor summarizes transcripts of any size, chunking them when they do
// not fit the provider's context window.
type Processor interface {
	// Plan analyzes t and, when chunking is needed, returns the chunks that
	// Process would send. It never calls a summarizer.
	Plan(t *transcript.Transcript, opts Options) (Plan, error)
	Process(ctx context.Context, t *transcript.Transcript, summarize SummarizeFunc, opts Options, progress ProgressFunc) (*Result, error)
}

// SummarizeFunc is the provider call. src is either a whole transcript or a
// chunk whose overlap sections are context only.
type SummarizeFunc func(ctx context.Context, src transcript.Source, opts Options) (*Result, error)

// Options configure one Process call.
type Options struct {
	Provider          string
	Model             string
	MaxTokensPerChunk int
	// Strategy overrides the analyzer's recommendation when set.
	Strategy transcript.Strategy
	// Language is the BCP 47 tag summaries and part headers are written in.
	Language string
	Retry    retry.Config
}

// ProcessingMethodChunked marks results merged from chunk summaries.
const ProcessingMethodChunked = "large_transcript_chunked"

type Metadata struct {
	ProcessingMethod string              `json:"processingMethod,omitempty"`
	ChunksProcessed  int                 `json:"chunksProcessed,omitempty"`
	Strategy         transcript.Strategy `json:"chunkingStrategy,omitempty"`
	TokenCount       int                 `json:"tokenCount,omitempty"`
	Provider         string              `json:"provider,omitempty"`
	Model            string              `json:"model,omitempty"`
	ProcessingTime   time.Duration       `json:"processingTime,omitempty"`
}

// Result is what a SummarizeFunc returns and what Process produces.
type Result struct {
	Summary      string             `json:"summary"`
	Metadata     Metadata           `json:"metadata"`
	ChunkDetails []transcript.Chunk `json:"chunkDetails,omitempty"`
}

// Plan is the chunking decision for one transcript.
type Plan struct {
	Analysis chunking.Analysis
	Strategy transcript.Strategy
	Chunks   []transcript.Chunk
}

type Stage string

const (
	StageChunking   Stage = "chunking"
	StageProcessing Stage = "processing"
	StageRetry      Stage = "retry"
	StageComplete   Stage = "complete"
)

// Progress is reported synchronously as Process advances.
type Progress struct {
	Stage       Stage
	ChunkIndex  int
	TotalChunks int
	Attempt     int
	Delay       time.Duration
	Err         *apperror.Error
}

type ProgressFunc func(Progress)

// ChunkError reports the chunk that stopped a chunked run.
type ChunkError struct {
	ChunkIndex      int
	CompletedChunks int
	TotalChunks     int
	Err             error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d of %d failed (%d completed): %v", e.ChunkIndex+1, e.TotalChunks, e.CompletedChunks, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}
