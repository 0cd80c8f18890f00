package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/meeting-digest/internal/apperror"
	"github.com/nguyentantai21042004/meeting-digest/internal/chunking"
	"github.com/nguyentantai21042004/meeting-digest/internal/retry"
	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

var errNoResult = errors.New("summarizer returned no result")

func (p *implProcessor) Plan(t *transcript.Transcript, opts Options) (Plan, error) {
	if t == nil || strings.TrimSpace(t.Text()) == "" {
		id := ""
		if t != nil {
			id = t.ID
		}
		return Plan{}, apperror.New(apperror.TypeTranscriptEmpty, "transcript has no content to summarize", map[string]any{
			"transcriptId": id,
		})
	}

	analysis := p.analyzer.Analyze(t, opts.Provider, opts.Model, chunking.Options{
		MaxTokensPerChunk: opts.MaxTokensPerChunk,
	})
	plan := Plan{Analysis: analysis}
	if !analysis.NeedsChunking {
		return plan, nil
	}

	name := opts.Strategy
	if name == "" {
		name = analysis.RecommendedStrategy
	}
	strategy, err := chunking.NewStrategy(name, p.cfg)
	if err != nil {
		return Plan{}, err
	}

	src := withSections(t)
	chunks := strategy.Chunk(src, analysis.ChunkBudget)
	if err := chunking.VerifyCoverage(src, chunks); err != nil {
		return Plan{}, fmt.Errorf("chunk with %s: %w", name, err)
	}

	chunks = p.assembler.Enrich(chunks, src, name)
	plan.Strategy = name
	plan.Chunks = p.assembler.AddContextOverlap(chunks)
	return plan, nil
}

// Process summarizes t. A transcript that fits the model is passed to
// summarize unchanged and its result returned as is. Larger ones are chunked
// and summarized one chunk at a time, in order, then merged.
func (p *implProcessor) Process(ctx context.Context, t *transcript.Transcript, summarize SummarizeFunc, opts Options, progress ProgressFunc) (*Result, error) {
	started := time.Now()
	if opts.Retry == (retry.Config{}) {
		opts.Retry = retry.DefaultConfig()
	}

	plan, err := p.Plan(t, opts)
	if err != nil {
		return nil, err
	}

	if !plan.Analysis.NeedsChunking {
		p.logger.Debug(ctx, "Transcript %s fits in one request (%d tokens)", t.ID, plan.Analysis.TokenCount)
		res, err := p.call(ctx, t, summarize, opts, retryProgress(progress, 0, 1))
		if err != nil {
			return nil, err
		}
		emit(progress, Progress{Stage: StageComplete, TotalChunks: 1})
		return res, nil
	}

	total := len(plan.Chunks)
	p.logger.Info(ctx, "Transcript %s split into %d chunks using %s (%d tokens, budget %d)",
		t.ID, total, plan.Strategy, plan.Analysis.TokenCount, plan.Analysis.ChunkBudget)
	emit(progress, Progress{Stage: StageChunking, TotalChunks: total})

	summaries := make([]string, 0, total)
	for i := range plan.Chunks {
		chunk := &plan.Chunks[i]
		if err := ctx.Err(); err != nil {
			return nil, &ChunkError{ChunkIndex: i, CompletedChunks: i, TotalChunks: total, Err: err}
		}

		emit(progress, Progress{Stage: StageProcessing, ChunkIndex: i, TotalChunks: total})
		p.logger.Debug(ctx, "Summarizing chunk %d/%d (%d tokens)", i+1, total, chunk.Metadata.TokenCount)

		res, err := p.call(ctx, chunk, summarize, opts, retryProgress(progress, i, total))
		if err != nil {
			p.logger.Error(ctx, "Chunk %d/%d of %s failed: %v", i+1, total, t.ID, err)
			return nil, &ChunkError{ChunkIndex: i, CompletedChunks: i, TotalChunks: total, Err: err}
		}
		summaries = append(summaries, res.Summary)
	}

	result := &Result{
		Summary: mergeSummaries(summaries, plan.Chunks, opts.Language),
		Metadata: Metadata{
			ProcessingMethod: ProcessingMethodChunked,
			ChunksProcessed:  total,
			Strategy:         plan.Strategy,
			TokenCount:       plan.Analysis.TokenCount,
			Provider:         opts.Provider,
			Model:            opts.Model,
			ProcessingTime:   time.Since(started),
		},
		ChunkDetails: plan.Chunks,
	}

	emit(progress, Progress{Stage: StageComplete, ChunkIndex: total - 1, TotalChunks: total})
	p.logger.Info(ctx, "Transcript %s summarized from %d chunks in %s", t.ID, total, result.Metadata.ProcessingTime.Round(time.Millisecond))
	return result, nil
}

// call runs one paced, retried summarizer request.
func (p *implProcessor) call(ctx context.Context, src transcript.Source, summarize SummarizeFunc, opts Options, progress retry.ProgressFunc) (*Result, error) {
	return retry.Do(ctx, p.engine, opts.Retry, func(ctx context.Context) (*Result, error) {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		res, err := summarize(ctx, src, opts)
		if err != nil {
			return nil, err
		}
		if res == nil {
			return nil, errNoResult
		}
		return res, nil
	}, progress)
}

// withSections gives a content-only transcript one section so strategies
// have something to split.
func withSections(t *transcript.Transcript) *transcript.Transcript {
	if len(t.Sections) > 0 {
		return t
	}
	cp := *t
	cp.Sections = []transcript.Section{{
		StartTime:  0,
		EndTime:    t.Metadata.Duration,
		Text:       t.Content,
		Confidence: 1,
	}}
	return &cp
}

func retryProgress(progress ProgressFunc, index, total int) retry.ProgressFunc {
	if progress == nil {
		return nil
	}
	return func(u retry.Update) {
		progress(Progress{
			Stage:       StageRetry,
			ChunkIndex:  index,
			TotalChunks: total,
			Attempt:     u.Attempt,
			Delay:       u.Delay,
			Err:         u.Err,
		})
	}
}

func emit(progress ProgressFunc, p Progress) {
	if progress != nil {
		progress(p)
	}
}
