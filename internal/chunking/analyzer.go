package chunking

import (
	"time"

	"github.com/nguyentantai21042004/meeting-digest/internal/tokens"
	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

// Complexity is a coarse size/shape rating of a meeting.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Options are the per-call analyzer inputs.
type Options struct {
	// MaxTokensPerChunk caps the chunk budget below the model's effective limit.
	MaxTokensPerChunk int
}

// Analysis is the result of Analyze. It is comparable with ==.
type Analysis struct {
	NeedsChunking       bool                `json:"needsChunking"`
	EstimatedChunks     int                 `json:"estimatedChunks"`
	Complexity          Complexity          `json:"complexity"`
	RecommendedStrategy transcript.Strategy `json:"recommendedStrategy"`
	ContextLimit        int                 `json:"contextLimit"`
	TokenCount          int                 `json:"tokenCount"`
	// ChunkBudget is the text token budget strategies should be given.
	ChunkBudget int `json:"chunkBudget"`
}

type implAnalyzer struct {
	cfg    Config
	limits map[string]map[string]int
}

func (a *implAnalyzer) ContextLimit(provider, model string) int {
	return lookupLimit(a.limits, provider, model, a.cfg.DefaultContextLimit)
}

// Analyze has no side effects; identical inputs give equal results.
func (a *implAnalyzer) Analyze(t *transcript.Transcript, provider, model string, opts Options) Analysis {
	limit := a.ContextLimit(provider, model)
	budget := a.effectiveLimit(limit, opts.MaxTokensPerChunk)

	var tokenCount, prefixTokens int
	if t != nil {
		tokenCount = a.cfg.Estimator.Count(t.Text())
		prefixTokens = a.prefixTokens(t.Sections)
	}

	chunkBudget := a.chunkBudget(budget, tokenCount, prefixTokens)

	res := Analysis{
		NeedsChunking:       float64(tokenCount+prefixTokens)*a.cfg.SafetyMargin > float64(budget),
		ContextLimit:        limit,
		TokenCount:          tokenCount,
		ChunkBudget:         chunkBudget,
		Complexity:          ComplexityLow,
		RecommendedStrategy: transcript.StrategyHybrid,
	}
	if tokenCount > 0 {
		res.EstimatedChunks = max((tokenCount+chunkBudget-1)/chunkBudget, 1)
	}
	if t != nil {
		res.Complexity = a.complexity(t)
		res.RecommendedStrategy = a.recommend(t.Sections, tokenCount)
	}
	return res
}

// effectiveLimit is the context window minus the response and prompt
// reserves, capped by the caller's per-chunk maximum. It is never below 1.
func (a *implAnalyzer) effectiveLimit(contextLimit, maxTokensPerChunk int) int {
	reserve := min(a.cfg.ResponseReserve, contextLimit/4) + min(a.cfg.PromptReserve, contextLimit/8)
	limit := contextLimit - reserve
	if maxTokensPerChunk > 0 && maxTokensPerChunk < limit {
		limit = maxTokensPerChunk
	}
	return max(limit, 1)
}

// chunkBudget is the text budget handed to strategies. It applies the safety
// margin, so a chunk passes the same test that decided the transcript needed
// chunking, and scales by the text share of the rendered lines, since
// strategies count section text only.
func (a *implAnalyzer) chunkBudget(budget, textTokens, prefixTokens int) int {
	b := float64(budget)
	if a.cfg.SafetyMargin > 1 {
		b /= a.cfg.SafetyMargin
	}
	if textTokens > 0 && prefixTokens > 0 {
		b *= float64(textTokens) / float64(textTokens+prefixTokens)
	}
	return max(int(b), 1)
}

// prefixTokens estimates the "[hh:mm:ss] Speaker: " lead of every line.
func (a *implAnalyzer) prefixTokens(sections []transcript.Section) int {
	var t tokens.Tally
	for _, s := range sections {
		t = t.Add(tokens.TallyOf(transcript.LinePrefix(s)))
	}
	return a.cfg.Estimator.Tokens(t)
}

func (a *implAnalyzer) complexity(t *transcript.Transcript) Complexity {
	score := 0

	switch n := len(t.Sections); {
	case n > 500:
		score += 2
	case n > 200:
		score++
	}

	switch d := t.Metadata.Duration; {
	case d > 90*time.Minute:
		score += 2
	case d > 30*time.Minute:
		score++
	}

	switch s := len(transcript.Participants(t.Sections)); {
	case s > 8:
		score += 2
	case s > 3:
		score++
	}

	switch {
	case score >= 4:
		return ComplexityHigh
	case score >= 2:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

// recommend picks TimeIntervals for long monologues, SpeakerTurns for rapid
// back-and-forth and Hybrid for everything in between.
func (a *implAnalyzer) recommend(sections []transcript.Section, tokenCount int) transcript.Strategy {
	if len(sections) < 2 {
		if tokenCount >= a.cfg.MonologueTurnTokens {
			return transcript.StrategyTimeIntervals
		}
		return transcript.StrategyHybrid
	}

	switches := 0
	for i := 1; i < len(sections); i++ {
		if sections[i].Speaker != sections[i-1].Speaker {
			switches++
		}
	}
	switchRate := float64(switches) / float64(len(sections)-1)
	avgTurn := tokenCount / (switches + 1)

	switch {
	case switchRate <= a.cfg.MonologueSwitchRate && avgTurn >= a.cfg.MonologueTurnTokens:
		return transcript.StrategyTimeIntervals
	case switchRate >= a.cfg.DialogueSwitchRate:
		return transcript.StrategySpeakerTurns
	default:
		return transcript.StrategyHybrid
	}
}
