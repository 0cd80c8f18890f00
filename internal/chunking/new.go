package chunking

import (
	"fmt"

	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

// NewAnalyzer creates an Analyzer. Zero config fields take the defaults.
func NewAnalyzer(cfg Config) Analyzer {
	cfg = cfg.withDefaults()
	return &implAnalyzer{
		cfg:    cfg,
		limits: mergeLimits(cfg.ContextLimits),
	}
}

// NewStrategy returns the boundary strategy registered under name.
func NewStrategy(name transcript.Strategy, cfg Config) (Strategy, error) {
	cfg = cfg.withDefaults()
	switch name {
	case transcript.StrategySpeakerTurns:
		return &speakerTurns{cfg: cfg}, nil
	case transcript.StrategyTimeIntervals:
		return &timeIntervals{cfg: cfg}, nil
	case transcript.StrategySemanticBreaks:
		return &semanticBreaks{cfg: cfg, markers: normalizeMarkers(cfg.SemanticMarkers)}, nil
	case transcript.StrategyHybrid:
		return &hybrid{cfg: cfg, markers: normalizeMarkers(cfg.SemanticMarkers)}, nil
	default:
		return nil, fmt.Errorf("unknown chunking strategy %q", name)
	}
}

// NewAssembler creates an Assembler.
func NewAssembler(cfg Config) Assembler {
	return &implAssembler{cfg: cfg.withDefaults()}
}
