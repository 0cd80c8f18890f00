package chunking

import (
	"time"

	"github.com/nguyentantai21042004/meeting-digest/internal/tokens"
)

const (
	DefaultSafetyMargin        = 1.1
	DefaultContextLimit        = 8000
	DefaultResponseReserve     = 1024
	DefaultPromptReserve       = 512 // instructions, part note and overlap lines
	DefaultSpeakingRate        = 200 // tokens per minute of speech
	DefaultPauseThreshold      = 45 * time.Second
	DefaultMinFill             = 0.5
	DefaultOverlapSections     = 2
	DefaultMonologueSwitchRate = 0.2
	DefaultDialogueSwitchRate  = 0.6
	DefaultMonologueTurnTokens = 300
)

// DefaultSemanticMarkers open a new topic when they lead a section.
var DefaultSemanticMarkers = []string{
	"moving on",
	"let's move on",
	"next topic",
	"next item",
	"next up",
	"let's talk about",
	"let's discuss",
	"switching gears",
	"another thing",
	"on another note",
	"to summarize",
	"in summary",
	"to wrap up",
	"action items",
	"any other business",
	"接下來",
	"下一個",
	"另外",
	"總結",
	"最後",
}

// Config carries the tunable constants of the chunking engine. Zero fields
// take the package defaults.
type Config struct {
	Estimator tokens.Estimator

	SafetyMargin        float64
	DefaultContextLimit int
	ResponseReserve     int
	// PromptReserve is held back from the context window for the prompt
	// template and the overlap lines rendered ahead of each chunk.
	PromptReserve int
	// ContextLimits overrides or extends the built-in provider/model table.
	ContextLimits map[string]map[string]int

	// SpeakingRate sizes TimeIntervals windows.
	SpeakingRate   int
	PauseThreshold time.Duration
	// SemanticMarkers replaces DefaultSemanticMarkers when non-empty.
	SemanticMarkers []string
	// MinFill is the fraction of the budget a Hybrid chunk must reach before
	// a soft boundary is accepted.
	MinFill float64

	OverlapSections int
	// OverlapDuration, when set, overlaps every trailing section of the
	// previous chunk that ends within this window instead of a fixed count.
	OverlapDuration time.Duration
	DisableOverlap  bool

	MonologueSwitchRate float64
	DialogueSwitchRate  float64
	MonologueTurnTokens int
}

// DefaultConfig returns the config with every default filled in.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.SafetyMargin <= 0 {
		c.SafetyMargin = DefaultSafetyMargin
	}
	if c.DefaultContextLimit <= 0 {
		c.DefaultContextLimit = DefaultContextLimit
	}
	if c.ResponseReserve < 0 {
		c.ResponseReserve = 0
	} else if c.ResponseReserve == 0 {
		c.ResponseReserve = DefaultResponseReserve
	}
	if c.PromptReserve < 0 {
		c.PromptReserve = 0
	} else if c.PromptReserve == 0 {
		c.PromptReserve = DefaultPromptReserve
	}
	if c.SpeakingRate <= 0 {
		c.SpeakingRate = DefaultSpeakingRate
	}
	if c.PauseThreshold <= 0 {
		c.PauseThreshold = DefaultPauseThreshold
	}
	if len(c.SemanticMarkers) == 0 {
		c.SemanticMarkers = DefaultSemanticMarkers
	}
	if c.MinFill <= 0 || c.MinFill > 1 {
		c.MinFill = DefaultMinFill
	}
	if c.OverlapSections <= 0 {
		c.OverlapSections = DefaultOverlapSections
	}
	if c.MonologueSwitchRate <= 0 {
		c.MonologueSwitchRate = DefaultMonologueSwitchRate
	}
	if c.DialogueSwitchRate <= 0 {
		c.DialogueSwitchRate = DefaultDialogueSwitchRate
	}
	if c.MonologueTurnTokens <= 0 {
		c.MonologueTurnTokens = DefaultMonologueTurnTokens
	}
	return c
}
