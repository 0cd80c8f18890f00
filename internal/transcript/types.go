// Package transcript holds the meeting transcript model shared by the
// chunking engine, the processor and the summarizers.
package transcript

import (
	"fmt"
	"strings"
	"time"
)

// Metadata describes a whole meeting.
type Metadata struct {
	Participants []string      `json:"participants"`
	Duration     time.Duration `json:"duration"`
	Language     string        `json:"language"`
	TotalEntries int           `json:"totalEntries"`
	StartTime    time.Time     `json:"startTime"`
	EndTime      time.Time     `json:"endTime"`
}

// Section is one caption entry. StartTime and EndTime are offsets from the
// start of the meeting.
//
// Index is the position of the source section in Transcript.Sections. Part is
// 0 for an unsplit section and 1..n for pieces of a section that had to be
// split to fit a token budget. Overlap marks a copy prepended to a chunk for
// continuity; such copies are not part of the chunk's own content.
type Section struct {
	Index      int           `json:"index"`
	Part       int           `json:"part,omitempty"`
	Speaker    string        `json:"speaker"`
	StartTime  time.Duration `json:"startTime"`
	EndTime    time.Duration `json:"endTime"`
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	Overlap    bool          `json:"isOverlap,omitempty"`
}

// Transcript is a full meeting transcript.
type Transcript struct {
	ID       string    `json:"id"`
	Metadata Metadata  `json:"metadata"`
	Content  string    `json:"content"`
	Sections []Section `json:"sections"`
}

// Source is what a summarizer consumes: a whole transcript or one chunk.
type Source interface {
	Text() string
	SourceSections() []Section
}

// Text returns the full transcript content, rendering sections when Content is empty.
func (t *Transcript) Text() string {
	if t.Content != "" {
		return t.Content
	}
	return JoinText(t.Sections)
}

// SourceSections returns the transcript's sections.
func (t *Transcript) SourceSections() []Section {
	return t.Sections
}

// IndexedSections returns copies of the sections with Index set to their
// position, so downstream code never trusts a caller-supplied index.
func (t *Transcript) IndexedSections() []Section {
	out := make([]Section, len(t.Sections))
	for i, s := range t.Sections {
		s.Index = i
		s.Part = 0
		s.Overlap = false
		out[i] = s
	}
	return out
}

// Strategy names a chunk boundary heuristic.
type Strategy string

const (
	StrategySpeakerTurns   Strategy = "speaker_turns"
	StrategyTimeIntervals  Strategy = "time_intervals"
	StrategySemanticBreaks Strategy = "semantic_breaks"
	StrategyHybrid         Strategy = "hybrid"
)

// Valid reports whether s names a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategySpeakerTurns, StrategyTimeIntervals, StrategySemanticBreaks, StrategyHybrid:
		return true
	}
	return false
}

// TimeRange spans a chunk's sections.
type TimeRange struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
}

// ChunkMetadata is filled by the chunk assembler.
type ChunkMetadata struct {
	ChunkIndex           int       `json:"chunkIndex"`
	TotalChunks          int       `json:"totalChunks"`
	TokenCount           int       `json:"tokenCount"`
	Speakers             []string  `json:"speakers"`
	TimeRange            TimeRange `json:"timeRange"`
	ChunkingStrategy     Strategy  `json:"chunkingStrategy"`
	HasOverlap           bool      `json:"hasOverlap,omitempty"`
	OverlapSections      int       `json:"overlapSections,omitempty"`
	OriginalTranscriptID string    `json:"originalTranscriptId"`
}

// Chunk is a token-bounded run of sections.
type Chunk struct {
	Sections []Section     `json:"sections"`
	Metadata ChunkMetadata `json:"metadata"`
}

// Text joins every section, overlap included.
func (c *Chunk) Text() string {
	return JoinText(c.Sections)
}

// SourceSections returns every section, overlap included.
func (c *Chunk) SourceSections() []Section {
	return c.Sections
}

// ContentSections returns the chunk's own sections, overlap excluded.
func (c *Chunk) ContentSections() []Section {
	out := make([]Section, 0, len(c.Sections))
	for _, s := range c.Sections {
		if !s.Overlap {
			out = append(out, s)
		}
	}
	return out
}

// SectionSeparator joins section texts when a chunk is flattened.
const SectionSeparator = "\n"

// JoinText concatenates section texts with SectionSeparator.
func JoinText(sections []Section) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString(SectionSeparator)
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

// LinePrefix is what a summary prompt prints before a section's text:
// "[hh:mm:ss] Speaker: ", without the speaker part when it is unknown.
func LinePrefix(s Section) string {
	if s.Speaker == "" {
		return "[" + FormatClock(s.StartTime) + "] "
	}
	return "[" + FormatClock(s.StartTime) + "] " + s.Speaker + ": "
}

// FormatClock renders an offset as hh:mm:ss.
func FormatClock(d time.Duration) string {
	d = max(d, 0).Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
