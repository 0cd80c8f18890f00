package chunking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/meeting-digest/internal/tokens"
	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

func TestEnrich(t *testing.T) {
	tr := evenSections("AABBCC", nil)
	s, _ := NewStrategy(transcript.StrategySpeakerTurns, Config{})
	chunks := s.Chunk(tr, 6)
	require.Len(t, chunks, 3)

	got := NewAssembler(Config{}).Enrich(chunks, tr, transcript.StrategySpeakerTurns)
	require.Len(t, got, 3)

	for i, c := range got {
		assert.Equal(t, i, c.Metadata.ChunkIndex)
		assert.Equal(t, 3, c.Metadata.TotalChunks)
		assert.Equal(t, "even", c.Metadata.OriginalTranscriptID)
		assert.Equal(t, transcript.StrategySpeakerTurns, c.Metadata.ChunkingStrategy)
		assert.Equal(t, tokens.EstimateTokenCount(c.Text()), c.Metadata.TokenCount)
		assert.False(t, c.Metadata.HasOverlap)
	}

	assert.Equal(t, []string{"B"}, got[1].Metadata.Speakers)
	assert.Equal(t, transcript.TimeRange{Start: 20 * time.Second, End: 38 * time.Second}, got[1].Metadata.TimeRange)

	// input chunks are not modified
	assert.Zero(t, chunks[2].Metadata.TotalChunks)
}

func TestAddContextOverlap(t *testing.T) {
	tr := evenSections("ABCDEFGH", nil)
	s, _ := NewStrategy(transcript.StrategySpeakerTurns, Config{})
	a := NewAssembler(Config{})

	chunks := a.Enrich(s.Chunk(tr, 9), tr, transcript.StrategySpeakerTurns)
	require.Len(t, chunks, 2)

	got := a.AddContextOverlap(chunks)
	require.Len(t, got, 2)

	assert.False(t, got[0].Metadata.HasOverlap)
	assert.Len(t, got[0].Sections, 4)

	assert.True(t, got[1].Metadata.HasOverlap)
	assert.Equal(t, 2, got[1].Metadata.OverlapSections)
	assert.Equal(t, [][]int{{0, 1, 2, 3}, {2, 3, 4, 5, 6, 7}}, indices(got))
	assert.True(t, got[1].Sections[0].Overlap)
	assert.True(t, got[1].Sections[1].Overlap)
	assert.False(t, got[1].Sections[2].Overlap)

	// token count still describes the chunk's own sections
	assert.Equal(t, chunks[1].Metadata.TokenCount, got[1].Metadata.TokenCount)
	require.NoError(t, VerifyCoverage(tr, got))

	// applying twice does not stack overlap
	again := a.AddContextOverlap(got)
	assert.Equal(t, indices(got), indices(again))
}

func TestAddContextOverlap_Duration(t *testing.T) {
	tr := evenSections("ABCDEFGH", nil)
	s, _ := NewStrategy(transcript.StrategySpeakerTurns, Config{})
	chunks := s.Chunk(tr, 9)

	// chunk 0 ends at 38s; sections 1, 2 and 3 end after 13s
	a := NewAssembler(Config{OverlapDuration: 25 * time.Second})
	got := a.AddContextOverlap(chunks)
	assert.Equal(t, 3, got[1].Metadata.OverlapSections)

	// a tiny window still carries the last section
	a = NewAssembler(Config{OverlapDuration: time.Millisecond})
	got = a.AddContextOverlap(chunks)
	assert.Equal(t, 1, got[1].Metadata.OverlapSections)
}

func TestAddContextOverlap_Disabled(t *testing.T) {
	tr := evenSections("ABCDEFGH", nil)
	s, _ := NewStrategy(transcript.StrategySpeakerTurns, Config{})

	got := NewAssembler(Config{DisableOverlap: true}).AddContextOverlap(s.Chunk(tr, 9))
	for _, c := range got {
		assert.False(t, c.Metadata.HasOverlap)
	}
}

func TestVerifyCoverage_Violations(t *testing.T) {
	tr := evenSections("ABCD", nil)
	secs := tr.IndexedSections()

	tests := []struct {
		name   string
		chunks []transcript.Chunk
	}{
		{"missing", []transcript.Chunk{{Sections: secs[:3]}}},
		{"duplicate", []transcript.Chunk{{Sections: secs[:3]}, {Sections: secs[2:]}}},
		{"reordered", []transcript.Chunk{{Sections: []transcript.Section{secs[1], secs[0], secs[2], secs[3]}}}},
		{"extra", []transcript.Chunk{{Sections: secs}, {Sections: secs[3:]}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, VerifyCoverage(tr, tt.chunks), ErrCoverage)
		})
	}

	assert.NoError(t, VerifyCoverage(tr, []transcript.Chunk{{Sections: secs[:2]}, {Sections: secs[2:]}}))
	assert.NoError(t, VerifyCoverage(&transcript.Transcript{}, nil))
}
