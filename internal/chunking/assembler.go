package chunking

import (
	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

type implAssembler struct {
	cfg Config
}

// Enrich returns copies of chunks with their metadata filled in. TokenCount
// covers the chunk's own sections; overlap added later is not counted.
func (a *implAssembler) Enrich(chunks []transcript.Chunk, t *transcript.Transcript, strategy transcript.Strategy) []transcript.Chunk {
	var id string
	if t != nil {
		id = t.ID
	}

	out := make([]transcript.Chunk, len(chunks))
	for i, c := range chunks {
		secs := append([]transcript.Section(nil), c.Sections...)
		own := (&transcript.Chunk{Sections: secs}).ContentSections()

		meta := c.Metadata
		meta.ChunkIndex = i
		meta.TotalChunks = len(chunks)
		meta.TokenCount = a.cfg.Estimator.Count(transcript.JoinText(own))
		meta.Speakers = transcript.Participants(own)
		meta.TimeRange = timeRange(own)
		meta.ChunkingStrategy = strategy
		meta.OriginalTranscriptID = id

		out[i] = transcript.Chunk{Sections: secs, Metadata: meta}
	}
	return out
}

// AddContextOverlap prepends the tail of each chunk's predecessor, marked as
// overlap. The tail is OverlapSections sections, or every section ending
// within OverlapDuration of the predecessor's end when that is set.
func (a *implAssembler) AddContextOverlap(chunks []transcript.Chunk) []transcript.Chunk {
	out := make([]transcript.Chunk, len(chunks))
	for i, c := range chunks {
		own := c.ContentSections()
		out[i] = transcript.Chunk{Sections: own, Metadata: c.Metadata}
		out[i].Metadata.HasOverlap = false
		out[i].Metadata.OverlapSections = 0

		if i == 0 || a.cfg.DisableOverlap {
			continue
		}

		tail := a.tail(chunks[i-1].ContentSections())
		if len(tail) == 0 {
			continue
		}
		secs := make([]transcript.Section, 0, len(tail)+len(own))
		for _, s := range tail {
			s.Overlap = true
			secs = append(secs, s)
		}
		out[i].Sections = append(secs, own...)
		out[i].Metadata.HasOverlap = true
		out[i].Metadata.OverlapSections = len(tail)
	}
	return out
}

func (a *implAssembler) tail(prev []transcript.Section) []transcript.Section {
	if len(prev) == 0 {
		return nil
	}

	if a.cfg.OverlapDuration > 0 {
		cutoff := prev[len(prev)-1].EndTime - a.cfg.OverlapDuration
		start := len(prev) - 1
		for start > 0 && prev[start-1].EndTime > cutoff {
			start--
		}
		return prev[start:]
	}

	n := min(a.cfg.OverlapSections, len(prev))
	return prev[len(prev)-n:]
}

func timeRange(sections []transcript.Section) transcript.TimeRange {
	if len(sections) == 0 {
		return transcript.TimeRange{}
	}
	r := transcript.TimeRange{Start: sections[0].StartTime, End: sections[0].EndTime}
	for _, s := range sections[1:] {
		r.Start = min(r.Start, s.StartTime)
		r.End = max(r.End, s.EndTime)
	}
	return r
}
