package chunking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

// ErrCoverage is returned when a chunk set does not reproduce its transcript.
var ErrCoverage = errors.New("chunks do not cover transcript")

// VerifyCoverage checks that the non-overlap sections of chunks, in order,
// reproduce t.Sections exactly once. Split parts must be consecutive and
// re-join to their source text, ignoring whitespace.
func VerifyCoverage(t *transcript.Transcript, chunks []transcript.Chunk) error {
	var own []transcript.Section
	for i := range chunks {
		own = append(own, chunks[i].ContentSections()...)
	}

	var sections []transcript.Section
	if t != nil {
		sections = t.Sections
	}

	pos := 0
	for want, src := range sections {
		if pos >= len(own) {
			return fmt.Errorf("%w: section %d missing", ErrCoverage, want)
		}

		s := own[pos]
		if s.Index != want {
			return fmt.Errorf("%w: expected section %d, got %d", ErrCoverage, want, s.Index)
		}

		if s.Part == 0 {
			if s.Text != src.Text {
				return fmt.Errorf("%w: section %d text changed", ErrCoverage, want)
			}
			pos++
			continue
		}

		var joined strings.Builder
		for part := 1; pos < len(own) && own[pos].Index == want; part++ {
			if own[pos].Part != part {
				return fmt.Errorf("%w: section %d part %d out of order", ErrCoverage, want, own[pos].Part)
			}
			joined.WriteString(own[pos].Text)
			pos++
		}
		if squash(joined.String()) != squash(src.Text) {
			return fmt.Errorf("%w: section %d parts do not rejoin", ErrCoverage, want)
		}
	}

	if pos != len(own) {
		return fmt.Errorf("%w: %d unexpected trailing sections", ErrCoverage, len(own)-pos)
	}
	return nil
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}
