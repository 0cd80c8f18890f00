package transcript

import (
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/meeting-digest/internal/apperror"
)

// Validator checks a transcript before it is summarized.
type Validator struct {
	// RequireSpeakers rejects transcripts where no section names a speaker.
	RequireSpeakers bool
}

// Validate runs the default checks (speakers optional).
func Validate(t *Transcript) error {
	return Validator{}.Validate(t)
}

// Validate returns a DATA-category *apperror.Error describing the first problem found.
func (v Validator) Validate(t *Transcript) error {
	if t == nil || (len(t.Sections) == 0 && strings.TrimSpace(t.Content) == "") {
		return apperror.New(apperror.TypeTranscriptEmpty, "transcript is empty", nil)
	}

	named := false
	for i, s := range t.Sections {
		if s.StartTime < 0 || s.EndTime < s.StartTime {
			return apperror.New(apperror.TypeTranscriptMalformedTimestamp,
				fmt.Sprintf("section %d ends before it starts (%s > %s)", i, s.StartTime, s.EndTime),
				map[string]any{"section": i})
		}
		if i > 0 && s.StartTime < t.Sections[i-1].StartTime {
			return apperror.New(apperror.TypeTranscriptMalformedTimestamp,
				fmt.Sprintf("section %d starts before section %d", i, i-1),
				map[string]any{"section": i})
		}
		if s.Confidence < 0 || s.Confidence > 1 {
			return apperror.New(apperror.TypeTranscriptMalformedTimestamp,
				fmt.Sprintf("section %d has confidence %.2f outside [0,1]", i, s.Confidence),
				map[string]any{"section": i})
		}
		if s.Speaker != "" {
			named = true
		}
	}

	if v.RequireSpeakers && len(t.Sections) > 0 && !named {
		return apperror.New(apperror.TypeTranscriptMissingSpeakers, "no section names a speaker", nil)
	}
	return nil
}
