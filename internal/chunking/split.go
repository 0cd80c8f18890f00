package chunking

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/nguyentantai21042004/meeting-digest/internal/tokens"
	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

// split granularity, coarsest first
const (
	bySentence = iota
	byWord
	byRune
)

// splitSection returns s unchanged when it fits budget. Otherwise it cuts the
// text at sentence, then word, then rune boundaries into numbered parts that
// each fit, interpolating their times by rune offset.
func splitSection(est tokens.Estimator, s transcript.Section, budget int) []transcript.Section {
	if est.Count(s.Text) <= budget {
		return []transcript.Section{s}
	}

	units := splitUnits(est, s.Text, budget, bySentence)
	total := utf8.RuneCountInString(s.Text)
	span := s.EndTime - s.StartTime
	at := func(offset int) time.Duration {
		if total == 0 {
			return s.StartTime
		}
		return s.StartTime + time.Duration(float64(span)*float64(offset)/float64(total))
	}

	var parts []transcript.Section
	var cur strings.Builder
	var tally tokens.Tally
	offset, curStart := 0, 0

	flush := func() {
		text := strings.TrimSpace(cur.String())
		if text != "" {
			p := s
			p.Part = len(parts) + 1
			p.Text = text
			p.StartTime = at(curStart)
			p.EndTime = at(offset)
			parts = append(parts, p)
		}
		cur.Reset()
		tally = tokens.Tally{}
		curStart = offset
	}

	for _, u := range units {
		ut := tokens.TallyOf(u)
		if cur.Len() > 0 && est.Tokens(tally.Add(ut)) > budget {
			flush()
		}
		cur.WriteString(u)
		tally = tally.Add(ut)
		offset += utf8.RuneCountInString(u)
	}
	flush()

	if len(parts) > 0 {
		parts[len(parts)-1].EndTime = s.EndTime
	}
	return parts
}

// splitUnits breaks text at the given level, refining any unit that is
// still over budget. Units keep their trailing whitespace so that
// concatenating them restores text.
func splitUnits(est tokens.Estimator, text string, budget, level int) []string {
	var raw []string
	switch level {
	case bySentence:
		raw = sentences(text)
	case byWord:
		raw = words(text)
	default:
		// slice the original bytes so invalid UTF-8 survives unchanged
		for len(text) > 0 {
			_, w := utf8.DecodeRuneInString(text)
			raw = append(raw, text[:w])
			text = text[w:]
		}
		return raw
	}

	out := make([]string, 0, len(raw))
	for _, u := range raw {
		if est.Count(u) > budget {
			out = append(out, splitUnits(est, u, budget, level+1)...)
			continue
		}
		out = append(out, u)
	}
	return out
}

func sentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); {
		r, w := utf8.DecodeRuneInString(text[i:])
		i += w
		if !sentenceEnd(r) {
			continue
		}
		// Latin terminators only count before whitespace ("3.5" is one unit).
		if next, _ := utf8.DecodeRuneInString(text[i:]); !tokens.IsCJK(r) && i < len(text) && !unicode.IsSpace(next) {
			continue
		}
		for i < len(text) {
			next, w := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(next) {
				break
			}
			i += w
		}
		out = append(out, text[start:i])
		start = i
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func sentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '…':
		return true
	}
	return false
}

func words(text string) []string {
	var out []string
	start := 0
	prevSpace := false
	for i, r := range text {
		space := unicode.IsSpace(r)
		if prevSpace && !space && i > start {
			out = append(out, text[start:i])
			start = i
		}
		prevSpace = space
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}
