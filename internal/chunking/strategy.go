package chunking

import (
	"strings"
	"time"
	"unicode"

	"github.com/nguyentantai21042004/meeting-digest/internal/tokens"
	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

var separatorTally = tokens.TallyOf(transcript.SectionSeparator)

type atom struct {
	sec   transcript.Section
	tally tokens.Tally
}

// atomize indexes the transcript's sections and splits those over budget.
func atomize(est tokens.Estimator, t *transcript.Transcript, budget int) []atom {
	if t == nil {
		return nil
	}
	var atoms []atom
	for _, s := range t.IndexedSections() {
		for _, p := range splitSection(est, s, budget) {
			atoms = append(atoms, atom{sec: p, tally: tokens.TallyOf(p.Text)})
		}
	}
	return atoms
}

// window is the chunk currently being filled. cum[i] is the tally of
// atoms[0..i] joined with the section separator.
type window struct {
	est   tokens.Estimator
	atoms []atom
	cum   []tokens.Tally
}

func (w *window) empty() bool { return len(w.atoms) == 0 }

func (w *window) last() transcript.Section { return w.atoms[len(w.atoms)-1].sec }

// tokensWith is the token count of the window with a appended.
func (w *window) tokensWith(a atom) int {
	if w.empty() {
		return w.est.Tokens(a.tally)
	}
	return w.est.Tokens(w.cum[len(w.cum)-1].Add(separatorTally).Add(a.tally))
}

// prefixTokens is the token count of the first n atoms.
func (w *window) prefixTokens(n int) int {
	if n <= 0 {
		return 0
	}
	return w.est.Tokens(w.cum[n-1])
}

func (w *window) push(a atom) {
	t := a.tally
	if !w.empty() {
		t = w.cum[len(w.cum)-1].Add(separatorTally).Add(a.tally)
	}
	w.atoms = append(w.atoms, a)
	w.cum = append(w.cum, t)
}

// take closes a chunk from the first n atoms and keeps the rest.
func (w *window) take(n int) transcript.Chunk {
	secs := make([]transcript.Section, n)
	for i := range n {
		secs[i] = w.atoms[i].sec
	}

	rest := append([]atom(nil), w.atoms[n:]...)
	w.atoms, w.cum = nil, nil
	for _, a := range rest {
		w.push(a)
	}
	return transcript.Chunk{Sections: secs}
}

// cutFunc picks how many atoms close the chunk when next does not fit.
type cutFunc func(w *window, next atom) int

// boundaryFunc reports whether next must open a new chunk even though it fits.
type boundaryFunc func(w *window, next atom) bool

// accumulate is the greedy engine shared by every strategy. The budget is
// always enforced; cut and boundary only move where chunks close.
func accumulate(atoms []atom, est tokens.Estimator, budget int, cut cutFunc, boundary boundaryFunc) []transcript.Chunk {
	chunks := []transcript.Chunk{}
	w := &window{est: est}

	for _, a := range atoms {
		if !w.empty() && boundary != nil && boundary(w, a) {
			chunks = append(chunks, w.take(len(w.atoms)))
		}
		for !w.empty() && w.tokensWith(a) > budget {
			n := len(w.atoms)
			if cut != nil {
				n = min(max(cut(w, a), 1), len(w.atoms))
			}
			chunks = append(chunks, w.take(n))
		}
		w.push(a)
	}

	if !w.empty() {
		chunks = append(chunks, w.take(len(w.atoms)))
	}
	return chunks
}

func normalizeBudget(maxTokens int) int {
	return max(maxTokens, 1)
}

type speakerTurns struct {
	cfg Config
}

func (s *speakerTurns) Name() transcript.Strategy { return transcript.StrategySpeakerTurns }

// Chunk closes a chunk whenever the next turn would exceed the budget.
func (s *speakerTurns) Chunk(t *transcript.Transcript, maxTokens int) []transcript.Chunk {
	budget := normalizeBudget(maxTokens)
	return accumulate(atomize(s.cfg.Estimator, t, budget), s.cfg.Estimator, budget, nil, nil)
}

type timeIntervals struct {
	cfg Config
}

func (s *timeIntervals) Name() transcript.Strategy { return transcript.StrategyTimeIntervals }

// Chunk sizes wall-clock windows from the speaking rate so that a window of
// speech is about one budget of tokens. A section belongs to the window its
// midpoint falls in, so boundaries land on section edges.
func (s *timeIntervals) Chunk(t *transcript.Transcript, maxTokens int) []transcript.Chunk {
	budget := normalizeBudget(maxTokens)
	span := s.window(budget)

	boundary := func(w *window, next atom) bool {
		start := w.atoms[0].sec.StartTime
		mid := next.sec.StartTime + (next.sec.EndTime-next.sec.StartTime)/2
		return mid-start >= span
	}
	return accumulate(atomize(s.cfg.Estimator, t, budget), s.cfg.Estimator, budget, nil, boundary)
}

func (s *timeIntervals) window(budget int) time.Duration {
	minutes := float64(budget) / float64(s.cfg.SpeakingRate)
	return max(time.Duration(minutes*float64(time.Minute)), time.Second)
}

type semanticBreaks struct {
	cfg     Config
	markers []string
}

func (s *semanticBreaks) Name() transcript.Strategy { return transcript.StrategySemanticBreaks }

// Chunk fills to the budget, then closes at the latest topic marker or long
// pause. Without one it cuts at the budget.
func (s *semanticBreaks) Chunk(t *transcript.Transcript, maxTokens int) []transcript.Chunk {
	budget := normalizeBudget(maxTokens)

	cut := func(w *window, next atom) int {
		if isBreak(s.cfg, s.markers, w.last(), next.sec) {
			return len(w.atoms)
		}
		for j := len(w.atoms) - 1; j >= 1; j-- {
			if isBreak(s.cfg, s.markers, w.atoms[j-1].sec, w.atoms[j].sec) {
				return j
			}
		}
		return len(w.atoms)
	}
	return accumulate(atomize(s.cfg.Estimator, t, budget), s.cfg.Estimator, budget, cut, nil)
}

type hybrid struct {
	cfg     Config
	markers []string
}

func (s *hybrid) Name() transcript.Strategy { return transcript.StrategyHybrid }

// Chunk prefers a semantic break, then a speaker change, then a hard cut.
// Soft boundaries are only taken once the chunk holds MinFill of the budget.
func (s *hybrid) Chunk(t *transcript.Transcript, maxTokens int) []transcript.Chunk {
	budget := normalizeBudget(maxTokens)
	minTokens := int(float64(budget) * s.cfg.MinFill)

	latest := func(w *window, ok func(prev, cur transcript.Section) bool) int {
		for j := len(w.atoms) - 1; j >= 1; j-- {
			if w.prefixTokens(j) < minTokens {
				break
			}
			if ok(w.atoms[j-1].sec, w.atoms[j].sec) {
				return j
			}
		}
		return 0
	}
	semantic := func(prev, cur transcript.Section) bool {
		return isBreak(s.cfg, s.markers, prev, cur)
	}
	speaker := func(prev, cur transcript.Section) bool {
		return prev.Speaker != cur.Speaker
	}

	cut := func(w *window, next atom) int {
		if semantic(w.last(), next.sec) {
			return len(w.atoms)
		}
		if j := latest(w, semantic); j > 0 {
			return j
		}
		if speaker(w.last(), next.sec) {
			return len(w.atoms)
		}
		if j := latest(w, speaker); j > 0 {
			return j
		}
		return len(w.atoms)
	}
	return accumulate(atomize(s.cfg.Estimator, t, budget), s.cfg.Estimator, budget, cut, nil)
}

// isBreak reports whether a topic boundary falls between prev and cur.
// Pieces of a split section are never break points.
func isBreak(cfg Config, markers []string, prev, cur transcript.Section) bool {
	if cur.Part > 1 {
		return false
	}
	if cur.StartTime-prev.EndTime > cfg.PauseThreshold {
		return true
	}
	return hasMarker(markers, cur.Text)
}

func hasMarker(markers []string, text string) bool {
	lead := strings.ToLower(strings.TrimLeftFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}))
	for _, m := range markers {
		if strings.HasPrefix(lead, m) {
			return true
		}
	}
	return false
}

func normalizeMarkers(markers []string) []string {
	out := make([]string, 0, len(markers))
	for _, m := range markers {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}
