package chunking

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/meeting-digest/internal/tokens"
	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

var allStrategies = []transcript.Strategy{
	transcript.StrategySpeakerTurns,
	transcript.StrategyTimeIntervals,
	transcript.StrategySemanticBreaks,
	transcript.StrategyHybrid,
}

// meeting builds a deterministic transcript mixing short turns, long
// monologues, pauses, topic markers and CJK text.
func meeting(seed int64, n int) *transcript.Transcript {
	rng := rand.New(rand.NewSource(seed))
	speakers := []string{"Ann", "Ben", "Cat", "王小明"}
	phrases := []string{
		"I think we should ship it.",
		"Moving on, the budget review is next.",
		"Let's talk about hiring for the platform team.",
		"我們下週再確認時程。",
		"接下來討論預算。",
		"ok",
		strings.Repeat("This sentence repeats to make a long monologue. ", 30),
		strings.Repeat("字", 120),
		strings.Repeat("unbroken", 60),
	}

	tr := &transcript.Transcript{ID: "meeting"}
	at := 0
	for range n {
		if rng.Intn(10) == 0 {
			at += 60 + rng.Intn(60)
		}
		d := 2 + rng.Intn(30)
		tr.Sections = append(tr.Sections, sec(speakers[rng.Intn(len(speakers))], at, at+d, phrases[rng.Intn(len(phrases))]))
		at += d + rng.Intn(3)
	}
	transcript.Finalize(tr)
	return tr
}

func TestStrategies_CoverageAndBudget(t *testing.T) {
	est := tokens.Default()
	budgets := []int{1, 5, 20, 60, 250, 100000}

	for _, name := range allStrategies {
		s, err := NewStrategy(name, Config{})
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())

		for _, budget := range budgets {
			for seed := int64(1); seed <= 3; seed++ {
				tr := meeting(seed, 80)
				chunks := s.Chunk(tr, budget)

				require.NotEmpty(t, chunks)
				require.NoError(t, VerifyCoverage(tr, chunks), "%s budget=%d seed=%d", name, budget, seed)
				for i, c := range chunks {
					require.NotEmpty(t, c.Sections)
					assert.LessOrEqual(t, est.Count(c.Text()), budget, "%s budget=%d chunk=%d", name, budget, i)
				}
			}
		}
	}
}

func TestStrategies_EmptyTranscript(t *testing.T) {
	for _, name := range allStrategies {
		s, err := NewStrategy(name, Config{})
		require.NoError(t, err)

		assert.Empty(t, s.Chunk(&transcript.Transcript{}, 100))
		assert.Empty(t, s.Chunk(nil, 100))
	}
}

func TestNewStrategy_Unknown(t *testing.T) {
	_, err := NewStrategy("alphabetical", Config{})
	assert.Error(t, err)
}

// Every section below is 8 characters. n sections joined by newlines estimate
// to ceil((9n-1)/4) tokens: 2, 5, 7, 9, 11.
const filler = "aaaaaaaa"

func indices(chunks []transcript.Chunk) [][]int {
	out := make([][]int, len(chunks))
	for i, c := range chunks {
		for _, s := range c.Sections {
			out[i] = append(out[i], s.Index)
		}
	}
	return out
}

func evenSections(speakers string, texts map[int]string) *transcript.Transcript {
	tr := &transcript.Transcript{ID: "even"}
	for i, sp := range strings.Split(speakers, "") {
		text := filler
		if v, ok := texts[i]; ok {
			text = v
		}
		tr.Sections = append(tr.Sections, sec(sp, i*10, i*10+8, text))
	}
	transcript.Finalize(tr)
	return tr
}

func TestSpeakerTurns_Greedy(t *testing.T) {
	tr := evenSections("AAAAAA", nil)
	s, _ := NewStrategy(transcript.StrategySpeakerTurns, Config{})

	assert.Equal(t, [][]int{{0, 1, 2, 3}, {4, 5}}, indices(s.Chunk(tr, 9)))
	assert.Equal(t, [][]int{{0, 1}, {2, 3}, {4, 5}}, indices(s.Chunk(tr, 6)))
}

func TestSemanticBreaks(t *testing.T) {
	s, _ := NewStrategy(transcript.StrategySemanticBreaks, Config{})

	t.Run("closes at the latest marker", func(t *testing.T) {
		tr := evenSections("AAAAAA", map[int]string{2: "next up."})
		assert.Equal(t, [][]int{{0, 1}, {2, 3, 4, 5}}, indices(s.Chunk(tr, 9)))
	})

	t.Run("closes at a long pause", func(t *testing.T) {
		tr := evenSections("AAAAAA", nil)
		for i := 3; i < len(tr.Sections); i++ {
			tr.Sections[i].StartTime += time.Minute
			tr.Sections[i].EndTime += time.Minute
		}
		assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}}, indices(s.Chunk(tr, 9)))
	})

	t.Run("short pause is not a break", func(t *testing.T) {
		tr := evenSections("AAAAAA", nil)
		for i := 3; i < len(tr.Sections); i++ {
			tr.Sections[i].StartTime += 30 * time.Second
			tr.Sections[i].EndTime += 30 * time.Second
		}
		assert.Equal(t, [][]int{{0, 1, 2, 3}, {4, 5}}, indices(s.Chunk(tr, 9)))
	})

	t.Run("custom markers and threshold", func(t *testing.T) {
		custom, _ := NewStrategy(transcript.StrategySemanticBreaks, Config{
			SemanticMarkers: []string{"AGENDA"},
			PauseThreshold:  5 * time.Second,
		})
		tr := evenSections("AAAAAA", map[int]string{1: "agenda 2"})
		// every 2s gap is below 5s, so only the marker counts
		assert.Equal(t, [][]int{{0}, {1, 2, 3, 4}, {5}}, indices(custom.Chunk(tr, 9)))
	})
}

func TestHybrid(t *testing.T) {
	s, _ := NewStrategy(transcript.StrategyHybrid, Config{})

	t.Run("semantic break first", func(t *testing.T) {
		tr := evenSections("AAABBB", map[int]string{2: "next up."})
		assert.Equal(t, [][]int{{0, 1}, {2, 3, 4, 5}}, indices(s.Chunk(tr, 9)))
	})

	t.Run("early break falls back to speaker change", func(t *testing.T) {
		tr := evenSections("AAABBB", map[int]string{1: "next up."})
		assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}}, indices(s.Chunk(tr, 9)))
	})

	t.Run("hard cut", func(t *testing.T) {
		tr := evenSections("AAAAAA", nil)
		assert.Equal(t, [][]int{{0, 1, 2, 3}, {4, 5}}, indices(s.Chunk(tr, 9)))
	})
}

func TestTimeIntervals(t *testing.T) {
	tr := &transcript.Transcript{ID: "timed"}
	for i := range 9 {
		tr.Sections = append(tr.Sections, sec("A", i*10, i*10+10, "hello"))
	}
	transcript.Finalize(tr)

	// 100 tokens at 200 tokens/minute is a 30s window
	s, _ := NewStrategy(transcript.StrategyTimeIntervals, Config{SpeakingRate: 200})
	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}}, indices(s.Chunk(tr, 100)))

	// a 3 minute window still closes at the budget
	slow, _ := NewStrategy(transcript.StrategyTimeIntervals, Config{SpeakingRate: 1})
	assert.Equal(t, [][]int{{0, 1}, {2, 3}, {4, 5}, {6, 7}, {8}}, indices(slow.Chunk(tr, 3)))
}

func TestSplitSection(t *testing.T) {
	est := tokens.Default()
	s := sec("Ann", 0, 100, strings.Repeat("We need more time. ", 20))
	s.Index = 7

	parts := splitSection(est, s, 12)
	require.Greater(t, len(parts), 1)

	prevEnd := s.StartTime
	for i, p := range parts {
		assert.Equal(t, i+1, p.Part)
		assert.Equal(t, 7, p.Index)
		assert.Equal(t, "Ann", p.Speaker)
		assert.LessOrEqual(t, est.Count(p.Text), 12)
		assert.Equal(t, prevEnd, p.StartTime)
		assert.GreaterOrEqual(t, p.EndTime, p.StartTime)
		prevEnd = p.EndTime
	}
	assert.Equal(t, s.EndTime, parts[len(parts)-1].EndTime)
	assert.Equal(t, "We need more time. We need more time.", parts[0].Text)

	// fits: untouched
	assert.Equal(t, []transcript.Section{s}, splitSection(est, s, 10000))
}

func TestSplitUnits_RestoresText(t *testing.T) {
	est := tokens.Default()
	texts := []string{
		"First. Second! Third? Pi is 3.14 here.",
		"我們下週再確認。接下來討論預算！",
		strings.Repeat("x", 50),
		strings.Repeat("caf\xe9 ol\xe9. ", 5),
	}
	for _, text := range texts {
		for _, budget := range []int{1, 3, 8} {
			units := splitUnits(est, text, budget, bySentence)
			assert.Equal(t, text, strings.Join(units, ""))
			for _, u := range units {
				assert.LessOrEqual(t, est.Count(strings.TrimSpace(u)), budget)
			}
		}
	}
}

func TestStrategies_InvalidUTF8(t *testing.T) {
	// Latin-1 caption exports reach the splitter as raw bytes
	latin1 := strings.Repeat("caf\xe9 ol\xe9. ", 40)
	tr := &transcript.Transcript{ID: "latin1", Sections: []transcript.Section{
		sec("Ann", 0, 60, latin1),
		sec("Ben", 60, 90, "Short reply."),
	}}
	transcript.Finalize(tr)

	for _, name := range allStrategies {
		s, err := NewStrategy(name, Config{})
		require.NoError(t, err)

		for _, budget := range []int{1, 20} {
			var chunks []transcript.Chunk
			require.NotPanics(t, func() { chunks = s.Chunk(tr, budget) }, "%s budget=%d", name, budget)
			require.NoError(t, VerifyCoverage(tr, chunks), "%s budget=%d", name, budget)
		}
	}
}
