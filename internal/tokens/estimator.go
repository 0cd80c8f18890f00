// Package tokens approximates LLM token counts without a model tokenizer.
package tokens

import (
	"math"
	"unicode"
)

const (
	// DefaultCJKCharsPerToken is the density used for Han, Kana and Hangul runs.
	DefaultCJKCharsPerToken = 1.5
	// DefaultLatinCharsPerToken is the density used for every other rune, whitespace included.
	DefaultLatinCharsPerToken = 4.0
)

// Estimator counts tokens with one divisor per script class.
// Zero or negative divisors fall back to the defaults.
type Estimator struct {
	CJKCharsPerToken   float64
	LatinCharsPerToken float64
}

// Tally holds raw rune counts. Tallies are additive, so the token count of a
// concatenation can be computed without re-scanning the text.
type Tally struct {
	CJK   int
	Other int
}

// Add returns the sum of two tallies.
func (t Tally) Add(o Tally) Tally {
	return Tally{CJK: t.CJK + o.CJK, Other: t.Other + o.Other}
}

// Default returns the estimator used when nothing is configured.
func Default() Estimator {
	return Estimator{
		CJKCharsPerToken:   DefaultCJKCharsPerToken,
		LatinCharsPerToken: DefaultLatinCharsPerToken,
	}
}

// EstimateTokenCount estimates tokens with the default densities.
func EstimateTokenCount(text string) int {
	return Default().Count(text)
}

// Count estimates the number of tokens in text. Empty text is 0.
func (e Estimator) Count(text string) int {
	return e.Tokens(TallyOf(text))
}

// Tokens converts a tally into a token estimate.
func (e Estimator) Tokens(t Tally) int {
	cjk, latin := e.divisors()
	return int(math.Ceil(float64(t.CJK)/cjk)) + int(math.Ceil(float64(t.Other)/latin))
}

// TallyOf counts CJK and non-CJK runes in text.
func TallyOf(text string) Tally {
	var t Tally
	for _, r := range text {
		if IsCJK(r) {
			t.CJK++
		} else {
			t.Other++
		}
	}
	return t
}

// IsCJK reports whether r belongs to a script tokenized at CJK density.
func IsCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul) ||
		(r >= 0x3000 && r <= 0x303F) || // CJK punctuation
		(r >= 0xFF00 && r <= 0xFFEF) // full-width forms
}

func (e Estimator) divisors() (float64, float64) {
	cjk, latin := e.CJKCharsPerToken, e.LatinCharsPerToken
	if cjk <= 0 {
		cjk = DefaultCJKCharsPerToken
	}
	if latin <= 0 {
		latin = DefaultLatinCharsPerToken
	}
	return cjk, latin
}
