package sentiment

import "github.com/jonreiter/govader"

const (
	// compoundThreshold flags escalation when the compound polarity drops
	// strictly below it.
	compoundThreshold = -0.1

	// negativeThreshold flags escalation when the negative fraction rises
	// strictly above it.
	negativeThreshold = 0.2
)

// Score summarizes the polarity of one reply. Derived, never persisted.
type Score struct {
	// Compound is the normalized polarity in [-1, 1].
	Compound float64

	// Negative is the fraction of the text rated negative, in [0, 1].
	Negative float64
}

// Analyzer scores NPC replies and decides whether a conversation should
// escalate into a battle. Safe for reuse across conversations.
type Analyzer struct {
	vader *govader.SentimentIntensityAnalyzer
}

// NewAnalyzer creates an analyzer backed by a VADER lexicon.
func NewAnalyzer() *Analyzer {
	return &Analyzer{vader: govader.NewSentimentIntensityAnalyzer()}
}

// Score computes the polarity of text. Call it on the final reply, after
// parser fallbacks have been applied.
func (a *Analyzer) Score(text string) Score {
	s := a.vader.PolarityScores(text)
	return Score{Compound: s.Compound, Negative: s.Negative}
}

// ShouldEscalate reports whether a reply's polarity should tip the
// conversation into hostility. Both comparisons are strict: a compound of
// exactly -0.1 or a negative fraction of exactly 0.2 does not escalate.
func ShouldEscalate(s Score) bool {
	return s.Compound < compoundThreshold || s.Negative > negativeThreshold
}
