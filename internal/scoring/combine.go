package scoring

// Weights are the base weights of the non-semantic signals. They sum to 1.
type Weights struct {
	ExactNumber      float64
	RangeContainment float64
	HeadingFuzzy     float64
	KeywordCoverage  float64
}

// DefaultWeights returns the scoring policy used by every search.
func DefaultWeights() Weights {
	return Weights{
		ExactNumber:      0.40,
		RangeContainment: 0.25,
		HeadingFuzzy:     0.20,
		KeywordCoverage:  0.15,
	}
}

const (
	// DefaultSemanticWeight is the share given to semantic similarity when
	// it is requested and available.
	DefaultSemanticWeight = 0.25

	// StdSubdivisionCredit is the additive credit of a full bonus signal.
	StdSubdivisionCredit = 0.05

	// FuzzyCutoff is the minimum heading similarity that counts as evidence.
	FuzzyCutoff = 0.6
)

// Combine folds a signal record into a score in [0,1] using DefaultWeights.
//
//	base  = Σ weight_i * signal_i
//	score = base*(1-w) + semantic*w   (only when semantic is present)
//	score = clamp(score + 0.05*bonus)
//
// Absent signals contribute nothing; Combine of an empty record is 0.
func Combine(s Signals, semanticWeight float64) float64 {
	return DefaultWeights().Combine(s, semanticWeight)
}

// Combine folds a signal record into a score with these weights.
func (w Weights) Combine(s Signals, semanticWeight float64) float64 {
	score := w.ExactNumber*s.Get(SignalExactNumber) +
		w.RangeContainment*s.Get(SignalRangeContainment) +
		w.HeadingFuzzy*s.Get(SignalHeadingFuzzy) +
		w.KeywordCoverage*s.Get(SignalKeywordCoverage)

	if s.Has(SignalSemanticSimilarity) {
		sw := clamp01(semanticWeight)
		score = score*(1-sw) + s.Get(SignalSemanticSimilarity)*sw
	}

	score += StdSubdivisionCredit * s.Get(SignalStdSubdivisionBonus)
	return clamp01(score)
}
