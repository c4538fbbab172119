package matching

import "animatch/internal/anilist"

// Tag classifies a match outcome.
type Tag string

const (
	TagNoMatch Tag = "no-match"
	TagAuto    Tag = "auto"
	TagReview  Tag = "review"
)

// Decision boundary defaults.
const (
	DefaultAutoThreshold          = 0.70
	DefaultMarginMin              = 0.20
	DefaultLowConfidenceThreshold = 0.55
)

// Thresholds is the tunable decision boundary.
type Thresholds struct {
	// Auto is the minimum best score for an automatic match.
	Auto float64
	// Margin is the minimum lead of the best candidate over the runner-up.
	Margin float64
	// LowConfidence is the best score below which refinement is attempted.
	LowConfidence float64
}

// DefaultThresholds returns the stock decision boundary.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Auto:          DefaultAutoThreshold,
		Margin:        DefaultMarginMin,
		LowConfidence: DefaultLowConfidenceThreshold,
	}
}

// ScoredCandidate pairs a catalog record with its similarity to one phrase.
type ScoredCandidate struct {
	Media anilist.Media `json:"media"`
	Score float64       `json:"score"`
}

// Attempt is the scored catalog response for one search phrase. Candidates
// are ordered by descending score with catalog order breaking ties.
type Attempt struct {
	Phrase     string
	Candidates []ScoredCandidate
}

// Best returns the top candidate.
func (a Attempt) Best() (ScoredCandidate, bool) {
	if len(a.Candidates) == 0 {
		return ScoredCandidate{}, false
	}
	return a.Candidates[0], true
}

// Second returns the runner-up candidate.
func (a Attempt) Second() (ScoredCandidate, bool) {
	if len(a.Candidates) < 2 {
		return ScoredCandidate{}, false
	}
	return a.Candidates[1], true
}

// BestScore returns the top score, or 0 without candidates.
func (a Attempt) BestScore() float64 {
	best, ok := a.Best()
	if !ok {
		return 0
	}
	return best.Score
}

// Margin is best minus second, 1 with a single candidate and 0 with none.
func (a Attempt) Margin() float64 {
	best, ok := a.Best()
	if !ok {
		return 0
	}
	second, ok := a.Second()
	if !ok {
		return 1
	}
	return best.Score - second.Score
}

// Classify applies the decision boundary to the attempt.
func (a Attempt) Classify(th Thresholds) Tag {
	if len(a.Candidates) == 0 {
		return TagNoMatch
	}
	if a.BestScore() >= th.Auto && a.Margin() >= th.Margin-marginEpsilon {
		return TagAuto
	}
	return TagReview
}

// marginEpsilon absorbs float subtraction error, e.g. 0.85-0.65 < 0.20.
const marginEpsilon = 1e-9

// Result is the outcome for one raw input line.
type Result struct {
	Input  string `json:"input"`
	Phrase string `json:"phrase"`
	// Refined is set when the returned candidates came from the refined phrase.
	Refined    bool              `json:"refined"`
	Tag        Tag               `json:"tag"`
	Candidates []ScoredCandidate `json:"candidates"`
	Best       *ScoredCandidate  `json:"best,omitempty"`
	Margin     float64           `json:"margin"`
}

func newResult(input string, attempt Attempt, refined bool, th Thresholds) *Result {
	candidates := attempt.Candidates
	if candidates == nil {
		candidates = []ScoredCandidate{}
	}
	result := &Result{
		Input:      input,
		Phrase:     attempt.Phrase,
		Refined:    refined,
		Tag:        attempt.Classify(th),
		Candidates: candidates,
		Margin:     attempt.Margin(),
	}
	if best, ok := attempt.Best(); ok {
		result.Best = &best
	}
	return result
}
