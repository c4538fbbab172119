package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"animatch/internal/anilist"
	"animatch/internal/logging"
	"animatch/internal/textutil"
)

// CatalogSearcher returns catalog candidates for a phrase in catalog order.
// A successful search without hits returns an empty slice and no error.
type CatalogSearcher interface {
	SearchAnime(ctx context.Context, query string) ([]anilist.Media, error)
}

// Refiner proposes a cleaner search phrase. It reports false when it has
// nothing to offer, including when it failed.
type Refiner interface {
	Refine(ctx context.Context, phrase string) (string, bool)
}

// AliasResolver maps raw input to a search phrase.
type AliasResolver interface {
	Resolve(raw string) string
}

// SimilarityFunc scores two strings in [0,1].
type SimilarityFunc func(a, b string) float64

// Matcher classifies raw lines against the catalog.
type Matcher struct {
	catalog    CatalogSearcher
	refiner    Refiner
	aliases    AliasResolver
	thresholds Thresholds
	similarity SimilarityFunc
	logger     *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithRefiner enables the second pass for low-confidence lines.
func WithRefiner(refiner Refiner) Option {
	return func(m *Matcher) {
		m.refiner = refiner
	}
}

// WithAliases sets the alias resolver.
func WithAliases(resolver AliasResolver) Option {
	return func(m *Matcher) {
		if resolver != nil {
			m.aliases = resolver
		}
	}
}

// WithThresholds overrides the decision boundary.
func WithThresholds(th Thresholds) Option {
	return func(m *Matcher) {
		m.thresholds = th
	}
}

// WithSimilarity overrides the scoring function.
func WithSimilarity(fn SimilarityFunc) Option {
	return func(m *Matcher) {
		if fn != nil {
			m.similarity = fn
		}
	}
}

// WithCombine scores with textutil.SimilarityWith using the given mode.
func WithCombine(mode textutil.Combine) Option {
	return WithSimilarity(func(a, b string) float64 {
		return textutil.SimilarityWith(mode, a, b)
	})
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		m.logger = logging.NewComponentLogger(logger, "matcher")
	}
}

type identityResolver struct{}

func (identityResolver) Resolve(raw string) string { return raw }

// New constructs a Matcher over the given catalog.
func New(catalog CatalogSearcher, opts ...Option) (*Matcher, error) {
	if catalog == nil {
		return nil, errors.New("matching: catalog searcher required")
	}
	m := &Matcher{
		catalog:    catalog,
		aliases:    identityResolver{},
		thresholds: DefaultThresholds(),
		similarity: textutil.Similarity,
		logger:     logging.NewComponentLogger(nil, "matcher"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Thresholds returns the active decision boundary.
func (m *Matcher) Thresholds() Thresholds {
	return m.thresholds
}

// Match classifies one raw line. Blank input returns (nil, nil) without
// touching the catalog. Catalog failures are returned; refinement failures
// are not.
func (m *Matcher) Match(ctx context.Context, raw string) (*Result, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return nil, nil
	}
	logger := logging.WithContext(ctx, m.logger).With(logging.String(logging.FieldInput, input))

	phrase := m.aliases.Resolve(input)
	if phrase != input {
		logger.Debug("alias resolved", logging.String(logging.FieldPhrase, phrase))
	}

	initial, err := m.attempt(ctx, logger, phrase)
	if err != nil {
		return nil, err
	}

	chosen, refined, err := m.refineAttempt(ctx, logger, initial)
	if err != nil {
		return nil, err
	}

	result := newResult(input, chosen, refined, m.thresholds)
	logger.Info("match classified", logging.Args(append(
		logging.DecisionAttrs("match_classification", string(result.Tag), m.reason(chosen, result.Tag)),
		logging.String(logging.FieldPhrase, chosen.Phrase),
		logging.Float64("best_score", chosen.BestScore()),
		logging.Float64("margin", chosen.Margin()),
		logging.Int("candidates", len(chosen.Candidates)),
		logging.Bool("refined", refined),
	)...)...)
	return result, nil
}

// attempt runs one catalog search and scores the response.
func (m *Matcher) attempt(ctx context.Context, logger *slog.Logger, phrase string) (Attempt, error) {
	media, err := m.catalog.SearchAnime(ctx, phrase)
	if err != nil {
		return Attempt{}, fmt.Errorf("catalog search %q: %w", phrase, err)
	}
	attempt := m.score(phrase, media)
	for idx, candidate := range attempt.Candidates {
		logger.Debug("scored candidate",
			logging.String(logging.FieldPhrase, phrase),
			logging.Int("rank", idx+1),
			logging.Int64("catalog_id", candidate.Media.ID),
			logging.String("title", candidate.Media.DisplayTitle()),
			logging.Float64("score", candidate.Score),
		)
	}
	return attempt, nil
}

func (m *Matcher) score(phrase string, media []anilist.Media) Attempt {
	candidates := make([]ScoredCandidate, 0, len(media))
	for _, record := range media {
		candidates = append(candidates, ScoredCandidate{
			Media: record,
			Score: m.candidateScore(phrase, record),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return Attempt{Phrase: phrase, Candidates: candidates}
}

// candidateScore is the best similarity over the record's title variants.
func (m *Matcher) candidateScore(phrase string, record anilist.Media) float64 {
	best := 0.0
	for _, title := range record.TitleVariants() {
		if score := m.similarity(phrase, title); score > best {
			best = score
		}
	}
	return best
}

// refineAttempt returns the initial attempt unless it is weak and a refined
// phrase produces a strictly better one.
func (m *Matcher) refineAttempt(ctx context.Context, logger *slog.Logger, initial Attempt) (Attempt, bool, error) {
	if len(initial.Candidates) > 0 && initial.BestScore() >= m.thresholds.LowConfidence {
		return initial, false, nil
	}
	if m.refiner == nil {
		return initial, false, nil
	}

	refinedPhrase, ok := m.refiner.Refine(ctx, initial.Phrase)
	refinedPhrase = strings.TrimSpace(refinedPhrase)
	if !ok || refinedPhrase == "" {
		logger.Debug("refinement offered nothing", logging.String(logging.FieldPhrase, initial.Phrase))
		return initial, false, nil
	}
	if textutil.Normalize(refinedPhrase) == textutil.Normalize(initial.Phrase) {
		logger.Debug("refinement returned the same phrase", logging.String(logging.FieldPhrase, refinedPhrase))
		return initial, false, nil
	}

	logger.Info("retrying with refined phrase",
		logging.String(logging.FieldPhrase, initial.Phrase),
		logging.String("refined_phrase", refinedPhrase),
		logging.Float64("initial_best_score", initial.BestScore()),
	)
	second, err := m.attempt(ctx, logger, refinedPhrase)
	if err != nil {
		return Attempt{}, false, err
	}

	if preferRefined(initial, second) {
		return second, true, nil
	}
	return initial, false, nil
}

// preferRefined reports whether the refined attempt replaces the initial
// one: it must score strictly higher, or be the only one with candidates.
// Ties keep the initial attempt.
func preferRefined(initial, refined Attempt) bool {
	if len(initial.Candidates) == 0 {
		return len(refined.Candidates) > 0
	}
	return refined.BestScore() > initial.BestScore()
}

func (m *Matcher) reason(attempt Attempt, tag Tag) string {
	switch tag {
	case TagNoMatch:
		return "catalog returned no candidates"
	case TagAuto:
		return fmt.Sprintf("best %.2f >= %.2f and margin %.2f >= %.2f",
			attempt.BestScore(), m.thresholds.Auto, attempt.Margin(), m.thresholds.Margin)
	default:
		if attempt.BestScore() < m.thresholds.Auto {
			return fmt.Sprintf("best %.2f below %.2f", attempt.BestScore(), m.thresholds.Auto)
		}
		return fmt.Sprintf("margin %.2f below %.2f", attempt.Margin(), m.thresholds.Margin)
	}
}
