package importer

import (
	"context"
	"fmt"

	"animatch/internal/logging"
	"animatch/internal/matching"
	"animatch/internal/store"
)

// RetryOutcome describes what happened to a retried review item.
type RetryOutcome struct {
	Result  *matching.Result
	Entry   *store.Entry
	Created bool
	Item    *store.ReviewItem
}

// Retry re-matches a queued line. An automatic match is added to the list
// and the item removed; otherwise the item is updated with the new
// candidates.
func (r *Runner) Retry(ctx context.Context, reviewID int64) (*RetryOutcome, error) {
	unlock, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	item, err := r.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	runID := r.newRunID()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger).With(
		logging.Int64("review_id", reviewID),
		logging.String(logging.FieldInput, item.Input),
	)

	result, err := r.matcher.Match(ctx, item.Input)
	if err != nil {
		return nil, fmt.Errorf("retry review item %d: %w", reviewID, err)
	}
	if result == nil {
		return nil, fmt.Errorf("retry review item %d: input is blank", reviewID)
	}

	outcome := &RetryOutcome{Result: result}
	if result.Tag == matching.TagAuto {
		entry, created, err := r.store.PromoteReview(ctx, reviewID, store.EntryFromCandidate(item.Input, *result.Best, runID))
		if err != nil {
			return nil, fmt.Errorf("promote review item %d: %w", reviewID, err)
		}
		outcome.Entry = entry
		outcome.Created = created
		logger.Info("retry promoted to list", logging.Int64("catalog_id", entry.CatalogID), logging.Bool("created", created))
		return outcome, nil
	}

	replacement, _ := store.ReviewItemFromResult(result, runID)
	replacement.ID = reviewID
	updated, err := r.store.ReplaceReview(ctx, replacement)
	if err != nil {
		return nil, err
	}
	outcome.Item = updated
	logger.Info("retry kept in review", logging.String("status", string(updated.Status)), logging.Float64("best_score", updated.BestScore))
	return outcome, nil
}
