package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// EnqueueReview stores a line for manual review.
func (s *Store) EnqueueReview(ctx context.Context, item ReviewItem) (*ReviewItem, error) {
	if strings.TrimSpace(item.Input) == "" {
		return nil, errors.New("review item requires input")
	}
	switch item.Status {
	case ReviewStatusReview, ReviewStatusNoMatch:
	default:
		return nil, fmt.Errorf("invalid review status %q", item.Status)
	}
	candidates, err := encodeCandidates(item.Candidates)
	if err != nil {
		return nil, err
	}
	now := formatTime(s.now())
	res, err := s.execWithRetry(ctx, `INSERT INTO review_items (
		input, phrase, status, candidates_json, best_score, run_id, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Input,
		nullableString(item.Phrase),
		string(item.Status),
		candidates,
		item.BestScore,
		nullableString(item.RunID),
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert review item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("review item id: %w", err)
	}
	return s.GetReview(ctx, id)
}

// GetReview fetches a review item by id.
func (s *Store) GetReview(ctx context.Context, id int64) (*ReviewItem, error) {
	item, err := scanReview(s.db.QueryRowContext(ctx, "SELECT "+reviewColumns+" FROM review_items WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("review item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get review item: %w", err)
	}
	return item, nil
}

// ListReview returns review items, optionally filtered by status, oldest first.
func (s *Store) ListReview(ctx context.Context, statuses ...ReviewStatus) ([]*ReviewItem, error) {
	query := "SELECT " + reviewColumns + " FROM review_items"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += " WHERE status IN (" + makePlaceholders(len(statuses)) + ")"
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list review items: %w", err)
	}
	defer rows.Close()

	var items []*ReviewItem
	for rows.Next() {
		item, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AcceptReview adds the chosen candidate (0-based) to the list and removes
// the review item in one transaction. created is false when the catalog id
// was already on the list.
func (s *Store) AcceptReview(ctx context.Context, id int64, candidateIndex int) (*Entry, bool, error) {
	var (
		stored  *Entry
		created bool
	)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		item, err := scanReview(tx.QueryRowContext(ctx, "SELECT "+reviewColumns+" FROM review_items WHERE id = ?", id))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("review item %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("load review item: %w", err)
		}
		if candidateIndex < 0 || candidateIndex >= len(item.Candidates) {
			return fmt.Errorf("review item %d has %d candidates; index %d out of range", id, len(item.Candidates), candidateIndex)
		}
		entry := EntryFromCandidate(item.Input, item.Candidates[candidateIndex], item.RunID)
		stored, created, err = s.addEntry(ctx, tx, entry)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM review_items WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete review item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

// PromoteReview adds entry to the list and removes the review item in one
// transaction. Nothing is added when the item does not exist.
func (s *Store) PromoteReview(ctx context.Context, id int64, entry Entry) (*Entry, bool, error) {
	if entry.CatalogID <= 0 {
		return nil, false, errors.New("entry requires a catalog id")
	}
	var (
		stored  *Entry
		created bool
	)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM review_items WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete review item: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return fmt.Errorf("review item %d: %w", id, ErrNotFound)
		}
		stored, created, err = s.addEntry(ctx, tx, entry)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

// ReplaceReview overwrites a review item with a fresh match outcome.
func (s *Store) ReplaceReview(ctx context.Context, item ReviewItem) (*ReviewItem, error) {
	candidates, err := encodeCandidates(item.Candidates)
	if err != nil {
		return nil, err
	}
	res, err := s.execWithRetry(ctx, `UPDATE review_items
		SET phrase = ?, status = ?, candidates_json = ?, best_score = ?, run_id = ?, updated_at = ?
		WHERE id = ?`,
		nullableString(item.Phrase),
		string(item.Status),
		candidates,
		item.BestScore,
		nullableString(item.RunID),
		formatTime(s.now()),
		item.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update review item: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, fmt.Errorf("review item %d: %w", item.ID, ErrNotFound)
	}
	return s.GetReview(ctx, item.ID)
}

// RejectReview drops a review item without adding anything to the list.
func (s *Store) RejectReview(ctx context.Context, id int64) error {
	res, err := s.execWithRetry(ctx, "DELETE FROM review_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("reject review item: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("review item %d: %w", id, ErrNotFound)
	}
	return nil
}
