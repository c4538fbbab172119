package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const insertEntrySQL = `INSERT INTO entries (
	catalog_id, title, title_romaji, title_english, title_native, cover_url,
	season_year, source_input, score, run_id, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(catalog_id) DO NOTHING`

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AddEntry inserts an entry unless its catalog id is already on the list,
// in which case the existing row is returned with created=false.
func (s *Store) AddEntry(ctx context.Context, entry Entry) (*Entry, bool, error) {
	if entry.CatalogID <= 0 {
		return nil, false, errors.New("entry requires a catalog id")
	}
	var (
		stored  *Entry
		created bool
	)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		stored, created, err = s.addEntry(ctx, tx, entry)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (s *Store) addEntry(ctx context.Context, q execQuerier, entry Entry) (*Entry, bool, error) {
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		title = entry.Media().DisplayTitle()
	}
	res, err := q.ExecContext(ctx, insertEntrySQL,
		entry.CatalogID,
		title,
		nullableString(entry.TitleRomaji),
		nullableString(entry.TitleEnglish),
		nullableString(entry.TitleNative),
		nullableString(entry.CoverURL),
		nullableInt(entry.SeasonYear),
		nullableString(entry.SourceInput),
		entry.Score,
		nullableString(entry.RunID),
		formatTime(s.now()),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert entry rows affected: %w", err)
	}
	stored, err := scanEntry(q.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE catalog_id = ?", entry.CatalogID))
	if err != nil {
		return nil, false, fmt.Errorf("load entry: %w", err)
	}
	return stored, affected > 0, nil
}

// GetEntry fetches an entry by row id.
func (s *Store) GetEntry(ctx context.Context, id int64) (*Entry, error) {
	entry, err := scanEntry(s.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM entries WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// ListEntries returns all entries in insertion order.
func (s *Store) ListEntries(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+entryColumns+" FROM entries ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// RemoveEntry deletes an entry by row id.
func (s *Store) RemoveEntry(ctx context.Context, id int64) error {
	res, err := s.execWithRetry(ctx, "DELETE FROM entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("remove entry: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	return nil
}

// HasCatalogID reports whether a catalog id is already on the list.
func (s *Store) HasCatalogID(ctx context.Context, catalogID int64) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM entries WHERE catalog_id = ?", catalogID).Scan(&count); err != nil {
		return false, fmt.Errorf("lookup catalog id: %w", err)
	}
	return count > 0, nil
}
