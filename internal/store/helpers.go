package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"animatch/internal/matching"
)

const entryColumns = "id, catalog_id, title, title_romaji, title_english, title_native, cover_url, season_year, source_input, score, run_id, created_at"

const reviewColumns = "id, input, phrase, status, candidates_json, best_score, run_id, created_at, updated_at"

type scanner interface{ Scan(dest ...any) error }

func scanEntry(row scanner) (*Entry, error) {
	var (
		entry      Entry
		romaji     sql.NullString
		english    sql.NullString
		native     sql.NullString
		coverURL   sql.NullString
		seasonYear sql.NullInt64
		source     sql.NullString
		score      sql.NullFloat64
		runID      sql.NullString
		createdRaw string
	)
	if err := row.Scan(
		&entry.ID,
		&entry.CatalogID,
		&entry.Title,
		&romaji,
		&english,
		&native,
		&coverURL,
		&seasonYear,
		&source,
		&score,
		&runID,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	entry.TitleRomaji = romaji.String
	entry.TitleEnglish = english.String
	entry.TitleNative = native.String
	entry.CoverURL = coverURL.String
	entry.SeasonYear = int(seasonYear.Int64)
	entry.SourceInput = source.String
	entry.Score = score.Float64
	entry.RunID = runID.String
	if created, err := parseTimeString(createdRaw); err == nil {
		entry.CreatedAt = created
	}
	return &entry, nil
}

func scanReview(row scanner) (*ReviewItem, error) {
	var (
		item           ReviewItem
		phrase         sql.NullString
		status         string
		candidatesJSON sql.NullString
		bestScore      sql.NullFloat64
		runID          sql.NullString
		createdRaw     string
		updatedRaw     string
	)
	if err := row.Scan(
		&item.ID,
		&item.Input,
		&phrase,
		&status,
		&candidatesJSON,
		&bestScore,
		&runID,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	item.Phrase = phrase.String
	item.Status = ReviewStatus(status)
	item.BestScore = bestScore.Float64
	item.RunID = runID.String
	candidates, err := decodeCandidates(candidatesJSON.String)
	if err != nil {
		return nil, fmt.Errorf("review item %d: %w", item.ID, err)
	}
	item.Candidates = candidates
	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		item.UpdatedAt = updated
	}
	return &item, nil
}

func encodeCandidates(candidates []matching.ScoredCandidate) (string, error) {
	if candidates == nil {
		candidates = []matching.ScoredCandidate{}
	}
	data, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("encode candidates: %w", err)
	}
	return string(data), nil
}

func decodeCandidates(raw string) ([]matching.ScoredCandidate, error) {
	candidates := []matching.ScoredCandidate{}
	if strings.TrimSpace(raw) == "" {
		return candidates, nil
	}
	if err := json.Unmarshal([]byte(raw), &candidates); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	return candidates, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}
