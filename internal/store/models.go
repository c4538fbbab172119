package store

import (
	"time"

	"animatch/internal/anilist"
	"animatch/internal/matching"
)

// Entry is one confirmed title on the user's list.
type Entry struct {
	ID           int64     `json:"id"`
	CatalogID    int64     `json:"catalog_id"`
	Title        string    `json:"title"`
	TitleRomaji  string    `json:"title_romaji,omitempty"`
	TitleEnglish string    `json:"title_english,omitempty"`
	TitleNative  string    `json:"title_native,omitempty"`
	CoverURL     string    `json:"cover_url,omitempty"`
	SeasonYear   int       `json:"season_year,omitempty"`
	SourceInput  string    `json:"source_input,omitempty"`
	Score        float64   `json:"score"`
	RunID        string    `json:"run_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// EntryFromCandidate builds an entry for a scored candidate matched from input.
func EntryFromCandidate(input string, candidate matching.ScoredCandidate, runID string) Entry {
	media := candidate.Media
	return Entry{
		CatalogID:    media.ID,
		Title:        media.DisplayTitle(),
		TitleRomaji:  media.Title.Romaji,
		TitleEnglish: media.Title.English,
		TitleNative:  media.Title.Native,
		CoverURL:     media.CoverURL(),
		SeasonYear:   media.SeasonYear,
		SourceInput:  input,
		Score:        candidate.Score,
		RunID:        runID,
	}
}

// Media returns the catalog record the entry was created from.
func (e Entry) Media() anilist.Media {
	return anilist.Media{
		ID: e.CatalogID,
		Title: anilist.Title{
			Romaji:  e.TitleRomaji,
			English: e.TitleEnglish,
			Native:  e.TitleNative,
		},
		CoverImage: anilist.CoverImage{Large: e.CoverURL},
		SeasonYear: e.SeasonYear,
	}
}

// ReviewStatus marks why a line is waiting for the user.
type ReviewStatus string

const (
	ReviewStatusReview  ReviewStatus = "review"
	ReviewStatusNoMatch ReviewStatus = "no-match"
)

// ReviewStatusFor maps a match tag to the queue status; auto has none.
func ReviewStatusFor(tag matching.Tag) (ReviewStatus, bool) {
	switch tag {
	case matching.TagReview:
		return ReviewStatusReview, true
	case matching.TagNoMatch:
		return ReviewStatusNoMatch, true
	default:
		return "", false
	}
}

// ReviewItem is a line that could not be matched automatically.
type ReviewItem struct {
	ID         int64                      `json:"id"`
	Input      string                     `json:"input"`
	Phrase     string                     `json:"phrase,omitempty"`
	Status     ReviewStatus               `json:"status"`
	Candidates []matching.ScoredCandidate `json:"candidates"`
	BestScore  float64                    `json:"best_score"`
	RunID      string                     `json:"run_id,omitempty"`
	CreatedAt  time.Time                  `json:"created_at"`
	UpdatedAt  time.Time                  `json:"updated_at"`
}

// ReviewItemFromResult builds a queue item from a non-auto match result.
func ReviewItemFromResult(result *matching.Result, runID string) (ReviewItem, bool) {
	if result == nil {
		return ReviewItem{}, false
	}
	status, ok := ReviewStatusFor(result.Tag)
	if !ok {
		return ReviewItem{}, false
	}
	item := ReviewItem{
		Input:      result.Input,
		Phrase:     result.Phrase,
		Status:     status,
		Candidates: result.Candidates,
		RunID:      runID,
	}
	if result.Best != nil {
		item.BestScore = result.Best.Score
	}
	return item, true
}
