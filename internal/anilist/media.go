package anilist

import (
	"strconv"
	"strings"
)

// Title holds the title variants AniList returns for one media record.
type Title struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
	Native  string `json:"native"`
}

// CoverImage references the record's cover art.
type CoverImage struct {
	Large string `json:"large"`
}

// Media is one catalog candidate.
type Media struct {
	ID         int64      `json:"id"`
	Title      Title      `json:"title"`
	CoverImage CoverImage `json:"coverImage"`
	SeasonYear int        `json:"seasonYear"`
}

// TitleVariants returns the present titles in romaji, english, native order.
func (m Media) TitleVariants() []string {
	variants := make([]string, 0, 3)
	for _, value := range []string{m.Title.Romaji, m.Title.English, m.Title.Native} {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			variants = append(variants, trimmed)
		}
	}
	return variants
}

// DisplayTitle prefers the English title, then romaji, then native.
func (m Media) DisplayTitle() string {
	for _, value := range []string{m.Title.English, m.Title.Romaji, m.Title.Native} {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// CoverURL returns the cover image URL, if any.
func (m Media) CoverURL() string {
	return strings.TrimSpace(m.CoverImage.Large)
}

// SiteURL returns the AniList page for the record.
func (m Media) SiteURL() string {
	if m.ID <= 0 {
		return ""
	}
	return "https://anilist.co/anime/" + strconv.FormatInt(m.ID, 10)
}
