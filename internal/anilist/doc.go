// Package anilist provides the minimal AniList GraphQL client used to look up
// anime candidates for a search phrase.
//
// Only the paged media search is implemented. Responses are decoded into
// Media records carrying the catalog id, the romaji/english/native title
// variants, the cover image and the season year. Transport failures,
// non-success statuses and GraphQL error payloads are returned as errors so
// the caller can skip the affected line.
package anilist
