// Package refine turns a messy, low-confidence phrase into a cleaner anime
// title by running a web search and reading the title of the best result.
//
// Two backends implement Searcher: the Google Custom Search JSON API and the
// DuckDuckGo HTML endpoint. Client ranks hits by source (AniList first,
// MyAnimeList next, anything else last), strips site boilerplate from the
// top title and hands it back. Client never returns errors; failures are
// logged and reported as "nothing to offer".
package refine
