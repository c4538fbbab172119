package refine

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SourcePriority ranks a result URL: AniList 2, MyAnimeList 1, anything else 0.
func SourcePriority(rawURL string) int {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return 0
	}
	host := strings.ToLower(parsed.Hostname())
	switch {
	case host == "anilist.co" || strings.HasSuffix(host, ".anilist.co"):
		return 2
	case host == "myanimelist.net" || strings.HasSuffix(host, ".myanimelist.net"):
		return 1
	default:
		return 0
	}
}

var (
	siteSuffixPattern = regexp.MustCompile(`(?i)\s*[-|–—:]\s*(myanimelist(\.net)?|anilist(\.co)?|wikipedia|fandom|crunchyroll|anime-planet|kitsu|imdb|netflix)\s*$`)
	formatTagPattern  = regexp.MustCompile(`(?i)\s*\((tv|anime|ova|ona|movie|film|special)\)\s*$`)
)

// CleanTitle strips site-name suffixes and trailing format tags from a search
// result title, applies NFKC folding and collapses whitespace.
func CleanTitle(title string) string {
	cleaned := norm.NFKC.String(title)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	for {
		next := siteSuffixPattern.ReplaceAllString(cleaned, "")
		next = formatTagPattern.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == cleaned {
			break
		}
		cleaned = next
	}
	return cleaned
}
