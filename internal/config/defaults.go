package config

const (
	// ProviderGoogle selects the Google Custom Search JSON API.
	ProviderGoogle = "google"
	// ProviderDuckDuckGo selects the DuckDuckGo HTML endpoint.
	ProviderDuckDuckGo = "duckduckgo"
)

const (
	defaultDataDir                = "~/.local/share/animatch"
	defaultAniListBaseURL         = "https://graphql.anilist.co"
	defaultAniListPageSize        = 5
	defaultAniListTimeout         = 10
	defaultAutoThreshold          = 0.70
	defaultMarginMin              = 0.20
	defaultLowConfidenceThreshold = 0.55
	defaultSimilarity             = "max"
	defaultGoogleBaseURL          = "https://www.googleapis.com/customsearch/v1"
	defaultDuckDuckGoBaseURL      = "https://html.duckduckgo.com/html/"
	defaultRefinementQualifier    = "anime"
	defaultRefinementTimeout      = 8
	defaultNotificationTimeout    = 10
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		AniList: AniList{
			BaseURL:        defaultAniListBaseURL,
			PageSize:       defaultAniListPageSize,
			TimeoutSeconds: defaultAniListTimeout,
		},
		Matching: Matching{
			AutoThreshold:          defaultAutoThreshold,
			MarginMin:              defaultMarginMin,
			LowConfidenceThreshold: defaultLowConfidenceThreshold,
			Similarity:             defaultSimilarity,
		},
		Refinement: Refinement{
			Qualifier:      defaultRefinementQualifier,
			TimeoutSeconds: defaultRefinementTimeout,
		},
		Notifications: Notifications{
			TimeoutSeconds: defaultNotificationTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
