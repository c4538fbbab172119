// Package searchcache keeps recent AniList search responses on disk.
//
// Importing the same watch list twice, or retrying review items, repeats
// many identical catalog queries. AniList rate-limits anonymous clients, so
// responses are cached per query for a configurable TTL.
//
// # Storage
//
// The cache is a JSON file at <data_dir>/search_cache.json, written
// atomically through a temp file. It is human-readable and safe to delete.
//
// # Usage
//
//	[anilist]
//	cache_ttl_hours = 24   # default 0 disables the cache
//
// CLI commands for inspection and management:
//
//	animatch cache list    # List cached queries, newest first
//	animatch cache clear   # Remove all entries
package searchcache
