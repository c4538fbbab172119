// Package config loads, normalizes, and validates animatch configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for
// search credentials. The Config type centralizes the catalog endpoint,
// the match thresholds, the optional refinement backend, and where the
// list database and logs live.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical enum values, and clear validation errors.
package config
