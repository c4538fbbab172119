// Package aliases maps well-known anime shorthand and nicknames to the
// canonical phrase sent to the catalog.
//
// A fixed builtin table covers common community abbreviations. An optional
// user file (JSON or YAML) is layered on top and reloaded whenever its
// modification time changes. Lookups are keyed by textutil.Normalize, so
// casing and punctuation do not matter; unrecognised input is returned
// unchanged.
package aliases
