// Package matching turns one free-form line into a classified catalog match.
//
// A Matcher resolves aliases, searches the catalog, scores every candidate
// against the search phrase and classifies the attempt as auto, review or
// no-match. When the first attempt is weak it may ask a Refiner for a
// cleaner phrase and search again, keeping whichever attempt scored higher.
//
// The catalog and refinement backends are injected as small interfaces so
// the decision logic runs against deterministic fakes in tests. A Matcher
// keeps no state between calls; callers handle per-line errors and decide
// what to persist.
package matching
