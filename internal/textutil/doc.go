// Package textutil provides the text canonicalization and similarity
// measures used to compare free-form anime names against catalog titles.
//
// The primary use cases are:
//   - Normalizing text so casing, punctuation, and spacing do not affect
//     comparisons (Normalize)
//   - Scoring two strings on a 0..1 scale using token overlap (Jaccard)
//     and Levenshtein edit distance, combined by maximum by default
//
// Every function here is pure and safe for concurrent use.
package textutil
