// Command animatch matches free-form anime titles against the AniList
// catalog and keeps the confirmed ones on a local list.
//
// Lines that match confidently are added straight to the list. Ambiguous
// lines and lines without candidates wait in a review queue where they can
// be accepted, rejected, or retried after the alias table changes.
package main
