// Package importer runs a batch of raw lines through the matcher and
// records the outcome of each one.
//
// Lines are processed strictly one after another. Automatic matches are
// added to the list (duplicates are counted, not re-added), ambiguous and
// unmatched lines go to the review queue, and a line whose catalog lookup
// fails is recorded as a LineFailure while the rest of the batch carries
// on. A file lock in the data directory keeps two imports from writing at
// the same time, and every run gets a uuid that is stamped on the rows it
// creates.
package importer
