// Package source reads the raw lines fed to the matcher.
//
// ReadLines accepts a plain text list, one title per line, tolerating a
// byte-order mark and common list bullets. ParseFeed and FeedReader pull
// item titles out of an RSS, Atom or JSON feed, for example a seasonal
// release feed or an exported watch list.
package source
