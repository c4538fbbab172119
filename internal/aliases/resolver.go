package aliases

import (
	"log/slog"
	"sort"
	"strings"

	"animatch/internal/logging"
	"animatch/internal/textutil"
)

// Source identifies where a resolved alias came from.
type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceUser    Source = "user"
)

// Entry is one row of the merged alias table.
type Entry struct {
	Shorthand string `json:"shorthand"`
	Canonical string `json:"canonical"`
	Source    Source `json:"source"`
}

// Resolver maps raw input to the phrase used for the catalog query.
type Resolver struct {
	user   *Catalog
	logger *slog.Logger
}

// NewResolver returns a resolver over the builtin table plus an optional
// user catalog.
func NewResolver(user *Catalog, logger *slog.Logger) *Resolver {
	return &Resolver{user: user, logger: logging.NewComponentLogger(logger, "aliases")}
}

// Resolve returns the canonical phrase for a known shorthand and the raw
// input unchanged otherwise. User aliases shadow builtin ones. A broken user
// file is logged and the builtin table is still consulted.
func (r *Resolver) Resolve(raw string) string {
	key := textutil.Normalize(raw)
	if key == "" {
		return raw
	}
	if r != nil && r.user != nil {
		canonical, ok, err := r.user.Lookup(key)
		if err != nil {
			logging.WarnWithContext(r.logger, "user alias lookup failed", "alias_load_failed",
				logging.String("path", r.user.Path()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "fix the aliases file syntax"),
				logging.String(logging.FieldImpact, "only builtin aliases are applied"),
			)
		} else if ok {
			return canonical
		}
	}
	if canonical, ok := lookupBuiltin(key); ok {
		return canonical
	}
	return raw
}

// Entries returns the merged alias table sorted by shorthand.
func (r *Resolver) Entries() ([]Entry, error) {
	merged := make(map[string]Entry, len(builtinAliases))
	for shorthand, canonical := range builtinAliases {
		merged[shorthand] = Entry{Shorthand: shorthand, Canonical: canonical, Source: SourceBuiltin}
	}
	if r != nil && r.user != nil {
		user, err := r.user.Entries()
		if err != nil {
			return nil, err
		}
		for shorthand, canonical := range user {
			merged[shorthand] = Entry{Shorthand: shorthand, Canonical: canonical, Source: SourceUser}
		}
	}
	out := make([]Entry, 0, len(merged))
	for _, entry := range merged {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].Shorthand, out[j].Shorthand) < 0
	})
	return out, nil
}
