package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"animatch/internal/logging"
	"animatch/internal/matching"
	"animatch/internal/store"
)

// ErrImportLocked reports that another import holds the lock.
var ErrImportLocked = errors.New("another import is already running")

// Matcher classifies one raw line.
type Matcher interface {
	Match(ctx context.Context, raw string) (*matching.Result, error)
}

// ListStore is the persistence used by the runner.
type ListStore interface {
	AddEntry(ctx context.Context, entry store.Entry) (*store.Entry, bool, error)
	EnqueueReview(ctx context.Context, item store.ReviewItem) (*store.ReviewItem, error)
	GetReview(ctx context.Context, id int64) (*store.ReviewItem, error)
	ReplaceReview(ctx context.Context, item store.ReviewItem) (*store.ReviewItem, error)
	PromoteReview(ctx context.Context, id int64, entry store.Entry) (*store.Entry, bool, error)
}

// LineFailure records a line that could not be processed.
type LineFailure struct {
	Line  int
	Input string
	Err   error
}

func (f LineFailure) Error() string {
	return fmt.Sprintf("line %d (%q): %v", f.Line, f.Input, f.Err)
}

func (f LineFailure) Unwrap() error {
	return f.Err
}

// Summary tallies one import run.
type Summary struct {
	RunID      string        `json:"run_id"`
	Lines      int           `json:"lines"`
	Skipped    int           `json:"skipped"`
	Added      int           `json:"added"`
	Duplicates int           `json:"duplicates"`
	Review     int           `json:"review"`
	NoMatch    int           `json:"no_match"`
	Failed     int           `json:"failed"`
	Failures   []LineFailure `json:"-"`
}

// Processed returns the number of non-blank lines handled.
func (s *Summary) Processed() int {
	return s.Added + s.Duplicates + s.Review + s.NoMatch + s.Failed
}

// Runner imports batches of lines.
type Runner struct {
	matcher  Matcher
	store    ListStore
	lockPath string
	logger   *slog.Logger
	newRunID func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLockPath guards runs with a file lock at path.
func WithLockPath(path string) Option {
	return func(r *Runner) {
		r.lockPath = strings.TrimSpace(path)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logging.NewComponentLogger(logger, "importer")
	}
}

// WithRunIDFunc overrides run id generation.
func WithRunIDFunc(fn func() string) Option {
	return func(r *Runner) {
		if fn != nil {
			r.newRunID = fn
		}
	}
}

// NewRunner constructs a Runner.
func NewRunner(matcher Matcher, st ListStore, opts ...Option) *Runner {
	r := &Runner{
		matcher:  matcher,
		store:    st,
		logger:   logging.NewComponentLogger(nil, "importer"),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes lines in order. Per-line failures are collected in the
// summary; the returned error is reserved for lock contention and
// cancellation, in which case the partial summary is still returned.
func (r *Runner) Run(ctx context.Context, lines []string) (*Summary, error) {
	unlock, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	summary := &Summary{RunID: r.newRunID(), Lines: len(lines)}
	ctx = logging.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("import started", logging.Int("lines", len(lines)))

	for idx, raw := range lines {
		if err := ctx.Err(); err != nil {
			logging.WarnWithContext(logger, "import cancelled", "import_cancelled",
				logging.Int(logging.FieldLine, idx+1),
				logging.String(logging.FieldImpact, "remaining lines were not processed"),
				logging.String(logging.FieldErrorHint, "rerun the import; existing entries are not duplicated"),
			)
			return summary, err
		}
		r.processLine(ctx, logger, summary, idx+1, raw)
	}

	logger.Info("import finished",
		logging.Int("added", summary.Added),
		logging.Int("duplicates", summary.Duplicates),
		logging.Int("review", summary.Review),
		logging.Int("no_match", summary.NoMatch),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func (r *Runner) processLine(ctx context.Context, logger *slog.Logger, summary *Summary, line int, raw string) {
	input := strings.TrimSpace(raw)
	if input == "" {
		summary.Skipped++
		return
	}
	lineLogger := logger.With(logging.Int(logging.FieldLine, line), logging.String(logging.FieldInput, input))

	fail := func(err error) {
		failure := LineFailure{Line: line, Input: input, Err: err}
		summary.Failed++
		summary.Failures = append(summary.Failures, failure)
		logging.WarnWithContext(lineLogger, "line skipped", "import_line_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check catalog connectivity and retry the line"),
			logging.String(logging.FieldImpact, "line omitted from this run"),
		)
	}

	result, err := r.matcher.Match(ctx, input)
	if err != nil {
		fail(err)
		return
	}
	if result == nil {
		summary.Skipped++
		return
	}

	switch result.Tag {
	case matching.TagAuto:
		entry, created, err := r.store.AddEntry(ctx, store.EntryFromCandidate(input, *result.Best, summary.RunID))
		if err != nil {
			fail(fmt.Errorf("add entry: %w", err))
			return
		}
		if created {
			summary.Added++
			lineLogger.Info("entry added", logging.Int64("catalog_id", entry.CatalogID), logging.String("title", entry.Title))
		} else {
			summary.Duplicates++
			lineLogger.Info("entry already on list", logging.Int64("catalog_id", entry.CatalogID), logging.Int64("entry_id", entry.ID))
		}
	default:
		item, ok := store.ReviewItemFromResult(result, summary.RunID)
		if !ok {
			fail(fmt.Errorf("unexpected match tag %q", result.Tag))
			return
		}
		queued, err := r.store.EnqueueReview(ctx, item)
		if err != nil {
			fail(fmt.Errorf("enqueue review: %w", err))
			return
		}
		if queued.Status == store.ReviewStatusNoMatch {
			summary.NoMatch++
		} else {
			summary.Review++
		}
		lineLogger.Info("queued for review", logging.Int64("review_id", queued.ID), logging.String("status", string(queued.Status)))
	}
}

func (r *Runner) acquire(ctx context.Context) (func(), error) {
	if r.lockPath == "" {
		return func() {}, nil
	}
	lock := flock.New(r.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire import lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrImportLocked, r.lockPath)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, r.logger), "failed to release import lock", "import_lock_release_failed",
				logging.String("lock", r.lockPath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the lock file if no import is running"),
			)
		}
	}, nil
}
