package pagination

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultPageSize  = 250
	DefaultMaxPages  = 20 // hard bound against runaway loops
	DefaultPageDelay = 50 * time.Millisecond
)

// ErrOutOfOrder is returned when a stop predicate is in use and the upstream
// delivers items out of the order the predicate relies on.
var ErrOutOfOrder = errors.New("items arrived out of order")

// Response is one page returned by a collection source.
type Response[T any] struct {
	Items []T
	Link  string // raw Link response header
}

// Source fetches a single page. A zero cursor requests the first page.
type Source[T any] func(ctx context.Context, cursor Cursor, pageSize int) (Response[T], error)

// Options controls a FetchAll walk. Zero values take the package defaults.
type Options[T any] struct {
	PageSize int
	MaxPages int

	// StopPredicate ends the walk at the first item it returns true for.
	// That item and everything after it is dropped. Items are assumed to
	// arrive newest-first, so a typical predicate is "older than cutoff".
	StopPredicate func(item T) bool

	// InOrder asserts the ordering StopPredicate relies on. It is called for
	// each consecutive pair and must return true when next may follow prev.
	InOrder func(prev, next T) bool

	// OnProgress is called after each page the stop predicate let through
	// whole, with the running item count
	OnProgress func(count, page int)

	// BestEffort returns what was collected so far instead of an error
	// when a page fetch fails.
	BestEffort bool

	// PageDelay is slept between pages. Negative disables the delay.
	PageDelay time.Duration

	Logger *slog.Logger
}

func (o Options[T]) withDefaults() Options[T] {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
	if o.PageDelay == 0 {
		o.PageDelay = DefaultPageDelay
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Limits are the configurable bounds shared by every walk of an upstream.
type Limits struct {
	PageSize  int
	MaxPages  int
	PageDelay time.Duration
}

// NewOptions returns Options carrying the given limits
func NewOptions[T any](l Limits, onProgress func(count, page int), logger *slog.Logger) Options[T] {
	return Options[T]{
		PageSize:   l.PageSize,
		MaxPages:   l.MaxPages,
		PageDelay:  l.PageDelay,
		OnProgress: onProgress,
		Logger:     logger,
	}
}

// Result is the outcome of a FetchAll walk.
type Result[T any] struct {
	Items []T

	// IsComplete is true when the source was exhausted or the stop
	// predicate matched. It is false when the page budget ran out while
	// more pages might exist, or when a page fetch failed.
	IsComplete bool

	PagesFetched int
	TotalCount   int
	StoppedEarly bool
}

// FetchAll walks a cursor-paginated source page by page, strictly
// sequentially, accumulating items until the source runs dry, the page
// budget is spent, or the stop predicate matches.
//
// A failed page aborts the walk. The items collected so far are returned
// alongside the error so callers can decide whether to show partial data.
func FetchAll[T any](ctx context.Context, source Source[T], opts Options[T]) (Result[T], error) {
	opts = opts.withDefaults()

	var (
		res      Result[T]
		cursor   Cursor
		prev     T
		havePrev bool
	)

	for {
		if err := ctx.Err(); err != nil {
			return abort(res, err, opts)
		}

		resp, err := source(ctx, cursor, opts.PageSize)
		if err != nil {
			return abort(res, fmt.Errorf("fetch page %d: %w", res.PagesFetched+1, err), opts)
		}
		res.PagesFetched++

		if len(resp.Items) == 0 {
			res.IsComplete = true
			break
		}

		for _, item := range resp.Items {
			if opts.StopPredicate != nil && opts.InOrder != nil && havePrev && !opts.InOrder(prev, item) {
				return abort(res, fmt.Errorf("page %d: %w", res.PagesFetched, ErrOutOfOrder), opts)
			}
			prev, havePrev = item, true

			if opts.StopPredicate != nil && opts.StopPredicate(item) {
				res.StoppedEarly = true
				break
			}
			res.Items = append(res.Items, item)
		}
		res.TotalCount = len(res.Items)

		if res.StoppedEarly {
			res.IsComplete = true
			opts.Logger.Debug("stop predicate matched", "page", res.PagesFetched, "count", len(res.Items))
			break
		}

		if opts.OnProgress != nil {
			opts.OnProgress(len(res.Items), res.PagesFetched)
		}

		next, ok := ParseNextCursor(resp.Link)
		if !ok {
			res.IsComplete = true
			break
		}
		if res.PagesFetched >= opts.MaxPages {
			opts.Logger.Warn("page budget exhausted", "maxPages", opts.MaxPages, "count", len(res.Items))
			break
		}

		if err := pause(ctx, opts.PageDelay); err != nil {
			return abort(res, err, opts)
		}
		cursor = next
	}

	opts.Logger.Debug("fetched collection",
		"count", res.TotalCount,
		"pages", res.PagesFetched,
		"complete", res.IsComplete,
		"stoppedEarly", res.StoppedEarly,
	)
	return res, nil
}

func abort[T any](res Result[T], err error, opts Options[T]) (Result[T], error) {
	res.IsComplete = false
	res.TotalCount = len(res.Items)
	if opts.BestEffort {
		opts.Logger.Warn("page fetch failed, returning partial results",
			"error", err, "count", res.TotalCount, "pages", res.PagesFetched)
		return res, nil
	}
	opts.Logger.Error("page fetch failed", "error", err, "count", res.TotalCount, "pages", res.PagesFetched)
	return res, err
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
