package ergo

import (
	"context"
	"log"
	"os"
)

// TerminationReason records why a paginated walk stopped.
type TerminationReason string

const (
	TermExhausted     TerminationReason = "exhausted"  // upstream returned an empty page
	TermShortPage     TerminationReason = "shortPage"  // page smaller than the requested limit
	TermCeiling       TerminationReason = "ceiling"    // accumulated count reached MaxItems
	TermUpstreamError TerminationReason = "upstreamError"
)

const defaultPageSize = 100

// WalkOptions bounds a paginated walk.
type WalkOptions struct {
	PageSize int // defaults to 100
	MaxItems int // 0 means unbounded
}

// PageFunc fetches one page at the given offset. Returning an empty slice
// signals exhaustion.
type PageFunc[T any] func(ctx context.Context, offset, limit int) ([]T, error)

// Walk drives fetch to completion or to a configured ceiling, preserving
// upstream order across pages. Pages are requested sequentially, one at a
// time, to stay polite to the upstream. On an upstream error the items
// collected so far are still returned together with the error.
func Walk[T any](ctx context.Context, fetch PageFunc[T], opts WalkOptions) ([]T, TerminationReason, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	debug := os.Getenv("LOG_DEBUG") == "1"

	var items []T
	offset := 0
	for {
		limit := pageSize
		if opts.MaxItems > 0 && opts.MaxItems-len(items) < limit {
			limit = opts.MaxItems - len(items)
		}

		page, err := fetch(ctx, offset, limit)
		if err != nil {
			log.Printf("[Walker] Terminating at offset %d after %d items: %v", offset, len(items), err)
			return items, TermUpstreamError, err
		}
		if debug {
			log.Printf("[Walker] Page offset=%d size=%d", offset, len(page))
		}

		if len(page) == 0 {
			log.Printf("[Walker] Exhausted after %d items", len(items))
			return items, TermExhausted, nil
		}

		items = append(items, page...)
		offset += len(page)

		if len(page) < limit {
			log.Printf("[Walker] Short page at offset %d, %d items total", offset, len(items))
			return items, TermShortPage, nil
		}
		if opts.MaxItems > 0 && len(items) >= opts.MaxItems {
			log.Printf("[Walker] Ceiling of %d items reached", opts.MaxItems)
			return items[:opts.MaxItems], TermCeiling, nil
		}
	}
}
