package cmd

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the default number of requests in flight.
const DefaultConcurrency = 5

// BulkResult is the outcome for one ID.
type BulkResult[T any] struct {
	ID    string
	Data  T
	Error error
}

// OK reports whether the operation succeeded.
func (r BulkResult[T]) OK() bool { return r.Error == nil }

// runBulkOperation runs operation for every ID with at most concurrency in
// flight. Results are in input order. IDs not started before ctx is done
// carry the context error.
func runBulkOperation[T any](ctx context.Context, ids []string, concurrency int64, operation func(ctx context.Context, id string) (T, error)) []BulkResult[T] {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]BulkResult[T], len(ids))
	sem := semaphore.NewWeighted(concurrency)
	var g errgroup.Group

	for i, id := range ids {
		results[i].ID = id
		if err := sem.Acquire(ctx, 1); err != nil {
			for j := i; j < len(ids); j++ {
				results[j] = BulkResult[T]{ID: ids[j], Error: err}
			}
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			results[i].Data, results[i].Error = operation(ctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// countResults returns success and failure counts.
func countResults[T any](results []BulkResult[T]) (success, failure int) {
	for _, r := range results {
		if r.OK() {
			success++
		} else {
			failure++
		}
	}
	return success, failure
}

// firstError returns the error of the first failed result, in input order.
func firstError[T any](results []BulkResult[T]) error {
	for _, r := range results {
		if r.Error != nil {
			return r.Error
		}
	}
	return nil
}
