package api

import "context"

// Future is the pending result of an asynchronous request. It completes
// exactly once and may be waited on any number of times, from any goroutine.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// CompletedFuture returns a Future that already holds value and err.
func CompletedFuture[T any](value T, err error) *Future[T] {
	f := newFuture[T]()
	f.complete(value, err)
	return f
}

func (f *Future[T]) complete(value T, err error) {
	f.value, f.err = value, err
	close(f.done)
}

// Done is closed when the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the result is available or ctx is done. Giving up on
// ctx does not cancel the request; cancel the context passed to SendAsync
// for that.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// thenFuture returns a Future that applies fn to the result of f.
func thenFuture[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out := newFuture[U]()
	go func() {
		<-f.done
		if f.err != nil {
			var zero U
			out.complete(zero, f.err)
			return
		}
		out.complete(fn(f.value))
	}()
	return out
}
