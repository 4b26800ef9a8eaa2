package deferred

import "github.com/hashicorp/go-multierror"

/**
* Settle-once deferred value, after
* - https://promisesaplus.com/
* - https://github.com/emacsway/go-promise
*
* Everything here runs on the caller's goroutine: handlers attached to a
* settled deferred fire immediately, so an in-memory chain is settled by the
* time the last Then returns.
**/

// Identity passes a value through unchanged.
func Identity[T any](v T) (T, error) {
	return v, nil
}

// Rethrow passes a rejection through unchanged.
func Rethrow[R any](err error) (R, error) {
	var zero R
	return zero, err
}

type nextDeferred interface {
	resolveAny(any)
	rejectAny(error)
	OccurredErr() error
}

type handler[T any] struct {
	onSuccess func(T) (any, error)
	onError   func(error) (any, error)
	next      nextDeferred
}

type state int

const (
	pending state = iota
	resolved
	rejected
)

type DeferredImp[T any] struct {
	value       T
	err         error
	occurredErr error
	state       state
	handlers    []handler[T]
}

// Resolved returns a deferred already resolved with value.
func Resolved[T any](value T) *DeferredImp[T] {
	d := &DeferredImp[T]{}
	d.Resolve(value)
	return d
}

// Rejected returns a deferred already rejected with err.
func Rejected[T any](err error) *DeferredImp[T] {
	d := &DeferredImp[T]{}
	d.Reject(err)
	return d
}

func (d *DeferredImp[T]) resolveAny(v any) {
	var t T
	if v != nil {
		t = v.(T)
	}
	d.Resolve(t)
}

func (d *DeferredImp[T]) rejectAny(err error) {
	d.Reject(err)
}

// Resolve settles the deferred with value. Only the first settlement counts.
func (d *DeferredImp[T]) Resolve(value T) {
	if d.state != pending {
		return
	}
	d.value = value
	d.state = resolved
	for _, h := range d.handlers {
		d.resolveHandler(h)
	}
}

// Reject settles the deferred with err. Only the first settlement counts.
func (d *DeferredImp[T]) Reject(err error) {
	if d.state != pending {
		return
	}
	d.err = err
	d.state = rejected
	for _, h := range d.handlers {
		d.rejectHandler(h)
	}
}

// Value returns the settled outcome, or ErrPending.
func (d *DeferredImp[T]) Value() (T, error) {
	switch d.state {
	case resolved:
		return d.value, nil
	case rejected:
		var zero T
		return zero, d.err
	}
	var zero T
	return zero, ErrPending
}

func (d *DeferredImp[T]) IsSettled() bool {
	return d.state != pending
}

func (d *DeferredImp[T]) addHandler(h handler[T]) {
	d.handlers = append(d.handlers, h)
	switch d.state {
	case resolved:
		d.resolveHandler(h)
	case rejected:
		d.rejectHandler(h)
	}
}

func (d *DeferredImp[T]) Then(onSuccess func(T) (any, error), onError func(error) (any, error)) Deferred[any] {
	next := &DeferredImp[any]{}
	if onSuccess == nil {
		onSuccess = func(v T) (any, error) { return v, nil }
	}
	if onError == nil {
		onError = Rethrow[any]
	}
	d.addHandler(handler[T]{
		onSuccess: onSuccess,
		onError:   onError,
		next:      next,
	})
	return next
}

// Then registers typed callbacks for success and error cases.
//
// Per Promises/A+ 2.2.7:
//   - If onSuccess returns a value, next deferred is resolved with it.
//   - If onSuccess returns an error, next deferred is rejected with it.
//   - If onError returns a value, next deferred is resolved with it (recovery).
//   - If onError returns an error, next deferred is rejected with it.
//
// A free function because Go methods cannot take type parameters.
func Then[T, R any](d *DeferredImp[T], onSuccess func(T) (R, error), onError func(error) (R, error)) *DeferredImp[R] {
	if onError == nil {
		onError = Rethrow[R]
	}
	next := &DeferredImp[R]{}
	d.addHandler(handler[T]{
		onSuccess: func(v T) (any, error) { return onSuccess(v) },
		onError:   func(err error) (any, error) { return onError(err) },
		next:      next,
	})
	return next
}

// Map transforms a resolved value and lets rejections through.
func Map[T, R any](d *DeferredImp[T], fn func(T) (R, error)) *DeferredImp[R] {
	return Then(d, fn, nil)
}

// FlatMap chains a step that itself produces a deferred.
func FlatMap[T, R any](d *DeferredImp[T], fn func(T) *DeferredImp[R]) *DeferredImp[R] {
	next := &DeferredImp[R]{}
	Then(d, func(v T) (any, error) {
		inner := fn(v)
		Then(inner, func(r R) (any, error) {
			next.Resolve(r)
			return nil, nil
		}, func(err error) (any, error) {
			next.Reject(err)
			return nil, nil
		})
		return nil, nil
	}, func(err error) (any, error) {
		next.Reject(err)
		return nil, nil
	})
	return next
}

// Catch registers a rejection handler; resolved values pass through.
func Catch[T any](d *DeferredImp[T], onError func(error) (T, error)) *DeferredImp[T] {
	return Then(d, Identity[T], onError)
}

func (d *DeferredImp[T]) resolveHandler(h handler[T]) {
	result, err := h.onSuccess(d.value)
	if err == nil {
		h.next.resolveAny(result)
	} else {
		d.occurredErr = multierror.Append(d.occurredErr, err)
		h.next.rejectAny(err)
	}
}

func (d *DeferredImp[T]) rejectHandler(h handler[T]) {
	result, err := h.onError(d.err)
	if err == nil {
		h.next.resolveAny(result)
	} else {
		d.occurredErr = multierror.Append(d.occurredErr, err)
		h.next.rejectAny(err)
	}
}

// OccurredErr collects handler errors raised on this deferred and every
// deferred chained from it.
func (d *DeferredImp[T]) OccurredErr() error {
	err := d.occurredErr
	for _, h := range d.handlers {
		nestedErr := h.next.OccurredErr()
		if nestedErr != nil {
			err = multierror.Append(err, nestedErr)
		}
	}
	return err
}

// All resolves with every value in input order, or rejects with the first
// rejection.
func All[T any](deferreds []*DeferredImp[T]) *DeferredImp[[]T] {
	result := &DeferredImp[[]T]{}

	if len(deferreds) == 0 {
		result.Resolve([]T{})
		return result
	}

	count := len(deferreds)
	values := make([]T, count)
	resolvedCount := 0

	for i, d := range deferreds {
		idx := i
		Then(d, func(value T) (any, error) {
			values[idx] = value
			resolvedCount++
			if resolvedCount == count {
				result.Resolve(values)
			}
			return nil, nil
		}, func(err error) (any, error) {
			result.Reject(err)
			return nil, nil
		})
	}

	return result
}

// MapAll runs fn for each item and collects the results, like Promise.map.
func MapAll[T, R any](items []T, fn func(T) *DeferredImp[R]) *DeferredImp[[]R] {
	deferreds := make([]*DeferredImp[R], len(items))
	for i, item := range items {
		deferreds[i] = fn(item)
	}
	return All(deferreds)
}
