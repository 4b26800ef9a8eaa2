package deferred

import "errors"

// ErrPending is returned by Value when the deferred has not settled yet.
var ErrPending = errors.New("deferred: not settled")

type Deferred[T any] interface {
	Resolve(T)
	Reject(error)
	Then(func(T) (any, error), func(error) (any, error)) Deferred[any]
	Value() (T, error)
	OccurredErr() error
}
