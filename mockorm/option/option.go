package option

// Option is either Some (holds a value) or Nothing.
type Option[T any] struct {
	val   T
	valid bool
}

func Some[T any](val T) Option[T] {
	return Option[T]{val: val, valid: true}
}

func Nothing[T any]() Option[T] {
	return Option[T]{}
}

func (o Option[T]) IsNothing() bool {
	return !o.valid
}

// Unwrap panics on Nothing.
func (o Option[T]) Unwrap() T {
	if !o.valid {
		panic("called Unwrap on a Nothing Option")
	}
	return o.val
}

func (o Option[T]) UnwrapOr(def T) T {
	if o.valid {
		return o.val
	}
	return def
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.val, o.valid
}
