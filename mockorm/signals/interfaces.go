package signals

type Observer[E any] func(E)

// Disposable undoes a subscription.
type Disposable interface {
	Dispose()
}

type Signal[E any] interface {
	Attach(observer Observer[E], observerID ...any) Disposable
	Detach(observer Observer[E], observerID ...any)
	Notify(event E)
}
