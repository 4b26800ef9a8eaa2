package signals

import (
	"reflect"
)

type disposableFunc func()

func (f disposableFunc) Dispose() {
	f()
}

type entry[E any] struct {
	id       any
	observer Observer[E]
}

// SignalImp notifies observers synchronously, in attach order.
type SignalImp[E any] struct {
	observers []entry[E]
}

func NewSignal[E any]() *SignalImp[E] {
	return &SignalImp[E]{}
}

// Attach registers observer once per id. Without an explicit id the
// function pointer is the id.
func (s *SignalImp[E]) Attach(observer Observer[E], observerID ...any) Disposable {
	id := resolveID(observer, observerID)
	detach := disposableFunc(func() {
		s.Detach(observer, id)
	})
	for _, e := range s.observers {
		if e.id == id {
			return detach
		}
	}
	s.observers = append(s.observers, entry[E]{id: id, observer: observer})
	return detach
}

func (s *SignalImp[E]) Detach(observer Observer[E], observerID ...any) {
	id := resolveID(observer, observerID)
	for i, e := range s.observers {
		if e.id == id {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}

func (s *SignalImp[E]) Notify(event E) {
	observers := s.observers
	for _, e := range observers {
		e.observer(event)
	}
}

func resolveID[E any](observer Observer[E], observerID []any) any {
	if len(observerID) > 0 {
		return observerID[0]
	}
	return reflect.ValueOf(observer).Pointer()
}
