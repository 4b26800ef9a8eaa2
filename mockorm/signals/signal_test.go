package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type mutation struct {
	collection string
	id         int
}

func TestSignalFanOut(t *testing.T) {
	s := NewSignal[mutation]()
	var audit, counts []string
	s.Attach(func(m mutation) { audit = append(audit, m.collection) }, "audit")
	s.Attach(func(m mutation) { counts = append(counts, m.collection) }, "counts")

	s.Notify(mutation{"user", 1})
	s.Notify(mutation{"pet", 2})

	assert.Equal(t, []string{"user", "pet"}, audit)
	assert.Equal(t, audit, counts)
}

func TestSignalObserverIdentity(t *testing.T) {
	t.Run("explicit id registers once", func(t *testing.T) {
		s := NewSignal[mutation]()
		var got []int
		s.Attach(func(m mutation) { got = append(got, m.id) }, "forward")
		s.Attach(func(m mutation) { got = append(got, -m.id) }, "forward")
		s.Notify(mutation{"user", 7})
		assert.Equal(t, []int{7}, got)
	})

	t.Run("function pointer is the default id", func(t *testing.T) {
		s := NewSignal[mutation]()
		seen := 0
		forward := Observer[mutation](func(mutation) { seen++ })
		s.Attach(forward)
		s.Attach(forward)
		s.Notify(mutation{})
		assert.Equal(t, 1, seen)
	})
}

func TestSignalUnsubscribe(t *testing.T) {
	t.Run("detach by id", func(t *testing.T) {
		s := NewSignal[mutation]()
		seen := 0
		observer := Observer[mutation](func(mutation) { seen++ })
		s.Attach(observer, "watch")
		s.Detach(observer, "watch")
		s.Notify(mutation{})
		assert.Zero(t, seen)
	})

	t.Run("dispose", func(t *testing.T) {
		s := NewSignal[mutation]()
		seen := 0
		sub := s.Attach(func(mutation) { seen++ }, "watch")
		s.Notify(mutation{})
		sub.Dispose()
		sub.Dispose()
		s.Notify(mutation{})
		assert.Equal(t, 1, seen)
	})

	t.Run("unknown id is ignored", func(t *testing.T) {
		s := NewSignal[mutation]()
		seen := 0
		s.Attach(func(mutation) { seen++ }, "kept")
		s.Detach(func(mutation) {}, "missing")
		s.Notify(mutation{})
		assert.Equal(t, 1, seen)
	})

	t.Run("observer detaching itself during notify", func(t *testing.T) {
		s := NewSignal[mutation]()
		var order []string
		var sub Disposable
		sub = s.Attach(func(mutation) {
			order = append(order, "once")
			sub.Dispose()
		}, "once")
		s.Attach(func(mutation) { order = append(order, "always") }, "always")
		s.Notify(mutation{})
		s.Notify(mutation{})
		assert.Equal(t, []string{"once", "always", "always"}, order)
	})
}
