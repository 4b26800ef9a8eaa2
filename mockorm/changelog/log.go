package changelog

import (
	"sort"

	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/signals"
)

// Log is the append-only change log of one collection.
type Log struct {
	collection string
	sequencer  *Sequencer
	entries    []Change
	onAppended *signals.SignalImp[Change]
}

func NewLog(collection string, sequencer *Sequencer) *Log {
	if sequencer == nil {
		sequencer = NewSequencer(nil)
	}
	return &Log{
		collection: collection,
		sequencer:  sequencer,
		onAppended: signals.NewSignal[Change](),
	}
}

// Append stamps c with id, time and collection, stores it and notifies
// observers.
func (l *Log) Append(c Change) Change {
	c.CreatedAt, c.ID = l.sequencer.Next()
	c.Collection = l.collection
	l.entries = append(l.entries, c)
	l.onAppended.Notify(c)
	return c
}

// Entries returns a copy of the log in append order.
func (l *Log) Entries() []Change {
	entries := make([]Change, len(l.entries))
	copy(entries, l.entries)
	return entries
}

func (l *Log) Len() int {
	return len(l.entries)
}

func (l *Log) OnAppended() signals.Signal[Change] {
	return l.onAppended
}

// Merge combines logs ordered by CreatedAt, ties broken by id.
func Merge(logs ...[]Change) []Change {
	var merged []Change
	for _, entries := range logs {
		merged = append(merged, entries...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.Compare(b.ID) < 0
	})
	return merged
}
