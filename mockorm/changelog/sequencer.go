package changelog

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
)

type Clock func() time.Time

// Sequencer stamps changes with a time and a monotonic ULID. Tables that
// share a Sequencer produce ids that sort in call order even when the clock
// does not advance between calls.
type Sequencer struct {
	clock   Clock
	entropy io.Reader
}

func NewSequencer(clock Clock) *Sequencer {
	if clock == nil {
		clock = time.Now
	}
	return &Sequencer{
		clock:   clock,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Next returns the current time and a fresh id for it.
func (s *Sequencer) Next() (time.Time, ulid.ULID) {
	now := s.clock()
	return now, ulid.MustNew(ulidTime(now), s.entropy)
}

// ulidTime clamps t into the range a ULID timestamp can hold. CreatedAt
// keeps the real time; the id only breaks ties.
func ulidTime(t time.Time) uint64 {
	ms := t.UnixMilli()
	if ms < 0 {
		return 0
	}
	if uint64(ms) > ulid.MaxTime() {
		return ulid.MaxTime()
	}
	return uint64(ms)
}
